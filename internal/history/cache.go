// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/connectapp/connect/internal/presenca"
)

const schema = `
CREATE TABLE IF NOT EXISTS attendance (
	participant_id TEXT    NOT NULL,
	seq            INTEGER NOT NULL,
	palestra_id    TEXT    NOT NULL,
	registered_at  TEXT    NOT NULL DEFAULT '',
	payload        BLOB    NOT NULL,
	fetched_at     INTEGER NOT NULL,
	PRIMARY KEY (participant_id, seq)
);
CREATE TABLE IF NOT EXISTS attendance_sync (
	participant_id TEXT    PRIMARY KEY,
	fetched_at     INTEGER NOT NULL
);`

// Cache keeps the last attendance list fetched for each participant.
type Cache struct {
	db    *sql.DB
	owned bool
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, cfg DBConfig) (*Cache, error) {
	db, err := OpenDB(path, cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewCache(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewCache wraps an existing pool and applies the schema.
func NewCache(ctx context.Context, db *sql.DB) (*Cache, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the pool when the Cache opened it.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

// DB exposes the pool for integrity checks.
func (c *Cache) DB() *sql.DB { return c.db }

// Replace stores records as the complete list for participantID.
func (c *Cache) Replace(ctx context.Context, participantID string, records []presenca.Record, fetchedAt time.Time) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance WHERE participant_id = ?`, participantID); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO attendance
		(participant_id, seq, palestra_id, registered_at, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare: %w", err)
	}
	defer stmt.Close()

	ts := fetchedAt.UnixMilli()
	for i, r := range records {
		payload := []byte(r.Raw)
		if len(payload) == 0 {
			if payload, err = json.Marshal(r); err != nil {
				return fmt.Errorf("history: encode record: %w", err)
			}
		}
		if _, err = stmt.ExecContext(ctx, participantID, i, r.PalestraID.String(), r.RegisteredAt, payload, ts); err != nil {
			return fmt.Errorf("history: insert: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO attendance_sync (participant_id, fetched_at) VALUES (?, ?)
		ON CONFLICT(participant_id) DO UPDATE SET fetched_at = excluded.fetched_at`, participantID, ts); err != nil {
		return fmt.Errorf("history: sync mark: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// Load returns the stored list for participantID. ok is false when the
// participant has never been synced.
func (c *Cache) Load(ctx context.Context, participantID string) (records []presenca.Record, fetchedAt time.Time, ok bool, err error) {
	var ts int64
	err = c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM attendance_sync WHERE participant_id = ?`, participantID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("history: load sync mark: %w", err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM attendance WHERE participant_id = ? ORDER BY seq`, participantID)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	records = []presenca.Record{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("history: scan: %w", err)
		}
		var r presenca.Record
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("history: decode payload: %w", err)
		}
		r.Raw = json.RawMessage(payload)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("history: rows: %w", err)
	}
	return records, time.UnixMilli(ts), true, nil
}

// Forget removes everything stored for participantID.
func (c *Cache) Forget(ctx context.Context, participantID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM attendance WHERE participant_id = ?`, participantID); err != nil {
		return fmt.Errorf("history: forget: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM attendance_sync WHERE participant_id = ?`, participantID); err != nil {
		return fmt.Errorf("history: forget: %w", err)
	}
	return nil
}
