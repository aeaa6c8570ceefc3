// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/store"
	"github.com/rs/zerolog"
)

// Storage keys, shared with the mobile app's local storage layout.
const (
	KeyUser  = "@connect_usuario"
	KeyToken = "@connect_token"
)

// User is the persisted participant record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// Storage persists the logged-in participant in a store.Store.
type Storage struct {
	kv     store.Store
	logger zerolog.Logger
}

// NewStorage wraps kv.
func NewStorage(kv store.Store) *Storage {
	return &Storage{kv: kv, logger: xglog.WithComponent("auth.storage")}
}

// SaveUser stores u and, when non-empty, the session token.
func (s *Storage) SaveUser(ctx context.Context, u User, token string) error {
	buf, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("auth: encode user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, buf); err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.save_failed").Msg("failed to save user")
		return fmt.Errorf("auth: save user: %w", err)
	}
	if token != "" {
		if err := s.kv.Set(ctx, KeyToken, []byte(token)); err != nil {
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.save_failed").Msg("failed to save token")
			return fmt.Errorf("auth: save token: %w", err)
		}
	}
	return nil
}

// User returns the stored participant, or nil when none is stored or the
// stored value cannot be read.
func (s *Storage) User(ctx context.Context) *User {
	raw, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.read_failed").Msg("failed to read user")
		}
		return nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.decode_failed").Msg("stored user is corrupt")
		return nil
	}
	if u.ID == "" {
		return nil
	}
	return &u
}

// Token returns the stored session token or "".
func (s *Storage) Token(ctx context.Context) string {
	raw, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.read_failed").Msg("failed to read token")
		}
		return ""
	}
	return string(raw)
}

// Clear removes the stored participant and token.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyUser, KeyToken); err != nil {
		s.logger.Error().Err(err).Str(xglog.FieldEvent, "auth.storage.clear_failed").Msg("failed to clear storage")
		return fmt.Errorf("auth: clear: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a participant is stored.
func (s *Storage) IsAuthenticated(ctx context.Context) bool {
	return s.User(ctx) != nil
}
