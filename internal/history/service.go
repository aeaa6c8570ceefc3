// SPDX-License-Identifier: MIT

// Package history serves a participant's attendance list, backed by a local
// SQLite copy so the list stays readable while the backend is unreachable.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/metrics"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/resilience"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a synced list is served without refetching.
const DefaultTTL = 5 * time.Minute

// Lister fetches attendance records from the backend.
type Lister interface {
	List(ctx context.Context, participantID string) ([]presenca.Record, error)
}

// Result is a participant's attendance list and where it came from.
type Result struct {
	Records   []presenca.Record
	FetchedAt time.Time
	// Stale is set when the backend could not be reached and the list is
	// the last stored copy (or empty if nothing was stored).
	Stale bool
	// Err is the upstream failure behind a stale result.
	Err error
}

// Options configures a Service.
type Options struct {
	TTL     time.Duration
	Breaker *resilience.CircuitBreaker
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// Service reads attendance through the local cache.
type Service struct {
	lister  Lister
	cache   *Cache
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a Service. cache may be nil, in which case every call
// goes to the backend and failures yield an empty stale list.
func NewService(lister Lister, cache *Cache, opts Options) *Service {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("history", resilience.DefaultThreshold, resilience.DefaultResetTimeout,
			resilience.WithNeutralErrors(IsRejection))
	}
	logger := xglog.WithComponent("history")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		lister:  lister,
		cache:   cache,
		ttl:     ttl,
		breaker: breaker,
		logger:  logger,
		now:     now,
	}
}

// IsRejection reports errors that say nothing about backend health: caller
// cancellation and 4xx rejections. Breakers guarding List should ignore them.
func IsRejection(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, presenca.ErrValidation) ||
		errors.Is(err, presenca.ErrUnauthenticated)
}

// Records returns the list for participantID, from the cache while it is
// younger than the TTL and from the backend otherwise.
func (s *Service) Records(ctx context.Context, participantID string) (Result, error) {
	if strings.TrimSpace(participantID) == "" {
		return Result{}, &presenca.Error{Sentinel: presenca.ErrUnauthenticated, Operation: "history", Message: presenca.MsgUnauthenticated}
	}
	if s.cache != nil && s.ttl > 0 {
		records, fetchedAt, ok, err := s.cache.Load(ctx, participantID)
		if err != nil {
			s.logger.Warn().Err(err).Str(xglog.FieldEvent, "history.cache_read_failed").Msg("history cache unreadable")
		} else if ok && s.now().Sub(fetchedAt) < s.ttl {
			metrics.RecordCacheLookup("history", "hit")
			metrics.SetHistoryRecords(len(records))
			return Result{Records: records, FetchedAt: fetchedAt}, nil
		}
		metrics.RecordCacheLookup("history", "miss")
	}
	return s.Refresh(ctx, participantID)
}

// Refresh fetches from the backend, bypassing the TTL. Concurrent refreshes
// for one participant share a single request.
func (s *Service) Refresh(ctx context.Context, participantID string) (Result, error) {
	if strings.TrimSpace(participantID) == "" {
		return Result{}, &presenca.Error{Sentinel: presenca.ErrUnauthenticated, Operation: "history", Message: presenca.MsgUnauthenticated}
	}

	ch := s.group.DoChan(participantID, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		return s.fetch(context.WithoutCancel(ctx), participantID)
	})

	select {
	case <-ctx.Done():
		return s.fallback(ctx, participantID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return s.fallback(ctx, participantID, res.Err)
		}
		out := res.Val.(Result)
		out.Records = append([]presenca.Record(nil), out.Records...)
		return out, nil
	}
}

func (s *Service) fetch(ctx context.Context, participantID string) (Result, error) {
	var records []presenca.Record
	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var lerr error
		records, lerr = s.lister.List(ctx, participantID)
		return lerr
	})
	if err != nil {
		result := "error"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			result = "breaker_open"
		}
		metrics.RecordUpstreamFetch("history", result)
		return Result{}, err
	}
	metrics.RecordUpstreamFetch("history", "success")

	fetchedAt := s.now()
	if s.cache != nil {
		if err := s.cache.Replace(ctx, participantID, records, fetchedAt); err != nil {
			s.logger.Warn().Err(err).Str(xglog.FieldEvent, "history.cache_write_failed").Msg("failed to store history")
		}
	}
	metrics.SetHistoryRecords(len(records))
	s.logger.Debug().
		Str(xglog.FieldEvent, "history.refreshed").
		Str(xglog.FieldParticipantID, participantID).
		Int("count", len(records)).
		Msg("attendance history refreshed")
	return Result{Records: records, FetchedAt: fetchedAt}, nil
}

// fallback serves the stored copy after a failed refresh. Backend rejections
// and caller cancellation are returned as errors rather than masked.
func (s *Service) fallback(ctx context.Context, participantID string, cause error) (Result, error) {
	if IsRejection(cause) {
		return Result{}, cause
	}
	s.logger.Warn().
		Err(cause).
		Str(xglog.FieldEvent, "history.serve_stale").
		Str(xglog.FieldParticipantID, participantID).
		Msg("serving stored attendance history")

	out := Result{Records: []presenca.Record{}, Stale: true, Err: cause}
	if s.cache == nil {
		return out, nil
	}
	records, fetchedAt, ok, err := s.cache.Load(context.WithoutCancel(ctx), participantID)
	if err != nil || !ok {
		return out, nil
	}
	metrics.RecordCacheLookup("history", "stale")
	out.Records = records
	out.FetchedAt = fetchedAt
	return out, nil
}

// Forget drops the stored copy, e.g. on logout.
func (s *Service) Forget(ctx context.Context, participantID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Forget(ctx, participantID)
}
