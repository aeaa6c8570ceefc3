// SPDX-License-Identifier: MIT

// Package ratelimit throttles requests per key (participant, client IP).
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/connectapp/connect/internal/metrics"
	"golang.org/x/time/rate"
)

// Config holds the per-key token bucket settings.
type Config struct {
	Rate  rate.Limit // events per second per key
	Burst int
	// IdleTTL is how long an unused key keeps its bucket.
	IdleTTL time.Duration
}

// DefaultConfig allows two registrations per second per participant with a
// burst of four.
func DefaultConfig() Config {
	return Config{
		Rate:    2,
		Burst:   4,
		IdleTTL: 5 * time.Minute,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	name   string
	config Config
	now    func() time.Time

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

// New creates a limiter; name labels its rejections in metrics.
func New(name string, config Config) *Limiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultConfig().IdleTTL
	}
	return &Limiter{
		name:        name,
		config:      config,
		now:         time.Now,
		buckets:     make(map[string]*bucket),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether an event for key may happen now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.maybeCleanupLocked(now)
	l.mu.Unlock()

	if !b.limiter.AllowN(now, 1) {
		metrics.IncRateLimited(l.name)
		return false
	}
	return true
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// maybeCleanupLocked drops buckets idle for longer than IdleTTL.
func (l *Limiter) maybeCleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.IdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.config.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}

// KeyFunc extracts the throttling key from a request. An empty key skips the
// limiter.
type KeyFunc func(*http.Request) string

// Middleware rejects requests over the limit with 429 and a JSON error body.
func (l *Limiter) Middleware(key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k != "" && !l.Allow(k) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Muitas requisições, tente novamente em instantes"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client address, honouring X-Forwarded-For and
// X-Real-IP set by a reverse proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
