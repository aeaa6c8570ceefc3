// SPDX-License-Identifier: MIT

// Package cache provides a typed in-memory cache with TTL support.
package cache

import (
	"sync"
	"time"
)

// Stats holds cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Stale       int64 // expired entries served by Peek
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a thread-safe TTL cache. Expired entries stay readable through
// Peek until the janitor evicts them or they are overwritten.
type Memory[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	stats   Stats
	now     func() time.Time
	// retain keeps expired entries this long before eviction.
	retain time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Memory cache.
type Option func(*options)

type options struct {
	now             func() time.Time
	cleanupInterval time.Duration
	retain          time.Duration
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCleanup starts a janitor that evicts entries expired for longer than
// retain, every interval.
func WithCleanup(interval, retain time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = interval
		o.retain = retain
	}
}

// NewMemory creates a cache. Call Close to stop the janitor.
func NewMemory[V any](opts ...Option) *Memory[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Memory[V]{
		entries: make(map[string]entry[V]),
		now:     o.now,
		retain:  o.retain,
		stop:    make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		c.wg.Add(1)
		go c.janitor(o.cleanupInterval)
	}
	return c
}

// Get returns a live value.
func (c *Memory[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Peek returns a value even if it has expired. fresh reports whether it is
// still within its TTL.
func (c *Memory[V]) Peek(key string) (value V, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found {
		var zero V
		return zero, false, false
	}
	fresh = c.now().Before(e.expiresAt)
	if !fresh {
		c.stats.Stale++
	}
	return e.value, fresh, true
}

// Set stores value for ttl.
func (c *Memory[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.stats.Sets++
}

// Delete removes key.
func (c *Memory[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Memory[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Stats returns a snapshot of the counters.
func (c *Memory[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.CurrentSize = len(c.entries)
	return s
}

// deleteExpired evicts entries expired for longer than retain.
func (c *Memory[V]) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.retain)
	n := 0
	for k, e := range c.entries {
		if e.expiresAt.Before(cutoff) {
			delete(c.entries, k)
			n++
		}
	}
	c.stats.Evictions += int64(n)
	return n
}

func (c *Memory[V]) janitor(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

// Close stops the janitor. It is safe to call more than once.
func (c *Memory[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}
