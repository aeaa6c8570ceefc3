// SPDX-License-Identifier: MIT

package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/connectapp/connect/internal/cache"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/metrics"
	"github.com/connectapp/connect/internal/platform/httpx"
	"github.com/connectapp/connect/internal/resilience"
	"github.com/connectapp/connect/internal/wire"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = time.Minute
)

var (
	ErrUnavailable = errors.New("schedule: backend unavailable")
	ErrBadResponse = errors.New("schedule: unexpected response")
)

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	// CacheTTL of zero selects DefaultCacheTTL; negative disables caching.
	CacheTTL time.Duration
	Breaker  *resilience.CircuitBreaker
	Logger   *zerolog.Logger
}

// Client fetches activities with a per-type TTL cache. While the backend is
// failing, the last good list for a type is served even if expired.
type Client struct {
	base    string
	timeout time.Duration
	http    *http.Client
	ttl     time.Duration
	cache   *cache.Memory[[]Activity]
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
}

// New creates a schedule client for the API rooted at base.
func New(base string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = httpx.NewTracedClient(timeout, "schedule")
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("schedule", resilience.DefaultThreshold, resilience.DefaultResetTimeout)
	}
	logger := xglog.WithComponent("schedule")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		http:    hc,
		ttl:     ttl,
		cache:   cache.NewMemory[[]Activity](),
		breaker: breaker,
		logger:  logger,
	}
}

// Close releases the cache.
func (c *Client) Close() { c.cache.Close() }

// Activities returns the activities of tipo ("" or AllTypes for every type).
// Failures are logged and yield an empty list.
func (c *Client) Activities(ctx context.Context, tipo string) []Activity {
	list, err := c.Fetch(ctx, tipo)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "schedule.fetch_failed").
			Str("tipo", tipo).
			Msg("failed to load activities")
		return []Activity{}
	}
	return list
}

// ActivityByID searches the full list. It returns nil when absent or when the
// list cannot be loaded.
func (c *Client) ActivityByID(ctx context.Context, id string) *Activity {
	for _, a := range c.Activities(ctx, "") {
		if a.ID == id {
			found := a
			return &found
		}
	}
	return nil
}

// Fetch is Activities with the error surfaced.
func (c *Client) Fetch(ctx context.Context, tipo string) ([]Activity, error) {
	if tipo == AllTypes {
		tipo = ""
	}
	key := "tipo:" + tipo

	if c.ttl > 0 {
		if list, ok := c.cache.Get(key); ok {
			metrics.RecordCacheLookup("schedule", "hit")
			return clone(list), nil
		}
		metrics.RecordCacheLookup("schedule", "miss")
	}

	var list []Activity
	err := c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var ferr error
		list, ferr = c.fetch(ctx, tipo)
		return ferr
	})
	if err == nil {
		metrics.RecordUpstreamFetch("schedule", "success")
		if c.ttl > 0 {
			c.cache.Set(key, list, c.ttl)
		}
		return clone(list), nil
	}

	result := "error"
	if errors.Is(err, resilience.ErrCircuitOpen) {
		result = "breaker_open"
	}
	metrics.RecordUpstreamFetch("schedule", result)

	if stale, _, ok := c.cache.Peek(key); ok {
		metrics.RecordCacheLookup("schedule", "stale")
		c.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "schedule.serve_stale").
			Str("tipo", tipo).
			Msg("serving cached activities")
		return clone(stale), nil
	}
	return nil, err
}

func (c *Client) fetch(ctx context.Context, tipo string) ([]Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base + "/palestras"
	if tipo != "" {
		endpoint += "?" + url.Values{"tipo": {tipo}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, wire.MsgRequestSetup, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, wire.UnreachableMessage(c.base), err)
	}
	defer resp.Body.Close()

	body, err := wire.ReadBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrBadResponse, resp.StatusCode, wire.ServerMessage(body, resp.Status))
	}

	list, err := Normalize(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	c.logger.Debug().
		Str(xglog.FieldEvent, "schedule.fetched").
		Str("tipo", tipo).
		Int("count", len(list)).
		Msg("activities fetched")
	return list, nil
}

func clone(in []Activity) []Activity {
	out := make([]Activity, len(in))
	copy(out, in)
	return out
}
