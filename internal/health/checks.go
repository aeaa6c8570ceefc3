// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/connectapp/connect/internal/history"
	"github.com/connectapp/connect/internal/store"
	"github.com/connectapp/connect/internal/wire"
)

// BackendChecker probes GET {base}/palestras.
type BackendChecker struct {
	base   string
	client *http.Client
}

func NewBackendChecker(base string, client *http.Client) *BackendChecker {
	return &BackendChecker{base: strings.TrimRight(base, "/"), client: client}
}

func (c *BackendChecker) Name() string { return "backend" }

func (c *BackendChecker) Check(ctx context.Context) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/palestras", nil)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: wire.MsgRequestSetup, Error: err.Error()}
	}
	res, err := c.client.Do(req)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: wire.UnreachableMessage(c.base), Error: err.Error()}
	}
	defer res.Body.Close()
	_, _ = wire.ReadBody(res.Body)

	switch {
	case res.StatusCode >= 500:
		return CheckResult{Status: StatusUnhealthy, Error: res.Status}
	case res.StatusCode >= 300:
		return CheckResult{Status: StatusDegraded, Message: "unexpected status", Error: res.Status}
	default:
		return CheckResult{Status: StatusHealthy, Message: c.base}
	}
}

const probeKey = "@connect_health_probe"

// StoreChecker round-trips a probe key through the session store.
type StoreChecker struct {
	kv store.Store
}

func NewStoreChecker(kv store.Store) *StoreChecker { return &StoreChecker{kv: kv} }

func (c *StoreChecker) Name() string { return "store" }

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	if err := c.kv.Set(ctx, probeKey, []byte("ok")); err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: "write failed", Error: err.Error()}
	}
	defer func() { _ = c.kv.Delete(context.WithoutCancel(ctx), probeKey) }()

	v, err := c.kv.Get(ctx, probeKey)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: "read failed", Error: err.Error()}
	}
	if string(v) != "ok" {
		return CheckResult{Status: StatusUnhealthy, Message: "read back a different value"}
	}
	return CheckResult{Status: StatusHealthy}
}

// HistoryChecker runs a quick integrity check on the history database. A
// missing database is reported as degraded: the history is then online-only.
type HistoryChecker struct {
	db *sql.DB
}

func NewHistoryChecker(cache *history.Cache) *HistoryChecker {
	if cache == nil {
		return &HistoryChecker{}
	}
	return &HistoryChecker{db: cache.DB()}
}

func (c *HistoryChecker) Name() string { return "history" }

func (c *HistoryChecker) Check(ctx context.Context) CheckResult {
	if c.db == nil {
		return CheckResult{Status: StatusDegraded, Message: "not configured (history is online-only)"}
	}
	problems, err := history.VerifyIntegrity(ctx, c.db, false)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if len(problems) > 0 {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   strings.Join(problems, "; "),
			Message: fmt.Sprintf("%d integrity problem(s)", len(problems)),
		}
	}
	return CheckResult{Status: StatusHealthy}
}
