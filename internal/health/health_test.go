// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/connectapp/connect/internal/history"
	"github.com/connectapp/connect/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(name string, s Status) Checker {
	return NewCheckFunc(name, func(context.Context) CheckResult { return CheckResult{Status: s} })
}

func TestRunNoCheckers(t *testing.T) {
	r := NewManager("v1.0.0").Run(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "v1.0.0", r.Version)
	assert.Nil(t, r.Checks)
}

func TestRunWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("")
			for i, s := range tt.statuses {
				m.Register(fixed(string(rune('a'+i)), s))
			}
			r := m.Run(context.Background())
			assert.Equal(t, tt.want, r.Status)
			assert.Len(t, r.Checks, len(tt.statuses))
		})
	}
}

func TestServeHTTP(t *testing.T) {
	m := NewManager("v1")
	m.Register(fixed("broken", StatusUnhealthy))

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "liveness does not run checks")

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var r Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, StatusUnhealthy, r.Checks["broken"].Status)
}

func TestBackendChecker(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/palestras", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()
	c := NewBackendChecker(srv.URL+"/api/v1/", srv.Client())

	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)
	status.Store(http.StatusNotFound)
	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)
	status.Store(http.StatusBadGateway)
	assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)

	srv.Close()
	res := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Contains(t, res.Message, "Não foi possível conectar ao servidor")
}

type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestStoreChecker(t *testing.T) {
	kv := store.NewMemoryStore()
	assert.Equal(t, StatusHealthy, NewStoreChecker(kv).Check(context.Background()).Status)
	_, err := kv.Get(context.Background(), probeKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "probe key removed")

	res := NewStoreChecker(failingStore{kv}).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "disk full", res.Error)
}

func TestHistoryChecker(t *testing.T) {
	assert.Equal(t, StatusDegraded, NewHistoryChecker(nil).Check(context.Background()).Status)

	cache, err := history.Open(filepath.Join(t.TempDir(), "h.db"), history.DefaultDBConfig())
	require.NoError(t, err)
	defer cache.Close()
	assert.Equal(t, StatusHealthy, NewHistoryChecker(cache).Check(context.Background()).Status)
}
