// SPDX-License-Identifier: MIT

package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/connectapp/connect/internal/resilience"
	"github.com/connectapp/connect/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const palestrasJSON = `[
  {"id": 1, "titulo": "Abertura", "tipo": "Palestra", "local": "Auditório",
   "horarios": [{"date_start": "2025-05-10T09:00:00Z", "date_end": "2025-05-10T10:00:00Z"}],
   "palestrantes": [{"nome": "João Ávila"}]},
  {"id": "2", "titulo": "", "descricao": "Mão na massa", "tipo": "Oficina"},
  {"id": 3}
]`

type backend struct {
	srv    *httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	body   atomic.Value
	query  atomic.Value
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.status.Store(http.StatusOK)
	b.body.Store(palestrasJSON)
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		b.query.Store(r.URL.RawQuery)
		assert.Equal(t, "/palestras", r.URL.Path)
		w.WriteHeader(int(b.status.Load()))
		_, _ = w.Write([]byte(b.body.Load().(string)))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func newClient(t *testing.T, b *backend, opts Options) *Client {
	t.Helper()
	opts.HTTPClient = b.srv.Client()
	opts.Logger = testutil.Logger(t)
	c := New(b.srv.URL, opts)
	t.Cleanup(c.Close)
	return c
}

func TestActivitiesNormalizes(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{})

	got := c.Activities(context.Background(), "")
	want := []Activity{
		{
			ID: "1", Title: "Abertura", Type: "Palestra", Location: "Auditório",
			Slots:    []TimeSlot{{Start: "2025-05-10T09:00:00Z", End: "2025-05-10T10:00:00Z"}},
			Speakers: []Speaker{{Name: "João Ávila"}},
		},
		{
			ID: "2", Title: DefaultTitle, Description: "Mão na massa", Type: "Oficina",
			Location: DefaultLocation, Slots: []TimeSlot{}, Speakers: []Speaker{},
		},
		{
			ID: "3", Title: DefaultTitle, Type: DefaultType, Location: DefaultLocation,
			Slots: []TimeSlot{}, Speakers: []Speaker{},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("activities mismatch (-want +got):\n%s", diff)
	}

	start, ok := got[0].Start()
	require.True(t, ok)
	assert.Equal(t, 9, start.Hour())
	_, ok = got[1].Start()
	assert.False(t, ok)
}

func TestActivitiesTypeQuery(t *testing.T) {
	tests := []struct {
		tipo  string
		query string
	}{
		{"", ""},
		{AllTypes, ""},
		{"Oficina", "tipo=Oficina"},
		{"Mesa redonda", "tipo=Mesa+redonda"},
	}
	for _, tt := range tests {
		t.Run(tt.tipo, func(t *testing.T) {
			b := newBackend(t)
			c := newClient(t, b, Options{})
			c.Activities(context.Background(), tt.tipo)
			assert.Equal(t, tt.query, b.query.Load())
		})
	}
}

func TestActivitiesCachedPerType(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{CacheTTL: time.Hour})

	c.Activities(context.Background(), "")
	c.Activities(context.Background(), AllTypes)
	assert.EqualValues(t, 1, b.hits.Load(), "Todos shares the unfiltered entry")

	c.Activities(context.Background(), "Oficina")
	assert.EqualValues(t, 2, b.hits.Load())
}

func TestActivitiesCacheDisabled(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{CacheTTL: -1})

	c.Activities(context.Background(), "")
	c.Activities(context.Background(), "")
	assert.EqualValues(t, 2, b.hits.Load())
}

func TestActivitiesDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"malformed", http.StatusOK, `[{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			b.status.Store(int32(tt.status))
			b.body.Store(tt.body)
			c := newClient(t, b, Options{})

			got := c.Activities(context.Background(), "")
			assert.NotNil(t, got)
			assert.Empty(t, got)

			_, err := c.Fetch(context.Background(), "")
			require.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestActivitiesNonArrayIsEmpty(t *testing.T) {
	b := newBackend(t)
	b.body.Store(`{"message":"no data"}`)
	c := newClient(t, b, Options{})

	list, err := c.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestActivitiesUnreachable(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{CacheTTL: -1})
	b.srv.Close()

	_, err := c.Fetch(context.Background(), "")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "Não foi possível conectar ao servidor")
}

func TestServesStaleWhileBreakerOpen(t *testing.T) {
	b := newBackend(t)
	breaker := resilience.NewCircuitBreaker("schedule-test", 1, time.Hour)
	c := newClient(t, b, Options{CacheTTL: time.Nanosecond, Breaker: breaker})

	first, err := c.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, first, 3)

	b.status.Store(http.StatusBadGateway)
	time.Sleep(time.Millisecond)

	got, err := c.Fetch(context.Background(), "")
	require.NoError(t, err, "stale list served on failure")
	assert.Len(t, got, 3)
	assert.Equal(t, resilience.StateOpen, breaker.State())

	hits := b.hits.Load()
	got, err = c.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, hits, b.hits.Load(), "open breaker skips the backend")

	_, err = c.Fetch(context.Background(), "Oficina")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestActivityByID(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{})

	a := c.ActivityByID(context.Background(), "2")
	require.NotNil(t, a)
	assert.Equal(t, "Oficina", a.Type)

	assert.Nil(t, c.ActivityByID(context.Background(), "99"))
}

func TestFetchReturnsCopies(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, Options{CacheTTL: time.Hour})

	first := c.Activities(context.Background(), "")
	first[0].Title = "mutated"

	second := c.Activities(context.Background(), "")
	assert.Equal(t, "Abertura", second[0].Title)
}
