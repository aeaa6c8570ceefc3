// SPDX-License-Identifier: MIT

package mockapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/connectapp/connect/internal/auth"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/schedule"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Fixtures.Palestras == nil {
		cfg.Fixtures = DefaultFixtures()
	}
	s := New(cfg)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func TestRegisterPresenca(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	url := srv.URL + APIPrefix + "/presenca"

	status, body := post(t, url, `{"participanteId":1,"palestraId":"42"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, MsgRegistered)

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"duplicate", `{"participanteId":"1","palestraId":42}`, http.StatusConflict, MsgAlreadyRegistered},
		{"unknown palestra", `{"participanteId":"1","palestraId":"not a real payload"}`, http.StatusNotFound, MsgPalestraNotFound},
		{"unknown participant", `{"participanteId":"99","palestraId":"43"}`, http.StatusNotFound, MsgParticipantNotFound},
		{"missing ids", `{"participanteId":" "}`, http.StatusBadRequest, MsgMissingIDs},
		{"malformed", `{`, http.StatusBadRequest, MsgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, url, tt.body)
			assert.Equal(t, tt.status, status)
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, body)
		})
	}
}

func TestPresencaClientAgainstMock(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	nop := zerolog.Nop()
	client := presenca.New(srv.URL+APIPrefix, presenca.Options{HTTPClient: srv.Client(), Logger: &nop})
	ctx := context.Background()

	out := client.Register(ctx, "1", "42")
	require.True(t, out.Registered(), out.Message)
	assert.Equal(t, MsgRegistered, out.Message)

	out = client.Register(ctx, "1", "42")
	assert.Equal(t, presenca.KindValidation, out.Kind)
	assert.Equal(t, MsgAlreadyRegistered, out.Message)
	var perr *presenca.Error
	require.ErrorAs(t, out.Err, &perr)
	assert.Equal(t, http.StatusConflict, perr.Status)

	records, err := client.List(ctx, "1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "42", records[0].PalestraID.String())
	assert.Contains(t, string(records[0].Palestra), "Abertura")

	records, err = client.List(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRequiresToken(t *testing.T) {
	_, srv := newTestServer(t, Config{RequireToken: true})
	nop := zerolog.Nop()
	ctx := context.Background()

	anon := presenca.New(srv.URL+APIPrefix, presenca.Options{HTTPClient: srv.Client(), Logger: &nop})
	_, err := anon.List(ctx, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, presenca.ErrValidation)
	var perr *presenca.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, MsgUnauthorized, perr.Message)

	token := "mock-token-1"
	hc := auth.WithBearer(srv.Client(), func(context.Context) string { return token })
	authed := presenca.New(srv.URL+APIPrefix, presenca.Options{HTTPClient: hc, Logger: &nop})
	_, err = authed.List(ctx, "1")
	require.NoError(t, err)

	_, err = authed.List(ctx, "2")
	assert.ErrorIs(t, err, presenca.ErrValidation)
}

func TestAuthClientAgainstMock(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	client := auth.NewClient(srv.URL+APIPrefix, time.Second, srv.Client())
	ctx := context.Background()

	res, err := client.Login(ctx, auth.Credentials{Email: "participante@connect.app", Senha: "connect123"})
	require.NoError(t, err)
	assert.Equal(t, "1", res.User.ID)
	assert.Equal(t, "mock-token-1", res.Token)

	_, err = client.Login(ctx, auth.Credentials{Email: "participante@connect.app", Senha: "errada"})
	require.ErrorIs(t, err, auth.ErrRejected)
	assert.Equal(t, MsgInvalidCredentials, auth.UserMessage(err))

	msg, err := client.Register(ctx, auth.Registration{Email: "novo@connect.app", Senha: "segredo", ConfirmSenha: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, MsgSignedUp, msg)

	_, err = client.Register(ctx, auth.Registration{Email: "novo@connect.app", Senha: "segredo", ConfirmSenha: "segredo"})
	require.ErrorIs(t, err, auth.ErrRejected)
	assert.Equal(t, MsgEmailTaken, auth.UserMessage(err))

	res, err = client.Login(ctx, auth.Credentials{Email: "NOVO@connect.app", Senha: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, "2", res.User.ID)
}

func TestScheduleClientAgainstMock(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	nop := zerolog.Nop()
	client := schedule.New(srv.URL+APIPrefix, schedule.Options{HTTPClient: srv.Client(), Logger: &nop})
	t.Cleanup(client.Close)
	ctx := context.Background()

	all := client.Activities(ctx, schedule.AllTypes)
	assert.Len(t, all, 3)

	oficinas := client.Activities(ctx, "oficina")
	require.Len(t, oficinas, 1)
	assert.Equal(t, "43", oficinas[0].ID)

	a := client.ActivityByID(ctx, "44")
	require.NotNil(t, a)
	assert.Len(t, a.Speakers, 2)

	assert.Equal(t, []string{schedule.AllTypes, "Mesa Redonda", "Oficina", "Palestra"}, schedule.Types(all))
}

func TestParticipantRateLimit(t *testing.T) {
	_, srv := newTestServer(t, Config{ParticipantRate: 0.001, ParticipantBurst: 1})
	url := srv.URL + APIPrefix + "/presenca"

	status, _ := post(t, url, `{"participanteId":"1","palestraId":"42"}`)
	assert.Equal(t, http.StatusCreated, status)

	status, body := post(t, url, `{"participanteId":"1","palestraId":"43"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "Muitas requisições")

	res, err := http.Get(srv.URL + APIPrefix + "/presenca/1")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode, "listing shares the participant bucket")
}

func TestGlobalRateLimit(t *testing.T) {
	_, srv := newTestServer(t, Config{RateLimit: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		res, err := http.Get(srv.URL + APIPrefix + "/palestras")
		require.NoError(t, err)
		res.Body.Close()
		codes = append(codes, res.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode, "probes are not limited")
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	_, srv := newTestServer(t, Config{ExposeMetrics: true, ServiceName: "connect-mock"})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "req-123")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "req-123", res.Header.Get(HeaderRequestID))

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	b, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(b), "connect_http_requests_total")

	res, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(HeaderRequestID))
}

func TestRecovererReturnsJSON(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"`+MsgInternal+`"}`, rec.Body.String())
}

func TestBackendAttendanceNewestFirst(t *testing.T) {
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	b := NewBackend(DefaultFixtures(), func() time.Time { return now })

	_, err := b.Register("1", "42")
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = b.Register("1", "43")
	require.NoError(t, err)

	got := b.Attendance("1")
	require.Len(t, got, 2)
	assert.Equal(t, "43", got[0].PalestraID)
	assert.Equal(t, "2025-05-10T10:00:00Z", got[0].RegisteredAt)
	require.NotNil(t, got[1].Palestra)
	assert.Equal(t, "Palestra", got[1].Palestra.Type)
}

func TestHealthzVerbose(t *testing.T) {
	_, srv := newTestServer(t, Config{Version: "v9"})

	res, err := srv.Client().Get(srv.URL + "/healthz?verbose=true")
	require.NoError(t, err)
	b, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(b), `"fixtures":{"status":"healthy"}`)
	assert.Contains(t, string(b), `"version":"v9"`)
}
