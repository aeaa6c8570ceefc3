// SPDX-License-Identifier: MIT

// Package presenca talks to the backend's attendance endpoints.
package presenca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/platform/httpx"
	"github.com/connectapp/connect/internal/wire"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds the single registration attempt.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client // optional; defaults to a traced httpx client
	Logger     *zerolog.Logger
}

// Client submits attendance and lists a participant's attendance history.
type Client struct {
	base    string
	timeout time.Duration
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a client for the API rooted at base (e.g. http://host:5000/api/v1).
func New(base string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = httpx.NewTracedClient(timeout, "presenca")
	}
	logger := xglog.WithComponent("presenca")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		http:    hc,
		logger:  logger,
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.base }

type registerRequest struct {
	ParticipanteID string `json:"participanteId"`
	PalestraID     string `json:"palestraId"`
}

type registerResponse struct {
	Message  string          `json:"message,omitempty"`
	Presenca json.RawMessage `json:"presenca,omitempty"`
	Error    string          `json:"error,omitempty"`
	Erro     string          `json:"erro,omitempty"`
}

// Register submits one attendance for participantID at palestraID. It makes at
// most one request and never retries; every failure is folded into the Outcome.
func (c *Client) Register(ctx context.Context, participantID, palestraID string) Outcome {
	logger := xglog.WithContext(ctx, c.logger).With().
		Str(xglog.FieldParticipantID, participantID).
		Str(xglog.FieldPalestraID, palestraID).
		Logger()

	start := time.Now()
	out := c.register(ctx, participantID, palestraID)
	observeRegister(out.Kind, time.Since(start))

	if out.Registered() {
		logger.Info().
			Str(xglog.FieldEvent, "presenca.register.ok").
			Str(xglog.FieldOutcome, out.Kind.String()).
			Msg("attendance registered")
	} else {
		logger.Warn().
			Err(out.Err).
			Str(xglog.FieldEvent, "presenca.register.failed").
			Str(xglog.FieldOutcome, out.Kind.String()).
			Msg("attendance registration failed")
	}
	return out
}

func (c *Client) register(ctx context.Context, participantID, palestraID string) Outcome {
	const op = "register"

	if strings.TrimSpace(participantID) == "" {
		return ValidationOutcome(op, ErrUnauthenticated, 0, MsgUnauthenticated)
	}
	if strings.TrimSpace(palestraID) == "" {
		return ValidationOutcome(op, ErrDecode, 0, MsgInvalidQRCode)
	}

	payload, err := json.Marshal(registerRequest{ParticipanteID: participantID, PalestraID: palestraID})
	if err != nil {
		return NetworkOutcome(op, ErrRequest, wire.MsgRequestSetup, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/presenca", bytes.NewReader(payload))
	if err != nil {
		return NetworkOutcome(op, ErrRequest, wire.MsgRequestSetup, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return NetworkOutcome(op, transportSentinel(err), wire.UnreachableMessage(c.base), err)
	}
	defer res.Body.Close()

	body, readErr := wire.ReadBody(res.Body)
	ok := res.StatusCode >= 200 && res.StatusCode < 300

	if !ok {
		return ValidationOutcome(op, ErrValidation, res.StatusCode, wire.ServerMessage(body, MsgRegisterFallback))
	}
	if readErr != nil {
		// Accepted status but the confirmation never fully arrived.
		return NetworkOutcome(op, transportSentinel(readErr), wire.UnreachableMessage(c.base), readErr)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return registered("", nil)
	}
	var parsed registerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "presenca.register.unparsed_body").
			Int(xglog.FieldStatus, res.StatusCode).
			Msg("accepted response body is not JSON")
		return registered("", nil)
	}
	if msg := (wire.ErrorBody{Error: parsed.Error, Erro: parsed.Erro}).Message(); msg != "" {
		return ValidationOutcome(op, ErrValidation, res.StatusCode, msg)
	}

	record := parsed.Presenca
	if bytes.Equal(bytes.TrimSpace(record), []byte("null")) {
		record = nil
	}
	return registered(strings.TrimSpace(parsed.Message), record)
}

// Record is one attendance entry as returned by GET /presenca/{participanteId}.
type Record struct {
	ID             wire.FlexString `json:"id"`
	ParticipanteID wire.FlexString `json:"participanteId"`
	PalestraID     wire.FlexString `json:"palestraId"`
	RegisteredAt   string          `json:"dataHoraPresenca,omitempty"`
	// Palestra is the nested activity payload, left for the caller to decode.
	Palestra json.RawMessage `json:"palestra,omitempty"`
	// Raw is the complete element as sent by the server.
	Raw json.RawMessage `json:"-"`
}

// List returns the attendance records of participantID.
func (c *Client) List(ctx context.Context, participantID string) ([]Record, error) {
	const op = "list"

	if strings.TrimSpace(participantID) == "" {
		return nil, &Error{Sentinel: ErrUnauthenticated, Operation: op, Message: MsgUnauthenticated}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base + "/presenca/" + url.PathEscape(participantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Sentinel: ErrRequest, Operation: op, Message: wire.MsgRequestSetup, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Sentinel: transportSentinel(err), Operation: op, Message: wire.UnreachableMessage(c.base), Err: err}
	}
	defer res.Body.Close()

	body, err := wire.ReadBody(res.Body)
	if err != nil {
		return nil, &Error{Sentinel: transportSentinel(err), Operation: op, Message: wire.UnreachableMessage(c.base), Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &Error{
			Sentinel:  ErrValidation,
			Operation: op,
			Status:    res.StatusCode,
			Message:   wire.ServerMessage(body, "Erro ao listar presenças"),
		}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: op, Status: res.StatusCode, Err: err}
	}
	out := make([]Record, 0, len(elems))
	for _, e := range elems {
		var r Record
		if err := json.Unmarshal(e, &r); err != nil {
			return nil, &Error{Sentinel: ErrBadResponse, Operation: op, Status: res.StatusCode, Err: err}
		}
		r.Raw = e
		out = append(out, r)
	}
	return out, nil
}

func transportSentinel(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}
