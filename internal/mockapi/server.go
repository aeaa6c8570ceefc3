// SPDX-License-Identifier: MIT

package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/connectapp/connect/internal/auth"
	"github.com/connectapp/connect/internal/health"
	"github.com/connectapp/connect/internal/ratelimit"
	"github.com/connectapp/connect/internal/wire"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// APIPrefix is where the backend API is mounted.
const APIPrefix = "/api/v1"

// Config configures a Server.
type Config struct {
	Fixtures Fixtures
	// RateLimit is the per-IP request budget per minute; 0 disables it.
	RateLimit int
	// ParticipantRate limits attendance calls per participant; 0 disables it.
	ParticipantRate  float64
	ParticipantBurst int
	// ServiceName names server spans; empty disables tracing.
	ServiceName   string
	ExposeMetrics bool
	// RequireToken makes history reads demand the participant's session token.
	RequireToken bool
	Version      string
	Now          func() time.Time
}

// Server serves the mock API.
type Server struct {
	backend      *Backend
	participant  *ratelimit.Limiter
	requireToken bool
	validate     *validator.Validate
	handler      http.Handler
}

// New builds the router.
func New(cfg Config) *Server {
	s := &Server{
		backend:      NewBackend(cfg.Fixtures, cfg.Now),
		requireToken: cfg.RequireToken,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
	if cfg.ParticipantRate > 0 {
		s.participant = ratelimit.New("participant", ratelimit.Config{
			Rate:  rate.Limit(cfg.ParticipantRate),
			Burst: cfg.ParticipantBurst,
		})
	}

	r := chi.NewRouter()
	r.Use(recoverer, requestID, observe)

	probes := health.NewManager(cfg.Version)
	probes.Register(health.NewCheckFunc("fixtures", func(context.Context) health.CheckResult {
		if len(s.backend.Palestras("")) == 0 {
			return health.CheckResult{Status: health.StatusDegraded, Message: "no activities loaded"}
		}
		return health.CheckResult{Status: health.StatusHealthy}
	}))
	r.Method(http.MethodGet, "/healthz", probes)
	if cfg.ExposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(globalLimit(cfg.RateLimit))
		}
		r.Post("/presenca", s.handleRegister)
		r.With(s.limitParticipant(func(r *http.Request) string {
			return chi.URLParam(r, "participanteId")
		})).Get("/presenca/{participanteId}", s.handleList)
		r.Get("/palestras", s.handlePalestras)
		r.Get("/palestras/{id}", s.handlePalestra)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleSignUp)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Rota não encontrada")
	})

	var h http.Handler = r
	if cfg.ServiceName != "" {
		h = traced(h, cfg.ServiceName)
	}
	s.handler = h
	return s
}

// Backend exposes the state for assertions.
func (s *Server) Backend() *Backend { return s.backend }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) limitParticipant(key ratelimit.KeyFunc) func(http.Handler) http.Handler {
	if s.participant == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.participant.Middleware(key)
}

type presencaRequest struct {
	ParticipanteID wire.FlexString `json:"participanteId" validate:"required"`
	PalestraID     wire.FlexString `json:"palestraId" validate:"required"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req presencaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	req.ParticipanteID = wire.FlexString(strings.TrimSpace(req.ParticipanteID.String()))
	req.PalestraID = wire.FlexString(strings.TrimSpace(req.PalestraID.String()))
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, MsgMissingIDs)
		return
	}
	if s.participant != nil && !s.participant.Allow(req.ParticipanteID.String()) {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
		return
	}

	a, err := s.backend.Register(req.ParticipanteID.String(), req.PalestraID.String())
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, MsgAlreadyRegistered)
	case errors.Is(err, ErrPalestraNotFound):
		writeError(w, http.StatusNotFound, MsgPalestraNotFound)
	case errors.Is(err, ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, MsgParticipantNotFound)
	case err != nil:
		writeError(w, http.StatusInternalServerError, MsgInternal)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"message": MsgRegistered, "presenca": a})
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "participanteId")
	if s.requireToken && !auth.AuthorizeToken(auth.ExtractToken(r), sessionToken(id)) {
		writeError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, s.backend.Attendance(id))
}

func sessionToken(participantID string) string {
	return "mock-token-" + participantID
}

func (s *Server) handlePalestras(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Palestras(r.URL.Query().Get("tipo")))
}

func (s *Server) handlePalestra(w http.ResponseWriter, r *http.Request) {
	p, ok := s.backend.Palestra(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, MsgPalestraNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type credentials struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, MsgMissingCredentials)
		return
	}
	p, err := s.backend.Login(req.Email, req.Senha)
	if err != nil {
		// Older auth endpoints answer with the "erro" key.
		writeJSON(w, http.StatusUnauthorized, wire.ErrorBody{Erro: MsgInvalidCredentials})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": MsgLoggedIn,
		"usuario": userBody{ID: p.ID, Email: p.Email},
		"token":   sessionToken(p.ID),
	})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, MsgMissingCredentials)
		return
	}
	p, err := s.backend.SignUp(req.Email, req.Senha)
	if errors.Is(err, ErrEmailTaken) {
		writeError(w, http.StatusConflict, MsgEmailTaken)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": MsgSignedUp,
		"usuario": userBody{ID: p.ID, Email: p.Email},
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, wire.MaxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, wire.ErrorBody{Error: msg})
}
