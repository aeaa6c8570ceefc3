// SPDX-License-Identifier: MIT

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/platform/httpx"
	"github.com/connectapp/connect/internal/wire"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Form validation messages.
const (
	MsgFillAllFields    = "Por favor, preencha todos os campos"
	MsgPasswordsDiffer  = "As senhas não coincidem"
	MsgPasswordTooShort = "A senha deve ter pelo menos 6 caracteres"
	MsgInvalidEmail     = "Por favor, insira um email válido"
	MsgUnknownError     = "Erro desconhecido"
	MsgLoginFallback    = "Erro ao fazer login"
	MsgSignupFallback   = "Erro ao cadastrar"
)

// Credentials are sent to /auth/login and /auth/register.
type Credentials struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	Email        string `validate:"required,email"`
	Senha        string `validate:"required,min=6"`
	ConfirmSenha string `validate:"required,eqfield=Senha"`
}

// LoginResult is the decoded /auth/login response.
type LoginResult struct {
	User    User
	Message string
	Token   string
}

type loginResponse struct {
	Usuario *struct {
		ID    wire.FlexString `json:"id"`
		Email string          `json:"email"`
	} `json:"usuario,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Erro    string `json:"erro,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Client calls the backend's authentication endpoints.
type Client struct {
	base     string
	http     *http.Client
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewClient creates an auth client rooted at base. A nil hc selects a traced
// client with the given timeout.
func NewClient(base string, timeout time.Duration, hc *http.Client) *Client {
	if hc == nil {
		hc = httpx.NewTracedClient(timeout, "auth")
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     hc,
		validate: validator.New(),
		logger:   xglog.WithComponent("auth"),
	}
}

// Login authenticates c and returns the participant on success.
func (c *Client) Login(ctx context.Context, cred Credentials) (LoginResult, error) {
	const op = "login"
	if err := c.validate.Struct(cred); err != nil {
		return LoginResult{}, &Error{Sentinel: ErrInvalidInput, Operation: op, Message: formMessage(err), Err: err}
	}

	resp, err := c.post(ctx, op, "/auth/login", cred, MsgLoginFallback)
	if err != nil {
		return LoginResult{}, err
	}
	if resp.Usuario == nil || resp.Usuario.ID == "" {
		msg := resp.Erro
		if msg == "" {
			msg = MsgUnknownError
		}
		return LoginResult{}, &Error{Sentinel: ErrRejected, Operation: op, Message: msg}
	}

	c.logger.Info().
		Str(xglog.FieldEvent, "auth.login.ok").
		Str(xglog.FieldParticipantID, resp.Usuario.ID.String()).
		Msg("participant logged in")

	return LoginResult{
		User:    User{ID: resp.Usuario.ID.String(), Email: resp.Usuario.Email},
		Message: resp.Message,
		Token:   resp.Token,
	}, nil
}

// Register creates an account. It returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	const op = "register"
	if err := c.validate.Struct(reg); err != nil {
		return "", &Error{Sentinel: ErrInvalidInput, Operation: op, Message: formMessage(err), Err: err}
	}

	resp, err := c.post(ctx, op, "/auth/register", Credentials{Email: reg.Email, Senha: reg.Senha}, MsgSignupFallback)
	if err != nil {
		return "", err
	}
	if resp.Message == "" {
		msg := resp.Erro
		if msg == "" {
			msg = MsgUnknownError
		}
		return "", &Error{Sentinel: ErrRejected, Operation: op, Message: msg}
	}
	return resp.Message, nil
}

func (c *Client) post(ctx context.Context, op, path string, body any, fallback string) (*loginResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Sentinel: ErrRequest, Operation: op, Message: wire.MsgRequestSetup, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Sentinel: ErrRequest, Operation: op, Message: wire.MsgRequestSetup, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "auth."+op+".unreachable").
			Str(xglog.FieldBaseURL, c.base).
			Msg("auth endpoint unreachable")
		return nil, &Error{Sentinel: ErrUnreachable, Operation: op, Message: wire.UnreachableMessage(c.base), Err: err}
	}
	defer res.Body.Close()

	raw, err := wire.ReadBody(res.Body)
	if err != nil {
		return nil, &Error{Sentinel: ErrUnreachable, Operation: op, Message: wire.UnreachableMessage(c.base), Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &Error{Sentinel: ErrRejected, Operation: op, Status: res.StatusCode, Message: wire.ServerMessage(raw, fallback)}
	}

	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Sentinel: ErrRejected, Operation: op, Status: res.StatusCode, Message: fallback, Err: err}
	}
	return &out, nil
}

// formMessage maps validator failures onto the form's messages, most
// fundamental problem first.
func formMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MsgFillAllFields
	}
	priority := []struct {
		tag string
		msg string
	}{
		{"required", MsgFillAllFields},
		{"eqfield", MsgPasswordsDiffer},
		{"min", MsgPasswordTooShort},
		{"email", MsgInvalidEmail},
	}
	for _, p := range priority {
		for _, fe := range verrs {
			if fe.Tag() == p.tag {
				return p.msg
			}
		}
	}
	return MsgFillAllFields
}
