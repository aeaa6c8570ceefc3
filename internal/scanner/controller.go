// SPDX-License-Identifier: MIT

// Package scanner drives one QR scan from camera permission to the attendance
// outcome. A Session accepts only the first recognized code; everything the
// camera reports afterwards is discarded until a new session is opened.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/connectapp/connect/internal/auth"
	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/metrics"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/qrcode"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultProcessTimeout caps a decode+submit cycle. It sits above the
// submission client's own timeout so the client normally reports first.
const DefaultProcessTimeout = presenca.DefaultTimeout + 5*time.Second

var (
	ErrPermissionDenied = errors.New("scanner: camera permission denied")
	ErrClosed           = errors.New("scanner: controller closed")
	ErrInvalidConfig    = errors.New("scanner: invalid config")
)

// Config wires a Controller to its collaborators.
type Config struct {
	Camera    Camera
	Alerter   Alerter
	Identity  auth.IdentitySource
	Submitter Submitter

	// Decoder defaults to qrcode's default decoder.
	Decoder Decoder
	// OnRegistered runs after the success alert of a registered outcome.
	OnRegistered   func(presenca.Outcome)
	ProcessTimeout time.Duration
	Logger         *zerolog.Logger
}

// Controller opens scan sessions and tracks the active one.
type Controller struct {
	camera         Camera
	alerter        Alerter
	identity       auth.IdentitySource
	submitter      Submitter
	decoder        Decoder
	onRegistered   func(presenca.Outcome)
	processTimeout time.Duration
	logger         zerolog.Logger

	mu     sync.Mutex
	active *Session
	closed bool
	wg     sync.WaitGroup
}

// New validates cfg and returns a Controller.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Camera == nil:
		return nil, fmt.Errorf("%w: camera is required", ErrInvalidConfig)
	case cfg.Alerter == nil:
		return nil, fmt.Errorf("%w: alerter is required", ErrInvalidConfig)
	case cfg.Identity == nil:
		return nil, fmt.Errorf("%w: identity source is required", ErrInvalidConfig)
	case cfg.Submitter == nil:
		return nil, fmt.Errorf("%w: submitter is required", ErrInvalidConfig)
	}

	decoder := cfg.Decoder
	if decoder == nil {
		d, err := qrcode.NewDecoder(qrcode.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		decoder = d
	}
	timeout := cfg.ProcessTimeout
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	logger := xglog.WithComponent("scanner")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Controller{
		camera:         cfg.Camera,
		alerter:        cfg.Alerter,
		identity:       cfg.Identity,
		submitter:      cfg.Submitter,
		decoder:        decoder,
		onRegistered:   cfg.OnRegistered,
		processTimeout: timeout,
		logger:         logger,
	}, nil
}

// Open starts a new scan session. Camera permission is requested when not
// already granted; a denial shows the permission alert and returns
// ErrPermissionDenied. Any previously active session is cancelled.
//
// The session's submission is bound to ctx.
func (c *Controller) Open(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.mu.Unlock()

	s := c.newSession()
	s.setState(StateCheckingPermission)

	granted, err := c.checkPermission(ctx)
	if !granted {
		s.setState(StateIdle)
		result := "permission_denied"
		if err != nil {
			result = "permission_error"
		}
		metrics.RecordScanSessionStart(result)
		s.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "scan.permission_denied").
			Msg("camera permission denied")
		c.alerter.Alert(Alert{
			Kind:    AlertPermissionDenied,
			Title:   PermissionDeniedTitle,
			Message: PermissionDeniedMessage,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, ErrPermissionDenied
	}

	s.ctx, s.cancel = context.WithCancel(xglog.ContextWithScanID(ctx, s.id))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		s.cancel()
		return nil, ErrClosed
	}
	prev := c.active
	c.active = s
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	s.setState(StateScanning)
	metrics.RecordScanSessionStart("scanning")
	s.logger.Info().Str(xglog.FieldEvent, "scan.opened").Msg("scan session opened")
	return s, nil
}

func (c *Controller) checkPermission(ctx context.Context) (bool, error) {
	if c.camera.PermissionGranted() {
		return true, nil
	}
	return c.camera.RequestPermission(ctx)
}

// Active returns the current session, or nil.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close cancels the active session and waits for in-flight processing to
// return. Open fails with ErrClosed afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	active := c.active
	c.mu.Unlock()

	if active != nil {
		active.Cancel()
	}
	c.wg.Wait()
}

func (c *Controller) isActive(s *Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active == s
}

func (c *Controller) clearActive(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}

func (c *Controller) newSession() *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		ctrl:   c,
		logger: c.logger.With().Str(xglog.FieldScanID, id).Logger(),
		state:  StateIdle,
		done:   make(chan struct{}),
	}
}
