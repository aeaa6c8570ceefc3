// SPDX-License-Identifier: MIT

package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	xglog "github.com/connectapp/connect/internal/log"
	"github.com/connectapp/connect/internal/metrics"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/telemetry"
	"github.com/connectapp/connect/internal/wire"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Result is a session's terminal outcome.
type Result struct {
	Outcome presenca.Outcome
	// Cancelled is set when the participant closed the session before an
	// outcome was applied. Outcome is zero in that case.
	Cancelled bool
}

// Session is one presentation of the scan surface.
type Session struct {
	id     string
	ctrl   *Controller
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// ui orders Busy calls with the transitions that cause them.
	ui sync.Mutex

	mu        sync.Mutex
	state     State
	locked    bool
	startedAt time.Time
	result    Result
	discarded int
	done      chan struct{}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Locked reports whether a payload has been accepted.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Discarded returns how many scan events were suppressed.
func (s *Session) Discarded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

// HandleScan feeds one recognized code into the session. Only the first
// payload seen while scanning is processed; it returns false for every event
// that was discarded.
func (s *Session) HandleScan(raw string) bool {
	s.ui.Lock()
	defer s.ui.Unlock()

	s.mu.Lock()
	if s.state != StateScanning || s.locked {
		s.discarded++
		state := s.state
		s.mu.Unlock()
		metrics.IncScanPayloadDiscarded()
		s.logger.Debug().
			Str(xglog.FieldEvent, "scan.payload_discarded").
			Str(xglog.FieldNewState, state.String()).
			Msg("scan event ignored")
		return false
	}
	s.locked = true
	s.startedAt = time.Now()
	s.transitionLocked(StateProcessing)
	s.ctrl.wg.Add(1)
	s.mu.Unlock()

	s.ctrl.alerter.Busy(true)
	go s.process(raw)
	return true
}

// Cancel closes the session from Scanning or Processing. An outcome that
// resolves afterwards is dropped. It returns false if the session was not
// open.
func (s *Session) Cancel() bool {
	s.ui.Lock()
	s.mu.Lock()
	prev := s.state
	if prev != StateScanning && prev != StateProcessing {
		s.mu.Unlock()
		s.ui.Unlock()
		return false
	}
	s.result = Result{Cancelled: true}
	s.transitionLocked(StateClosed)
	s.ctrl.clearActive(s)
	s.mu.Unlock()

	if prev == StateProcessing {
		s.ctrl.alerter.Busy(false)
	}
	s.ui.Unlock()

	s.cancel()
	metrics.RecordScanSessionEnd()
	metrics.RecordScanOutcome("cancelled", 0)
	s.logger.Info().
		Str(xglog.FieldEvent, "scan.cancelled").
		Str(xglog.FieldOldState, prev.String()).
		Msg("scan session cancelled")
	close(s.done)
	return true
}

// Done is closed once the session reaches its terminal result, after any
// alert and callback have run.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session has a result or ctx ends.
func (s *Session) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the terminal result without blocking.
func (s *Session) Result() (Result, bool) {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.result, true
	default:
		return Result{}, false
	}
}

func (s *Session) process(raw string) {
	defer s.ctrl.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.ctrl.processTimeout)
	defer cancel()

	ctx, span := telemetry.Tracer("scanner").Start(ctx, "scan.process",
		trace.WithAttributes(telemetry.ScanAttributes(s.id, "")...))
	defer span.End()

	resolved := make(chan presenca.Outcome, 1)
	go func() { resolved <- s.resolve(ctx, raw) }()

	var outcome presenca.Outcome
	select {
	case outcome = <-resolved:
	case <-ctx.Done():
		sentinel := presenca.ErrNetwork
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			sentinel = presenca.ErrTimeout
		}
		msg := wire.UnreachableMessage(s.ctrl.submitter.BaseURL())
		outcome = presenca.NetworkOutcome("scan", sentinel, msg, ctx.Err())
	}
	if !outcome.Registered() {
		span.SetAttributes(telemetry.ErrorAttributes(outcomeLabel(outcome))...)
	}
	s.finish(outcome)
}

// resolve decodes raw and submits it. It never panics.
func (s *Session) resolve(ctx context.Context, raw string) (outcome presenca.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str(xglog.FieldEvent, "scan.process.panic").
				Interface("panic", r).
				Msg("scan processing panicked")
			outcome = presenca.NetworkOutcome("scan", presenca.ErrNetwork, presenca.MsgRegisterFallback,
				fmt.Errorf("scanner: processing panicked: %v", r))
		}
	}()

	id, ok := s.ctrl.decoder.Decode(raw)
	span := trace.SpanFromContext(ctx)
	if !ok {
		s.logger.Info().Str(xglog.FieldEvent, "scan.decode_failed").Msg("payload carries no activity identifier")
		return presenca.ValidationOutcome("decode", presenca.ErrDecode, 0, presenca.MsgInvalidQRCode)
	}

	// Identity is read once; later logins or logouts do not affect this submission.
	participant, _ := s.ctrl.identity.CurrentParticipantID()
	outcome = s.ctrl.submitter.Register(ctx, participant, id.String())
	span.SetAttributes(telemetry.AttendanceAttributes(participant, id.String(), outcome.Kind.String())...)
	return outcome
}

func (s *Session) finish(o presenca.Outcome) {
	s.mu.Lock()
	live := s.state == StateProcessing && s.ctrl.isActive(s)
	elapsed := time.Since(s.startedAt)
	s.mu.Unlock()
	if !live {
		s.dropOutcome(o)
		return
	}

	ev := s.logger.Info()
	if !o.Registered() {
		ev = s.logger.Warn().Err(o.Err)
	}
	ev.Str(xglog.FieldEvent, "scan.completed").
		Str(xglog.FieldOutcome, o.Kind.String()).
		Dur("elapsed", elapsed).
		Msg("scan session completed")

	// The surface stays open, in Processing, until the alert is dismissed.
	s.ctrl.alerter.Alert(outcomeAlert(o))

	s.ui.Lock()
	s.mu.Lock()
	if s.state != StateProcessing || !s.ctrl.isActive(s) {
		// Cancel ran while the alert was up and already closed the session.
		s.mu.Unlock()
		s.ui.Unlock()
		return
	}
	s.result = Result{Outcome: o}
	s.transitionLocked(StateClosed)
	s.ctrl.clearActive(s)
	s.mu.Unlock()

	s.ctrl.alerter.Busy(false)
	s.ui.Unlock()

	s.cancel()
	metrics.RecordScanSessionEnd()
	metrics.RecordScanOutcome(outcomeLabel(o), elapsed)

	if o.Registered() && s.ctrl.onRegistered != nil {
		s.ctrl.onRegistered(o)
	}
	close(s.done)
}

func (s *Session) dropOutcome(o presenca.Outcome) {
	metrics.IncScanOutcomeDropped()
	s.logger.Info().
		Str(xglog.FieldEvent, "scan.outcome_dropped").
		Str(xglog.FieldOutcome, o.Kind.String()).
		Msg("outcome arrived after session closed")
}

// transitionLocked moves to next. Caller must hold s.mu.
func (s *Session) transitionLocked(next State) {
	prev := s.state
	s.state = next
	s.logger.Debug().
		Str(xglog.FieldEvent, "scan.state").
		Str(xglog.FieldOldState, prev.String()).
		Str(xglog.FieldNewState, next.String()).
		Msg("scan state changed")
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitionLocked(next)
}

func outcomeLabel(o presenca.Outcome) string {
	if errors.Is(o.Err, presenca.ErrDecode) {
		return "decode_failure"
	}
	return o.Kind.String()
}
