// SPDX-License-Identifier: MIT

package scanner

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/connectapp/connect/internal/presenca"
)

type fakeCamera struct {
	granted  bool
	grant    bool
	err      error
	requests atomic.Int32
}

func (c *fakeCamera) PermissionGranted() bool { return c.granted }

func (c *fakeCamera) RequestPermission(context.Context) (bool, error) {
	c.requests.Add(1)
	return c.grant, c.err
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []Alert
	busy   []bool
	// onAlert, when set, runs inside Alert after the alert is recorded.
	onAlert func(Alert)
}

func (a *recordingAlerter) Alert(al Alert) {
	a.mu.Lock()
	a.alerts = append(a.alerts, al)
	hook := a.onAlert
	a.mu.Unlock()
	if hook != nil {
		hook(al)
	}
}

func (a *recordingAlerter) Busy(b bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = append(a.busy, b)
}

func (a *recordingAlerter) Alerts() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert(nil), a.alerts...)
}

func (a *recordingAlerter) BusyCalls() []bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]bool(nil), a.busy...)
}

type staticIdentity struct {
	id    string
	reads atomic.Int32
}

func (s *staticIdentity) CurrentParticipantID() (string, bool) {
	s.reads.Add(1)
	return s.id, s.id != ""
}

type call struct {
	participant string
	palestra    string
}

const fakeBaseURL = "http://fake.test/api/v1"

// fakeSubmitter returns outcome, optionally blocking on gate first.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []call
	outcome presenca.Outcome
	// gate, when non-nil, is waited on before returning.
	gate chan struct{}
	// honorCtx returns early when ctx ends while waiting on gate.
	honorCtx bool
	panicMsg string
}

func (f *fakeSubmitter) Register(ctx context.Context, participant, palestra string) presenca.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, call{participant, palestra})
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.gate != nil {
		if f.honorCtx {
			select {
			case <-f.gate:
			case <-ctx.Done():
				return presenca.NetworkOutcome("register", presenca.ErrNetwork, "cancelled", ctx.Err())
			}
		} else {
			<-f.gate
		}
	}
	return f.outcome
}

func (f *fakeSubmitter) BaseURL() string { return fakeBaseURL }

func (f *fakeSubmitter) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func registeredOutcome(t interface{ Helper() }) presenca.Outcome {
	t.Helper()
	return presenca.Outcome{
		Kind:    presenca.KindRegistered,
		Message: "ok",
		Record:  json.RawMessage(`{"id":1}`),
	}
}
