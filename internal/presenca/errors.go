// SPDX-License-Identifier: MIT

package presenca

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnauthenticated = errors.New("presenca: no authenticated participant")
	ErrDecode          = errors.New("presenca: unrecognized qr payload")
	ErrValidation      = errors.New("presenca: rejected by server")
	ErrNetwork         = errors.New("presenca: server unreachable")
	ErrTimeout         = fmt.Errorf("%w: request timed out", ErrNetwork)
	ErrRequest         = errors.New("presenca: request could not be built")
	ErrBadResponse     = errors.New("presenca: invalid response format")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Message   string // user-facing text
	Err       error  // nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("presenca: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}
