// SPDX-License-Identifier: MIT

package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("auth: invalid input")
	ErrRejected     = errors.New("auth: rejected by server")
	ErrUnreachable  = errors.New("auth: server unreachable")
	ErrRequest      = errors.New("auth: request could not be built")
)

// Error carries the user-facing message alongside the classified cause.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("auth: %s: %v", e.Operation, e.Sentinel)
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

func (e *Error) Unwrap() error { return e.Sentinel }

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
