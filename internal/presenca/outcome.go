// SPDX-License-Identifier: MIT

package presenca

import (
	"encoding/json"
	"errors"
)

// Kind classifies the result of an attendance submission.
type Kind int

const (
	KindRegistered Kind = iota + 1
	KindValidation
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindRegistered:
		return "registered"
	case KindValidation:
		return "validation_error"
	case KindNetwork:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Fallback messages used when the server supplies none.
const (
	MsgRegistered       = "Presença registrada com sucesso!"
	MsgRegisterFallback = "Erro ao registrar presença"
	MsgUnauthenticated  = "É necessário estar logado para registrar presença"
	MsgInvalidQRCode    = "QR code inválido"
)

// Outcome is the terminal result of one registration attempt.
type Outcome struct {
	Kind    Kind
	Message string
	// Record is the server's confirmation, passed through unmodified.
	Record json.RawMessage
	// Err is non-nil for every kind except KindRegistered and is always a *Error.
	Err error
}

// Registered reports whether the server accepted the attendance.
func (o Outcome) Registered() bool { return o.Kind == KindRegistered }

// Title is the alert heading shown for the outcome.
func (o Outcome) Title() string {
	if o.Registered() {
		return "Sucesso"
	}
	return "Erro"
}

// Is reports whether the outcome's error matches target.
func (o Outcome) Is(target error) bool {
	return o.Err != nil && errors.Is(o.Err, target)
}

func registered(message string, record json.RawMessage) Outcome {
	if message == "" {
		message = MsgRegistered
	}
	return Outcome{Kind: KindRegistered, Message: message, Record: record}
}

// ValidationOutcome builds a validation failure carrying a user-facing message.
func ValidationOutcome(op string, sentinel error, status int, message string) Outcome {
	return Outcome{
		Kind:    KindValidation,
		Message: message,
		Err:     &Error{Sentinel: sentinel, Operation: op, Status: status, Message: message},
	}
}

// NetworkOutcome builds a transport failure.
func NetworkOutcome(op string, sentinel error, message string, cause error) Outcome {
	return Outcome{
		Kind:    KindNetwork,
		Message: message,
		Err:     &Error{Sentinel: sentinel, Operation: op, Message: message, Err: cause},
	}
}
