// SPDX-License-Identifier: MIT

package scanner

import (
	"context"

	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/qrcode"
)

// Camera reports and requests camera permission. Recognized codes are fed to
// Session.HandleScan by whoever owns the camera stream.
type Camera interface {
	PermissionGranted() bool
	RequestPermission(ctx context.Context) (bool, error)
}

// AlertKind classifies a modal shown to the participant.
type AlertKind int

const (
	AlertPermissionDenied AlertKind = iota + 1
	AlertSuccess
	AlertError
)

// Alert is a blocking dialog.
type Alert struct {
	Kind    AlertKind
	Title   string
	Message string
}

// Alerter presents dialogs and the processing indicator.
type Alerter interface {
	Alert(Alert)
	Busy(bool)
}

// Submitter registers attendance. *presenca.Client satisfies it.
type Submitter interface {
	Register(ctx context.Context, participantID, palestraID string) presenca.Outcome
	// BaseURL names the endpoint in network failure messages.
	BaseURL() string
}

// Decoder extracts the activity identifier from a scanned payload.
// *qrcode.Decoder satisfies it.
type Decoder interface {
	Decode(raw string) (qrcode.Identifier, bool)
}

// Permission dialog text.
const (
	PermissionDeniedTitle   = "Permissão negada"
	PermissionDeniedMessage = "É necessário permitir acesso à câmera para escanear QR codes"
)

func outcomeAlert(o presenca.Outcome) Alert {
	kind := AlertError
	if o.Registered() {
		kind = AlertSuccess
	}
	return Alert{Kind: kind, Title: o.Title(), Message: o.Message}
}
