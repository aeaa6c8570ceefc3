// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldScanID        = "scan_id"
	FieldRequestID     = "request_id"
	FieldParticipantID = "participant_id"
	FieldPalestraID    = "palestra_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOutcome   = "outcome"
	FieldEncoding  = "encoding"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
	FieldStatus  = "status"
)
