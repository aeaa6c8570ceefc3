// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the module.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	ScanIDKey       = "scan.id"
	ScanEncodingKey = "scan.encoding"

	AttendanceParticipantKey = "attendance.participant_id"
	AttendancePalestraKey    = "attendance.palestra_id"
	AttendanceOutcomeKey     = "attendance.outcome"

	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ScanAttributes describes one scan session.
func ScanAttributes(scanID, encoding string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(ScanIDKey, scanID)}
	if encoding != "" {
		attrs = append(attrs, attribute.String(ScanEncodingKey, encoding))
	}
	return attrs
}

// AttendanceAttributes describes one registration attempt.
func AttendanceAttributes(participantID, palestraID, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttendanceParticipantKey, participantID),
		attribute.String(AttendancePalestraKey, palestraID),
		attribute.String(AttendanceOutcomeKey, outcome),
	}
}

// ErrorAttributes tags a span with a classified error.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("error", true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
