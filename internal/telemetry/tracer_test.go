// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "connect", ExporterType: "grpc"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)
	require.NoError(t, provider.Shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "invalid"})
	require.EqualError(t, err, "unsupported exporter type: invalid (supported: grpc, http)")
}

func TestNewProvider_HTTPExporter(t *testing.T) {
	// The exporter connects lazily, so no collector is needed here.
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "connect",
		ExporterType: "http",
		Endpoint:     "127.0.0.1:4318",
		SamplingRate: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, provider.tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = provider.Shutdown(ctx)
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.5, sdktrace.AlwaysSample().Description()},
		{1, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.TraceIDRatioBased(0.25).Description()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, samplerFor(tt.rate).Description())
	}
}

func TestAttributesOnRecordedSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "scan.process")
	span.SetAttributes(ScanAttributes("s-1", "app_uri")...)
	span.SetAttributes(AttendanceAttributes("u1", "42", "registered")...)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "s-1", got[ScanIDKey])
	assert.Equal(t, "app_uri", got[ScanEncodingKey])
	assert.Equal(t, "42", got[AttendancePalestraKey])
	assert.Equal(t, "registered", got[AttendanceOutcomeKey])
}

func TestScanAttributesOmitsEmptyEncoding(t *testing.T) {
	assert.Len(t, ScanAttributes("s-1", ""), 1)
	assert.Len(t, HTTPAttributes("GET", "/healthz", 200), 3)
	assert.Len(t, ErrorAttributes("timeout"), 2)
}
