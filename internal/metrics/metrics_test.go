// SPDX-License-Identifier: MIT
package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("schedule", "open")
	assert.Equal(t, 1.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("schedule", "open")))
	assert.Equal(t, 0.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("schedule", "closed")))

	SetCircuitBreakerState("schedule", "closed")
	assert.Equal(t, 0.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("schedule", "open")))
	assert.Equal(t, 1.0, getGaugeValue(t, circuitBreakerState.WithLabelValues("schedule", "closed")))
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	c := circuitBreakerTrips.WithLabelValues("history", "threshold_exceeded")
	before := getCounterValue(t, c)
	RecordCircuitBreakerTrip("history", "threshold_exceeded")
	assert.Equal(t, before+1, getCounterValue(t, c))
}

func TestScanSessionGauge(t *testing.T) {
	before := getGaugeValue(t, scanActiveSessions)

	RecordScanSessionStart("scanning")
	assert.Equal(t, before+1, getGaugeValue(t, scanActiveSessions))

	RecordScanSessionStart("permission_denied")
	assert.Equal(t, before+1, getGaugeValue(t, scanActiveSessions), "denied sessions never become active")

	RecordScanSessionEnd()
	assert.Equal(t, before, getGaugeValue(t, scanActiveSessions))
}

func TestRecordScanOutcome(t *testing.T) {
	tests := []struct {
		outcome string
		d       time.Duration
	}{
		{"registered", 120 * time.Millisecond},
		{"validation_error", 80 * time.Millisecond},
		{"network_failure", 10 * time.Second},
		{"cancelled", 0},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			c := scanOutcomesTotal.WithLabelValues(tt.outcome)
			before := getCounterValue(t, c)
			RecordScanOutcome(tt.outcome, tt.d)
			assert.Equal(t, before+1, getCounterValue(t, c))
		})
	}
}

func TestDiscardAndDropCounters(t *testing.T) {
	discarded := getCounterValue(t, scanPayloadsDiscarded)
	dropped := getCounterValue(t, scanOutcomesDropped)

	IncScanPayloadDiscarded()
	IncScanPayloadDiscarded()
	IncScanOutcomeDropped()

	assert.Equal(t, discarded+2, getCounterValue(t, scanPayloadsDiscarded))
	assert.Equal(t, dropped+1, getCounterValue(t, scanOutcomesDropped))
}

func TestReadMetrics(t *testing.T) {
	c := upstreamFetchTotal.WithLabelValues("schedule", "breaker_open")
	before := getCounterValue(t, c)
	RecordUpstreamFetch("schedule", "breaker_open")
	assert.Equal(t, before+1, getCounterValue(t, c))

	hits := cacheLookups.WithLabelValues("schedule", "hit")
	before = getCounterValue(t, hits)
	RecordCacheLookup("schedule", "hit")
	assert.Equal(t, before+1, getCounterValue(t, hits))

	SetHistoryRecords(7)
	assert.Equal(t, 7.0, getGaugeValue(t, historyRecords))
}

func TestRecordHTTPRequestUnmatchedRoute(t *testing.T) {
	c := httpRequestsTotal.WithLabelValues("unmatched", "404")
	before := getCounterValue(t, c)
	RecordHTTPRequest("", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, before+1, getCounterValue(t, c))
}

func TestPromhttpExposure(t *testing.T) {
	RecordScanOutcome("registered", time.Millisecond)

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "connect_scan_outcomes_total"))
	assert.True(t, strings.Contains(body, "connect_scan_processing_duration_seconds"))
}
