// SPDX-License-Identifier: MIT

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scanSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_scan_sessions_total",
		Help: "Scan sessions by how they started",
	}, []string{"result"}) // result=scanning|permission_denied|permission_error

	scanActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "connect_scan_active_sessions",
		Help: "Scan sessions currently scanning or processing",
	})

	scanPayloadsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connect_scan_payloads_discarded_total",
		Help: "Scan events suppressed because the session was locked or closed",
	})

	scanOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_scan_outcomes_total",
		Help: "Terminal scan outcomes by kind",
	}, []string{"outcome"}) // outcome=registered|validation_error|network_failure|decode_failure|cancelled

	scanOutcomesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connect_scan_outcomes_dropped_total",
		Help: "Outcomes that arrived after their session was closed",
	})

	scanProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "connect_scan_processing_duration_seconds",
		Help:    "Time from the first accepted scan event to the resolved outcome",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	})
)

// RecordScanSessionStart counts a session leaving the permission check.
func RecordScanSessionStart(result string) {
	scanSessionsTotal.WithLabelValues(result).Inc()
	if result == "scanning" {
		scanActiveSessions.Inc()
	}
}

// RecordScanSessionEnd decrements the active gauge for a session that was scanning.
func RecordScanSessionEnd() {
	scanActiveSessions.Dec()
}

// IncScanPayloadDiscarded counts one suppressed scan event.
func IncScanPayloadDiscarded() {
	scanPayloadsDiscarded.Inc()
}

// RecordScanOutcome counts a terminal outcome and its processing latency.
// A zero duration skips the histogram.
func RecordScanOutcome(outcome string, d time.Duration) {
	scanOutcomesTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		scanProcessingDuration.Observe(d.Seconds())
	}
}

// IncScanOutcomeDropped counts an outcome ignored because its session was closed.
func IncScanOutcomeDropped() {
	scanOutcomesDropped.Inc()
}
