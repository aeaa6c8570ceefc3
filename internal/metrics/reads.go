// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_upstream_fetch_total",
		Help: "Backend read requests by source and result",
	}, []string{"source", "result"}) // source=schedule|history, result=success|error|breaker_open

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_cache_lookups_total",
		Help: "Cache lookups by cache and result",
	}, []string{"cache", "result"}) // result=hit|miss|stale

	historyRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "connect_history_records",
		Help: "Attendance records returned by the last history refresh",
	})
)

// RecordUpstreamFetch counts one backend read.
func RecordUpstreamFetch(source, result string) {
	upstreamFetchTotal.WithLabelValues(source, result).Inc()
}

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(cache, result string) {
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// SetHistoryRecords records the size of the last history result.
func SetHistoryRecords(n int) {
	historyRecords.Set(float64(n))
}
