// SPDX-License-Identifier: MIT

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_http_requests_total",
		Help: "HTTP requests served by route pattern and status code",
	}, []string{"route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connect_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_http_rate_limited_total",
		Help: "Requests rejected by a rate limiter",
	}, []string{"limiter"}) // limiter=global|participant
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// IncRateLimited counts one rejected request.
func IncRateLimited(limiter string) {
	rateLimitedTotal.WithLabelValues(limiter).Inc()
}
