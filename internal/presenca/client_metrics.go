// SPDX-License-Identifier: MIT

package presenca

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connect_presenca_register_total",
		Help: "Attendance registration attempts by outcome",
	}, []string{"outcome"}) // registered|validation_error|network_failure

	registerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connect_presenca_register_duration_seconds",
		Help:    "Latency of attendance registration attempts",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})
)

func observeRegister(kind Kind, d time.Duration) {
	registerTotal.WithLabelValues(kind.String()).Inc()
	registerDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}
