package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	// AttemptsTotal counts single-instance attempts by outcome
	AttemptsTotal *prometheus.CounterVec

	// AttemptDuration observes how long each instance attempt took
	AttemptDuration *prometheus.HistogramVec

	// ResolutionsTotal counts whole fallback passes by resource kind
	ResolutionsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yuzutube",
				Subsystem: "invidious",
				Name:      "attempts_total",
				Help:      "Total upstream instance attempts",
			},
			[]string{"instance", "outcome"},
		),
		AttemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "yuzutube",
				Subsystem: "invidious",
				Name:      "attempt_duration_seconds",
				Help:      "Upstream instance attempt duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"instance"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "yuzutube",
				Subsystem: "invidious",
				Name:      "resolutions_total",
				Help:      "Total fallback resolutions by resource kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}

	reg.MustRegister(m.AttemptsTotal, m.AttemptDuration, m.ResolutionsTotal)
	return m
}

// ObserveAttempt records one instance attempt
func (m *Metrics) ObserveAttempt(instance, outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.AttemptsTotal.WithLabelValues(instance, outcome).Inc()
	m.AttemptDuration.WithLabelValues(instance).Observe(elapsed.Seconds())
}

// ObserveResolution records the end of a fallback pass
func (m *Metrics) ObserveResolution(kind, outcome string) {
	m.ResolutionsTotal.WithLabelValues(kind, outcome).Inc()
}
