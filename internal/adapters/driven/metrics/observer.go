// Package metrics exports auth flow telemetry as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FlowObserver = (*Observer)(nil)

// Observer records flow outcomes and durations.
type Observer struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver creates the flow metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sercha_basicauth_flow_outcomes_total",
				Help: "Total number of flow outcomes by flow, outcome and failure reason",
			},
			[]string{"flow", "outcome", "reason"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sercha_basicauth_flow_duration_seconds",
				Help:    "Flow duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
	}
	reg.MustRegister(o.outcomes, o.duration)
	return o
}

// OutcomeEmitted increments the outcome counter. Success outcomes carry reason "none".
func (o *Observer) OutcomeEmitted(flow domain.Flow, outcome domain.FlowOutcome) {
	reason := string(outcome.Reason)
	if reason == "" {
		reason = "none"
	}
	o.outcomes.WithLabelValues(string(flow), string(outcome.Kind), reason).Inc()
}

// FlowCompleted records how long a flow took.
func (o *Observer) FlowCompleted(flow domain.Flow, elapsed time.Duration) {
	o.duration.WithLabelValues(string(flow)).Observe(elapsed.Seconds())
}
