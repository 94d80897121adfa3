package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-formwizard/pkg/stepform"
)

const metricsNamespace = "formwizard"

// Metrics counts wizard transitions. It is attached to every session wizard
// as an observer.
type Metrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	requests    *prometheus.CounterVec
	sessions    prometheus.Gauge
	evictions   prometheus.Counter
}

var _ stepform.Observer = (*Metrics)(nil)

// NewMetrics registers the wizard metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transitions_total",
			Help:      "Wizard transitions by kind and originating step",
		}, []string{"kind", "step"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "validation_failures_total",
			Help:      "Step validation failures by step and field",
		}, []string{"step", "field"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions",
			Help:      "Wizard sessions held in memory",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "session_evictions_total",
			Help:      "Sessions dropped for being idle or over the session limit",
		}),
	}
}

// Observe implements stepform.Observer.
func (m *Metrics) Observe(_ context.Context, event stepform.Event) {
	m.transitions.WithLabelValues(string(event.Kind), event.From.ID).Inc()
	if event.Failure == nil {
		return
	}
	for _, field := range event.Failure.FieldNames() {
		m.failures.WithLabelValues(event.From.ID, field).Inc()
	}
}
