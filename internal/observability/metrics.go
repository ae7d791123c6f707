package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Validation outcomes.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Metrics are the guardrail collectors. A nil *Metrics records nothing.
type Metrics struct {
	Validations       *prometheus.CounterVec
	Executions        *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	PolicyHeaders     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardrail_validations_total",
				Help: "Validation decisions by component, outcome and rejection kind",
			},
			[]string{"component", "outcome", "kind"},
		),
		Executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardrail_executions_total",
				Help: "Executed operations by final status",
			},
			[]string{"operation", "status"},
		),
		ExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guardrail_execution_duration_seconds",
				Help:    "Wall time of executed operations",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"operation"},
		),
		PolicyHeaders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardrail_policy_headers_total",
				Help: "Content-Security-Policy headers generated by mode",
			},
			[]string{"mode"},
		),
	}
}

// RecordValidation counts one decision. An empty kind is recorded as "none".
func (m *Metrics) RecordValidation(component string, ok bool, kind string) {
	if m == nil || m.Validations == nil {
		return
	}
	outcome := OutcomeValid
	if !ok {
		outcome = OutcomeInvalid
	}
	if kind == "" {
		kind = "none"
	}
	m.Validations.WithLabelValues(component, outcome, kind).Inc()
}

// RecordExecution counts a finished operation and observes its duration.
func (m *Metrics) RecordExecution(operation, status string, d time.Duration) {
	if m == nil || m.Executions == nil {
		return
	}
	m.Executions.WithLabelValues(operation, status).Inc()
	if m.ExecutionDuration != nil {
		m.ExecutionDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// RecordPolicyHeader counts a generated policy header.
func (m *Metrics) RecordPolicyHeader(development bool) {
	if m == nil || m.PolicyHeaders == nil {
		return
	}
	mode := "production"
	if development {
		mode = "development"
	}
	m.PolicyHeaders.WithLabelValues(mode).Inc()
}
