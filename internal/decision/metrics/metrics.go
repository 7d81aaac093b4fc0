package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Verdicts by status
	DecisionOutcome *prometheus.CounterVec

	// Evaluations that ended in a system error instead of a verdict
	EvaluateErrors prometheus.Counter

	// Permission cache lookups by result
	CacheLookups *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "accessgate_decision_outcomes_total",
			Help: "Total decision verdicts by status",
		}, []string{"status"}),

		EvaluateErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "accessgate_decision_errors_total",
			Help: "Total evaluations aborted by a system error",
		}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "accessgate_permission_cache_lookups_total",
			Help: "Permission cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "accessgate_decision_evaluate_duration_seconds",
			Help:    "Duration of full decision evaluation including the audit append",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records a verdict.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementError records an evaluation aborted by a system error.
func (m *Metrics) IncrementError() {
	if m != nil {
		m.EvaluateErrors.Inc()
	}
}

// IncrementCacheLookup records a permission cache hit or miss.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
