package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the core validation and reasoning metrics.
type Metrics struct {
	// Validator metrics
	ValidationsTotal    *prometheus.CounterVec
	EdgesEvaluatedTotal *prometheus.CounterVec
	RulesCheckedTotal   prometheus.Counter

	// Reasoner metrics
	TraversalsTotal       prometheus.Counter
	TraversalResultsTotal prometheus.Counter

	// Shared
	OperationDuration *prometheus.HistogramVec
	StoreErrorsTotal  *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance. The collectors are usable without
// registration, so components can observe into them unconditionally; a
// Registry wires them to an exposition surface.
func NewMetrics() *Metrics {
	return &Metrics{
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "validate",
				Name:      "validations_total",
				Help:      "Total validation calls by overall decision",
			},
			[]string{"decision"},
		),

		EdgesEvaluatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "validate",
				Name:      "edges_evaluated_total",
				Help:      "Total proposed edges evaluated by per-edge decision",
			},
			[]string{"decision"},
		),

		RulesCheckedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "validate",
				Name:      "rules_checked_total",
				Help:      "Total active rules considered across validation calls",
			},
		),

		TraversalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "reason",
				Name:      "traversals_total",
				Help:      "Total multi-hop traversal calls",
			},
		),

		TraversalResultsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "reason",
				Name:      "results_total",
				Help:      "Total edges emitted by multi-hop traversals",
			},
		),

		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semgraph",
				Subsystem: "core",
				Name:      "operation_duration_seconds",
				Help:      "Duration of validation and reasoning operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semgraph",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Total store query failures by operation",
			},
			[]string{"operation"},
		),
	}
}

// collectors returns every collector for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ValidationsTotal,
		m.EdgesEvaluatedTotal,
		m.RulesCheckedTotal,
		m.TraversalsTotal,
		m.TraversalResultsTotal,
		m.OperationDuration,
		m.StoreErrorsTotal,
	}
}
