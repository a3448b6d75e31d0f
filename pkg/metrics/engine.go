package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFatal    = "fatal"
)

// EngineMetrics instruments commit and reveal operations.
type EngineMetrics struct {
	// Counts of operations, partitioned by operation and outcome.
	operations *prometheus.CounterVec

	// Latencies of operations.
	latencies *prometheus.HistogramVec

	// Reveal events dropped or delivered.
	events *prometheus.CounterVec
}

// NewDefaultEngineMetrics creates the engine metrics, namespaced by pkg.
func NewDefaultEngineMetrics(pkg string) *EngineMetrics {
	m := &EngineMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_operations", pkg),
				Help: "How many commit/reveal operations occur, partitioned by operation and status.",
			},
			[]string{"operation", "status", "cause"},
		),
		latencies: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: fmt.Sprintf("%s_latencies", pkg),
				Help: "How long commit/reveal operations take, partitioned by operation.",
			},
			[]string{"operation"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_reveal_events", pkg),
				Help: "How many reveal events were published.",
			},
			[]string{"kind"},
		),
	}
	m.operations = registerOnce(m.operations).(*prometheus.CounterVec)
	m.latencies = registerOnce(m.latencies).(*prometheus.HistogramVec)
	m.events = registerOnce(m.events).(*prometheus.CounterVec)
	return m
}

// Operations returns the counter for operation finishing with status. cause is
// empty for successful operations.
func (m *EngineMetrics) Operations(operation, status, cause string) prometheus.Counter {
	return m.operations.WithLabelValues(operation, status, cause)
}

// Latencies returns a new latency timer for operation.
func (m *EngineMetrics) Latencies(operation string) *prometheus.Timer {
	return prometheus.NewTimer(m.latencies.WithLabelValues(operation))
}

// RevealEvents returns the published reveal event counter. first is true for
// the first reveal of a commitment.
func (m *EngineMetrics) RevealEvents(first bool) prometheus.Counter {
	if first {
		return m.events.WithLabelValues("first")
	}
	return m.events.WithLabelValues("repeat")
}
