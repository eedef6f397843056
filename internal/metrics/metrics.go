// Package metrics exposes Prometheus collectors for batch submission. A
// Metrics value doubles as a batching.Observer so the engine reports attempt
// and outcome events directly.
package metrics

import (
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/concave-dev/guestbook/internal/batching"
)

const namespace = "guestbook"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	failedAttempts *prometheus.CounterVec
	gasUsed        *prometheus.CounterVec
	valueSpentWei  prometheus.Counter
	batches        *prometheus.CounterVec
	batchDuration  prometheus.Histogram
	queueDepth     prometheus.Gauge
}

var _ batching.Observer = (*Metrics)(nil)

// New creates collectors on a fresh registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations recorded, by kind and result.",
		}, []string{"kind", "result"}),
		failedAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_attempts_total",
			Help:      "Failed submission attempts, by kind and error class.",
		}, []string{"kind", "class"}),
		gasUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gas_used_total",
			Help:      "Gas used by successful operations, by kind.",
		}, []string{"kind"}),
		valueSpentWei: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "value_spent_wei_total",
			Help:      "Native currency attached to successful operations, in wei.",
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Finished batches, by final status.",
		}, []string{"status"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of finished batches.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 500ms to ~17m
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Batches waiting for the dispatcher.",
		}),
	}

	m.registry.MustRegister(
		m.operations,
		m.failedAttempts,
		m.gasUsed,
		m.valueSpentWei,
		m.batches,
		m.batchDuration,
		m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AttemptFailed counts a failed attempt by error class.
func (m *Metrics) AttemptFailed(attempt batching.Attempt, err error, willRetry bool) {
	class := "permanent"
	if batching.IsTransient(err) {
		class = "transient"
	}
	m.failedAttempts.WithLabelValues(string(attempt.Operation.Kind()), class).Inc()
}

// OutcomeRecorded counts the outcome and, on success, its gas and value.
func (m *Metrics) OutcomeRecorded(outcome batching.Outcome) {
	kind := string(outcome.Kind)
	if !outcome.Success {
		m.operations.WithLabelValues(kind, "failed").Inc()
		return
	}

	m.operations.WithLabelValues(kind, "succeeded").Inc()
	m.gasUsed.WithLabelValues(kind).Add(float64(outcome.GasUsed))
	if outcome.Value != nil && outcome.Value.Sign() > 0 {
		f, _ := new(big.Float).SetInt(outcome.Value).Float64()
		m.valueSpentWei.Add(f)
	}
}

// BatchFinished records a terminal batch status and its duration.
func (m *Metrics) BatchFinished(status string, d time.Duration) {
	m.batches.WithLabelValues(status).Inc()
	if d > 0 {
		m.batchDuration.Observe(d.Seconds())
	}
}

// SetQueueDepth updates the dispatcher queue gauge.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}
