package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/groupmesh/groupmesh/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors register their metrics lazily on first use, so constructing
// one without recording anything never touches the registerer.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Bootstrap metrics
	bsAxisPartitions    *prometheus.GaugeVec
	bsConstruction      *prometheus.HistogramVec
	bsBootstrapDuration prometheus.Histogram
	bsRegistryEntries   prometheus.Gauge

	// Transport metrics
	tpRendezvousWait prometheus.Histogram
	tpKVLatency      *prometheus.HistogramVec
	tpGroupTimeouts  prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "groupmesh" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "groupmesh"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.bsAxisPartitions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "bootstrap",
			Name:      "axis_partitions",
			Help:      "Number of partitions each parallel axis resolved to.",
		}, []string{"mode"})

		p.bsConstruction = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "bootstrap",
			Name:      "group_construction_seconds",
			Help:      "Time spent blocked in each group construction rendezvous.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 13), // 10ms .. ~82s
		}, []string{"mode", "backend"})

		p.bsBootstrapDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "bootstrap",
			Name:      "duration_seconds",
			Help:      "Total wall time of a completed bootstrap.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
		})

		p.bsRegistryEntries = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "bootstrap",
			Name:      "registry_entries",
			Help:      "Group entries held by this rank after bootstrap.",
		})

		p.tpRendezvousWait = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "rendezvous_wait_seconds",
			Help:      "Time each construction rendezvous waited for peers.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms .. ~41s
		})

		p.tpKVLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "kv_operation_seconds",
			Help:      "Latency of NATS KV operations by type.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"})

		p.tpGroupTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transport",
			Name:      "group_timeouts_total",
			Help:      "Group constructions that failed with a timeout.",
		})

		p.reg.MustRegister(p.bsAxisPartitions)
		p.reg.MustRegister(p.bsConstruction)
		p.reg.MustRegister(p.bsBootstrapDuration)
		p.reg.MustRegister(p.bsRegistryEntries)
		p.reg.MustRegister(p.tpRendezvousWait)
		p.reg.MustRegister(p.tpKVLatency)
		p.reg.MustRegister(p.tpGroupTimeouts)
	})
}

// BootstrapMetrics implementation

// RecordModeResolved sets the partition count gauge for one axis.
func (p *PrometheusCollector) RecordModeResolved(mode string, partitions int) {
	p.ensureRegistered()
	p.bsAxisPartitions.WithLabelValues(mode).Set(float64(partitions))
}

// RecordGroupConstruction observes one group construction duration.
func (p *PrometheusCollector) RecordGroupConstruction(mode string, backend string, duration float64) {
	p.ensureRegistered()
	p.bsConstruction.WithLabelValues(mode, backend).Observe(duration)
}

// RecordBootstrapDuration observes the total bootstrap wall time.
func (p *PrometheusCollector) RecordBootstrapDuration(duration float64) {
	p.ensureRegistered()
	p.bsBootstrapDuration.Observe(duration)
}

// RecordRegistryEntries sets the registry entry gauge.
func (p *PrometheusCollector) RecordRegistryEntries(count int) {
	p.ensureRegistered()
	p.bsRegistryEntries.Set(float64(count))
}

// TransportMetrics implementation

// RecordRendezvousWait observes one rendezvous wait duration.
func (p *PrometheusCollector) RecordRendezvousWait(duration float64) {
	p.ensureRegistered()
	p.tpRendezvousWait.Observe(duration)
}

// RecordKVOperationDuration observes one KV operation latency.
func (p *PrometheusCollector) RecordKVOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.tpKVLatency.WithLabelValues(operation).Observe(duration)
}

// RecordGroupTimeout increments the timeout counter.
func (p *PrometheusCollector) RecordGroupTimeout() {
	p.ensureRegistered()
	p.tpGroupTimeouts.Inc()
}
