package metrics

import "github.com/groupmesh/groupmesh/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	metrics := metrics.NewNop()
//	bs := groupmesh.NewBootstrapper(&cfg, tp, groupmesh.WithMetrics(metrics))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// BootstrapMetrics implementation

// RecordModeResolved discards the mode resolution metric.
func (n *NopMetrics) RecordModeResolved(_ /* mode */ string, _ /* partitions */ int) {
	// No-op
}

// RecordGroupConstruction discards the group construction metric.
func (n *NopMetrics) RecordGroupConstruction(_ /* mode */, _ /* backend */ string, _ /* duration */ float64) {
	// No-op
}

// RecordBootstrapDuration discards the bootstrap duration metric.
func (n *NopMetrics) RecordBootstrapDuration(_ /* duration */ float64) {
	// No-op
}

// RecordRegistryEntries discards the registry entry gauge.
func (n *NopMetrics) RecordRegistryEntries(_ /* count */ int) {
	// No-op
}

// TransportMetrics implementation

// RecordRendezvousWait discards the rendezvous wait metric.
func (n *NopMetrics) RecordRendezvousWait(_ /* duration */ float64) {
	// No-op
}

// RecordKVOperationDuration discards the KV operation duration metric.
func (n *NopMetrics) RecordKVOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}

// RecordGroupTimeout discards the group timeout counter.
func (n *NopMetrics) RecordGroupTimeout() {
	// No-op
}
