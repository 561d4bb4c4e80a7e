package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from the bootstrap goroutine and from transport
// internals, and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	BootstrapMetrics
	TransportMetrics
}

// BootstrapMetrics defines metrics for the group bootstrap sequence.
type BootstrapMetrics interface {
	// RecordModeResolved records that one parallel mode was resolved
	// into its partition list.
	//
	// Parameters:
	//   - mode: Canonical mode tag ("data", "pipe", ...)
	//   - partitions: Number of partitions the axis resolved to
	RecordModeResolved(mode string, partitions int)

	// RecordGroupConstruction records one completed group construction.
	//
	// Parameters:
	//   - mode: Canonical mode tag
	//   - backend: Backend label ("cpu", "nats", ...)
	//   - duration: Time spent blocked in the rendezvous, in seconds
	RecordGroupConstruction(mode string, backend string, duration float64)

	// RecordBootstrapDuration records the total wall time of a completed
	// bootstrap, in seconds.
	RecordBootstrapDuration(duration float64)

	// RecordRegistryEntries sets the number of group entries this rank
	// holds after bootstrap (gauge metric).
	RecordRegistryEntries(count int)
}

// TransportMetrics defines metrics recorded by Transport implementations.
type TransportMetrics interface {
	// RecordRendezvousWait records how long one construction rendezvous
	// spent waiting for peers, in seconds.
	RecordRendezvousWait(duration float64)

	// RecordKVOperationDuration records NATS KV operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("get", "put", "watch")
	//   - duration: Time taken in seconds
	RecordKVOperationDuration(operation string, duration float64)

	// RecordGroupTimeout records a group construction that failed with a
	// timeout.
	RecordGroupTimeout()
}
