// Package testing provides test utilities for the groupmesh library.
//
// This package offers helpers for setting up test environments: embedded
// NATS servers for exercising the rendezvous transport, and a multi-rank
// world runner for driving a whole bootstrap inside one test process. It
// follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - RunWorld: Run one function per rank as goroutines and collect errors
//   - NewTestLogger: Logger that writes through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    meshtest "github.com/groupmesh/groupmesh/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := meshtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
