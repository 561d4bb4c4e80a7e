// Package resolver computes communication-group membership for every
// axis of a parallel topology.
//
// Resolution is pure: given the same Topology, every rank computes the
// identical ordered partition list for an axis, with no communication
// and no shared state. That determinism is what makes coordinator-free
// group construction safe: each rank independently derives the same
// group names and memberships, then meets its peers in the transport
// rendezvous.
//
// The package resolves these axes:
//
//   - Global: one group holding every rank
//   - Data: strided groups of dataParallelSize ranks
//   - Model: contiguous blocks spanning one model replica
//   - Tensor: contiguous blocks of tensorParallelSize ranks
//   - Pipeline: strided groups linking the stages of one pipeline
//   - Zero1: optimizer-shard groups nested inside each data group
//   - Nettest: fixed-size chunks for network diagnostics (ragged tail)
//   - Expert / ExpertData: the expert family; resolving ExpertData
//     yields both the expert groups and the expert-data groups
//
// Dispatch is an exhaustive switch rather than a pluggable interface:
// the axis set is closed, and a closed switch keeps the full group
// layout of a topology readable in one place.
//
// Every resolver validates its own divisibility preconditions and
// returns an error wrapping types.ErrBadTopology when they fail. These
// failures are deterministic across ranks and happen before any
// collective call.
package resolver
