// Package paramgroup buckets model parameters into optimizer groups
// keyed by their gradient-synchronization needs.
//
// An optimizer synchronizes a parameter's gradients over some
// communication group. Most parameters reduce over the data-parallel
// group, but some need different treatment: float32 master-precision
// parameters live apart from low-precision ones, normalization and
// router-gate parameters are force-synchronized when expert parallelism
// is active, and each expert parameter reduces over its expert-data
// group only. Split classifies a flat parameter list into these groups.
//
// The package consumes the Registry's expert bucket naming
// (Registry.ExpertGroupNames, "moe_ep_size_<N>") and nothing else from
// the bootstrap; it is pure classification with no communication.
package paramgroup
