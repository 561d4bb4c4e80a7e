// Package types provides core type definitions and interfaces for the groupmesh library.
//
// This package contains shared types that are used across multiple packages in the
// groupmesh library. By keeping these types in a separate package, we avoid import
// cycles between the main groupmesh package and its internal implementations.
//
// Key types:
//   - ParallelMode: Axis of the parallel-execution topology
//   - Topology: Declared parallel layout of a training job
//   - Partition: Ordered rank list forming one communication group
//   - Transport: Group-construction fabric interface
//   - Group: Opaque handle to a constructed group
//   - Entry: One registered group membership
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
