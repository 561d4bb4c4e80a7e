package groupmesh

import "github.com/groupmesh/groupmesh/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `groupmesh` package, while
// still providing a convenient `groupmesh.Topology`, `groupmesh.Logger`, etc.
// for users.
type (
	ParallelMode = types.ParallelMode
	Topology     = types.Topology
	Partition    = types.Partition
	Backend      = types.Backend
	GroupRequest = types.GroupRequest
	Entry        = types.Entry
	State        = types.State
)

// Re-export interfaces from the internal types package for convenience.
type (
	Transport        = types.Transport
	Group            = types.Group
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export ParallelMode constants from the internal types package.
const (
	ModeGlobal     = types.ModeGlobal
	ModeData       = types.ModeData
	ModeModel      = types.ModeModel
	ModePipeline   = types.ModePipeline
	ModeTensor     = types.ModeTensor
	ModeZero1      = types.ModeZero1
	ModeNettest    = types.ModeNettest
	ModeExpert     = types.ModeExpert
	ModeExpertData = types.ModeExpertData
)

// Re-export Backend constants from the internal types package.
const (
	BackendDefault = types.BackendDefault
	BackendCPU     = types.BackendCPU
)

// Re-export State constants from the internal types package.
const (
	StateInit         = types.StateInit
	StateResolving    = types.StateResolving
	StateConstructing = types.StateConstructing
	StateReady        = types.StateReady
	StateFailed       = types.StateFailed
)
