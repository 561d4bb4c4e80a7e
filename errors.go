package groupmesh

import "errors"

// Sentinel errors returned by the Bootstrapper.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTransportRequired is returned when the transport is nil.
	ErrTransportRequired = errors.New("transport is required")

	// ErrAlreadyRun is returned when Run is called more than once.
	// Bootstrap is single-shot: the group layout of a job is fixed at
	// initialization and cannot be rebuilt in the same process.
	ErrAlreadyRun = errors.New("bootstrap already run")

	// ErrRankOutOfRange is returned when the transport reports a rank
	// outside the topology's world.
	ErrRankOutOfRange = errors.New("transport rank outside topology world")
)
