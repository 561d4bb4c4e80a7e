package types

import "fmt"

// Topology describes the parallel layout of a training job.
//
// It is a pure value: every axis size is declared up front and never
// changes for the lifetime of the job. Divisibility constraints between
// the axes are enforced by the per-axis resolvers rather than here, so
// a Topology that passes Validate can still be rejected by a resolver
// whose preconditions it violates.
type Topology struct {
	// WorldSize is the total number of ranks in the job.
	WorldSize int `yaml:"worldSize"`

	// DataParallelSize is the number of ranks in each data-parallel
	// group.
	DataParallelSize int `yaml:"dataParallelSize"`

	// PipelineParallelSize is the number of pipeline stages.
	PipelineParallelSize int `yaml:"pipelineParallelSize"`

	// TensorParallelSize is the number of ranks each tensor is split
	// across.
	TensorParallelSize int `yaml:"tensorParallelSize"`

	// Zero1ParallelSize is the number of ranks each optimizer state
	// shard is split across. It cannot exceed DataParallelSize.
	Zero1ParallelSize int `yaml:"zero1ParallelSize"`

	// ExpertParallelSize is the number of ranks each expert layer is
	// split across. A size of 1 disables the expert axes.
	ExpertParallelSize int `yaml:"expertParallelSize"`

	// NettestParallelSize is the chunk size used by the network
	// diagnostic axis. The final chunk may be smaller when WorldSize
	// does not divide evenly.
	NettestParallelSize int `yaml:"nettestParallelSize"`
}

// DefaultTopology returns a single-rank topology with every axis size
// set to 1. It is primarily useful as a starting point in tests and
// examples.
func DefaultTopology() Topology {
	return Topology{
		WorldSize:            1,
		DataParallelSize:     1,
		PipelineParallelSize: 1,
		TensorParallelSize:   1,
		Zero1ParallelSize:    1,
		ExpertParallelSize:   1,
		NettestParallelSize:  1,
	}
}

// SetDefaults fills every unset axis size with 1. WorldSize is left
// untouched because there is no sensible default for it.
func (t *Topology) SetDefaults() {
	if t.DataParallelSize == 0 {
		t.DataParallelSize = 1
	}
	if t.PipelineParallelSize == 0 {
		t.PipelineParallelSize = 1
	}
	if t.TensorParallelSize == 0 {
		t.TensorParallelSize = 1
	}
	if t.Zero1ParallelSize == 0 {
		t.Zero1ParallelSize = 1
	}
	if t.ExpertParallelSize == 0 {
		t.ExpertParallelSize = 1
	}
	if t.NettestParallelSize == 0 {
		t.NettestParallelSize = 1
	}
}

// Validate checks that every axis size is a positive integer.
func (t *Topology) Validate() error {
	for _, axis := range []struct {
		name string
		size int
	}{
		{"worldSize", t.WorldSize},
		{"dataParallelSize", t.DataParallelSize},
		{"pipelineParallelSize", t.PipelineParallelSize},
		{"tensorParallelSize", t.TensorParallelSize},
		{"zero1ParallelSize", t.Zero1ParallelSize},
		{"expertParallelSize", t.ExpertParallelSize},
		{"nettestParallelSize", t.NettestParallelSize},
	} {
		if axis.size <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrBadTopology, axis.name, axis.size)
		}
	}
	return nil
}
