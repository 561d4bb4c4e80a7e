package types

import "fmt"

// ParallelMode identifies one axis of the parallel-execution topology.
//
// Every rank belongs to exactly one group per mode, except the expert
// family where the expert-data resolver registers one expert group and
// one expert-data group for the same rank.
type ParallelMode int

const (
	// ModeGlobal is the group containing every rank.
	ModeGlobal ParallelMode = iota

	// ModeData is the data-parallel axis.
	ModeData

	// ModeModel is the model-parallel axis, spanning the tensor and
	// pipeline groups of one model replica.
	ModeModel

	// ModePipeline is the pipeline-parallel axis.
	ModePipeline

	// ModeTensor is the tensor-parallel axis.
	ModeTensor

	// ModeZero1 is the zero-redundancy optimizer sharding axis.
	ModeZero1

	// ModeNettest is the network-diagnostic axis. Its last group may be
	// smaller than the configured size when the world does not divide
	// evenly.
	ModeNettest

	// ModeExpert is the expert-parallel axis.
	ModeExpert

	// ModeExpertData is the expert-data-parallel axis. Resolving it also
	// yields the expert-parallel groups it is derived from.
	ModeExpertData
)

// String returns the canonical lower-case tag for the mode.
//
// The tag is used in group names, registry lookups, log fields and
// metric labels, so it must stay stable across releases.
func (m ParallelMode) String() string {
	switch m {
	case ModeGlobal:
		return "global"
	case ModeData:
		return "data"
	case ModeModel:
		return "model"
	case ModePipeline:
		return "pipe"
	case ModeTensor:
		return "tensor"
	case ModeZero1:
		return "zero1"
	case ModeNettest:
		return "nettest"
	case ModeExpert:
		return "expert"
	case ModeExpertData:
		return "expert_data"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined parallel modes.
func (m ParallelMode) Valid() bool {
	return m >= ModeGlobal && m <= ModeExpertData
}

// ParseParallelMode converts a canonical tag back into a ParallelMode.
func ParseParallelMode(tag string) (ParallelMode, error) {
	for m := ModeGlobal; m <= ModeExpertData; m++ {
		if m.String() == tag {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, tag)
}

// MarshalText implements encoding.TextMarshaler so mode lists render as
// their canonical tags in YAML and JSON configuration files.
func (m ParallelMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ParallelMode) UnmarshalText(text []byte) error {
	parsed, err := ParseParallelMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
