package types

// State represents the bootstrap lifecycle state.
//
// States follow a defined progression during normal operation:
//
//	StateInit → StateResolving → StateConstructing → StateReady
//
// A failure in any phase moves to the terminal StateFailed. Bootstrap
// never leaves StateReady or StateFailed: the group layout of a job is
// fixed at initialization.
type State int

const (
	// StateInit is the initial state before Run is called.
	StateInit State = iota

	// StateResolving indicates partition lists are being computed. No
	// collective call has been issued yet, so a failure here is still a
	// pure configuration error.
	StateResolving

	// StateConstructing indicates the rank is performing collective
	// group-construction calls.
	StateConstructing

	// StateReady indicates all groups are constructed and the registry
	// is frozen.
	StateReady

	// StateFailed indicates bootstrap failed. The process is expected
	// to abort: peers may be blocked in collectives that will never
	// complete.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateResolving:
		return "Resolving"
	case StateConstructing:
		return "Constructing"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateInit:
		return next == StateResolving
	case StateResolving:
		return next == StateConstructing || next == StateFailed
	case StateConstructing:
		return next == StateReady || next == StateFailed
	default:
		// StateReady and StateFailed are terminal.
		return false
	}
}
