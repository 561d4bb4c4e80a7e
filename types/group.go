package types

import "context"

// Group is a rank's handle to one constructed communication group.
//
// Handles are opaque: consumers treat them as capabilities for running
// collectives against the member set, and never reach into transport
// internals. The Barrier and Broadcast collectives follow the usual
// contract that every member performs the same sequence of calls.
type Group interface {
	// Name returns the globally agreed group name.
	Name() string

	// Ranks returns the ordered global ranks of the members.
	Ranks() []int

	// Size returns the number of members.
	Size() int

	// LocalRank returns the caller's position within the membership.
	LocalRank() int

	// Backend returns the fabric the group was constructed on.
	Backend() Backend

	// Barrier blocks until every member has entered the barrier.
	Barrier(ctx context.Context) error

	// Broadcast distributes root's payload to every member and returns
	// it. root is a global rank and must be a member. The root's own
	// call returns its payload unchanged.
	Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error)
}

// Entry records one group membership held by the owning rank.
//
// The registry stores one Entry per constructed group. CPUGroup is nil
// unless CPU fallback groups were requested; when the primary backend is
// already CPU capable it aliases Group rather than holding a second
// construction.
type Entry struct {
	// Mode is the parallel axis the group belongs to.
	Mode ParallelMode

	// Index is the partition's position within its axis enumeration.
	Index int

	// Name is the globally agreed group name.
	Name string

	// Ranks is the ordered global membership.
	Ranks []int

	// LocalRank is the owning rank's position within Ranks.
	LocalRank int

	// Group is the primary communication handle.
	Group Group

	// CPUGroup is the CPU-side fallback handle, or nil.
	CPUGroup Group
}

// Size returns the number of members in the group.
func (e Entry) Size() int {
	return len(e.Ranks)
}
