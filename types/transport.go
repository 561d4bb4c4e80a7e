package types

import (
	"context"
	"fmt"
	"time"
)

// Backend names the communication fabric a group is constructed on.
//
// The empty value selects the transport's primary backend. BackendCPU
// selects the CPU-side fallback fabric used for host-memory collectives
// when the primary backend is accelerator-only.
type Backend string

const (
	// BackendDefault selects the transport's primary backend.
	BackendDefault Backend = ""

	// BackendCPU selects the CPU-side fallback fabric.
	BackendCPU Backend = "cpu"
)

// GroupRequest describes a single group-construction call.
//
// Every member of the group issues an identical request (same name, same
// ordered membership) and blocks until all members have arrived.
type GroupRequest struct {
	// Name is the globally agreed group name, normally produced by
	// Partition.GroupName so that all members derive it independently.
	Name string

	// Ranks is the ordered member list. The caller's own rank must be
	// present; position in the list defines each member's local rank.
	Ranks []int

	// Backend selects the fabric. Leave as BackendDefault for the
	// primary backend.
	Backend Backend

	// Timeout bounds the construction rendezvous. Zero means the call
	// is bounded only by the context.
	Timeout time.Duration
}

// Validate checks the request against the caller's identity and the
// world size. It returns ErrInvalidGroupRequest or ErrNotMember for
// malformed requests; transports call it before touching the wire so
// that bad requests never leave a peer blocked.
func (r GroupRequest) Validate(callerRank, worldSize int) error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty group name", ErrInvalidGroupRequest)
	}
	if len(r.Ranks) == 0 {
		return fmt.Errorf("%w: empty membership for group %q", ErrInvalidGroupRequest, r.Name)
	}

	seen := make(map[int]struct{}, len(r.Ranks))
	for _, rank := range r.Ranks {
		if rank < 0 || rank >= worldSize {
			return fmt.Errorf("%w: rank %d out of range [0, %d) for group %q",
				ErrInvalidGroupRequest, rank, worldSize, r.Name)
		}
		if _, dup := seen[rank]; dup {
			return fmt.Errorf("%w: duplicate rank %d in group %q", ErrInvalidGroupRequest, rank, r.Name)
		}
		seen[rank] = struct{}{}
	}

	if _, ok := seen[callerRank]; !ok {
		return fmt.Errorf("%w: rank %d constructing group %q", ErrNotMember, callerRank, r.Name)
	}

	return nil
}

// Transport constructs communication groups over some fabric.
//
// Implementations own rank identity and the collective rendezvous; the
// bootstrap layer owns which groups exist and who belongs to them. A
// Transport is used by exactly one rank of the job.
//
// CreateGroup is a collective: it must be called by every member of the
// request, with identical membership, and blocks until all members have
// arrived or the timeout expires. Ranks that are not members must not
// call it at all.
type Transport interface {
	// Rank returns the caller's global rank.
	Rank() int

	// CPUCapable reports whether the primary backend can already serve
	// CPU-side collectives. When true, callers reuse primary group
	// handles instead of constructing separate BackendCPU groups.
	CPUCapable() bool

	// CreateGroup performs the blocking construction rendezvous and
	// returns the caller's handle to the group.
	//
	// Returns:
	//   - Group: The constructed group handle, bound to the caller's rank
	//   - error: ErrGroupTimeout when the rendezvous does not complete in
	//     time, ErrInvalidGroupRequest/ErrNotMember for malformed requests,
	//     or a wrapped transport error
	CreateGroup(ctx context.Context, req GroupRequest) (Group, error)
}
