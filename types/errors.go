package types

import "errors"

// Sentinel errors for the groupmesh library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Topology, Resolver, Transport, Registry)
//   - Use consistent messages across similar error types

// Topology and resolver errors - deterministic configuration failures.
//
// Every error in this group is raised from pure computation, before any
// collective call is attempted, so all ranks observe the same failure.
var (
	// ErrBadTopology is returned when a topology descriptor or one of
	// its per-axis divisibility preconditions is invalid.
	ErrBadTopology = errors.New("invalid topology")

	// ErrUnknownMode is returned when a parallel mode is outside the
	// defined set.
	ErrUnknownMode = errors.New("unknown parallel mode")
)

// Transport errors - Group construction errors surfaced by Transport
// implementations.
var (
	// ErrGroupTimeout is returned when a group construction call does
	// not complete within its timeout. It is fatal: some peer ranks may
	// be blocked inside the same collective, so the process must abort
	// rather than retry.
	ErrGroupTimeout = errors.New("group construction timed out")

	// ErrInvalidGroupRequest is returned when a group request is
	// malformed (empty membership, duplicate ranks, rank out of range).
	ErrInvalidGroupRequest = errors.New("invalid group request")

	// ErrNotMember is returned when a rank calls group construction for
	// a membership list it does not appear in.
	ErrNotMember = errors.New("caller is not a member of the group")

	// ErrMembershipMismatch is returned when two ranks attempt to
	// construct the same named group with different membership lists.
	ErrMembershipMismatch = errors.New("group membership mismatch")

	// ErrGroupClosed is returned when an operation is attempted on a
	// group whose transport has been closed.
	ErrGroupClosed = errors.New("group is closed")
)

// Registry errors - Public lookup errors returned by the Registry.
var (
	// ErrModeNotRegistered is returned when a lookup names a parallel
	// mode the calling rank holds no group for.
	ErrModeNotRegistered = errors.New("parallel mode not registered")
)
