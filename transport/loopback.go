package transport

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/groupmesh/groupmesh/types"
)

// LoopbackHub is the shared fabric of an in-process world.
//
// One hub represents one job: every rank of the world holds a Loopback
// transport created from the same hub, and all rendezvous and
// collectives meet inside it. Ranks are expected to run as goroutines.
//
// The hub counts CreateGroup calls so tests can assert how many
// constructions a code path performed, including asserting zero for
// paths that must fail before any collective call.
type LoopbackHub struct {
	world      int
	cpuCapable bool

	rendezvous *xsync.Map[string, *loopbackRendezvous]
	calls      atomic.Int64
}

// NewLoopbackHub creates the shared fabric for an in-process world of
// worldSize ranks.
//
// Parameters:
//   - worldSize: Number of ranks in the world
//   - cpuCapable: Whether the fabric reports itself CPU capable. True
//     matches reality (loopback lives in host memory); false makes the
//     hub emulate an accelerator-only fabric so the CPU-fallback path
//     constructs real second groups.
//
// Returns:
//   - *LoopbackHub: The shared hub; create one Loopback per rank from it
func NewLoopbackHub(worldSize int, cpuCapable bool) *LoopbackHub {
	return &LoopbackHub{
		world:      worldSize,
		cpuCapable: cpuCapable,
		rendezvous: xsync.NewMap[string, *loopbackRendezvous](),
	}
}

// WorldSize returns the number of ranks in the world.
func (h *LoopbackHub) WorldSize() int {
	return h.world
}

// CreateGroupCalls returns the total number of CreateGroup calls made
// through the hub by all ranks.
func (h *LoopbackHub) CreateGroupCalls() int64 {
	return h.calls.Load()
}

// Transport returns the rank's view of the hub.
func (h *LoopbackHub) Transport(rank int) *Loopback {
	return &Loopback{hub: h, rank: rank}
}

// Loopback is one rank's transport over a LoopbackHub.
type Loopback struct {
	hub  *LoopbackHub
	rank int
}

// Compile-time assertion that Loopback implements Transport.
var _ types.Transport = (*Loopback)(nil)

// Rank returns the rank this transport was created for.
func (l *Loopback) Rank() int {
	return l.rank
}

// CPUCapable reports the capability the hub was created with.
func (l *Loopback) CPUCapable() bool {
	return l.hub.cpuCapable
}

// CreateGroup performs the in-process construction rendezvous.
//
// The first arriving member publishes the membership list; later
// arrivals verify theirs against it and fail with
// types.ErrMembershipMismatch on any disagreement. The call returns
// once all members have arrived, or fails with types.ErrGroupTimeout.
func (l *Loopback) CreateGroup(ctx context.Context, req types.GroupRequest) (types.Group, error) {
	if err := req.Validate(l.rank, l.hub.world); err != nil {
		return nil, err
	}

	l.hub.calls.Add(1)

	key := req.Name + "/" + string(req.Backend)
	r, _ := l.hub.rendezvous.LoadOrStore(key, newLoopbackRendezvous())

	shared, err := r.arrive(l.rank, req)
	if err != nil {
		return nil, err
	}

	if err := r.wait(ctx, req.Timeout); err != nil {
		return nil, fmt.Errorf("%w: group %q", err, req.Name)
	}

	return &loopbackGroup{
		shared:    shared,
		localRank: slices.Index(req.Ranks, l.rank),
	}, nil
}

// loopbackRendezvous tracks one group's construction: who has arrived
// and whether everyone agrees on the membership.
type loopbackRendezvous struct {
	mu       sync.Mutex
	shared   *loopbackShared
	arrived  map[int]struct{}
	done     chan struct{}
	mismatch error
}

func newLoopbackRendezvous() *loopbackRendezvous {
	return &loopbackRendezvous{
		arrived: make(map[int]struct{}),
		done:    make(chan struct{}),
	}
}

// arrive records one member's arrival and returns the shared group
// state every member's handle will point at. The first arrival
// publishes the membership; any later arrival that disagrees poisons
// the rendezvous so every waiter fails instead of hanging.
func (r *loopbackRendezvous) arrive(rank int, req types.GroupRequest) (*loopbackShared, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mismatch != nil {
		return nil, r.mismatch
	}

	if r.shared == nil {
		r.shared = newLoopbackShared(req)
	} else if !slices.Equal(r.shared.ranks, req.Ranks) {
		r.mismatch = fmt.Errorf("%w: group %q: %v vs %v",
			types.ErrMembershipMismatch, req.Name, r.shared.ranks, req.Ranks)
		close(r.done)

		return nil, r.mismatch
	}

	r.arrived[rank] = struct{}{}
	if len(r.arrived) == len(r.shared.ranks) {
		close(r.done)
	}

	return r.shared, nil
}

// wait blocks until every member has arrived, the rendezvous is
// poisoned by a mismatch, or the timeout expires.
func (r *loopbackRendezvous) wait(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()

		return r.mismatch
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return types.ErrGroupTimeout
		}

		return ctx.Err()
	}
}

// loopbackShared is the state all member handles of one group share.
type loopbackShared struct {
	name    string
	ranks   []int
	backend types.Backend

	mu        sync.Mutex
	barrierN  int
	barrierCh chan struct{}
	bcast     map[uint64]*bcastSlot
}

func newLoopbackShared(req types.GroupRequest) *loopbackShared {
	return &loopbackShared{
		name:      req.Name,
		ranks:     slices.Clone(req.Ranks),
		backend:   req.Backend,
		barrierCh: make(chan struct{}),
		bcast:     make(map[uint64]*bcastSlot),
	}
}

// bcastSlot carries one broadcast's payload from root to the members.
// Members are ordered, not simultaneous: the slot must outlive the
// root's call so a member arriving later still finds the payload, and
// is reclaimed only once every member has consumed it.
type bcastSlot struct {
	ready     chan struct{}
	payload   []byte
	delivered int
}

// loopbackGroup is one member's handle to a constructed group.
type loopbackGroup struct {
	shared    *loopbackShared
	localRank int

	// bcastSeq counts this member's Broadcast calls. Collectives are
	// ordered, so equal counts across members identify one operation.
	bcastSeq uint64
}

// Compile-time assertion that loopbackGroup implements Group.
var _ types.Group = (*loopbackGroup)(nil)

func (g *loopbackGroup) Name() string {
	return g.shared.name
}

func (g *loopbackGroup) Ranks() []int {
	return slices.Clone(g.shared.ranks)
}

func (g *loopbackGroup) Size() int {
	return len(g.shared.ranks)
}

func (g *loopbackGroup) LocalRank() int {
	return g.localRank
}

func (g *loopbackGroup) Backend() types.Backend {
	return g.shared.backend
}

// Barrier blocks until every member has entered the barrier.
func (g *loopbackGroup) Barrier(ctx context.Context) error {
	s := g.shared
	s.mu.Lock()
	ch := s.barrierCh
	s.barrierN++
	if s.barrierN == len(s.ranks) {
		// Last member releases the generation and arms the next one.
		s.barrierN = 0
		s.barrierCh = make(chan struct{})
		close(ch)
	}
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Broadcast distributes root's payload to every member.
func (g *loopbackGroup) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	s := g.shared
	if !slices.Contains(s.ranks, root) {
		return nil, fmt.Errorf("%w: broadcast root %d in group %q", types.ErrNotMember, root, s.name)
	}

	g.bcastSeq++
	seq := g.bcastSeq

	s.mu.Lock()
	slot, ok := s.bcast[seq]
	if !ok {
		slot = &bcastSlot{ready: make(chan struct{})}
		s.bcast[seq] = slot
	}
	if g.isRoot(root) {
		slot.payload = slices.Clone(payload)
		close(slot.ready)
	}
	s.mu.Unlock()

	select {
	case <-slot.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	out := slot.payload
	slot.delivered++
	if slot.delivered == len(s.ranks) {
		delete(s.bcast, seq)
	}
	s.mu.Unlock()

	return slices.Clone(out), nil
}

// isRoot reports whether this member's global rank is root.
func (g *loopbackGroup) isRoot(root int) bool {
	return g.shared.ranks[g.localRank] == root
}
