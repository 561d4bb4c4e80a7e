package groupmesh

import (
	"fmt"
	"slices"

	"github.com/groupmesh/groupmesh/types"
)

// Registry holds every group membership of one rank.
//
// A Registry is produced by Bootstrapper.Run and frozen from then on:
// the parallel layout of a job is fixed at initialization, so lookups
// never race with writes and need no locking. All methods are safe for
// concurrent use after bootstrap.
//
// Each parallel mode maps to exactly one entry per rank, because every
// axis partitions the world. The expert family registers two modes for
// the same rank (ModeExpert and ModeExpertData), still one entry each.
type Registry struct {
	rank    int
	world   int
	order   []types.ParallelMode
	entries map[types.ParallelMode][]Entry
	frozen  bool
}

// newRegistry creates an empty, unfrozen registry for one rank.
func newRegistry(rank, world int) *Registry {
	return &Registry{
		rank:    rank,
		world:   world,
		entries: make(map[types.ParallelMode][]Entry),
	}
}

// add registers one entry. Only the bootstrapper calls it; calling
// after freeze is a programming error.
func (r *Registry) add(entry Entry) {
	if r.frozen {
		panic("groupmesh: registry is frozen")
	}

	if _, seen := r.entries[entry.Mode]; !seen {
		r.order = append(r.order, entry.Mode)
	}
	r.entries[entry.Mode] = append(r.entries[entry.Mode], entry)
}

// freeze makes the registry immutable.
func (r *Registry) freeze() {
	r.frozen = true
}

// Rank returns the owning rank's global rank.
func (r *Registry) Rank() int {
	return r.rank
}

// WorldSize returns the total number of ranks in the job.
func (r *Registry) WorldSize() int {
	return r.world
}

// Has reports whether the rank holds a group for the mode.
func (r *Registry) Has(mode types.ParallelMode) bool {
	return len(r.entries[mode]) > 0
}

// Lookup returns the rank's entry for the mode.
//
// Returns:
//   - Entry: The registered group membership
//   - error: types.ErrModeNotRegistered when the rank holds no group
//     for the mode
func (r *Registry) Lookup(mode types.ParallelMode) (Entry, error) {
	entries := r.entries[mode]
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w: %s", types.ErrModeNotRegistered, mode)
	}

	return entries[0], nil
}

// LookupAll returns a copy of every entry the rank holds for the mode.
// The result is empty when the mode is not registered.
func (r *Registry) LookupAll(mode types.ParallelMode) []Entry {
	return slices.Clone(r.entries[mode])
}

// LocalRank returns the rank's position inside its group for the mode.
func (r *Registry) LocalRank(mode types.ParallelMode) (int, error) {
	entry, err := r.Lookup(mode)
	if err != nil {
		return 0, err
	}

	return entry.LocalRank, nil
}

// GroupSize returns the size of the rank's group for the mode.
func (r *Registry) GroupSize(mode types.ParallelMode) (int, error) {
	entry, err := r.Lookup(mode)
	if err != nil {
		return 0, err
	}

	return entry.Size(), nil
}

// Ranks returns a copy of the ordered global membership of the rank's
// group for the mode.
func (r *Registry) Ranks(mode types.ParallelMode) ([]int, error) {
	entry, err := r.Lookup(mode)
	if err != nil {
		return nil, err
	}

	return slices.Clone(entry.Ranks), nil
}

// Group returns the primary communication handle for the mode.
func (r *Registry) Group(mode types.ParallelMode) (types.Group, error) {
	entry, err := r.Lookup(mode)
	if err != nil {
		return nil, err
	}

	return entry.Group, nil
}

// CPUGroup returns the CPU-side fallback handle for the mode.
//
// The handle is nil when bootstrap ran without CPUGroups. When the
// transport's primary backend is CPU capable, the returned handle is
// the primary handle itself.
func (r *Registry) CPUGroup(mode types.ParallelMode) (types.Group, error) {
	entry, err := r.Lookup(mode)
	if err != nil {
		return nil, err
	}

	return entry.CPUGroup, nil
}

// Modes returns the registered modes in construction order.
func (r *Registry) Modes() []types.ParallelMode {
	return slices.Clone(r.order)
}

// Entries returns every entry the rank holds, in construction order.
func (r *Registry) Entries() []Entry {
	var out []Entry
	for _, mode := range r.order {
		out = append(out, r.entries[mode]...)
	}

	return out
}

// ExpertGroupNames returns the optimizer bucket names derived from the
// rank's expert groups, in registration order.
//
// Each expert group of size > 1 contributes "moe_ep_size_<size>"; the
// names key the expert parameter groups during optimizer setup. The
// result is empty when the rank holds no expert groups or expert
// parallelism is disabled.
func (r *Registry) ExpertGroupNames() []string {
	var names []string
	for _, entry := range r.entries[types.ModeExpert] {
		if entry.Size() <= 1 {
			continue
		}
		name := fmt.Sprintf("moe_ep_size_%d", entry.Size())
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}
