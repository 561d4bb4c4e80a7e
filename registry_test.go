package groupmesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groupmesh/groupmesh/types"
)

func registryEntry(mode ParallelMode, idx int, ranks []int, localRank int) Entry {
	partition := types.Partition{Mode: mode, Ranks: ranks}

	return Entry{
		Mode:      mode,
		Index:     idx,
		Name:      partition.GroupName(idx),
		Ranks:     ranks,
		LocalRank: localRank,
		Group: &stubGroup{
			name:      partition.GroupName(idx),
			ranks:     ranks,
			localRank: localRank,
			backend:   types.BackendDefault,
		},
	}
}

func testRegistry() *Registry {
	r := newRegistry(2, 8)
	r.add(registryEntry(ModeGlobal, 0, []int{0, 1, 2, 3, 4, 5, 6, 7}, 2))
	r.add(registryEntry(ModeData, 0, []int{0, 2, 4, 6}, 1))
	r.add(registryEntry(ModeModel, 1, []int{2, 3}, 0))
	r.add(registryEntry(ModeExpert, 0, []int{0, 2}, 1))
	r.add(registryEntry(ModeExpertData, 1, []int{2, 6}, 0))
	r.freeze()

	return r
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	require.Equal(t, 2, r.Rank())
	require.Equal(t, 8, r.WorldSize())

	entry, err := r.Lookup(ModeData)
	require.NoError(t, err)
	require.Equal(t, ModeData, entry.Mode)
	require.Equal(t, []int{0, 2, 4, 6}, entry.Ranks)
	require.Equal(t, 1, entry.LocalRank)
	require.Equal(t, 4, entry.Size())

	require.True(t, r.Has(ModeExpert))
	require.False(t, r.Has(ModeTensor))

	_, err = r.Lookup(ModeTensor)
	require.ErrorIs(t, err, types.ErrModeNotRegistered)

	_, err = r.LocalRank(ModeTensor)
	require.ErrorIs(t, err, types.ErrModeNotRegistered)
}

func TestRegistry_Accessors(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	localRank, err := r.LocalRank(ModeModel)
	require.NoError(t, err)
	require.Equal(t, 0, localRank)

	size, err := r.GroupSize(ModeGlobal)
	require.NoError(t, err)
	require.Equal(t, 8, size)

	ranks, err := r.Ranks(ModeExpertData)
	require.NoError(t, err)
	require.Equal(t, []int{2, 6}, ranks)

	group, err := r.Group(ModeData)
	require.NoError(t, err)
	require.Equal(t, 1, group.LocalRank())

	// No CPU fallback was registered.
	cpuGroup, err := r.CPUGroup(ModeData)
	require.NoError(t, err)
	require.Nil(t, cpuGroup)
}

func TestRegistry_Order(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	// Modes and entries come back in registration order.
	require.Equal(t,
		[]ParallelMode{ModeGlobal, ModeData, ModeModel, ModeExpert, ModeExpertData},
		r.Modes())

	entries := r.Entries()
	require.Len(t, entries, 5)
	for i, mode := range r.Modes() {
		require.Equal(t, mode, entries[i].Mode)
	}
}

func TestRegistry_ExpertGroupNames(t *testing.T) {
	t.Parallel()

	t.Run("expert groups registered", func(t *testing.T) {
		t.Parallel()

		r := testRegistry()
		require.Equal(t, []string{"moe_ep_size_2"}, r.ExpertGroupNames())
	})

	t.Run("singleton expert groups excluded", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(0, 2)
		r.add(registryEntry(ModeExpert, 0, []int{0}, 0))
		r.freeze()

		require.Empty(t, r.ExpertGroupNames())
	})

	t.Run("no expert parallelism", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(0, 2)
		r.add(registryEntry(ModeData, 0, []int{0, 1}, 0))
		r.freeze()

		require.Empty(t, r.ExpertGroupNames())
	})
}

func TestRegistry_FrozenPanicsOnAdd(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	require.Panics(t, func() {
		r.add(registryEntry(ModeTensor, 0, []int{2, 3}, 0))
	})
}

func TestRegistry_ResultsAreCopies(t *testing.T) {
	t.Parallel()

	r := testRegistry()

	ranks, err := r.Ranks(ModeData)
	require.NoError(t, err)
	ranks[0] = 99

	again, err := r.Ranks(ModeData)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 4, 6}, again)

	modes := r.Modes()
	modes[0] = ModeTensor
	require.Equal(t, ModeGlobal, r.Modes()[0])
}
