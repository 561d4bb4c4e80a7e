package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groupmesh/groupmesh/types"
)

func TestNettestGroups(t *testing.T) {
	t.Parallel()

	t.Run("cuts even worlds into full chunks", func(t *testing.T) {
		topo := types.Topology{WorldSize: 8, NettestParallelSize: 4}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeNettest)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}, ranksOf(partitions))
	})

	t.Run("keeps a ragged tail chunk", func(t *testing.T) {
		topo := types.Topology{WorldSize: 10, NettestParallelSize: 4}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeNettest)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9}}, ranksOf(partitions))
	})

	t.Run("handles chunks larger than the world", func(t *testing.T) {
		topo := types.Topology{WorldSize: 3, NettestParallelSize: 8}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeNettest)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 1, 2}}, ranksOf(partitions))
	})
}
