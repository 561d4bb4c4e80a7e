package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groupmesh/groupmesh/types"
)

func ranksOf(partitions []types.Partition) [][]int {
	out := make([][]int, len(partitions))
	for i, p := range partitions {
		out[i] = p.Ranks
	}

	return out
}

func TestDataGroups(t *testing.T) {
	t.Parallel()

	t.Run("strides ranks across the world", func(t *testing.T) {
		topo := types.Topology{WorldSize: 8, DataParallelSize: 2}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeData)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 4}, {1, 5}, {2, 6}, {3, 7}}, ranksOf(partitions))
	})

	t.Run("degenerates to singletons when data size is 1", func(t *testing.T) {
		topo := types.Topology{WorldSize: 4, DataParallelSize: 1}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeData)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0}, {1}, {2}, {3}}, ranksOf(partitions))
	})

	t.Run("rejects a world that does not divide", func(t *testing.T) {
		topo := types.Topology{WorldSize: 7, DataParallelSize: 2}
		topo.SetDefaults()

		_, err := Resolve(topo, types.ModeData)
		require.ErrorIs(t, err, types.ErrBadTopology)
	})
}

func TestModelGroups(t *testing.T) {
	t.Parallel()

	t.Run("spans tensor and pipeline blocks", func(t *testing.T) {
		topo := types.Topology{WorldSize: 8, TensorParallelSize: 2, PipelineParallelSize: 2}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeModel)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}, ranksOf(partitions))
	})

	t.Run("rejects a world not made of whole replicas", func(t *testing.T) {
		topo := types.Topology{WorldSize: 10, TensorParallelSize: 2, PipelineParallelSize: 2}
		topo.SetDefaults()

		_, err := Resolve(topo, types.ModeModel)
		require.ErrorIs(t, err, types.ErrBadTopology)
	})
}

func TestTensorGroups(t *testing.T) {
	t.Parallel()

	t.Run("uses contiguous blocks", func(t *testing.T) {
		topo := types.Topology{WorldSize: 8, TensorParallelSize: 2}
		topo.SetDefaults()

		partitions, err := Resolve(topo, types.ModeTensor)
		require.NoError(t, err)
		require.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}}, ranksOf(partitions))
	})

	t.Run("rejects a world that does not divide", func(t *testing.T) {
		topo := types.Topology{WorldSize: 6, TensorParallelSize: 4}
		topo.SetDefaults()

		_, err := Resolve(topo, types.ModeTensor)
		require.ErrorIs(t, err, types.ErrBadTopology)
	})
}
