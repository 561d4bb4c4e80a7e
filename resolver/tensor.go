package resolver

import "github.com/groupmesh/groupmesh/types"

// tensorGroups resolves the tensor-parallel axis.
//
// Tensor-parallel peers exchange activations on every layer, so they
// are placed on adjacent ranks: contiguous blocks of
// tensorParallelSize.
func tensorGroups(topo types.Topology) ([]types.Partition, error) {
	if err := requireDivisible(topo.WorldSize, "worldSize", topo.TensorParallelSize, "tensorParallelSize"); err != nil {
		return nil, err
	}

	numGroups := topo.WorldSize / topo.TensorParallelSize

	partitions := make([]types.Partition, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		ranks := make([]int, topo.TensorParallelSize)
		for j := range ranks {
			ranks[j] = i*topo.TensorParallelSize + j
		}
		partitions = append(partitions, types.Partition{Mode: types.ModeTensor, Ranks: ranks})
	}

	return partitions, nil
}
