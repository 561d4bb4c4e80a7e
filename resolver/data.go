package resolver

import "github.com/groupmesh/groupmesh/types"

// dataGroups resolves the data-parallel axis.
//
// Ranks holding the same model shard are strided across the world at
// interval worldSize/dataParallelSize, so group i is
//
//	{i, i+stride, i+2*stride, ...}
//
// for every i in [0, stride). One group exists per position inside a
// model replica.
func dataGroups(topo types.Topology) ([]types.Partition, error) {
	if err := requireDivisible(topo.WorldSize, "worldSize", topo.DataParallelSize, "dataParallelSize"); err != nil {
		return nil, err
	}

	stride := topo.WorldSize / topo.DataParallelSize

	partitions := make([]types.Partition, 0, stride)
	for i := 0; i < stride; i++ {
		ranks := make([]int, topo.DataParallelSize)
		for j := range ranks {
			ranks[j] = i + j*stride
		}
		partitions = append(partitions, types.Partition{Mode: types.ModeData, Ranks: ranks})
	}

	return partitions, nil
}
