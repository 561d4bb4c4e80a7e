package resolver

import "github.com/groupmesh/groupmesh/types"

// zero1Groups resolves the zero-redundancy optimizer sharding axis.
//
// Zero1 groups partition each data-parallel group: optimizer state is
// sharded across zero1ParallelSize of the dataParallelSize replicas.
// With blockSize = worldSize/dataParallelSize, the group for position i
// inside a replica and shard-set j is
//
//	{i + (j*zero1+k)*blockSize : k in [0, zero1)}
//
// so consecutive members sit one data-stride apart, exactly like the
// data groups they subdivide.
func zero1Groups(topo types.Topology) ([]types.Partition, error) {
	if err := requireDivisible(topo.WorldSize, "worldSize", topo.DataParallelSize, "dataParallelSize"); err != nil {
		return nil, err
	}
	if err := requireDivisible(topo.DataParallelSize, "dataParallelSize", topo.Zero1ParallelSize, "zero1ParallelSize"); err != nil {
		return nil, err
	}

	blockSize := topo.WorldSize / topo.DataParallelSize
	shardSets := topo.DataParallelSize / topo.Zero1ParallelSize

	partitions := make([]types.Partition, 0, blockSize*shardSets)
	for i := 0; i < blockSize; i++ {
		for j := 0; j < shardSets; j++ {
			ranks := make([]int, topo.Zero1ParallelSize)
			for k := range ranks {
				ranks[k] = i + (j*topo.Zero1ParallelSize+k)*blockSize
			}
			partitions = append(partitions, types.Partition{Mode: types.ModeZero1, Ranks: ranks})
		}
	}

	return partitions, nil
}
