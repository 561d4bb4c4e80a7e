package resolver

import (
	"fmt"

	"github.com/groupmesh/groupmesh/types"
)

// expertGroups resolves the standalone expert-parallel axis.
//
// Expert layers are sharded across interleaved ranks: with
// numGroups = worldSize/expertParallelSize, group i is
//
//	{i, i+numGroups, i+2*numGroups, ...}
//
// The axis currently requires expertParallelSize to equal
// dataParallelSize, which makes each expert group coincide with a
// data-parallel group.
//
// TODO: allow expertParallelSize < dataParallelSize once expert
// gradients can be reduced over a subset of each data group.
func expertGroups(topo types.Topology) ([]types.Partition, error) {
	if topo.ExpertParallelSize != topo.DataParallelSize {
		return nil, fmt.Errorf("%w: expertParallelSize (%d) must equal dataParallelSize (%d)",
			types.ErrBadTopology, topo.ExpertParallelSize, topo.DataParallelSize)
	}
	if err := requireDivisible(topo.WorldSize, "worldSize", topo.ExpertParallelSize, "expertParallelSize"); err != nil {
		return nil, err
	}

	numGroups := topo.WorldSize / topo.ExpertParallelSize

	partitions := make([]types.Partition, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		ranks := make([]int, 0, topo.ExpertParallelSize)
		for r := i; r < topo.WorldSize; r += numGroups {
			ranks = append(ranks, r)
		}
		partitions = append(partitions, types.Partition{Mode: types.ModeExpert, Ranks: ranks})
	}

	return partitions, nil
}

// expertDataGroups resolves the expert family: the expert-parallel
// groups and the expert-data-parallel groups that replicate them.
//
// The decomposition works inside each data-parallel group. Ranks with
// the same model-parallel position form a data group
// {i, i+modelSize, i+2*modelSize, ...}; each data group is sliced into
// consecutive chunks of expertParallelSize ranks (the expert groups),
// and transposing those chunks yields the expert-data groups that hold
// replicas of the same expert shard.
//
// For worldSize=8, modelSize=2, expertParallelSize=2 this produces
// expert groups [0 2] [4 6] [1 3] [5 7] and expert-data groups
// [0 4] [2 6] [1 5] [3 7].
//
// All expert partitions precede all expert-data partitions in the
// result, and that order is preserved during group construction.
func expertDataGroups(topo types.Topology) ([]types.Partition, error) {
	modelSize, err := modelParallelSize(topo)
	if err != nil {
		return nil, err
	}
	if got := topo.WorldSize / modelSize; got != topo.DataParallelSize {
		return nil, fmt.Errorf("%w: dataParallelSize (%d) does not match worldSize/modelSize (%d)",
			types.ErrBadTopology, topo.DataParallelSize, got)
	}
	if err := requireDivisible(topo.DataParallelSize, "dataParallelSize", topo.ExpertParallelSize, "expertParallelSize"); err != nil {
		return nil, err
	}

	expertSize := topo.ExpertParallelSize
	chunksPerGroup := topo.DataParallelSize / expertSize

	expert := make([]types.Partition, 0, modelSize*chunksPerGroup)
	expertData := make([]types.Partition, 0, modelSize*chunksPerGroup)

	for i := 0; i < modelSize; i++ {
		dataRanks := make([]int, 0, topo.DataParallelSize)
		for r := i; r < topo.WorldSize; r += modelSize {
			dataRanks = append(dataRanks, r)
		}

		// Slice the data group into expert chunks.
		chunks := make([][]int, 0, chunksPerGroup)
		for c := 0; c < chunksPerGroup; c++ {
			chunk := dataRanks[c*expertSize : (c+1)*expertSize]
			chunks = append(chunks, chunk)
			expert = append(expert, types.Partition{Mode: types.ModeExpert, Ranks: chunk})
		}

		// Transpose the chunks: column j collects the j-th member of
		// every chunk, giving the replicas of one expert shard.
		for j := 0; j < expertSize; j++ {
			ranks := make([]int, chunksPerGroup)
			for c := range chunks {
				ranks[c] = chunks[c][j]
			}
			expertData = append(expertData, types.Partition{Mode: types.ModeExpertData, Ranks: ranks})
		}
	}

	return append(expert, expertData...), nil
}
