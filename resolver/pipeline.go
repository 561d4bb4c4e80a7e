package resolver

import "github.com/groupmesh/groupmesh/types"

// pipelineGroups resolves the pipeline-parallel axis.
//
// The world splits into dataParallelSize contiguous blocks of
// worldSize/dataParallelSize ranks; each block holds one data-parallel
// replica's model shards. Within a block, a pipeline group links one
// rank per stage at stride blockSize/pipelineParallelSize:
//
//	{base+j, base+j+stage, base+j+2*stage, ...}
//
// for block i with base = i*blockSize and every offset j in [0, stage).
func pipelineGroups(topo types.Topology) ([]types.Partition, error) {
	if err := requireDivisible(topo.WorldSize, "worldSize", topo.DataParallelSize, "dataParallelSize"); err != nil {
		return nil, err
	}

	blockSize := topo.WorldSize / topo.DataParallelSize
	if err := requireDivisible(blockSize, "worldSize/dataParallelSize", topo.PipelineParallelSize, "pipelineParallelSize"); err != nil {
		return nil, err
	}

	stage := blockSize / topo.PipelineParallelSize

	partitions := make([]types.Partition, 0, topo.DataParallelSize*stage)
	for i := 0; i < topo.DataParallelSize; i++ {
		for j := 0; j < stage; j++ {
			ranks := make([]int, 0, topo.PipelineParallelSize)
			for r := i*blockSize + j; r < (i+1)*blockSize; r += stage {
				ranks = append(ranks, r)
			}
			partitions = append(partitions, types.Partition{Mode: types.ModePipeline, Ranks: ranks})
		}
	}

	return partitions, nil
}
