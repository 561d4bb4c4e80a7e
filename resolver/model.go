package resolver

import (
	"fmt"

	"github.com/groupmesh/groupmesh/types"
)

// modelGroups resolves the model-parallel axis.
//
// A model group spans all ranks holding one model replica: the tensor
// and pipeline dimensions combined. Replicas occupy contiguous rank
// blocks of size tensorParallelSize*pipelineParallelSize.
func modelGroups(topo types.Topology) ([]types.Partition, error) {
	modelSize, err := modelParallelSize(topo)
	if err != nil {
		return nil, err
	}

	numGroups := topo.WorldSize / modelSize

	partitions := make([]types.Partition, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		ranks := make([]int, modelSize)
		for j := range ranks {
			ranks[j] = i*modelSize + j
		}
		partitions = append(partitions, types.Partition{Mode: types.ModeModel, Ranks: ranks})
	}

	return partitions, nil
}

// modelParallelSize returns tensor*pipeline, the width of one model
// replica, validating that the world is made of whole replicas.
func modelParallelSize(topo types.Topology) (int, error) {
	size := topo.TensorParallelSize * topo.PipelineParallelSize
	if topo.WorldSize%size != 0 {
		return 0, fmt.Errorf("%w: worldSize (%d) is not divisible by model replica size (%d)",
			types.ErrBadTopology, topo.WorldSize, size)
	}

	return size, nil
}
