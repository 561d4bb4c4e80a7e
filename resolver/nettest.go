package resolver

import "github.com/groupmesh/groupmesh/types"

// nettestGroups resolves the network-diagnostic axis.
//
// The world is cut into consecutive chunks of nettestParallelSize
// ranks. Unlike every other axis this one tolerates a ragged tail: the
// final chunk holds whatever ranks remain, so no divisibility
// precondition applies and resolution cannot fail.
func nettestGroups(topo types.Topology) []types.Partition {
	chunk := topo.NettestParallelSize
	numGroups := (topo.WorldSize + chunk - 1) / chunk

	partitions := make([]types.Partition, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		ranks := make([]int, 0, chunk)
		for j := 0; j < chunk; j++ {
			if rank := i*chunk + j; rank < topo.WorldSize {
				ranks = append(ranks, rank)
			}
		}
		partitions = append(partitions, types.Partition{Mode: types.ModeNettest, Ranks: ranks})
	}

	return partitions
}
