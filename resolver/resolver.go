package resolver

import (
	"fmt"

	"github.com/groupmesh/groupmesh/types"
)

// Resolve computes the complete ordered partition list for one parallel
// mode of the topology.
//
// The result covers every rank of the world: callers filter for the
// partitions containing their own rank. Order is deterministic and part
// of the contract: group construction walks the list in this exact
// order on every rank.
//
// Resolving ModeExpertData returns the expert partitions followed by
// the expert-data partitions, because the two axes are derived from the
// same decomposition and must be constructed together.
//
// Parameters:
//   - topo: The topology to resolve. Validated before dispatch.
//   - mode: The parallel axis to resolve.
//
// Returns:
//   - []types.Partition: Ordered partitions, each tagged with its mode
//   - error: types.ErrBadTopology when a precondition fails, or
//     types.ErrUnknownMode for a mode outside the defined set
func Resolve(topo types.Topology, mode types.ParallelMode) ([]types.Partition, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case types.ModeGlobal:
		return globalGroup(topo), nil
	case types.ModeData:
		return dataGroups(topo)
	case types.ModeModel:
		return modelGroups(topo)
	case types.ModePipeline:
		return pipelineGroups(topo)
	case types.ModeTensor:
		return tensorGroups(topo)
	case types.ModeZero1:
		return zero1Groups(topo)
	case types.ModeNettest:
		return nettestGroups(topo), nil
	case types.ModeExpert:
		return expertGroups(topo)
	case types.ModeExpertData:
		return expertDataGroups(topo)
	default:
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownMode, int(mode))
	}
}

// globalGroup returns the single partition containing every rank.
func globalGroup(topo types.Topology) []types.Partition {
	ranks := make([]int, topo.WorldSize)
	for i := range ranks {
		ranks[i] = i
	}

	return []types.Partition{{Mode: types.ModeGlobal, Ranks: ranks}}
}

// requireDivisible returns a wrapped ErrBadTopology unless a is an
// exact multiple of b.
func requireDivisible(a int, aName string, b int, bName string) error {
	if a%b != 0 {
		return fmt.Errorf("%w: %s (%d) is not divisible by %s (%d)",
			types.ErrBadTopology, aName, a, bName, b)
	}

	return nil
}
