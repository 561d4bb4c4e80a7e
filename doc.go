// Package groupmesh bootstraps the communication groups of a
// multi-dimensional parallel training topology.
//
// Groupmesh partitions a flat world of ranks along every axis of the
// topology (data, model, tensor, pipeline, zero1, nettest, and the
// expert family), constructs a collective communication group for each
// partition the local rank belongs to, and returns a frozen registry
// mapping each axis to the rank's group handle, local rank and peers.
//
// # Quick Start
//
// Basic usage over the NATS rendezvous transport:
//
//	import (
//	    "github.com/groupmesh/groupmesh"
//	    "github.com/groupmesh/groupmesh/transport"
//	)
//
//	cfg := groupmesh.DefaultConfig()
//	cfg.Topology = groupmesh.Topology{
//	    WorldSize:            8,
//	    DataParallelSize:     4,
//	    TensorParallelSize:   2,
//	    PipelineParallelSize: 1,
//	}
//
//	tp, err := transport.NewNATS(ctx, natsConn, transport.NATSConfig{
//	    Rank:      rank,
//	    WorldSize: 8,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry, err := bs.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // fatal: peers may be blocked mid-rendezvous
//	}
//
//	dp, _ := registry.Lookup(groupmesh.ModeData)
//	fmt.Printf("data group %v, local rank %d\n", dp.Ranks, dp.LocalRank)
//
// # Key Properties
//
//   - Deterministic Resolution: Every rank derives identical partition
//     lists from identical configuration, with no communication
//   - Coordinator-Free Construction: Group membership is agreed through
//     name-based rendezvous; order, not locks, prevents interleaving
//   - Fail-Fast Configuration: Divisibility violations surface on every
//     rank before the first collective call, never as a hang
//   - Frozen Registry: Built once during bootstrap, immutable after,
//     safe for unsynchronized concurrent reads
//
// # Architecture
//
// Bootstrap progresses through a state machine:
//
//	INIT → RESOLVING → CONSTRUCTING → READY
//
// Resolution computes all partitions of all axes up front; construction
// then walks them in a fixed shared order, performing one collective
// rendezvous per partition containing the local rank. Any failure moves
// to the terminal FAILED state, and the process is expected to abort.
//
// # Advanced Usage
//
// CPU fallback groups and lifecycle hooks:
//
//	cfg.CPUGroups = true // second handle per group on the CPU fabric
//
//	hooks := &groupmesh.Hooks{
//	    OnGroupCreated: func(ctx context.Context, entry groupmesh.Entry) error {
//	        log.Printf("joined %s as %d/%d", entry.Name, entry.LocalRank, entry.Size())
//	        return nil
//	    },
//	}
//
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp,
//	    groupmesh.WithHooks(hooks),
//	    groupmesh.WithLogger(logger),
//	)
//
// See the examples/ directory for complete working examples.
package groupmesh
