package groupmesh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/groupmesh/groupmesh/internal/hooks"
	"github.com/groupmesh/groupmesh/internal/logging"
	"github.com/groupmesh/groupmesh/internal/metrics"
	"github.com/groupmesh/groupmesh/resolver"
	"github.com/groupmesh/groupmesh/types"
)

// Bootstrapper constructs every communication group of one rank.
//
// Bootstrapper is the main entry point of the groupmesh library. It
// resolves the topology into per-axis partitions, walks them in the
// globally agreed order, and performs the collective construction
// rendezvous for each partition containing the local rank. The result
// is a frozen Registry holding every group membership of the rank.
//
// Correctness rests on two rules that every rank of the job must obey:
//
//  1. Identical inputs. Every rank builds its Bootstrapper from the
//     same Config (same topology, same mode order). The resolvers are
//     deterministic, so identical inputs yield identical partition
//     lists with no communication.
//  2. Identical call order. Groups are constructed in resolution
//     order, mode by mode, partition by partition. Because every rank
//     walks the same sequence, members of a group always meet in the
//     same rendezvous at the same step and no construction call can
//     interleave with another for the same axis.
//
// A violated rule does not produce a clean error: ranks block inside a
// rendezvous their peers never enter, and fail only when GroupTimeout
// expires. The per-partition group name includes a membership
// fingerprint so that the most common divergence (ranks disagreeing on
// a group's members) fails fast as ErrMembershipMismatch instead.
//
// Lifecycle:
//   - Create with NewBootstrapper()
//   - Call Run() once; it blocks through every collective rendezvous
//   - Use the returned Registry for lookups; it is frozen and safe for
//     concurrent reads
//
// Run is single-shot. The parallel layout of a job is fixed at
// initialization; a failed bootstrap is fatal to the process because
// peer ranks may be parked in collectives that will never complete.
type Bootstrapper struct {
	cfg       Config
	transport Transport

	// Optional dependencies
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger

	// State management
	state atomic.Int32 // State

	// Lifecycle management
	mu       sync.Mutex
	started  bool
	registry *Registry
}

// NewBootstrapper creates a new Bootstrapper instance with the provided
// configuration and transport.
//
// Returns a concrete *Bootstrapper struct following the "accept
// interfaces, return structs" principle. Consumers can define their own
// interfaces for testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - transport: Transport bound to this rank's identity
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Bootstrapper: Initialized bootstrapper instance
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := groupmesh.DefaultConfig()
//	cfg.Topology = types.Topology{WorldSize: 8, DataParallelSize: 4, TensorParallelSize: 2}
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp)
func NewBootstrapper(cfg *Config, transport Transport, opts ...Option) (*Bootstrapper, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if transport == nil {
		return nil, ErrTransportRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Apply options
	options := &bootstrapOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	b := &Bootstrapper{
		cfg:       *cfg,
		transport: transport,
		hooks:     hooksInstance,
		metrics:   metricsCollector,
		logger:    loggerInstance,
	}

	b.state.Store(int32(StateInit))

	return b, nil
}

// Run performs the full bootstrap and returns the frozen registry.
//
// Run blocks through every collective construction rendezvous: the
// global group first, then every mode of Config.Modes in order. Every
// rank of the job must call Run with identical configuration; see the
// Bootstrapper type documentation for the correctness rules.
//
// All resolution happens before the first collective call, so a
// configuration error (wrapping types.ErrBadTopology) is returned
// before any peer rank can be left blocked.
//
// Parameters:
//   - ctx: Context for cancellation; BootstrapTimeout is applied on top
//     when configured
//
// Returns:
//   - *Registry: Frozen registry of every group this rank joined
//   - error: Resolution or construction error; construction failures
//     are fatal to the job and the process is expected to abort
func (b *Bootstrapper) Run(ctx context.Context) (*Registry, error) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()

		return nil, ErrAlreadyRun
	}
	b.started = true
	b.mu.Unlock()

	if b.cfg.BootstrapTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.BootstrapTimeout)
		defer cancel()
	}

	registry, err := b.run(ctx)
	if err != nil {
		b.transitionState(StateFailed)
		if b.hooks.OnError != nil {
			// The failure is fatal regardless of the hook's outcome.
			if hookErr := b.hooks.OnError(ctx, err); hookErr != nil {
				b.logger.Warn("OnError hook failed", "error", hookErr)
			}
		}

		return nil, err
	}

	b.mu.Lock()
	b.registry = registry
	b.mu.Unlock()

	return registry, nil
}

// run executes the bootstrap sequence. Split from Run so that the
// failure path is handled in one place.
func (b *Bootstrapper) run(ctx context.Context) (*Registry, error) {
	started := time.Now()

	// Phase 1: resolve every mode before the first collective call.
	// Resolution failures are deterministic, so every rank fails here
	// identically and nobody is left blocked in a rendezvous.
	b.transitionState(StateResolving)

	rank := b.transport.Rank()
	world := b.cfg.Topology.WorldSize
	if rank < 0 || rank >= world {
		return nil, fmt.Errorf("%w: rank %d, world size %d", ErrRankOutOfRange, rank, world)
	}

	b.logger.Info("bootstrap starting",
		"rank", rank,
		"worldSize", world,
		"modes", len(b.cfg.Modes)+1,
		"cpuGroups", b.cfg.CPUGroups,
	)

	order := append([]types.ParallelMode{types.ModeGlobal}, b.cfg.Modes...)
	resolved := make([][]types.Partition, 0, len(order))
	for _, mode := range order {
		partitions, err := resolver.Resolve(b.cfg.Topology, mode)
		if err != nil {
			return nil, fmt.Errorf("resolving %s groups: %w", mode, err)
		}

		b.metrics.RecordModeResolved(mode.String(), len(partitions))
		b.logger.Debug("mode resolved", "mode", mode, "partitions", len(partitions))
		resolved = append(resolved, partitions)
	}

	// Phase 2: construct groups in resolution order. Every rank walks
	// the same sequence, so members of each partition meet in the same
	// rendezvous at the same step.
	b.transitionState(StateConstructing)

	registry := newRegistry(rank, world)
	for i, mode := range order {
		joined, err := b.constructMode(ctx, registry, mode, resolved[i])
		if err != nil {
			return nil, err
		}

		if b.hooks.OnModeInitialized != nil {
			if hookErr := b.hooks.OnModeInitialized(ctx, mode, joined); hookErr != nil {
				b.logger.Warn("OnModeInitialized hook failed", "mode", mode, "error", hookErr)
			}
		}
	}

	registry.freeze()
	b.transitionState(StateReady)

	b.metrics.RecordBootstrapDuration(time.Since(started).Seconds())
	b.metrics.RecordRegistryEntries(len(registry.Entries()))
	b.logger.Info("bootstrap complete",
		"rank", rank,
		"entries", len(registry.Entries()),
		"elapsed", time.Since(started),
	)

	return registry, nil
}

// constructMode constructs this rank's groups for one mode and returns
// how many it joined.
//
// The partition loop must visit every partition, not just the rank's
// own: partition indices are part of the group name, and the index a
// member derives must match the index every other member derives.
// Non-member partitions are skipped without any transport call.
func (b *Bootstrapper) constructMode(ctx context.Context, registry *Registry, mode types.ParallelMode, partitions []types.Partition) (int, error) {
	rank := b.transport.Rank()
	joined := 0

	for idx, partition := range partitions {
		if !partition.Contains(rank) {
			continue
		}

		entry, err := b.constructGroup(ctx, idx, partition)
		if err != nil {
			return joined, err
		}

		registry.add(entry)
		joined++

		if b.hooks.OnGroupCreated != nil {
			if hookErr := b.hooks.OnGroupCreated(ctx, entry); hookErr != nil {
				b.logger.Warn("OnGroupCreated hook failed", "group", entry.Name, "error", hookErr)
			}
		}
	}

	return joined, nil
}

// constructGroup performs the rendezvous for one partition, with the
// CPU fallback group when configured.
func (b *Bootstrapper) constructGroup(ctx context.Context, idx int, partition types.Partition) (Entry, error) {
	name := partition.GroupName(idx)

	b.logger.Debug("constructing group",
		"group", name,
		"size", partition.Size(),
		"localRank", partition.LocalRank(b.transport.Rank()),
	)

	started := time.Now()
	group, err := b.transport.CreateGroup(ctx, types.GroupRequest{
		Name:    name,
		Ranks:   partition.Ranks,
		Backend: types.BackendDefault,
		Timeout: b.cfg.GroupTimeout,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("constructing group %s: %w", name, err)
	}
	b.metrics.RecordGroupConstruction(partition.Mode.String(), string(types.BackendDefault), time.Since(started).Seconds())

	var cpuGroup types.Group
	if b.cfg.CPUGroups {
		cpuGroup, err = b.constructCPUGroup(ctx, name, partition, group)
		if err != nil {
			return Entry{}, err
		}
	}

	return Entry{
		Mode:      partition.Mode,
		Index:     idx,
		Name:      name,
		Ranks:     partition.Ranks,
		LocalRank: group.LocalRank(),
		Group:     group,
		CPUGroup:  cpuGroup,
	}, nil
}

// constructCPUGroup returns the CPU-side fallback handle for a
// partition. When the primary backend is already CPU capable the
// primary handle is reused; constructing a second identical group would
// double every rendezvous for no benefit.
//
// The capability check must agree across all members (it reflects the
// job-wide backend choice), otherwise some members would enter a
// BackendCPU rendezvous their peers skip.
func (b *Bootstrapper) constructCPUGroup(ctx context.Context, name string, partition types.Partition, primary types.Group) (types.Group, error) {
	if b.transport.CPUCapable() {
		return primary, nil
	}

	started := time.Now()
	cpuGroup, err := b.transport.CreateGroup(ctx, types.GroupRequest{
		Name:    name + "-cpu",
		Ranks:   partition.Ranks,
		Backend: types.BackendCPU,
		Timeout: b.cfg.GroupTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing cpu group %s: %w", name, err)
	}
	b.metrics.RecordGroupConstruction(partition.Mode.String(), string(types.BackendCPU), time.Since(started).Seconds())

	return cpuGroup, nil
}

// State returns the current bootstrap lifecycle state.
func (b *Bootstrapper) State() State {
	return State(b.state.Load())
}

// Registry returns the frozen registry, or nil before Run completes
// successfully.
func (b *Bootstrapper) Registry() *Registry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.registry
}

// transitionState moves the lifecycle to next, logging illegal
// transitions instead of failing: the lifecycle is advisory state for
// observers, never a correctness mechanism.
func (b *Bootstrapper) transitionState(next State) {
	current := b.State()
	if !current.CanTransitionTo(next) {
		// Terminal states absorb late failure transitions quietly.
		if current == StateFailed || current == StateReady {
			return
		}
		b.logger.Warn("illegal state transition", "from", current, "to", next)
	}

	b.state.Store(int32(next))
	b.logger.Debug("state transition", "from", current, "to", next)
}
