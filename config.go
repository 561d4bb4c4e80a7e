package groupmesh

import (
	"fmt"
	"slices"
	"time"

	"github.com/groupmesh/groupmesh/types"
)

// ============================================================================
// Bootstrap timing model
// ============================================================================
//
// Group construction is collective: every member of a group blocks inside
// the same CreateGroup call until the last member arrives. Two timeouts
// bound that blocking:
//
//	GroupTimeout      - per construction call. The dominant failure it
//	                    catches is a peer that died before reaching the
//	                    rendezvous; generous values avoid false positives
//	                    on large worlds where thousands of ranks schedule
//	                    their calls at slightly different times.
//	BootstrapTimeout  - whole Run() invocation, all groups included.
//	                    Zero disables it; the caller's context still
//	                    applies.
//
// A timeout is fatal. Peer ranks may be parked in a rendezvous that will
// never complete, so the only safe reaction is to abort the process and
// restart the job.
//
// ============================================================================

// Config is the configuration for the Bootstrapper.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h"
// when loaded from YAML.
type Config struct {
	// Topology declares the parallel layout being bootstrapped.
	Topology types.Topology `yaml:"topology"`

	// Modes is the group-construction order. Every rank of a job must
	// use the same list; the deterministic order is what keeps ranks
	// meeting in the same rendezvous at the same step.
	//
	// Leave empty to use DefaultModes, which covers every axis and
	// includes the expert family when the topology enables it. The
	// global group is always constructed first and is not listed here.
	Modes []types.ParallelMode `yaml:"modes"`

	// CPUGroups requests a CPU-side fallback group alongside every
	// primary group. When the transport's primary backend is already
	// CPU capable the fallback aliases the primary handle instead of
	// constructing a second group.
	CPUGroups bool `yaml:"cpuGroups"`

	// GroupTimeout bounds each group-construction rendezvous.
	GroupTimeout time.Duration `yaml:"groupTimeout"`

	// BootstrapTimeout bounds the whole bootstrap. Zero disables the
	// bound (the Run context still applies).
	BootstrapTimeout time.Duration `yaml:"bootstrapTimeout"`
}

// DefaultModes returns the canonical construction order for every
// parallel axis.
//
// The order runs from coarsest to finest: data, model, tensor,
// pipeline, zero1, nettest, and finally the expert family when
// withExpert is true. ModeGlobal is not included; the bootstrapper
// always constructs the global group first.
//
// Parameters:
//   - withExpert: Include ModeExpertData (set when expertParallelSize > 1)
//
// Returns:
//   - []types.ParallelMode: Construction order shared by every rank
func DefaultModes(withExpert bool) []types.ParallelMode {
	modes := []types.ParallelMode{
		types.ModeData,
		types.ModeModel,
		types.ModeTensor,
		types.ModePipeline,
		types.ModeZero1,
		types.ModeNettest,
	}
	if withExpert {
		modes = append(modes, types.ModeExpertData)
	}

	return modes
}

// DefaultConfig returns a Config with sensible defaults.
//
// The topology is left at the single-rank default and must be replaced
// with the job's real layout.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Topology:         types.DefaultTopology(),
		GroupTimeout:     30 * time.Minute,
		BootstrapTimeout: 0, // Unbounded - large jobs gate startup externally
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	cfg.Topology.SetDefaults()

	if cfg.Modes == nil {
		cfg.Modes = DefaultModes(cfg.Topology.ExpertParallelSize > 1)
	}
	if cfg.GroupTimeout == 0 {
		cfg.GroupTimeout = defaults.GroupTimeout
	}
}

// Validate checks configuration invariants that do not depend on the
// transport.
//
// Per-axis divisibility rules are deliberately not checked here: they
// belong to the resolvers, which every rank runs before any collective
// call. Validate covers the rules that make the mode list itself
// coherent:
//   - Topology axis sizes are positive
//   - Every listed mode is a defined, non-global mode
//   - No mode appears twice
//   - ModeExpert and ModeExpertData are mutually exclusive (the
//     expert-data resolver already registers the expert groups)
//   - Timeouts are non-negative and GroupTimeout is positive
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if err := cfg.Topology.Validate(); err != nil {
		return err
	}

	for i, mode := range cfg.Modes {
		if !mode.Valid() {
			return fmt.Errorf("%w: modes[%d]", types.ErrUnknownMode, i)
		}
		if mode == types.ModeGlobal {
			return fmt.Errorf("modes[%d]: the global group is always constructed first and must not be listed", i)
		}
		if slices.Index(cfg.Modes, mode) != i {
			return fmt.Errorf("modes[%d]: duplicate mode %q", i, mode)
		}
	}

	if slices.Contains(cfg.Modes, types.ModeExpert) && slices.Contains(cfg.Modes, types.ModeExpertData) {
		return fmt.Errorf("modes must not list both %q and %q: resolving %q already yields the expert groups",
			types.ModeExpert, types.ModeExpertData, types.ModeExpertData)
	}

	if cfg.GroupTimeout <= 0 {
		return fmt.Errorf("GroupTimeout must be > 0, got %v", cfg.GroupTimeout)
	}
	if cfg.BootstrapTimeout < 0 {
		return fmt.Errorf("BootstrapTimeout must be >= 0, got %v", cfg.BootstrapTimeout)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewBootstrapper() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Warn if GroupTimeout is short enough to misfire on large worlds.
	if cfg.GroupTimeout < 30*time.Second {
		logger.Warn(
			"GroupTimeout is very short, slow ranks may be misreported as failed",
			"groupTimeout", cfg.GroupTimeout,
			"recommended", "30s or higher",
		)
	}

	// Warn if the whole-bootstrap bound cannot fit a single construction.
	if cfg.BootstrapTimeout > 0 && cfg.BootstrapTimeout < cfg.GroupTimeout {
		logger.Warn(
			"BootstrapTimeout is below GroupTimeout, bootstrap may expire before a single rendezvous does",
			"bootstrapTimeout", cfg.BootstrapTimeout,
			"groupTimeout", cfg.GroupTimeout,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are far shorter than production defaults so that a
// genuinely missing peer fails a test in seconds rather than minutes.
// Use DefaultConfig() for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := groupmesh.TestConfig()
//	cfg.Topology = types.Topology{WorldSize: 4, DataParallelSize: 2, TensorParallelSize: 2}
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.GroupTimeout = 5 * time.Second      // 360x faster
	cfg.BootstrapTimeout = 30 * time.Second // Bounded - tests must not hang

	return cfg
}
