package groupmesh

// Option configures a Bootstrapper with optional dependencies.
type Option func(*bootstrapOptions)

// bootstrapOptions holds optional Bootstrapper configuration.
type bootstrapOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewBootstrapper
//
// Example:
//
//	hooks := &groupmesh.Hooks{
//	    OnGroupCreated: func(ctx context.Context, entry groupmesh.Entry) error {
//	        return recordGroup(entry)
//	    },
//	}
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp, groupmesh.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *bootstrapOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewBootstrapper
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "trainer")
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp, groupmesh.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *bootstrapOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (slog and zap.SugaredLogger compatible)
//
// Returns:
//   - Option: Functional option for NewBootstrapper
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	bs, err := groupmesh.NewBootstrapper(&cfg, tp, groupmesh.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *bootstrapOptions) {
		o.logger = logger
	}
}
