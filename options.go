package stencil

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
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
//   - Option: Functional option for NewEngine and RunLocal
//
// Example:
//
//	hooks := &stencil.Hooks{
//	    OnPhaseChanged: func(ctx context.Context, from, to stencil.Phase) error {
//	        log.Printf("%s -> %s", from, to)
//	        return nil
//	    },
//	}
//	eng, err := stencil.NewEngine(&cfg, c, stencil.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine and RunLocal
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "stencil")
//	eng, err := stencil.NewEngine(&cfg, c, stencil.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewEngine and RunLocal
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}
