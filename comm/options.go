package comm

import (
	"time"

	"github.com/arloliu/stencil/internal/logger"
	"github.com/arloliu/stencil/internal/metrics"
	"github.com/arloliu/stencil/types"
)

// Option configures a Comm or a transport.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  types.Logger
	metrics types.MetricsCollector
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return o
}

// WithTimeout bounds every collective call. Zero disables the bound and a
// stuck collective then waits for the caller's context.
//
// Parameters:
//   - d: Per-collective deadline
//
// Returns:
//   - Option: Functional option for New
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets a logger.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}
