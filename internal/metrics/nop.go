// Package metrics provides no-op and Prometheus implementations of
// types.MetricsCollector.
package metrics

import "github.com/arloliu/stencil/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default when no collector is configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	eng, err := stencil.NewEngine(&cfg, c, stencil.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// EngineMetrics implementation

// RecordPhaseTransition discards the phase transition metric.
func (n *NopMetrics) RecordPhaseTransition(_ /* rank */ int, _ /* from */, _ /* to */ types.Phase, _ /* duration */ float64) {
	// No-op
}

// RecordRun discards the run outcome metric.
func (n *NopMetrics) RecordRun(_ /* rank */ int, _ /* success */ bool, _ /* duration */ float64) {
	// No-op
}

// RecordRows discards the rows gauge.
func (n *NopMetrics) RecordRows(_ /* rank */, _ /* rows */ int) {
	// No-op
}

// CommMetrics implementation

// RecordCollective discards the collective metric.
func (n *NopMetrics) RecordCollective(_ /* op */ string, _ /* elements */ int, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordSendRetry discards the retry counter.
func (n *NopMetrics) RecordSendRetry(_ /* reason */ string) {
	// No-op
}
