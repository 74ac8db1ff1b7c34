package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordPhaseTransition(0, types.PhaseIdle, types.PhaseValidate, 0.1)
		metrics.RecordPhaseTransition(-1, types.Phase(99), types.Phase(100), -1)
		metrics.RecordRun(1, true, 2.5)
		metrics.RecordRun(1, false, 0)
		metrics.RecordRows(2, 17)
		metrics.RecordCollective("bcast", 2, 0.01, true)
		metrics.RecordCollective("", -1, -1, false)
		metrics.RecordSendRetry("no_responders")
	})
}

func TestNopMetricsImplementsCollector(_ *testing.T) {
	var _ types.MetricsCollector = (*NopMetrics)(nil)
}
