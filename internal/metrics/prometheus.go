package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/stencil/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use, so constructing a collector
// that is never used registers nothing.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	phaseTransitions *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	rows             *prometheus.GaugeVec

	collectives        *prometheus.CounterVec
	collectiveDuration *prometheus.HistogramVec
	collectiveElements *prometheus.CounterVec
	sendRetries        *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "stencil" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "stencil"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.phaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "phase_transitions_total",
			Help:      "Total phase transitions by source and target phase.",
		}, []string{"from", "to"})

		p.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each phase in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms .. ~2m
		}, []string{"phase"})

		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total runs by outcome (success|failure).",
		}, []string{"result"})

		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		})

		p.rows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "rows",
			Help:      "Rows owned by each rank in the last run.",
		}, []string{"rank"})

		p.collectives = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "collectives_total",
			Help:      "Total collectives by op and outcome.",
		}, []string{"op", "result"})

		p.collectiveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "collective_duration_seconds",
			Help:      "Latency of collectives in seconds by op.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"})

		p.collectiveElements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "collective_elements_total",
			Help:      "Elements returned by successful collectives by op.",
		}, []string{"op"})

		p.sendRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "comm",
			Name:      "send_retries_total",
			Help:      "Transport delivery retries by reason (no_responders, timeout, disconnected).",
		}, []string{"reason"})

		p.reg.MustRegister(p.phaseTransitions)
		p.reg.MustRegister(p.phaseDuration)
		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.runDuration)
		p.reg.MustRegister(p.rows)
		p.reg.MustRegister(p.collectives)
		p.reg.MustRegister(p.collectiveDuration)
		p.reg.MustRegister(p.collectiveElements)
		p.reg.MustRegister(p.sendRetries)
	})
}

// EngineMetrics implementation

// RecordPhaseTransition counts the transition and observes the time spent in from.
func (p *PrometheusCollector) RecordPhaseTransition(_ int, from, to types.Phase, duration float64) {
	p.ensureRegistered()
	p.phaseTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.phaseDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordRun records the outcome and duration of a run.
func (p *PrometheusCollector) RecordRun(_ int, success bool, duration float64) {
	p.ensureRegistered()
	p.runs.WithLabelValues(result(success)).Inc()
	p.runDuration.Observe(duration)
}

// RecordRows sets the rows gauge for rank.
func (p *PrometheusCollector) RecordRows(rank int, rows int) {
	p.ensureRegistered()
	p.rows.WithLabelValues(strconv.Itoa(rank)).Set(float64(rows))
}

// CommMetrics implementation

// RecordCollective records one collective's outcome, latency and size.
func (p *PrometheusCollector) RecordCollective(op string, elements int, duration float64, success bool) {
	p.ensureRegistered()
	p.collectives.WithLabelValues(op, result(success)).Inc()
	p.collectiveDuration.WithLabelValues(op).Observe(duration)
	if success {
		p.collectiveElements.WithLabelValues(op).Add(float64(elements))
	}
}

// RecordSendRetry increments the retry counter for reason.
func (p *PrometheusCollector) RecordSendRetry(reason string) {
	p.ensureRegistered()
	p.sendRetries.WithLabelValues(reason).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
