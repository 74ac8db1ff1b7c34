package stencil

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arloliu/stencil/internal/hooks"
	"github.com/arloliu/stencil/internal/logger"
	"github.com/arloliu/stencil/internal/metrics"
	"github.com/arloliu/stencil/kernel"
	"github.com/arloliu/stencil/partition"
)

// Engine runs the distributed smoothing pipeline on one rank.
//
// Every rank of a world owns one Engine over its own Communicator and calls
// Run with the same sequence of inputs. The coordinator (rank 0) supplies the
// encoded input and receives the output; other ranks pass nil and get nil.
//
// A run walks the phases:
//
//	Idle → Validate → Prepare → Run → Finalize → Idle
//
// A failed run stops in Failed until the next run starts. A run rejected
// for bad input leaves the world in step and the next run proceeds. A run
// that fails with ErrCollectiveFailure does not: ranks may disagree on how
// far they got, so every later Run on that engine returns
// ErrCollectiveFailure at once. Build new engines over fresh communicators
// to continue.
//
// Validate ends with a broadcast verdict so that every rank agrees to abort
// before any shape-dependent collective. Prepare broadcasts the shape and
// computes the partition and halo plan locally. Run scatters halo-extended
// blocks, applies the kernel and gathers the owned rows. Finalize checks the
// gathered size on the coordinator.
//
// Thread Safety:
//   - Phase and Rank are safe for concurrent use
//   - Run is not reentrant; a concurrent call returns ErrRunInProgress
type Engine struct {
	cfg  Config
	comm Communicator

	hooks   Hooks
	metrics MetricsCollector
	logger  Logger

	phase      atomic.Int32 // Phase
	phaseStart time.Time
	running    atomic.Bool
	broken     atomic.Pointer[error]
}

// NewEngine creates an engine for the communicator's rank.
//
// Parameters:
//   - cfg: Configuration; missing fields take defaults
//   - c: Communicator of this rank; its Size must equal cfg.Workers
//   - opts: Optional hooks, metrics and logger
//
// Returns:
//   - *Engine: Idle engine
//   - error: ErrInvalidConfig or ErrCommunicatorRequired
//
// Example:
//
//	world := comm.NewLocalWorld(cfg.Workers)
//	eng, err := stencil.NewEngine(&cfg, comm.New(world[rank]))
//	out, err := eng.Run(ctx, input)
func NewEngine(cfg *Config, c Communicator, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if c == nil {
		return nil, ErrCommunicatorRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Size() != cfg.Workers {
		return nil, fmt.Errorf("%w: communicator has %d ranks, Workers is %d", ErrInvalidConfig, c.Size(), cfg.Workers)
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	if c.Rank() == Coordinator {
		cfg.ValidateWithWarnings(loggerInstance)
	}

	e := &Engine{
		cfg:     *cfg,
		comm:    c,
		hooks:   hooks.WithDefaults(options.hooks),
		metrics: metricsCollector,
		logger:  loggerInstance,
	}
	e.phase.Store(int32(PhaseIdle))

	return e, nil
}

// Rank returns the engine's rank.
func (e *Engine) Rank() int {
	return e.comm.Rank()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Run smooths one image across the world.
//
// Every rank must call Run; only the coordinator's input is read and only
// the coordinator receives the output.
//
// Parameters:
//   - ctx: Context bounding every collective of the run
//   - input: Encoded input [H, Wd, pixels...] on the coordinator, ignored elsewhere
//
// Returns:
//   - []int: H*Wd smoothed pixels on the coordinator, nil on other ranks
//   - error: ErrMalformedShape or ErrSizeMismatch on the coordinator for bad
//     input (ErrRejected wrapping the same cause elsewhere),
//     ErrCollectiveFailure when communication fails now or failed in an
//     earlier run, ErrRunInProgress when called concurrently
func (e *Engine) Run(ctx context.Context, input []int) ([]int, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer e.running.Store(false)

	if cause := e.broken.Load(); cause != nil {
		return nil, fmt.Errorf("%w: engine unusable after earlier failure: %v", ErrCollectiveFailure, *cause)
	}

	start := time.Now()
	e.phaseStart = start

	out, err := e.run(ctx, input)
	duration := time.Since(start).Seconds()
	if err != nil {
		failed := e.Phase()
		e.transition(ctx, PhaseFailed)
		e.fail(ctx, failed, err)
		e.metrics.RecordRun(e.Rank(), false, duration)
		if errors.Is(err, ErrCollectiveFailure) {
			e.broken.CompareAndSwap(nil, &err)
		}

		return nil, err
	}

	e.transition(ctx, PhaseIdle)
	e.metrics.RecordRun(e.Rank(), true, duration)
	if e.isCoordinator() {
		e.logger.Info("run completed", "rank", e.Rank(), "workers", e.comm.Size(), "elements", len(out), "duration", time.Since(start))
	}

	return out, nil
}

func (e *Engine) run(ctx context.Context, input []int) ([]int, error) {
	e.transition(ctx, PhaseValidate)
	shape, err := e.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	e.transition(ctx, PhasePrepare)
	plan, err := e.prepare(ctx, shape)
	if err != nil {
		return nil, err
	}

	e.transition(ctx, PhaseRun)
	out, err := e.execute(ctx, plan, input)
	if err != nil {
		return nil, err
	}

	e.transition(ctx, PhaseFinalize)
	if e.isCoordinator() && len(out) != shape.Elements() {
		return nil, fmt.Errorf("%w: gathered %d elements for %s", ErrOutputMismatch, len(out), shape)
	}

	return out, nil
}

// validate checks the input on the coordinator and broadcasts the verdict.
func (e *Engine) validate(ctx context.Context, input []int) (Shape, error) {
	var (
		shape   Shape
		verr    error
		verdict []int
	)
	if e.isCoordinator() {
		shape, verr = Validate(input)
		verdict = []int{verdictOf(verr)}
	}

	got, err := e.comm.Bcast(ctx, Coordinator, verdict)
	if err != nil {
		return Shape{}, fmt.Errorf("broadcast verdict: %w", err)
	}
	if len(got) != 1 {
		return Shape{}, fmt.Errorf("%w: verdict has %d elements", ErrCollectiveFailure, len(got))
	}

	if got[0] != verdictAccept {
		if e.isCoordinator() {
			return Shape{}, verr
		}

		return Shape{}, rejection(got[0])
	}

	return shape, nil
}

// prepare broadcasts the shape and computes the plan on every rank.
func (e *Engine) prepare(ctx context.Context, shape Shape) (partition.Plan, error) {
	var dims []int
	if e.isCoordinator() {
		dims = []int{shape.Height, shape.Width}
	}

	got, err := e.comm.Bcast(ctx, Coordinator, dims)
	if err != nil {
		return partition.Plan{}, fmt.Errorf("broadcast shape: %w", err)
	}
	if len(got) != HeaderLen {
		return partition.Plan{}, fmt.Errorf("%w: shape has %d elements", ErrCollectiveFailure, len(got))
	}

	plan := partition.NewPlan(Shape{Height: got[0], Width: got[1]}, e.comm.Size())
	block := plan.Blocks[e.Rank()]
	e.metrics.RecordRows(e.Rank(), block.Count)
	e.logger.Debug("plan ready", "rank", e.Rank(), "shape", plan.Shape.String(), "rows", block.Count, "offset", block.Offset)

	return plan, nil
}

// execute scatters halo-extended blocks, smooths them and gathers the result.
func (e *Engine) execute(ctx context.Context, plan partition.Plan, input []int) ([]int, error) {
	var pixels []int
	if e.isCoordinator() {
		pixels = input[HeaderLen:]
	}

	block, err := e.comm.Scatterv(ctx, Coordinator, pixels, plan.ScatterCounts(), plan.ScatterDispls())
	if err != nil {
		return nil, fmt.Errorf("scatter blocks: %w", err)
	}

	halo := plan.Halos[e.Rank()]
	if len(block) != halo.ScatterCount {
		return nil, fmt.Errorf("%w: received %d elements, expected %d", ErrCollectiveFailure, len(block), halo.ScatterCount)
	}

	local := kernel.Apply(block, halo.Rows, plan.Shape.Width, halo.ExtendedRows, halo.Top)

	out, err := e.comm.Gatherv(ctx, Coordinator, local, plan.GatherCounts(), plan.GatherDispls())
	if err != nil {
		return nil, fmt.Errorf("gather blocks: %w", err)
	}

	return out, nil
}

// transition moves the engine to phase to, reporting it to logs, metrics and hooks.
func (e *Engine) transition(ctx context.Context, to Phase) {
	from := Phase(e.phase.Swap(int32(to))) //nolint:gosec // Phase values are a controlled enum
	now := time.Now()
	elapsed := now.Sub(e.phaseStart).Seconds()
	e.phaseStart = now

	e.logger.Debug("phase transition", "rank", e.Rank(), "from", from.String(), "to", to.String())
	e.metrics.RecordPhaseTransition(e.Rank(), from, to, elapsed)

	// Run hook in background to avoid stalling collectives
	go func() {
		if err := e.hooks.OnPhaseChanged(context.WithoutCancel(ctx), from, to); err != nil {
			e.logger.Warn("phase hook error", "rank", e.Rank(), "from", from.String(), "to", to.String(), "error", err)
		}
	}()
}

// fail reports a run error. Only the coordinator logs it; other ranks
// return quietly so one diagnosis is printed per failed run.
func (e *Engine) fail(ctx context.Context, phase Phase, err error) {
	if e.isCoordinator() {
		switch {
		case errors.Is(err, ErrMalformedShape), errors.Is(err, ErrSizeMismatch):
			e.logger.Error("input rejected", "rank", e.Rank(), "error", err)
		default:
			e.logger.Error("run failed", "rank", e.Rank(), "phase", phase.String(), "error", err)
		}
	}

	go func() {
		if hookErr := e.hooks.OnError(context.WithoutCancel(ctx), err); hookErr != nil {
			e.logger.Warn("error hook failed", "rank", e.Rank(), "error", hookErr)
		}
	}()
}

func (e *Engine) isCoordinator() bool {
	return e.Rank() == Coordinator
}
