package stencil

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/stencil/comm"
)

// RunLocal smooths input on cfg.Workers ranks running as goroutines of this
// process and returns the coordinator's output.
//
// Each rank gets its own Engine over a shared local world. The returned error
// is the coordinator's when it has one, so a rejected input reports its
// cause rather than a peer's ErrRejected.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Configuration; Workers sets the world size
//   - input: Encoded input [H, Wd, pixels...]
//   - opts: Options applied to every rank's engine
//
// Returns:
//   - []int: H*Wd smoothed pixels
//   - error: Validation, configuration or communication error
//
// Example:
//
//	cfg := stencil.DefaultConfig()
//	cfg.Workers = 8
//	out, err := stencil.RunLocal(ctx, &cfg, input)
func RunLocal(ctx context.Context, cfg *Config, input []int, opts ...Option) ([]int, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := comm.NewLocalWorld(cfg.Workers)
	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	commOpts := []comm.Option{comm.WithTimeout(cfg.OperationTimeout)}
	if options.logger != nil {
		commOpts = append(commOpts, comm.WithLogger(options.logger))
	}
	if options.metrics != nil {
		commOpts = append(commOpts, comm.WithMetrics(options.metrics))
	}

	engines := make([]*Engine, cfg.Workers)
	for rank, t := range world {
		c := comm.New(t, commOpts...)
		eng, err := NewEngine(cfg, c, opts...)
		if err != nil {
			return nil, fmt.Errorf("rank %d: %w", rank, err)
		}
		engines[rank] = eng
	}
	defer func() {
		for _, t := range world {
			_ = t.Close()
		}
	}()

	var out []int
	errs := make([]error, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for rank, eng := range engines {
		g.Go(func() error {
			var rankInput []int
			if rank == Coordinator {
				rankInput = input
			}

			result, err := eng.Run(gctx, rankInput)
			errs[rank] = err
			if rank == Coordinator {
				out = result
			}

			return err
		})
	}

	werr := g.Wait()
	// A coordinator failing only because a peer's error cancelled the group
	// reports the peer's error instead.
	if cerr := errs[Coordinator]; cerr != nil && !(errors.Is(cerr, context.Canceled) && ctx.Err() == nil) {
		return nil, cerr
	}
	if werr != nil {
		return nil, werr
	}

	return out, nil
}
