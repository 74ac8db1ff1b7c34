package comm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/arloliu/stencil/types"
)

// Collective op names carried in every envelope.
const (
	OpBcast    = "bcast"
	OpScatterv = "scatterv"
	OpGatherv  = "gatherv"
	OpSend     = "send"
)

// Comm implements types.Communicator over a point-to-point transport.
//
// A collective that fails with ErrCollectiveFailure leaves ranks at different
// sequence numbers and may leave stale envelopes in peers' mailboxes, so every
// later collective on the same Comm fails at once with ErrCollectiveFailure.
// Layout and root errors detected before any message is sent do not.
//
// Thread Safety:
//   - Collectives must be called from one goroutine per rank, in the same
//     order on every rank
//   - Isend and Recv may be called concurrently
type Comm struct {
	t       types.Transport
	seq     atomic.Uint64
	failure atomic.Pointer[error]
	timeout time.Duration
	logger  types.Logger
	metrics types.MetricsCollector
}

var _ types.Communicator = (*Comm)(nil)

// New creates a communicator for the transport's rank.
//
// Parameters:
//   - t: Transport connecting this rank to its peers
//   - opts: Optional timeout, logger and metrics
//
// Returns:
//   - *Comm: Communicator ready for collectives
func New(t types.Transport, opts ...Option) *Comm {
	o := applyOptions(opts)

	return &Comm{
		t:       t,
		timeout: o.timeout,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Rank returns this worker's index.
func (c *Comm) Rank() int {
	return c.t.Rank()
}

// Size returns the world size.
func (c *Comm) Size() int {
	return c.t.Size()
}

// Err returns the collective failure that made this communicator unusable,
// or nil.
func (c *Comm) Err() error {
	if cause := c.failure.Load(); cause != nil {
		return *cause
	}

	return nil
}

// Close closes the underlying transport.
func (c *Comm) Close() error {
	return c.t.Close()
}

// Bcast distributes data from root to every rank.
func (c *Comm) Bcast(ctx context.Context, root int, data []int) ([]int, error) {
	return c.collective(ctx, OpBcast, root, func(ctx context.Context, tag uint64) ([]int, error) {
		if c.Rank() != root {
			env, err := c.receive(ctx, root, tag, OpBcast)
			if err != nil {
				return nil, err
			}

			return env.Data, nil
		}

		reqs := make([]types.Request, 0, c.Size()-1)
		for r := range c.Size() {
			if r == root {
				continue
			}
			reqs = append(reqs, c.post(ctx, r, tag, OpBcast, data))
		}
		if err := WaitAll(reqs...); err != nil {
			return nil, err
		}

		return slices.Clone(data), nil
	})
}

// Scatterv sends send[displs[r]:displs[r]+counts[r]] from root to every rank r.
func (c *Comm) Scatterv(ctx context.Context, root int, send []int, counts, displs []int) ([]int, error) {
	return c.collective(ctx, OpScatterv, root, func(ctx context.Context, tag uint64) ([]int, error) {
		if c.Rank() != root {
			env, err := c.receive(ctx, root, tag, OpScatterv)
			if err != nil {
				return nil, err
			}

			return env.Data, nil
		}

		if err := c.checkLayout(counts, displs, len(send)); err != nil {
			return nil, err
		}

		reqs := make([]types.Request, 0, c.Size()-1)
		for r := range c.Size() {
			if r == root {
				continue
			}
			reqs = append(reqs, c.post(ctx, r, tag, OpScatterv, send[displs[r]:displs[r]+counts[r]]))
		}
		own := slices.Clone(send[displs[root] : displs[root]+counts[root]])
		if err := WaitAll(reqs...); err != nil {
			return nil, err
		}

		return own, nil
	})
}

// Gatherv collects every rank's send buffer at root, placing rank r's
// elements at displs[r]. Root receives in rank order.
func (c *Comm) Gatherv(ctx context.Context, root int, send []int, counts, displs []int) ([]int, error) {
	return c.collective(ctx, OpGatherv, root, func(ctx context.Context, tag uint64) ([]int, error) {
		if c.Rank() != root {
			return nil, c.post(ctx, root, tag, OpGatherv, send).Wait()
		}

		total := 0
		for r := range counts {
			if r < len(displs) {
				total = max(total, displs[r]+counts[r])
			}
		}
		if err := c.checkLayout(counts, displs, total); err != nil {
			return nil, err
		}
		if len(send) != counts[root] {
			return nil, fmt.Errorf("%w: root sends %d elements, counts[%d]=%d",
				types.ErrInvalidLayout, len(send), root, counts[root])
		}

		out := make([]int, total)
		copy(out[displs[root]:], send)
		for r := range c.Size() {
			if r == root {
				continue
			}
			env, err := c.receive(ctx, r, tag, OpGatherv)
			if err != nil {
				return nil, err
			}
			if len(env.Data) != counts[r] {
				return nil, fmt.Errorf("%w: rank %d sent %d elements, expected %d",
					types.ErrCollectiveFailure, r, len(env.Data), counts[r])
			}
			copy(out[displs[r]:], env.Data)
		}

		return out, nil
	})
}

// Isend starts a non-blocking point-to-point send.
//
// The payload is copied before Isend returns. Messages sharing (to, tag)
// that are in flight at the same time may be matched in any order; wait on
// the request before reusing a tag when order matters.
func (c *Comm) Isend(ctx context.Context, to int, tag int, data []int) types.Request {
	if err := c.checkRank(to); err != nil {
		return completedRequest(err)
	}
	if tag < 0 {
		return completedRequest(fmt.Errorf("%w: negative tag %d", types.ErrInvalidLayout, tag))
	}

	env := types.Envelope{
		From: c.Rank(),
		To:   to,
		Kind: types.KindPointToPoint,
		Tag:  uint64(tag),
		Op:   OpSend,
		Data: slices.Clone(data),
	}

	return c.sendAsync(ctx, env)
}

// Recv blocks until a point-to-point message with tag arrives from rank from.
func (c *Comm) Recv(ctx context.Context, from int, tag int) ([]int, error) {
	if err := c.checkRank(from); err != nil {
		return nil, err
	}
	if tag < 0 {
		return nil, fmt.Errorf("%w: negative tag %d", types.ErrInvalidLayout, tag)
	}

	env, err := c.t.Recv(ctx, types.MessageKey{From: from, Kind: types.KindPointToPoint, Tag: uint64(tag)})
	if err != nil {
		return nil, fmt.Errorf("%w: recv from rank %d tag %d: %w", types.ErrCollectiveFailure, from, tag, err)
	}

	return env.Data, nil
}

// collective runs fn under the next sequence number and the configured
// timeout, normalizes its error and records metrics.
func (c *Comm) collective(ctx context.Context, op string, root int, fn func(context.Context, uint64) ([]int, error)) ([]int, error) {
	if err := c.checkRank(root); err != nil {
		return nil, fmt.Errorf("%s: root: %w", op, err)
	}
	if cause := c.Err(); cause != nil {
		return nil, fmt.Errorf("%w: %s: communicator failed earlier: %v", types.ErrCollectiveFailure, op, cause)
	}
	tag := c.seq.Add(1)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var out []int
	err := ctx.Err()
	if err == nil {
		out, err = fn(ctx, tag)
	}
	elapsed := time.Since(start).Seconds()

	if err != nil {
		c.metrics.RecordCollective(op, 0, elapsed, false)
		c.logger.Debug("collective failed", "rank", c.Rank(), "op", op, "seq", tag, "error", err)

		switch {
		case errors.Is(err, types.ErrInvalidLayout), errors.Is(err, types.ErrCollectiveFailure):
			err = fmt.Errorf("%s: %w", op, err)
		default:
			err = fmt.Errorf("%w: %s: %w", types.ErrCollectiveFailure, op, err)
		}
		if errors.Is(err, types.ErrCollectiveFailure) {
			c.failure.CompareAndSwap(nil, &err)
		}

		return nil, err
	}

	c.metrics.RecordCollective(op, len(out), elapsed, true)
	c.logger.Debug("collective done", "rank", c.Rank(), "op", op, "seq", tag, "elements", len(out))

	return out, nil
}

// post sends a collective envelope in the background.
func (c *Comm) post(ctx context.Context, to int, tag uint64, op string, data []int) types.Request {
	return c.sendAsync(ctx, types.Envelope{
		From: c.Rank(),
		To:   to,
		Kind: types.KindCollective,
		Tag:  tag,
		Op:   op,
		Data: data,
	})
}

func (c *Comm) sendAsync(ctx context.Context, env types.Envelope) types.Request {
	req := newRequest()
	go func() {
		err := c.t.Send(ctx, env)
		if err != nil {
			err = fmt.Errorf("send %s to rank %d: %w", env.Op, env.To, err)
		}
		req.complete(err)
	}()

	return req
}

// receive waits for the collective envelope with tag from rank from and
// checks that the sender was executing the same collective.
func (c *Comm) receive(ctx context.Context, from int, tag uint64, op string) (types.Envelope, error) {
	env, err := c.t.Recv(ctx, types.MessageKey{From: from, Kind: types.KindCollective, Tag: tag})
	if err != nil {
		return types.Envelope{}, fmt.Errorf("recv from rank %d: %w", from, err)
	}
	if env.Op != op {
		return types.Envelope{}, fmt.Errorf("%w: rank %d diverged: sent %q as collective #%d, expected %q",
			types.ErrCollectiveFailure, from, env.Op, tag, op)
	}

	return env, nil
}

func (c *Comm) checkRank(r int) error {
	if r < 0 || r >= c.Size() {
		return fmt.Errorf("%w: %d not in [0,%d)", types.ErrInvalidRank, r, c.Size())
	}

	return nil
}

// checkLayout validates per-rank windows against a buffer of length n.
func (c *Comm) checkLayout(counts, displs []int, n int) error {
	if len(counts) != c.Size() || len(displs) != c.Size() {
		return fmt.Errorf("%w: %d counts and %d displacements for %d ranks",
			types.ErrInvalidLayout, len(counts), len(displs), c.Size())
	}
	for r := range counts {
		if counts[r] < 0 || displs[r] < 0 || displs[r]+counts[r] > n {
			return fmt.Errorf("%w: rank %d window [%d,%d) outside buffer of %d",
				types.ErrInvalidLayout, r, displs[r], displs[r]+counts[r], n)
		}
	}

	return nil
}
