package rankclaim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/stencil/internal/logger"
	"github.com/arloliu/stencil/types"
)

// Errors returned by the claimer.
var (
	ErrNoAvailableRank = errors.New("no available rank in world")
	ErrNotClaimed      = errors.New("rank not claimed")
	ErrAlreadyClosed   = errors.New("claimer already closed")
)

// Claimer claims one rank of a world and renews the claim.
type Claimer struct {
	kv   jetstream.KeyValue
	size int
	ttl  time.Duration

	mu       sync.Mutex
	rank     int // -1 while unclaimed
	closed   bool
	renewing bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	logger types.Logger
}

// NewClaimer creates a claimer for a world of size ranks.
//
// Parameters:
//   - kv: Rank bucket (see EnsureBucket)
//   - size: World size
//   - ttl: Bucket TTL; claims are renewed every ttl/3
//   - l: Logger (nop when nil)
//
// Returns:
//   - *Claimer: Unclaimed claimer
func NewClaimer(kv jetstream.KeyValue, size int, ttl time.Duration, l types.Logger) *Claimer {
	if l == nil {
		l = logger.NewNop()
	}

	return &Claimer{
		kv:     kv,
		size:   size,
		ttl:    ttl,
		rank:   -1,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: l,
	}
}

// Claim takes the lowest free rank.
//
// Returns:
//   - int: Claimed rank
//   - error: ErrNoAvailableRank when every rank is taken, context or NATS error
//
// Example:
//
//	rank, err := claimer.Claim(ctx)
//	if err != nil {
//	    return err
//	}
//	defer claimer.Release(context.Background())
func (c *Claimer) Claim(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return -1, ErrAlreadyClosed
	}
	if c.rank >= 0 {
		return c.rank, nil
	}

	value := []byte(time.Now().Format(time.RFC3339))
	for r := range c.size {
		if err := ctx.Err(); err != nil {
			return -1, err
		}

		_, err := c.kv.Create(ctx, key(r), value)
		if err == nil {
			c.rank = r
			c.logger.Info("rank claimed", "rank", r, "size", c.size)

			return r, nil
		}
		if !errors.Is(err, jetstream.ErrKeyExists) {
			return -1, fmt.Errorf("failed to claim rank %d: %w", r, err)
		}
		c.logger.Debug("rank taken, trying next", "rank", r)
	}

	return -1, fmt.Errorf("%w: all %d ranks are taken", ErrNoAvailableRank, c.size)
}

// Rank returns the claimed rank, or -1.
func (c *Claimer) Rank() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rank
}

// StartRenewal renews the claim every ttl/3 until Release or Close.
func (c *Claimer) StartRenewal() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrAlreadyClosed
	}
	if c.rank < 0 {
		return ErrNotClaimed
	}

	if c.renewing {
		return nil
	}
	c.renewing = true
	go c.renewalLoop(c.rank)

	return nil
}

func (c *Claimer) renewalLoop(rank int) {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.ttl/3)
			_, err := c.kv.Put(ctx, key(rank), []byte(time.Now().Format(time.RFC3339)))
			cancel()
			if err != nil {
				c.logger.Warn("rank renewal failed", "rank", rank, "error", err)
			}
		}
	}
}

// Release stops renewal and frees the rank.
//
// Returns:
//   - error: ErrNotClaimed when no rank is held, or the delete error
func (c *Claimer) Release(ctx context.Context) error {
	c.mu.Lock()
	rank := c.rank
	if rank < 0 {
		c.mu.Unlock()
		return ErrNotClaimed
	}
	c.rank = -1
	c.mu.Unlock()

	c.stop()

	if err := c.kv.Delete(ctx, key(rank)); err != nil {
		return fmt.Errorf("failed to release rank %d: %w", rank, err)
	}
	c.logger.Info("rank released", "rank", rank)

	return nil
}

// Close stops renewal without releasing the rank; it expires after the TTL.
func (c *Claimer) Close() {
	c.stop()
}

func (c *Claimer) stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.stopCh)
	renewing := c.renewing
	c.mu.Unlock()

	if !renewing {
		return
	}
	select {
	case <-c.doneCh:
	case <-time.After(5 * time.Second):
	}
}

func key(rank int) string {
	return "rank-" + strconv.Itoa(rank)
}
