package comm

import (
	"context"
	"fmt"
	"slices"

	"github.com/arloliu/stencil/types"
)

// LocalTransport connects ranks running as goroutines in one process.
type LocalTransport struct {
	rank  int
	boxes []*mailbox
}

var _ types.Transport = (*LocalTransport)(nil)

// NewLocalWorld creates size transports sharing one in-process world.
//
// Transport i has rank i. Payloads are copied on send, so no rank ever
// aliases another rank's buffer.
//
// Parameters:
//   - size: Number of ranks (>= 1)
//
// Returns:
//   - []*LocalTransport: One transport per rank, indexed by rank (nil if size < 1)
//
// Example:
//
//	world := comm.NewLocalWorld(3)
//	c0 := comm.New(world[0])
func NewLocalWorld(size int) []*LocalTransport {
	if size < 1 {
		return nil
	}

	boxes := make([]*mailbox, size)
	for i := range boxes {
		boxes[i] = newMailbox()
	}

	world := make([]*LocalTransport, size)
	for i := range world {
		world[i] = &LocalTransport{rank: i, boxes: boxes}
	}

	return world
}

// Rank returns the local rank.
func (t *LocalTransport) Rank() int {
	return t.rank
}

// Size returns the world size.
func (t *LocalTransport) Size() int {
	return len(t.boxes)
}

// Send copies env's payload into the receiver's mailbox.
func (t *LocalTransport) Send(ctx context.Context, env types.Envelope) error {
	if env.To < 0 || env.To >= len(t.boxes) {
		return fmt.Errorf("%w: %d not in [0,%d)", types.ErrInvalidRank, env.To, len(t.boxes))
	}

	env.From = t.rank
	env.Data = slices.Clone(env.Data)

	return t.boxes[env.To].deliver(ctx, env)
}

// Recv blocks until an envelope matching key arrives in this rank's mailbox.
func (t *LocalTransport) Recv(ctx context.Context, key types.MessageKey) (types.Envelope, error) {
	return t.boxes[t.rank].take(ctx, key)
}

// Close closes this rank's mailbox. Pending and future receives fail with
// ErrTransportClosed, as do sends addressed to this rank.
func (t *LocalTransport) Close() error {
	t.boxes[t.rank].close()

	return nil
}
