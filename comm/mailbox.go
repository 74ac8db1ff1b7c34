package comm

import (
	"context"
	"errors"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/stencil/types"
)

// slotDepth is the number of envelopes buffered per key before a sender blocks.
const slotDepth = 16

// errSlotFull is returned by offer when the key's slot holds slotDepth envelopes.
var errSlotFull = errors.New("mailbox slot full")

// mailbox buffers envelopes for one rank until a matching Recv arrives.
type mailbox struct {
	slots     *xsync.Map[types.MessageKey, chan types.Envelope]
	closed    chan struct{}
	closeOnce sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		slots:  xsync.NewMap[types.MessageKey, chan types.Envelope](),
		closed: make(chan struct{}),
	}
}

func (m *mailbox) slot(key types.MessageKey) chan types.Envelope {
	if ch, ok := m.slots.Load(key); ok {
		return ch
	}
	ch, _ := m.slots.LoadOrStore(key, make(chan types.Envelope, slotDepth))

	return ch
}

// deliver buffers env for its key, blocking while the slot is full.
func (m *mailbox) deliver(ctx context.Context, env types.Envelope) error {
	select {
	case <-m.closed:
		return types.ErrTransportClosed
	default:
	}

	select {
	case m.slot(env.Key()) <- env:
		return nil
	case <-m.closed:
		return types.ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// offer buffers env for its key without blocking.
func (m *mailbox) offer(env types.Envelope) error {
	select {
	case <-m.closed:
		return types.ErrTransportClosed
	default:
	}

	select {
	case m.slot(env.Key()) <- env:
		return nil
	default:
		return errSlotFull
	}
}

// take blocks until an envelope for key is buffered.
func (m *mailbox) take(ctx context.Context, key types.MessageKey) (types.Envelope, error) {
	select {
	case env := <-m.slot(key):
		// Collective keys carry exactly one message and are never reused.
		if key.Kind == types.KindCollective {
			m.slots.Delete(key)
		}

		return env, nil
	case <-m.closed:
		return types.Envelope{}, types.ErrTransportClosed
	case <-ctx.Done():
		return types.Envelope{}, ctx.Err()
	}
}

func (m *mailbox) close() {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
}
