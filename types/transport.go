package types

import "context"

// MessageKind separates collective traffic from user point-to-point traffic
// so their tags never collide.
type MessageKind uint8

const (
	// KindCollective marks a message belonging to a collective operation.
	// Its tag is the collective sequence number.
	KindCollective MessageKind = iota + 1

	// KindPointToPoint marks a message sent through Isend. Its tag is the user tag.
	KindPointToPoint
)

// String returns the string representation of the kind.
func (k MessageKind) String() string {
	switch k {
	case KindCollective:
		return "collective"
	case KindPointToPoint:
		return "p2p"
	default:
		return "unknown"
	}
}

// MessageKey identifies the message a receiver is waiting for.
type MessageKey struct {
	From int
	Kind MessageKind
	Tag  uint64
}

// Envelope is the unit of delivery between two ranks.
type Envelope struct {
	// From is the sending rank.
	From int

	// To is the receiving rank.
	To int

	// Kind separates collective and point-to-point tag spaces.
	Kind MessageKind

	// Tag is the collective sequence number or the user tag.
	Tag uint64

	// Op names the collective ("bcast", "scatterv", "gatherv") or "send".
	// Receivers compare it with the op they expect to detect diverged workers.
	Op string

	// Data is the payload.
	Data []int
}

// Key returns the receiver-side match key of the envelope.
func (e Envelope) Key() MessageKey {
	return MessageKey{From: e.From, Kind: e.Kind, Tag: e.Tag}
}

// Transport delivers envelopes between ranks of a fixed-size world.
//
// Implementations:
//   - comm.LocalTransport: goroutines in one process, buffered channels
//   - comm.NATSTransport: separate processes over NATS request/reply
//
// Send must not alias the caller's payload after it returns. Recv must return
// envelopes for a key in the order they were sent; keys produced by the
// collective layer are never reused.
type Transport interface {
	// Rank returns the local rank.
	Rank() int

	// Size returns the world size.
	Size() int

	// Send delivers env to env.To. It returns once the envelope is buffered
	// at, or acknowledged by, the receiver.
	Send(ctx context.Context, env Envelope) error

	// Recv blocks until an envelope matching key arrives.
	Recv(ctx context.Context, key MessageKey) (Envelope, error)

	// Close releases transport resources. Pending Recv calls fail.
	Close() error
}
