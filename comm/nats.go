package comm

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/stencil/internal/natsutil"
	"github.com/arloliu/stencil/types"
)

// Message headers used by NATSTransport.
const (
	HeaderFrom     = "Stencil-From"
	HeaderKind     = "Stencil-Kind"
	HeaderTag      = "Stencil-Tag"
	HeaderOp       = "Stencil-Op"
	HeaderMsgID    = "Stencil-Msg-Id"
	HeaderChecksum = "Stencil-Checksum"
	HeaderError    = "Stencil-Error"
	HeaderRetry    = "Stencil-Retry"
)

// retryReceiverBusy is the HeaderRetry value of a delivery refused because
// the receiver's slot for that key is full.
const retryReceiverBusy = "receiver_busy"

// headerBudget is the space reserved for headers when checking payload size.
const headerBudget = 512

// NATSConfig configures a NATSTransport.
type NATSConfig struct {
	// SubjectPrefix is the subject namespace; rank r listens on "<prefix>.<r>".
	SubjectPrefix string `yaml:"subjectPrefix"`

	// RequestTimeout bounds one delivery attempt.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// RetryBase is the first delay between delivery attempts.
	RetryBase time.Duration `yaml:"retryBase"`

	// RetryCap bounds the delay between delivery attempts.
	RetryCap time.Duration `yaml:"retryCap"`

	// RetrySeed makes retry jitter deterministic when non-zero.
	RetrySeed int64 `yaml:"-"`
}

// DefaultNATSConfig returns the transport defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		SubjectPrefix:  "stencil",
		RequestTimeout: 2 * time.Second,
		RetryBase:      10 * time.Millisecond,
		RetryCap:       500 * time.Millisecond,
	}
}

func (c *NATSConfig) setDefaults() {
	d := DefaultNATSConfig()
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = d.SubjectPrefix
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.RetryBase <= 0 {
		c.RetryBase = d.RetryBase
	}
	if c.RetryCap <= 0 {
		c.RetryCap = d.RetryCap
	}
}

// NATSTransport connects ranks running in separate processes through NATS.
//
// Every send is a request acknowledged by the receiver once the envelope is
// buffered, so a send issued before its receiver subscribed is retried with
// jittered backoff instead of being lost. Retried deliveries are dropped on
// the receiving side by message id.
//
// The receiving handler never blocks. A delivery to a key whose slot is full
// is refused with a retryable reason and the sender backs off, so unreceived
// point-to-point messages never hold up other keys.
//
// The transport does not own the NATS connection; closing it only removes
// its subscription.
type NATSTransport struct {
	nc      *nats.Conn
	rank    int
	size    int
	cfg     NATSConfig
	logger  types.Logger
	metrics types.MetricsCollector

	id        string
	next      atomic.Uint64
	seen      *xsync.Map[string, time.Time] // message id -> last delivery attempt
	lastPrune atomic.Int64
	box       *mailbox
	sub       *nats.Subscription

	rngMu sync.Mutex
	rng   *rand.Rand

	ctx       context.Context //nolint:containedctx // stops sends backing off when closed
	cancel    context.CancelFunc
	closeOnce sync.Once
}

var _ types.Transport = (*NATSTransport)(nil)

// NewNATSTransport subscribes rank to its subject and returns the transport.
//
// Parameters:
//   - nc: Connected NATS client
//   - rank: Local rank in [0, size)
//   - size: World size (>= 1)
//   - cfg: Transport configuration; zero fields take defaults
//   - opts: Optional logger and metrics
//
// Returns:
//   - *NATSTransport: Subscribed transport
//   - error: Invalid arguments or subscription failure
//
// Example:
//
//	t, err := comm.NewNATSTransport(nc, rank, size, comm.DefaultNATSConfig())
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//	c := comm.New(t, comm.WithTimeout(30*time.Second))
func NewNATSTransport(nc *nats.Conn, rank, size int, cfg NATSConfig, opts ...Option) (*NATSTransport, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if size < 1 || rank < 0 || rank >= size {
		return nil, fmt.Errorf("%w: rank %d in world of %d", types.ErrInvalidRank, rank, size)
	}
	cfg.setDefaults()
	o := applyOptions(opts)

	ctx, cancel := context.WithCancel(context.Background())
	t := &NATSTransport{
		nc:      nc,
		rank:    rank,
		size:    size,
		cfg:     cfg,
		logger:  o.logger,
		metrics: o.metrics,
		id:      nats.NewInbox(),
		seen:    xsync.NewMap[string, time.Time](),
		box:     newMailbox(),
		rng:     newRetryRNG(cfg.RetrySeed),
		ctx:     ctx,
		cancel:  cancel,
	}

	sub, err := nc.Subscribe(t.subject(rank), t.handle)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", t.subject(rank), err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		cancel()

		return nil, fmt.Errorf("flush subscription: %w", err)
	}
	t.sub = sub

	t.logger.Debug("nats transport ready", "rank", rank, "size", size, "subject", t.subject(rank))

	return t, nil
}

// Rank returns the local rank.
func (t *NATSTransport) Rank() int {
	return t.rank
}

// Size returns the world size.
func (t *NATSTransport) Size() int {
	return t.size
}

// Send delivers env to env.To and waits for the receiver's acknowledgement,
// retrying while the receiver is not yet subscribed or does not answer.
func (t *NATSTransport) Send(ctx context.Context, env types.Envelope) error {
	if env.To < 0 || env.To >= t.size {
		return fmt.Errorf("%w: %d not in [0,%d)", types.ErrInvalidRank, env.To, t.size)
	}
	if t.ctx.Err() != nil {
		return types.ErrTransportClosed
	}

	buf := encodePayload(env.Data)
	if limit := t.nc.MaxPayload(); int64(len(buf))+headerBudget > limit {
		return fmt.Errorf("%w: %d bytes for rank %d, server limit %d",
			types.ErrPayloadTooLarge, len(buf), env.To, limit)
	}

	msg := nats.NewMsg(t.subject(env.To))
	msg.Data = buf
	msg.Header.Set(HeaderFrom, strconv.Itoa(t.rank))
	msg.Header.Set(HeaderKind, strconv.Itoa(int(env.Kind)))
	msg.Header.Set(HeaderTag, strconv.FormatUint(env.Tag, 10))
	msg.Header.Set(HeaderOp, env.Op)
	msg.Header.Set(HeaderMsgID, t.id+"."+strconv.FormatUint(t.next.Add(1), 10))
	msg.Header.Set(HeaderChecksum, checksum(buf))

	var delay time.Duration
	for attempt := 1; ; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, t.cfg.RequestTimeout)
		resp, err := t.nc.RequestMsgWithContext(reqCtx, msg)
		cancel()

		var reason string
		switch {
		case err == nil && resp.Header.Get(HeaderError) == "":
			return nil
		case err == nil:
			reason = resp.Header.Get(HeaderRetry)
			if reason == "" {
				return fmt.Errorf("rank %d refused %s: %s", env.To, env.Op, resp.Header.Get(HeaderError))
			}
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			reason = natsutil.RetryReason(err)
			if reason == "" {
				return fmt.Errorf("request to rank %d: %w", env.To, err)
			}
		}
		t.metrics.RecordSendRetry(reason)
		if attempt == 1 || attempt%50 == 0 {
			t.logger.Debug("retrying send", "rank", t.rank, "to", env.To, "op", env.Op, "attempt", attempt, "reason", reason)
		}

		delay = t.backoff(delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		case <-t.ctx.Done():
			return types.ErrTransportClosed
		}
	}
}

// Recv blocks until an envelope matching key has been delivered.
func (t *NATSTransport) Recv(ctx context.Context, key types.MessageKey) (types.Envelope, error) {
	return t.box.take(ctx, key)
}

// Close unsubscribes and fails pending receives. The NATS connection stays open.
func (t *NATSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		t.box.close()
		if t.sub != nil {
			err = t.sub.Unsubscribe()
		}
	})

	return err
}

func (t *NATSTransport) subject(rank int) string {
	return t.cfg.SubjectPrefix + "." + strconv.Itoa(rank)
}

func (t *NATSTransport) backoff(prev time.Duration) time.Duration {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()

	return jitterBackoff(prev, t.cfg.RetryBase, retryMultiplier, t.cfg.RetryCap, t.rng)
}

// dedupeWindow is how long a message id is remembered after its last
// delivery attempt. Attempts of one send are at most RequestTimeout+RetryCap
// apart.
func (t *NATSTransport) dedupeWindow() time.Duration {
	return 2 * (t.cfg.RequestTimeout + t.cfg.RetryCap)
}

// pruneSeen forgets message ids not seen within the dedupe window. It scans
// at most once per window.
func (t *NATSTransport) pruneSeen(now time.Time) {
	window := t.dedupeWindow()
	last := t.lastPrune.Load()
	if now.UnixNano()-last < int64(window) || !t.lastPrune.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-window)
	t.seen.Range(func(id string, at time.Time) bool {
		if at.Before(cutoff) {
			t.seen.Delete(id)
		}

		return true
	})
}

// handle buffers an incoming envelope and acknowledges it. It never blocks,
// since NATS runs the callbacks of one subscription in sequence.
func (t *NATSTransport) handle(msg *nats.Msg) {
	env, id, err := t.decode(msg)
	if err != nil {
		t.logger.Warn("dropping malformed message", "rank", t.rank, "subject", msg.Subject, "error", err)
		t.reply(msg, err)

		return
	}

	now := time.Now()
	t.pruneSeen(now)
	if _, dup := t.seen.LoadOrStore(id, now); dup {
		t.seen.Store(id, now)
		t.reply(msg, nil)

		return
	}

	if err := t.box.offer(env); err != nil {
		t.seen.Delete(id)
		t.reply(msg, err)

		return
	}
	t.reply(msg, nil)
}

func (t *NATSTransport) decode(msg *nats.Msg) (types.Envelope, string, error) {
	h := msg.Header
	if h == nil {
		return types.Envelope{}, "", errors.New("missing headers")
	}

	from, err := strconv.Atoi(h.Get(HeaderFrom))
	if err != nil || from < 0 || from >= t.size {
		return types.Envelope{}, "", fmt.Errorf("%w: bad sender %q", types.ErrInvalidRank, h.Get(HeaderFrom))
	}
	kind, err := strconv.Atoi(h.Get(HeaderKind))
	if err != nil {
		return types.Envelope{}, "", fmt.Errorf("bad kind %q", h.Get(HeaderKind))
	}
	tag, err := strconv.ParseUint(h.Get(HeaderTag), 10, 64)
	if err != nil {
		return types.Envelope{}, "", fmt.Errorf("bad tag %q", h.Get(HeaderTag))
	}
	id := h.Get(HeaderMsgID)
	if id == "" {
		return types.Envelope{}, "", errors.New("missing message id")
	}
	if err := verifyChecksum(msg.Data, h.Get(HeaderChecksum)); err != nil {
		return types.Envelope{}, "", err
	}
	data, err := decodePayload(msg.Data)
	if err != nil {
		return types.Envelope{}, "", err
	}

	return types.Envelope{
		From: from,
		To:   t.rank,
		Kind: types.MessageKind(kind), //nolint:gosec // unknown kinds never match a key
		Tag:  tag,
		Op:   h.Get(HeaderOp),
		Data: data,
	}, id, nil
}

func (t *NATSTransport) reply(msg *nats.Msg, cause error) {
	if msg.Reply == "" {
		return
	}

	resp := nats.NewMsg(msg.Reply)
	if cause != nil {
		resp.Header.Set(HeaderError, cause.Error())
		if errors.Is(cause, errSlotFull) {
			resp.Header.Set(HeaderRetry, retryReceiverBusy)
		}
	}
	if err := msg.RespondMsg(resp); err != nil {
		t.logger.Debug("ack failed", "rank", t.rank, "error", err)
	}
}
