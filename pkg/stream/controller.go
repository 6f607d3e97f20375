package stream

import (
	"context"
	"sync"

	"github.com/opsforge/sage/pkg/auth"
	"github.com/opsforge/sage/pkg/logger"
)

// State represents the lifecycle of the in-flight request
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Callbacks are the consumer-facing hooks. All optional. OnProgress fires
// after every appended fragment with the full partial content. OnComplete
// fires at most once per Start, with the finalized content. OnError fires
// on transport failure; never together with OnComplete.
type Callbacks struct {
	OnProgress func(partial string)
	OnComplete func(final string)
	OnError    func(err error)
}

// Controller drives one stream at a time: it owns the buffer and the
// active channel, and enforces the state machine
//
//	Idle -> Streaming -> {Completed, Cancelled, Failed}
//
// Terminal states are absorbing until the next Start supersedes them.
// Starting while a stream is active closes the old channel first, so two
// channels never feed the same buffer.
type Controller struct {
	mu       sync.Mutex
	state    State
	gen      int
	buffer   *Buffer
	channel  *Channel
	endpoint string
	creds    auth.Provider
	cb       Callbacks
}

// NewController creates an idle controller for the given endpoint
func NewController(endpoint string, creds auth.Provider, cb Callbacks) *Controller {
	return &Controller{
		state:    StateIdle,
		buffer:   NewBuffer(),
		endpoint: endpoint,
		creds:    creds,
		cb:       cb,
	}
}

// Start validates the request and opens a new stream, superseding any
// active one. Validation failures surface synchronously and leave the
// controller in its previous state with no channel opened.
func (c *Controller) Start(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}

	c.gen++
	c.state = StateStreaming
	c.buffer.Start()
	handler := &controllerHandler{ctrl: c, gen: c.gen}
	c.mu.Unlock()

	ch, err := Open(ctx, c.endpoint, req, c.creds, handler)
	if err != nil {
		// Validate already passed, so only a marshal-level failure
		// lands here; treat it like any other failed stream
		c.mu.Lock()
		c.state = StateFailed
		c.buffer.Abandon()
		c.mu.Unlock()
		return err
	}

	c.track(ch, handler.gen)

	streamsStarted.Inc()
	logger.Debug("Stream started for session %s", req.SessionID)
	return nil
}

// track records the freshly opened channel as the active one. If the
// stream already left the streaming state, or a newer Start superseded
// this generation, the channel must not be tracked; it is closed here
// instead, since a Cancel that landed in the meantime found no channel
// to close. A channel that finished on its own has already self-closed,
// so the extra Close is a no-op.
func (c *Controller) track(ch *Channel, gen int) {
	c.mu.Lock()
	if c.state == StateStreaming && c.gen == gen {
		c.channel = ch
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	ch.Close()
}

// Cancel closes the active channel without finalizing. A no-op in any
// non-streaming state, including after completion.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != StateStreaming {
		c.mu.Unlock()
		return
	}

	c.state = StateCancelled
	c.buffer.Abandon()
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	streamsCancelled.Inc()
	logger.Debug("Stream cancelled")
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsStreaming reports whether a request is in flight
func (c *Controller) IsStreaming() bool {
	return c.State() == StateStreaming
}

// Partial returns the buffered content so far. After a cancelled or
// failed stream it still returns whatever arrived before the cut.
func (c *Controller) Partial() string {
	return c.buffer.Read()
}

// Done exposes the active channel's completion signal, or nil when idle
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return nil
	}
	return c.channel.Done()
}

// controllerHandler routes channel events into the controller. The
// generation stamp pins events to the Start call that opened the channel,
// so a superseded channel's stragglers cannot touch the new stream.
type controllerHandler struct {
	ctrl *Controller
	gen  int
}

func (h *controllerHandler) OnFragment(fragment string) {
	c := h.ctrl

	c.mu.Lock()
	if c.gen != h.gen || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	c.buffer.Append(fragment)
	partial := c.buffer.Read()
	cb := c.cb.OnProgress
	c.mu.Unlock()

	if cb != nil {
		cb(partial)
	}
}

func (h *controllerHandler) OnTerminal() {
	c := h.ctrl

	c.mu.Lock()
	if c.gen != h.gen || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	c.state = StateCompleted
	final := c.buffer.Finalize()
	ch := c.channel
	c.channel = nil
	cb := c.cb.OnComplete
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	streamsCompleted.Inc()
	if cb != nil {
		cb(final)
	}
}

func (h *controllerHandler) OnError(err error) {
	c := h.ctrl

	c.mu.Lock()
	if c.gen != h.gen || c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	c.buffer.Abandon()
	ch := c.channel
	c.channel = nil
	cb := c.cb.OnError
	c.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	streamsFailed.Inc()
	logger.Error("Stream failed: %v", err)
	if cb != nil {
		cb(err)
	}
}
