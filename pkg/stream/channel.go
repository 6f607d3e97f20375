package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/opsforge/sage/pkg/auth"
	"github.com/opsforge/sage/pkg/logger"
)

// Request describes one streaming call. All three fields must be
// non-empty before a channel is opened. A Request is immutable input;
// nothing holds onto it after the stream ends.
type Request struct {
	AgentID   string `json:"agent_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ErrInvalidRequest is returned when a request field is missing. No
// connection is opened in that case.
var ErrInvalidRequest = errors.New("invalid stream request")

// Validate checks that every request field is populated
func (r Request) Validate() error {
	switch {
	case r.AgentID == "":
		return fmt.Errorf("%w: agent id is empty", ErrInvalidRequest)
	case r.Message == "":
		return fmt.Errorf("%w: message is empty", ErrInvalidRequest)
	case r.SessionID == "":
		return fmt.Errorf("%w: session id is empty", ErrInvalidRequest)
	}
	return nil
}

// Handler receives channel events. Callbacks for one channel fire from a
// single goroutine in server emission order; OnTerminal fires at most
// once and strictly after the last OnFragment. OnError and OnTerminal are
// mutually exclusive. After Close nothing fires at all.
type Handler interface {
	OnFragment(fragment string)
	OnTerminal()
	OnError(err error)
}

// Channel owns one server-push connection. It is fire-once: a new request
// needs a new channel. The channel self-closes on the terminal sentinel
// and on transport errors; Close is idempotent and safe in any state.
type Channel struct {
	cancel context.CancelFunc
	closed atomic.Bool
	done   chan struct{}
}

// no client-side timeout here: a stream stays open as long as the server
// keeps it alive, cancellation comes from the context
var streamClient = &http.Client{}

// Open validates the request, then starts the connection in the
// background and returns the handle immediately. Connection-level
// failures, including server rejection of a missing credential, surface
// through the handler's OnError, not from Open itself.
func Open(ctx context.Context, endpoint string, req Request, creds auth.Provider, handler Handler) (*Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	ch := &Channel{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go ch.run(streamCtx, endpoint, req, creds, handler)

	return ch, nil
}

// Close tears the channel down without finalizing. Safe to call any
// number of times, including after the channel already self-closed.
func (c *Channel) Close() {
	c.closed.Store(true)
	c.cancel()
}

// Done is closed once the reader goroutine has exited
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) run(ctx context.Context, endpoint string, req Request, creds auth.Provider, handler Handler) {
	defer close(c.done)
	defer c.cancel()

	body, err := json.Marshal(req)
	if err != nil {
		c.fail(handler, fmt.Errorf("failed to marshal request: %w", err))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(handler, fmt.Errorf("failed to create request: %w", err))
		return
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	// Credential is read at call time; absence is tolerated and the
	// server's rejection comes back as a stream error
	if token, ok := creds.Token(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := streamClient.Do(httpReq)
	if err != nil {
		c.fail(handler, fmt.Errorf("stream request failed: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.fail(handler, fmt.Errorf("stream rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Event-stream framing prefixes payloads with "data:"; the
		// payload itself is what gets classified
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		event := DecodeEvent([]byte(line))
		switch event.Kind {
		case EventFragment:
			if c.closed.Load() {
				return
			}
			fragmentsReceived.Inc()
			handler.OnFragment(event.Fragment)
		case EventTerminal:
			// Self-close before dispatch so a replayed sentinel on
			// this handle can never fire twice
			if c.closed.CompareAndSwap(false, true) {
				handler.OnTerminal()
			}
			return
		case EventUnrecognized:
			eventsIgnored.Inc()
			logger.Debug("Ignoring unrecognized stream payload: %q", line)
		}
	}

	// Stream ended without the terminal sentinel
	err = scanner.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	c.fail(handler, fmt.Errorf("stream closed before completion: %w", err))
}

// fail dispatches a transport error unless the channel is already closed
func (c *Channel) fail(handler Handler, err error) {
	if c.closed.CompareAndSwap(false, true) {
		handler.OnError(err)
	}
}
