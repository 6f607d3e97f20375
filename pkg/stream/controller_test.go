package stream

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsforge/sage/pkg/auth"
)

// collector records controller callbacks and signals completion
type collector struct {
	mu        sync.Mutex
	partials  []string
	finals    []string
	errs      []error
	completed chan string
	failed    chan error
	progress  chan string
}

func newCollector() *collector {
	return &collector{
		completed: make(chan string, 1),
		failed:    make(chan error, 1),
		progress:  make(chan string, 64),
	}
}

func (c *collector) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(partial string) {
			c.mu.Lock()
			c.partials = append(c.partials, partial)
			c.mu.Unlock()
			select {
			case c.progress <- partial:
			default:
			}
		},
		OnComplete: func(final string) {
			c.mu.Lock()
			c.finals = append(c.finals, final)
			c.mu.Unlock()
			c.completed <- final
		},
		OnError: func(err error) {
			c.mu.Lock()
			c.errs = append(c.errs, err)
			c.mu.Unlock()
			c.failed <- err
		},
	}
}

func (c *collector) completionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.finals)
}

func awaitString(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
		return ""
	}
}

func awaitError(t *testing.T, ch chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error callback")
		return nil
	}
}

func TestControllerCompletesStream(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`{"token": "Hel"}`)
		send(`{"token": "lo"}`)
		send(`{"token": " world"}`)
		send(`[DONE]`)
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	require.NoError(t, ctrl.Start(context.Background(), validRequest()))

	final := awaitString(t, col.completed)
	assert.Equal(t, "Hello world", final)
	assert.Equal(t, StateCompleted, ctrl.State())
	assert.False(t, ctrl.IsStreaming())
	assert.Equal(t, "Hello world", ctrl.Partial())
	assert.Equal(t, 1, col.completionCount())
}

func TestControllerCompletesEmptyStream(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`[DONE]`)
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	require.NoError(t, ctrl.Start(context.Background(), validRequest()))

	final := awaitString(t, col.completed)
	assert.Equal(t, "", final)
	assert.Equal(t, StateCompleted, ctrl.State())
}

func TestControllerFailsOnTransportError(t *testing.T) {
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`{"token": "partial"}`)
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	require.NoError(t, ctrl.Start(context.Background(), validRequest()))

	err := awaitError(t, col.failed)
	assert.Error(t, err)
	assert.Equal(t, StateFailed, ctrl.State())
	assert.False(t, ctrl.IsStreaming())
	assert.Equal(t, "partial", ctrl.Partial(), "partial content stays readable after failure")
	assert.Zero(t, col.completionCount(), "no completion on failure")
}

func TestControllerCancelSuppressesCompletion(t *testing.T) {
	release := make(chan struct{})
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`{"token": "Hel"}`)
		<-release
		send(`[DONE]`)
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	require.NoError(t, ctrl.Start(context.Background(), validRequest()))
	awaitString(t, col.progress)

	done := ctrl.Done()
	ctrl.Cancel()
	close(release)

	if done != nil {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("channel did not shut down after cancel")
		}
	}

	assert.Equal(t, StateCancelled, ctrl.State())
	assert.Equal(t, "Hel", ctrl.Partial())
	assert.Zero(t, col.completionCount(), "a stray sentinel after cancel must not complete the stream")
}

func TestControllerCancelIsNoOpWhenNotStreaming(t *testing.T) {
	col := newCollector()
	ctrl := NewController("http://unused.invalid", auth.Static("tok"), col.callbacks())

	assert.NotPanics(t, func() { ctrl.Cancel() })
	assert.Equal(t, StateIdle, ctrl.State())

	// And after a completed stream
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`[DONE]`)
	})
	ctrl = NewController(server.URL, auth.Static("tok"), col.callbacks())
	require.NoError(t, ctrl.Start(context.Background(), validRequest()))
	awaitString(t, col.completed)

	ctrl.Cancel()
	assert.Equal(t, StateCompleted, ctrl.State(), "cancel after completion is a no-op")
}

func TestControllerStartValidatesSynchronously(t *testing.T) {
	col := newCollector()
	ctrl := NewController("http://unused.invalid", auth.Static("tok"), col.callbacks())

	err := ctrl.Start(context.Background(), Request{AgentID: "", Message: "hi", SessionID: "s"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestControllerStartSupersedesActiveStream(t *testing.T) {
	firstRelease := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			send(`{"token": "old"}`)
			<-firstRelease
			send(`{"token": " stale"}`)
			send(`[DONE]`)
			return
		}
		send(`{"token": "fresh"}`)
		send(`[DONE]`)
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	require.NoError(t, ctrl.Start(context.Background(), validRequest()))
	awaitString(t, col.progress)

	// Second start closes the first channel before opening a new one
	require.NoError(t, ctrl.Start(context.Background(), validRequest()))
	close(firstRelease)

	final := awaitString(t, col.completed)
	assert.Equal(t, "fresh", final)
	assert.Equal(t, 1, col.completionCount(), "the superseded stream must not also complete")
	assert.Equal(t, StateCompleted, ctrl.State())
}

func TestControllerClosesUntrackedChannelAfterCancel(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	server := sseServer(t, func(w http.ResponseWriter, r *http.Request, send func(string)) {
		send(`{"token": "Hel"}`)
		<-block
	})

	col := newCollector()
	ctrl := NewController(server.URL, auth.Static("tok"), col.callbacks())

	// Reproduce Cancel landing between Start marking the stream active
	// and the opened channel being recorded: the stream is already
	// cancelled while no channel is tracked, so Cancel found nothing to
	// close and the late channel must be torn down on arrival.
	ctrl.mu.Lock()
	ctrl.gen = 1
	ctrl.state = StateStreaming
	ctrl.buffer.Start()
	handler := &controllerHandler{ctrl: ctrl, gen: 1}
	ctrl.mu.Unlock()

	ctrl.Cancel()
	require.Equal(t, StateCancelled, ctrl.State())

	ch, err := Open(context.Background(), server.URL, validRequest(), auth.Static("tok"), handler)
	require.NoError(t, err)

	ctrl.track(ch, handler.gen)

	select {
	case <-ch.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("untracked channel was not closed")
	}
	assert.Nil(t, ctrl.Done(), "a cancelled stream must not adopt the late channel")
	assert.Equal(t, StateCancelled, ctrl.State())
	assert.Zero(t, col.completionCount())
}

func TestControllerHandlerGenerationGate(t *testing.T) {
	col := newCollector()
	ctrl := NewController("http://unused.invalid", auth.Static("tok"), col.callbacks())

	// A handler from a previous generation must not move the state machine
	ctrl.mu.Lock()
	ctrl.gen = 2
	ctrl.state = StateStreaming
	ctrl.buffer.Start()
	ctrl.mu.Unlock()

	stale := &controllerHandler{ctrl: ctrl, gen: 1}
	stale.OnFragment("ghost")
	stale.OnTerminal()
	stale.OnError(assert.AnError)

	assert.Equal(t, StateStreaming, ctrl.State())
	assert.Empty(t, ctrl.Partial())
	assert.Zero(t, col.completionCount())
}

func TestControllerTerminalIsAbsorbing(t *testing.T) {
	col := newCollector()
	ctrl := NewController("http://unused.invalid", auth.Static("tok"), col.callbacks())

	ctrl.mu.Lock()
	ctrl.gen = 1
	ctrl.state = StateStreaming
	ctrl.buffer.Start()
	ctrl.mu.Unlock()

	h := &controllerHandler{ctrl: ctrl, gen: 1}
	h.OnFragment("once")
	h.OnTerminal()
	// Replayed events after the terminal state are ignored
	h.OnTerminal()
	h.OnFragment("twice")
	h.OnError(assert.AnError)

	assert.Equal(t, StateCompleted, ctrl.State())
	assert.Equal(t, "once", ctrl.Partial())
	assert.Equal(t, 1, col.completionCount())
}
