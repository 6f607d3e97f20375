package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/opsforge/sage/pkg/auth"
	"github.com/opsforge/sage/pkg/logger"
	"github.com/opsforge/sage/pkg/stream"
)

// ErrEmptyMessage is returned when a submission is blank after trimming
var ErrEmptyMessage = errors.New("message is empty")

// SessionService covers the session-side collaborators the manager
// touches: remote title generation and renaming. Satisfied by
// *api.Client; fakes suffice for tests.
type SessionService interface {
	TitleGenerator
	RenameChatSession(ctx context.Context, sessionID, title string) error
}

// Events are the manager's consumer-facing notifications. All optional.
type Events struct {
	// OnUpdate fires with the new transcript after any visible change
	OnUpdate func(t Transcript)
	// OnComplete fires once per finished stream with the permanent message
	OnComplete func(msg Message)
	// OnError fires when a stream fails; the placeholder stays visible
	OnError func(err error)
}

// ManagerConfig configures a Manager
type ManagerConfig struct {
	Endpoint  string
	Creds     auth.Provider
	AgentID   string
	SessionID string
	History   *History       // optional persistence
	Sessions  SessionService // optional title assignment
	Events    Events
}

// Manager owns the visible transcript for one chat surface and drives
// one stream at a time through the controller. Submitting while a stream
// is active supersedes it.
type Manager struct {
	mu         sync.Mutex
	transcript Transcript
	pending    string

	controller *stream.Controller
	history    *History
	sessions   SessionService
	agentID    string
	sessionID  string
	events     Events
}

// NewManager creates a manager, preloading any persisted history
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		transcript: NewTranscript(cfg.SessionID),
		history:    cfg.History,
		sessions:   cfg.Sessions,
		agentID:    cfg.AgentID,
		sessionID:  cfg.SessionID,
		events:     cfg.Events,
	}

	if cfg.History != nil {
		for _, msg := range cfg.History.Messages() {
			m.transcript = Append(m.transcript, msg)
		}
	}

	m.controller = stream.NewController(cfg.Endpoint, cfg.Creds, stream.Callbacks{
		OnProgress: m.onProgress,
		OnComplete: m.onComplete,
		OnError:    m.onError,
	})

	return m
}

// Submit appends the user message synchronously, then starts the stream.
// The user message stays in the transcript even if the stream cannot be
// opened.
func (m *Manager) Submit(ctx context.Context, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	m.mu.Lock()
	firstMessage := len(GetMessagesByRole(m.transcript, RoleUser)) == 0
	m.transcript = Append(m.transcript, NewUserMessage(trimmed))
	m.pending = trimmed
	m.persistLocked()
	t := m.transcript
	m.mu.Unlock()

	m.notifyUpdate(t)

	err := m.controller.Start(ctx, stream.Request{
		AgentID:   m.agentID,
		Message:   trimmed,
		SessionID: m.sessionID,
	})
	if err != nil {
		m.mu.Lock()
		m.pending = ""
		m.mu.Unlock()
		return err
	}

	if firstMessage && m.sessions != nil {
		go m.assignTitle(trimmed)
	}

	return nil
}

// Cancel aborts the in-flight stream. Partial content stays visible in
// the placeholder; it is never promoted to permanent history.
func (m *Manager) Cancel() {
	m.controller.Cancel()
}

// Transcript returns a snapshot of the visible transcript
func (m *Manager) Transcript() Transcript {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Transcript{
		SessionID: m.transcript.SessionID,
		Messages:  GetMessages(m.transcript),
	}
}

// Pending returns the submission that triggered the active stream, empty
// once the stream completed
func (m *Manager) Pending() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// IsStreaming reports whether a response is currently arriving
func (m *Manager) IsStreaming() bool {
	return m.controller.IsStreaming()
}

// StreamState exposes the controller's lifecycle state
func (m *Manager) StreamState() stream.State {
	return m.controller.State()
}

func (m *Manager) onProgress(partial string) {
	m.mu.Lock()
	m.transcript = SetStreaming(m.transcript, partial)
	t := m.transcript
	m.mu.Unlock()

	m.notifyUpdate(t)
}

func (m *Manager) onComplete(final string) {
	m.mu.Lock()
	m.transcript = FinalizeStreaming(m.transcript, final)
	m.pending = ""
	m.persistLocked()
	t := m.transcript
	msg, _ := GetLastMessage(m.transcript)
	m.mu.Unlock()

	m.notifyUpdate(t)
	if m.events.OnComplete != nil {
		m.events.OnComplete(msg)
	}
}

func (m *Manager) onError(err error) {
	// The placeholder keeps whatever partial content was shown; nothing
	// is promoted to permanent history
	if m.events.OnError != nil {
		m.events.OnError(err)
	}
}

func (m *Manager) notifyUpdate(t Transcript) {
	if m.events.OnUpdate != nil {
		m.events.OnUpdate(t)
	}
}

// persistLocked writes permanent messages to history; callers hold m.mu
func (m *Manager) persistLocked() {
	if m.history == nil {
		return
	}
	if err := m.history.Replace(m.transcript); err != nil {
		logger.Warn("Failed to persist transcript: %v", err)
	}
}

// assignTitle names the session after its first message, falling back to
// the local heuristic when the remote call fails
func (m *Manager) assignTitle(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title := Title(ctx, m.sessions, message)
	if err := m.sessions.RenameChatSession(ctx, m.sessionID, title); err != nil {
		logger.Warn("Failed to set session title: %v", err)
	}
}
