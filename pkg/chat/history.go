package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// History persists a transcript to disk so a session can be resumed.
// The placeholder entry is never persisted: only finalized messages
// belong to permanent history.
type History struct {
	mu       sync.RWMutex
	filePath string
	messages []Message
}

// NewHistory creates a history manager backed by the given file,
// loading any existing content
func NewHistory(filePath string) (*History, error) {
	h := &History{
		filePath: filePath,
		messages: make([]Message, 0),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := h.load(); err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return h, nil
}

// Replace persists the permanent messages of a transcript
func (h *History) Replace(t Transcript) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = h.messages[:0]
	for _, msg := range t.Messages {
		if !msg.IsPlaceholder() {
			h.messages = append(h.messages, msg)
		}
	}
	return h.save()
}

// Messages returns a copy of the persisted messages
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msgs := make([]Message, len(h.messages))
	copy(msgs, h.messages)
	return msgs
}

// Clear empties the history on disk
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = h.messages[:0]
	return h.save()
}

type historyFile struct {
	Messages []Message `json:"messages"`
}

func (h *History) save() error {
	data, err := json.MarshalIndent(historyFile{Messages: h.messages}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(h.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

func (h *History) load() error {
	data, err := os.ReadFile(h.filePath)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return fmt.Errorf("failed to parse history file: %w", err)
	}

	if hf.Messages != nil {
		h.messages = hf.Messages
	}
	return nil
}
