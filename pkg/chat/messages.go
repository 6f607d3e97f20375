package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StreamingMessageID is the reserved id of the in-progress placeholder.
// Finalized messages get uuid ids, so the two can never collide.
const StreamingMessageID = "streaming"

func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewStreamingMessage builds the placeholder entry carrying partial output
func NewStreamingMessage(content string) Message {
	return Message{
		ID:        StreamingMessageID,
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

func (m Message) IsPlaceholder() bool {
	return m.ID == StreamingMessageID
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
