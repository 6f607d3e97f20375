package chat

// Transcript is the ordered list of messages for one session. Values are
// immutable: every reducer returns a fresh Transcript, leaving the old
// one untouched. At most one placeholder entry exists at any time.
type Transcript struct {
	SessionID string
	Messages  []Message
}

func NewTranscript(sessionID string) Transcript {
	return Transcript{
		SessionID: sessionID,
		Messages:  make([]Message, 0),
	}
}

// Append adds a permanent message to the end of the transcript
func Append(t Transcript, msg Message) Transcript {
	messages := make([]Message, len(t.Messages)+1)
	copy(messages, t.Messages)
	messages[len(t.Messages)] = msg

	return Transcript{
		SessionID: t.SessionID,
		Messages:  messages,
	}
}

// SetStreaming replaces the placeholder with one carrying the given
// partial content. Any prior placeholder is removed first, so the
// relative order of permanent messages is preserved and only one
// placeholder ever exists.
func SetStreaming(t Transcript, content string) Transcript {
	return Append(ClearStreaming(t), NewStreamingMessage(content))
}

// ClearStreaming removes the placeholder, if present
func ClearStreaming(t Transcript) Transcript {
	messages := make([]Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		if !msg.IsPlaceholder() {
			messages = append(messages, msg)
		}
	}

	return Transcript{
		SessionID: t.SessionID,
		Messages:  messages,
	}
}

// FinalizeStreaming promotes the finalized content to a permanent
// assistant message and drops the placeholder
func FinalizeStreaming(t Transcript, content string) Transcript {
	return Append(ClearStreaming(t), NewAssistantMessage(content))
}

// HasPlaceholder reports whether an in-progress entry is visible
func HasPlaceholder(t Transcript) bool {
	for _, msg := range t.Messages {
		if msg.IsPlaceholder() {
			return true
		}
	}
	return false
}

// PlaceholderContent returns the partial content currently on display
func PlaceholderContent(t Transcript) (string, bool) {
	for _, msg := range t.Messages {
		if msg.IsPlaceholder() {
			return msg.Content, true
		}
	}
	return "", false
}

func GetMessages(t Transcript) []Message {
	result := make([]Message, len(t.Messages))
	copy(result, t.Messages)
	return result
}

func GetLastMessage(t Transcript) (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

func GetMessagesByRole(t Transcript, role string) []Message {
	var result []Message
	for _, msg := range t.Messages {
		if msg.Role == role {
			result = append(result, msg)
		}
	}
	return result
}

// PermanentMessagesByRole selects messages by role, skipping the
// placeholder. The placeholder carries the assistant role, so this is
// the filter for what has actually been promoted to history.
func PermanentMessagesByRole(t Transcript, role string) []Message {
	var result []Message
	for _, msg := range t.Messages {
		if msg.Role == role && !msg.IsPlaceholder() {
			result = append(result, msg)
		}
	}
	return result
}

func IsEmpty(t Transcript) bool {
	return len(t.Messages) == 0
}
