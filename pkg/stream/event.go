package stream

import (
	"encoding/json"
	"strings"
)

// EventKind classifies one inbound stream payload
type EventKind int

const (
	// EventFragment carries one incremental piece of assistant text
	EventFragment EventKind = iota
	// EventTerminal is the end-of-stream sentinel; no fragments follow it
	EventTerminal
	// EventUnrecognized is any payload that is neither; ignored, never fatal
	EventUnrecognized
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	switch k {
	case EventFragment:
		return "fragment"
	case EventTerminal:
		return "terminal"
	case EventUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Event is one decoded inbound payload
type Event struct {
	Kind     EventKind
	Fragment string
}

// terminalSentinel is the literal payload signaling end of stream
const terminalSentinel = "[DONE]"

// fragmentPayload is the wire shape of a token event. Token is a pointer
// so that an explicit empty token is distinguishable from a missing field.
type fragmentPayload struct {
	Token *string `json:"token"`
}

// DecodeEvent classifies a raw payload as Fragment, Terminal or
// Unrecognized. Decode never fails: a payload that parses as neither
// shape is Unrecognized and the caller decides what to do with it.
func DecodeEvent(payload []byte) Event {
	trimmed := strings.TrimSpace(string(payload))

	if trimmed == terminalSentinel {
		return Event{Kind: EventTerminal}
	}

	var fp fragmentPayload
	if err := json.Unmarshal([]byte(trimmed), &fp); err == nil && fp.Token != nil {
		return Event{Kind: EventFragment, Fragment: *fp.Token}
	}

	return Event{Kind: EventUnrecognized}
}
