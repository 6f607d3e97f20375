package stream

import (
	"strings"
	"sync"
)

// Buffer accumulates token fragments for one in-flight stream. Content is
// append-only while streaming: fragments are concatenated verbatim in
// arrival order with no normalization. Fragment delivery is serialized by
// the channel's single reader goroutine; the mutex exists so Read is safe
// from other goroutines mid-stream.
type Buffer struct {
	mu        sync.Mutex
	content   strings.Builder
	streaming bool
}

// NewBuffer creates an empty, idle buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Start resets the buffer for a new stream
func (b *Buffer) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.content.Reset()
	b.streaming = true
}

// Append concatenates one fragment onto the buffer
func (b *Buffer) Append(fragment string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.content.WriteString(fragment)
}

// Read returns a snapshot of the accumulated content. Safe at any time:
// mid-stream it returns partial content, after finalization the full text.
func (b *Buffer) Read() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.content.String()
}

// Finalize freezes the buffer and returns the complete content
func (b *Buffer) Finalize() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.streaming = false
	return b.content.String()
}

// Abandon stops streaming without finalizing. The partial content stays
// readable so a caller can keep showing it.
func (b *Buffer) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.streaming = false
}

// IsStreaming reports whether a stream is currently feeding this buffer
func (b *Buffer) IsStreaming() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.streaming
}

// Len returns the current content length in bytes
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.content.Len()
}
