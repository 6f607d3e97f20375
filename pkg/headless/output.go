package headless

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Output prints streamed content to a writer. Progress updates carry the
// full partial text, so it tracks what was already written and prints
// only the new tail.
type Output struct {
	mu      sync.Mutex
	w       io.Writer
	written int
}

// NewOutput creates an output handler writing to stdout
func NewOutput() *Output {
	return NewOutputTo(os.Stdout)
}

// NewOutputTo creates an output handler writing to w
func NewOutputTo(w io.Writer) *Output {
	return &Output{w: w}
}

// Partial prints the not-yet-written tail of the partial content
func (o *Output) Partial(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(content) <= o.written {
		return
	}
	fmt.Fprint(o.w, content[o.written:])
	o.written = len(content)
}

// Final terminates the streamed line
func (o *Output) Final() {
	o.mu.Lock()
	defer o.mu.Unlock()

	fmt.Fprintln(o.w)
}
