package button

import "time"

// Debouncer suppresses raw edges that arrive within the configured window of
// the last accepted edge for the same button. Edge suppression is expected
// electrical bounce, not an error condition.
//
// Debouncer is not safe for concurrent use; each input source owns one.
type Debouncer struct {
	window       time.Duration
	lastAccepted map[ID]time.Time
}

// NewDebouncer creates a debouncer with the given minimum inter-press window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:       window,
		lastAccepted: make(map[ID]time.Time, 3),
	}
}

// Accept reports whether the edge clears the debounce window and, when it
// does, returns the corresponding press and records the acceptance time.
func (d *Debouncer) Accept(edge RawEdge) (Press, bool) {
	last, seen := d.lastAccepted[edge.Button]
	if seen && edge.At.Sub(last) < d.window {
		return Press{}, false
	}
	d.lastAccepted[edge.Button] = edge.At
	return Press{Button: edge.Button, At: edge.At}, true
}
