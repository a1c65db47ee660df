package streamable

import (
	"encoding/json"
	"fmt"
	"sync"
)

// StateMarker discriminates a streamed value state from arbitrary data
// when a state crosses the public boundary. It appears only on records
// produced by [Value.Value]; interior chain links stay unmarked to keep
// the recursive wire form minimal.
const StateMarker = "streamable.value"

// State is one link in a value-flavored chain. Curr and Err are mutually
// exclusive within one state. A nil Next signals the terminal state. The
// empty state (no Curr, no Err, no Next) means "ended on the last
// already-communicated value, no new terminal payload".
type State[T any] struct {
	Curr *T
	Err  error
	Next *Promise[State[T]]

	// Type carries [StateMarker] on boundary records only.
	Type string
}

// MarshalJSON emits the compact wire form: curr and error only when
// present, the type marker only on boundary records. The in-memory Next
// promise has no wire representation.
func (s State[T]) MarshalJSON() ([]byte, error) {
	w := struct {
		Curr  *T     `json:"curr,omitempty"`
		Error string `json:"error,omitempty"`
		Type  string `json:"type,omitempty"`
	}{Curr: s.Curr, Type: s.Type}
	if s.Err != nil {
		w.Error = s.Err.Error()
	}
	return json.Marshal(w)
}

// Value is the producer handle for a typed, wire-compact stream. It runs
// the same open/closed machine as [UI] with two differences: Update never
// compares for equality (every call emits a link), and the public getter
// serializes current state lazily into a compact [State] record.
type Value[T any] struct {
	mu      sync.Mutex
	closed  bool
	curr    T
	hasCurr bool
	err     error
	tail    *Promise[State[T]]
}

// NewValue creates an open value stream. An initial value, when given,
// becomes the first communicated state.
func NewValue[T any](initial ...T) *Value[T] {
	v := &Value[T]{tail: NewPromise[State[T]]()}
	if len(initial) > 0 {
		v.curr = initial[0]
		v.hasCurr = true
	}
	return v
}

// Value snapshots the current state as a boundary record: the latest
// value or error, the pending tail when the stream is still open, and the
// discriminator marker.
func (v *Value[T]) Value() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := State[T]{Type: StateMarker}
	switch {
	case v.err != nil:
		s.Err = v.err
	case v.hasCurr:
		c := v.curr
		s.Curr = &c
	}
	if !v.closed {
		s.Next = v.tail
	}
	return s
}

// Update emits a new chain state carrying value. Every call produces a
// link; there is no referential short-circuit in the value flavor.
func (v *Value[T]) Update(value T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("update: %w", ErrStreamClosed)
	}
	next := NewPromise[State[T]]()
	v.curr = value
	v.hasCurr = true
	c := value
	v.tail.Resolve(State[T]{Curr: &c, Next: next})
	v.tail = next
	return nil
}

// Error closes the stream and rejects the chain tail with err. The
// boundary record returned by Value carries err from then on.
func (v *Value[T]) Error(err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("error: %w", ErrStreamClosed)
	}
	v.closed = true
	v.err = err
	v.tail.Reject(err)
	return nil
}

// Done closes the stream. With a value, that value is the terminal state;
// with none, the terminal state is the empty record, signaling the stream
// ended on whatever was last communicated.
func (v *Value[T]) Done(value ...T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("done: %w", ErrStreamClosed)
	}
	v.closed = true
	if len(value) > 0 {
		v.curr = value[0]
		v.hasCurr = true
		c := value[0]
		v.tail.Resolve(State[T]{Curr: &c})
		return nil
	}
	v.tail.Resolve(State[T]{})
	return nil
}
