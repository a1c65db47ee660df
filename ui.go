package streamable

import (
	"fmt"
	"sync"
	"time"
)

// UI is the producer handle for a node-flavored stream. The handle is
// mutable and exclusively owned by its creator; the chain of promises it
// emits is shared read-only with any number of consumers via Value.
//
// A UI starts open. Update and Append each rotate the chain tail; Error
// and Done close the stream. Every mutating call on a closed stream fails
// with [ErrStreamClosed].
type UI struct {
	mu      sync.Mutex
	closed  bool
	current Node
	head    *Promise[Chunk]
	tail    *Promise[Chunk]

	idleAfter time.Duration
	idleWarn  func()
	idleTimer *time.Timer
}

// UIOption configures a [UI].
type UIOption func(*UI)

// WithIdleWarning installs a diagnostic that fires when no transition
// occurs within d of the previous one. It is advisory only and never
// alters stream state. Intended for development; off by default.
func WithIdleWarning(d time.Duration, warn func()) UIOption {
	return func(u *UI) {
		u.idleAfter = d
		u.idleWarn = warn
	}
}

// NewUI creates an open UI stream whose first chain link carries initial.
// A nil initial is a valid empty first state.
func NewUI(initial Node, opts ...UIOption) *UI {
	u := &UI{current: initial}
	for _, o := range opts {
		o(u)
	}
	u.head, u.tail = newSuspendedChunk(initial)
	u.touchIdle()
	return u
}

// Value returns the head of the promise chain. Consumers read states by
// awaiting the head and then each Next in turn until a chunk with Done
// set. The chain is append-only and strictly FIFO.
func (u *UI) Value() *Promise[Chunk] {
	return u.head
}

// Update emits a new chain state carrying node. If node is referentially
// identical to the previous value the call is a no-op apart from
// refreshing the idle diagnostic — no duplicate link is produced.
func (u *UI) Update(node Node) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("update: %w", ErrStreamClosed)
	}
	if sameNode(node, u.current) {
		u.touchIdle()
		return nil
	}
	next := NewPromise[Chunk]()
	u.current = node
	u.tail.Resolve(Chunk{Node: node, Next: next})
	u.tail = next
	u.touchIdle()
	return nil
}

// Append emits a new chain state tagged for concatenation: the consumer
// should append node to the prior accumulated content rather than replace
// it. Unlike Update, Append never short-circuits on equality.
func (u *UI) Append(node Node) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("append: %w", ErrStreamClosed)
	}
	next := NewPromise[Chunk]()
	u.current = node
	u.tail.Resolve(Chunk{Node: node, Append: true, Next: next})
	u.tail = next
	u.touchIdle()
	return nil
}

// Error closes the stream and rejects the chain tail with err. Consumers
// awaiting the tail receive the rejection as terminal; no further links
// are produced.
func (u *UI) Error(err error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("error: %w", ErrStreamClosed)
	}
	u.closed = true
	u.stopIdle()
	u.tail.Reject(err)
	return nil
}

// Done closes the stream with a terminal chunk. Called with a node, that
// node is the terminal value; called with none, the stream closes on the
// last value set by Update or Append (or the initial value).
func (u *UI) Done(node ...Node) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("done: %w", ErrStreamClosed)
	}
	u.closed = true
	u.stopIdle()
	v := u.current
	if len(node) > 0 {
		v = node[0]
	}
	u.tail.Resolve(Chunk{Node: v, Done: true})
	return nil
}

// touchIdle restarts the idle diagnostic timer. Caller holds u.mu (or has
// exclusive access during construction).
func (u *UI) touchIdle() {
	if u.idleWarn == nil {
		return
	}
	if u.idleTimer != nil {
		u.idleTimer.Stop()
	}
	u.idleTimer = time.AfterFunc(u.idleAfter, u.idleWarn)
}

func (u *UI) stopIdle() {
	if u.idleTimer != nil {
		u.idleTimer.Stop()
		u.idleTimer = nil
	}
}
