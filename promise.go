package streamable

import (
	"context"
	"sync"
)

// Promise is a deferred value settled exactly once by an external call to
// Resolve or Reject. It is the join point between "a new chain link exists"
// and "something is allowed to read it": producers settle, consumers await.
//
// Settlement is caller-driven only — there is no timeout and no cancellation
// of the settlement itself. Await respects the caller's context, so a
// consumer can stop waiting without affecting the promise or other waiters.
type Promise[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewPromise creates an unsettled Promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolve settles the promise with v. Calls after the first settlement
// (by either Resolve or Reject) are no-ops.
func (p *Promise[T]) Resolve(v T) {
	p.once.Do(func() {
		p.val = v
		close(p.done)
	})
}

// Reject settles the promise with err. Calls after the first settlement
// (by either Resolve or Reject) are no-ops.
func (p *Promise[T]) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Await blocks until the promise settles or ctx is done. It returns the
// resolved value, the rejection error, or ctx.Err() if the caller gave up
// first. Await may be called any number of times from any goroutine.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the promise has been resolved or rejected.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
