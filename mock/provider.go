// Package mock provides test doubles for streamable interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/fwojciec/streamable"
)

// Interface compliance checks.
var (
	_ streamable.Provider         = (*Provider)(nil)
	_ streamable.CompletionStream = (*CompletionStream)(nil)
)

// Provider is a test double for streamable.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req streamable.Request) (streamable.CompletionStream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req streamable.Request) (streamable.CompletionStream, error) {
	return p.StreamFn(ctx, req)
}

// CompletionStream is a test double for streamable.CompletionStream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because test code commonly calls defer stream.Close().
type CompletionStream struct {
	NextFn  func() (streamable.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *CompletionStream) Next() (streamable.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *CompletionStream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Scripted returns a CompletionStream that replays events in order and
// then reports err (io.EOF for a normal finish).
func Scripted(events []streamable.Event, err error) *CompletionStream {
	i := 0
	return &CompletionStream{
		NextFn: func() (streamable.Event, error) {
			if i >= len(events) {
				return nil, err
			}
			e := events[i]
			i++
			return e, nil
		},
	}
}
