// Package json transports value-flavor streams as JSON lines. Encode
// walks a value's chain and writes one compact state record per line;
// Decode replays such a stream into a live [streamable.Value] on the
// consuming side.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/streamable"
)

// wireState is the decoded form of one state record. The in-memory Next
// promise has no wire representation, so arrival order carries the chain
// structure.
type wireState[T any] struct {
	Curr  *T     `json:"curr,omitempty"`
	Error string `json:"error,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Encode writes val's chain to w as JSON lines, one state record per
// line, blocking until the stream ends. A rejected chain is written as a
// final error record; Encode itself returns an error only for I/O and
// context failures.
func Encode[T any](ctx context.Context, w io.Writer, val *streamable.Value[T]) error {
	enc := json.NewEncoder(w)

	state := val.Value()
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("json: encode state: %w", err)
	}

	next := state.Next
	for next != nil {
		st, err := next.Await(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if encErr := enc.Encode(streamable.State[T]{Err: err}); encErr != nil {
				return fmt.Errorf("json: encode error state: %w", encErr)
			}
			return nil
		}
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("json: encode state: %w", err)
		}
		next = st.Next
	}
	return nil
}

// Decode replays a JSON-lines stream into a live value. The returned
// value updates as records arrive and closes when the stream ends: an
// error record rejects the chain, end of input closes it normally.
// The first record must carry the [streamable.StateMarker] discriminator.
func Decode[T any](r io.Reader) *streamable.Value[T] {
	v := streamable.NewValue[T]()
	dec := json.NewDecoder(r)

	go func() {
		first := true
		for {
			var f wireState[T]
			if err := dec.Decode(&f); err != nil {
				if errors.Is(err, io.EOF) {
					_ = v.Done()
				} else {
					_ = v.Error(fmt.Errorf("json: decode state: %w", err))
				}
				return
			}
			if first {
				first = false
				if f.Type != streamable.StateMarker {
					_ = v.Error(fmt.Errorf("json: first record missing %q marker", streamable.StateMarker))
					return
				}
			}
			if f.Error != "" {
				_ = v.Error(errors.New(f.Error))
				return
			}
			if f.Curr != nil {
				_ = v.Update(*f.Curr)
			}
		}
	}()

	return v
}
