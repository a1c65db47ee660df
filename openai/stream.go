package openai

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/streamable"
	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// chunkSource is the subset of the SDK's SSE stream the adapter reads.
// Narrowed to an interface so tests can script chunks directly.
type chunkSource interface {
	Next() bool
	Current() oai.ChatCompletionChunk
	Err() error
	Close() error
}

var _ chunkSource = (*ssestream.Stream[oai.ChatCompletionChunk])(nil)

// stream implements [streamable.CompletionStream] over the chat
// completion SSE stream. Content deltas surface immediately;
// tool-call argument fragments are accumulated per call index and
// flushed as a single call event at the finish reason.
type stream struct {
	src    chunkSource
	fnMode bool

	queue  []streamable.Event
	calls  []*pendingCall
	done   bool
	closed bool
	err    error
}

// pendingCall accumulates the fragments of one tool call. The ID and
// name arrive on the first fragment; arguments arrive in pieces.
type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// Interface compliance check.
var _ streamable.CompletionStream = (*stream)(nil)

func newStream(src chunkSource, fnMode bool) *stream {
	return &stream{src: src, fnMode: fnMode}
}

func (s *stream) Next() (streamable.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, fmt.Errorf("openai: %w", streamable.ErrStreamClosed)
	}
	for {
		if len(s.queue) > 0 {
			e := s.queue[0]
			s.queue = s.queue[1:]
			return e, nil
		}
		if s.done {
			return nil, io.EOF
		}
		if !s.src.Next() {
			if err := s.src.Err(); err != nil {
				s.err = fmt.Errorf("openai: %w", err)
				return nil, s.err
			}
			s.done = true
			s.flushCalls()
			continue
		}
		s.ingest(s.src.Current())
	}
}

// ingest translates one SSE chunk into queued events and pending
// call state.
func (s *stream) ingest(chunk oai.ChatCompletionChunk) {
	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		s.queue = append(s.queue, streamable.EventTextDelta{Delta: choice.Delta.Content})
	}

	for _, t := range choice.Delta.ToolCalls {
		idx := int(t.Index)
		for len(s.calls) <= idx {
			s.calls = append(s.calls, &pendingCall{})
		}
		c := s.calls[idx]
		if t.ID != "" {
			c.id = t.ID
		}
		c.name += t.Function.Name
		c.args.WriteString(t.Function.Arguments)
	}

	switch choice.FinishReason {
	case "stop", "tool_calls", "function_call":
		s.done = true
		s.flushCalls()
	}
}

// flushCalls queues the accumulated calls as a single terminal call
// event. Function mode surfaces only the first call.
func (s *stream) flushCalls() {
	if len(s.calls) == 0 {
		return
	}
	calls := make([]streamable.FunctionCall, len(s.calls))
	for i, c := range s.calls {
		id := c.id
		if id == "" {
			id = uuid.NewString()
		}
		calls[i] = streamable.FunctionCall{
			ID:        id,
			Name:      c.name,
			Arguments: json.RawMessage(repairArgs(c.args.String())),
		}
	}
	s.calls = nil

	if s.fnMode {
		s.queue = append(s.queue, streamable.EventFunctionCall{Call: calls[0]})
	} else {
		s.queue = append(s.queue, streamable.EventToolCalls{Calls: calls})
	}
}

// repairArgs fixes up the assembled argument JSON. Models sometimes
// truncate arguments at the token limit; jsonrepair closes the
// dangling syntax so downstream renderers get valid JSON.
func repairArgs(args string) string {
	if args == "" {
		return "{}"
	}
	if json.Valid([]byte(args)) {
		return args
	}
	fixed, err := jsonrepair.JSONRepair(args)
	if err != nil {
		return args
	}
	return fixed
}

func (s *stream) Close() error {
	s.closed = true
	return s.src.Close()
}
