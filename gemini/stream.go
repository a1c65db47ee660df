package gemini

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/streamable"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// stream implements [streamable.CompletionStream] by wrapping the genai
// SDK's streaming iterator. Text parts surface immediately as deltas;
// function-call parts are buffered and flushed as a single call event
// once the iterator is exhausted, matching how Gemini finalizes calls at
// the end of a candidate.
type stream struct {
	pull   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	fnMode bool

	queue  []streamable.Event
	calls  []streamable.FunctionCall
	done   bool
	closed bool
	err    error
}

// Interface compliance check.
var _ streamable.CompletionStream = (*stream)(nil)

func newStream(iterFn iter.Seq2[*genai.GenerateContentResponse, error], fnMode bool) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:   next,
		stop:   stop,
		fnMode: fnMode,
	}
}

func (s *stream) Next() (streamable.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, fmt.Errorf("gemini: %w", streamable.ErrStreamClosed)
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
		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			s.flushCalls()
			continue
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: %w", err)
			return nil, s.err
		}
		s.ingest(resp)
	}
}

// ingest translates one response chunk into queued events.
func (s *stream) ingest(resp *genai.GenerateContentResponse) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" && !part.Thought {
			s.queue = append(s.queue, streamable.EventTextDelta{Delta: part.Text})
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			s.calls = append(s.calls, streamable.FunctionCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
		}
	}
}

// flushCalls queues the buffered calls as a single terminal call event.
// Function mode surfaces only the first call; Gemini does not emit more
// than one in that protocol.
func (s *stream) flushCalls() {
	if len(s.calls) == 0 {
		return
	}
	if s.fnMode {
		s.queue = append(s.queue, streamable.EventFunctionCall{Call: s.calls[0]})
	} else {
		s.queue = append(s.queue, streamable.EventToolCalls{Calls: s.calls})
	}
	s.calls = nil
}

func (s *stream) Close() error {
	s.closed = true
	s.stop()
	return nil
}
