package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/streamable"
)

// stream implements [streamable.CompletionStream] by parsing SSE events
// from an HTTP response body. Text deltas surface immediately; tool_use
// blocks accumulate their input JSON and are flushed as a single call
// event at message_stop.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	fnMode  bool

	blocks map[int]*blockState
	queue  []streamable.Event
	calls  []streamable.FunctionCall
	done   bool
	closed bool
	err    error
}

// blockState tracks a content block being assembled.
type blockState struct {
	blockType string
	callID    string
	callName  string
	inputBuf  strings.Builder
}

// Interface compliance check.
var _ streamable.CompletionStream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, fnMode bool) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		fnMode:  fnMode,
		blocks:  make(map[int]*blockState),
	}
}

// Next reads the next semantic event from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (streamable.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, fmt.Errorf("anthropic: %w", streamable.ErrStreamClosed)
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

		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if err := s.processEvent(eventType, data); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	if err == io.EOF {
		// Normal completion goes through message_stop. A raw EOF means
		// the connection dropped mid-stream.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		return
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = ctxErr
		return
	}
	s.err = err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			// Empty event, keep reading.
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps one SSE event onto the queue or terminal state.
func (s *stream) processEvent(eventType, data string) error {
	switch eventType {
	case "content_block_start":
		return s.handleContentBlockStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "content_block_stop":
		return s.handleContentBlockStop(data)
	case "message_stop":
		s.done = true
		s.flushCalls()
		return nil
	case "error":
		return s.handleError(data)
	default:
		// message_start, message_delta, ping, and unknown event types
		// carry nothing the event model needs.
		return nil
	}
}

func (s *stream) handleContentBlockStart(data string) error {
	var evt sseContentBlockStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse content_block_start: %w", err)
	}

	bs := &blockState{blockType: evt.ContentBlock.Type}
	if evt.ContentBlock.Type == "tool_use" {
		bs.callID = evt.ContentBlock.ID
		bs.callName = evt.ContentBlock.Name
	}
	s.blocks[evt.Index] = bs
	return nil
}

func (s *stream) handleContentBlockDelta(data string) error {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}

	bs := s.blocks[evt.Index]
	if bs == nil {
		return fmt.Errorf("anthropic: delta for unknown block index %d", evt.Index)
	}

	switch evt.Delta.Type {
	case "text_delta":
		s.queue = append(s.queue, streamable.EventTextDelta{Delta: evt.Delta.Text})
	case "input_json_delta":
		bs.inputBuf.WriteString(evt.Delta.PartialJSON)
	}
	return nil
}

func (s *stream) handleContentBlockStop(data string) error {
	var evt sseContentBlockStop
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse content_block_stop: %w", err)
	}

	bs := s.blocks[evt.Index]
	if bs == nil {
		return fmt.Errorf("anthropic: stop for unknown block index %d", evt.Index)
	}

	if bs.blockType == "tool_use" {
		raw := bs.inputBuf.String()
		if raw == "" {
			raw = "{}"
		}
		s.calls = append(s.calls, streamable.FunctionCall{
			ID:        bs.callID,
			Name:      bs.callName,
			Arguments: json.RawMessage(raw),
		})
	}
	return nil
}

// flushCalls queues the buffered calls as a single terminal call event.
// Function mode surfaces only the first call.
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

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}
