package gemini

import (
	"errors"
	"io"
	"iter"
	"testing"

	"github.com/fwojciec/streamable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func callChunk(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				FunctionCall: &genai.FunctionCall{Name: name, Args: args},
			}}},
		}},
	}
}

func responses(rs ...*genai.GenerateContentResponse) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, r := range rs {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func drain(t *testing.T, s *stream) []streamable.Event {
	t.Helper()
	var events []streamable.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func TestStream_TextDeltas(t *testing.T) {
	t.Parallel()
	s := newStream(responses(textChunk("Hel"), textChunk("lo")), false)

	events := drain(t, s)
	require.Len(t, events, 2)
	assert.Equal(t, streamable.EventTextDelta{Delta: "Hel"}, events[0])
	assert.Equal(t, streamable.EventTextDelta{Delta: "lo"}, events[1])
}

func TestStream_ThoughtPartsSkipped(t *testing.T) {
	t.Parallel()
	thought := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "reasoning", Thought: true}}},
		}},
	}
	s := newStream(responses(thought, textChunk("answer")), false)

	events := drain(t, s)
	require.Len(t, events, 1)
	assert.Equal(t, streamable.EventTextDelta{Delta: "answer"}, events[0])
}

func TestStream_ToolCallsFlushAtEnd(t *testing.T) {
	t.Parallel()
	s := newStream(responses(
		textChunk("checking"),
		callChunk("get_weather", map[string]any{"city": "Oslo"}),
		callChunk("get_time", map[string]any{"zone": "CET"}),
	), false)

	events := drain(t, s)
	require.Len(t, events, 2)
	assert.Equal(t, streamable.EventTextDelta{Delta: "checking"}, events[0])

	calls, ok := events[1].(streamable.EventToolCalls)
	require.True(t, ok, "buffered calls flush as one event after the iterator ends")
	require.Len(t, calls.Calls, 2)
	assert.Equal(t, "get_weather", calls.Calls[0].Name)
	assert.JSONEq(t, `{"city":"Oslo"}`, string(calls.Calls[0].Arguments))
	assert.NotEmpty(t, calls.Calls[0].ID, "missing IDs are filled in")
	assert.Equal(t, "get_time", calls.Calls[1].Name)
}

func TestStream_FunctionModeSurfacesSingleCall(t *testing.T) {
	t.Parallel()
	s := newStream(responses(callChunk("fn", map[string]any{"a": 1.0})), true)

	events := drain(t, s)
	require.Len(t, events, 1)
	call, ok := events[0].(streamable.EventFunctionCall)
	require.True(t, ok)
	assert.Equal(t, "fn", call.Call.Name)
}

func TestStream_SourceError(t *testing.T) {
	t.Parallel()
	want := errors.New("quota exceeded")
	iterFn := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk("par"), nil) {
			return
		}
		yield(nil, want)
	}
	s := newStream(iterFn, false)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, streamable.EventTextDelta{Delta: "par"}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, want)

	// The error is sticky.
	_, err = s.Next()
	assert.ErrorIs(t, err, want)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	s := newStream(responses(textChunk("x")), false)
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, streamable.ErrStreamClosed)
}
