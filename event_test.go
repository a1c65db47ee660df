package streamable_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/streamable"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	events := []streamable.Event{
		streamable.EventTextDelta{Delta: "hello"},
		streamable.EventFunctionCall{Call: streamable.FunctionCall{Name: "show_weather"}},
		streamable.EventToolCalls{Calls: []streamable.FunctionCall{
			{ID: "tc_1", Name: "show_weather", Arguments: json.RawMessage(`{"city":"Oslo"}`)},
		}},
	}
	assert.Len(t, events, 3, "update slice and switch when adding new Event types")
	for _, e := range events {
		switch e.(type) {
		case streamable.EventTextDelta:
		case streamable.EventFunctionCall:
		case streamable.EventToolCalls:
		default:
			t.Fatalf("unexpected event type: %T", e)
		}
	}
}

func TestMessageRoles(t *testing.T) {
	t.Parallel()
	assert.Equal(t, streamable.RoleUser, streamable.UserMessage{}.Role())
	assert.Equal(t, streamable.RoleAssistant, streamable.AssistantMessage{}.Role())
	assert.Equal(t, streamable.RoleFunction, streamable.FunctionResultMessage{}.Role())
}
