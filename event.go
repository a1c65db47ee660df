package streamable

import "encoding/json"

// Event is a sealed interface representing one streaming event from a
// completion source. Events are purely semantic; transport and protocol
// errors come from Next()'s error return, not from events. The unexported
// marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta carries one text chunk in arrival order.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventFunctionCall carries a single parsed function call. A function
// call terminates the response.
type EventFunctionCall struct {
	Call FunctionCall
}

func (EventFunctionCall) event() {}

// EventToolCalls carries one or more parsed tool calls emitted together.
type EventToolCalls struct {
	Calls []FunctionCall
}

func (EventToolCalls) event() {}

// FunctionCall is a parsed function or tool invocation request.
type FunctionCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventFunctionCall{}
	_ Event = EventToolCalls{}
)
