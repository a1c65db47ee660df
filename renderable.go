package streamable

import (
	"context"
	"encoding/json"
)

// Renderable is a sealed union over the four shapes a renderer may
// produce: a plain node, a future, a synchronous step sequence, or an
// asynchronous step sequence. The orchestrator dispatches on the explicit
// variant rather than guessing at structure.
type Renderable interface {
	renderable()
}

// Raw wraps a plain node: it is forwarded to the output immediately.
func Raw(node Node) Renderable {
	return rawNode{node: node}
}

type rawNode struct {
	node Node
}

func (rawNode) renderable() {}

// Future wraps a deferred node. The orchestrator awaits fn in its own
// goroutine and forwards the result once available.
func Future(fn func(ctx context.Context) (Node, error)) Renderable {
	return futureNode{fn: fn}
}

type futureNode struct {
	fn func(ctx context.Context) (Node, error)
}

func (futureNode) renderable() {}

// Gen wraps a synchronous step sequence. Each yielded node is forwarded
// as an intermediate state; the function's return value is the terminal
// step. Yield reports false once the output can no longer accept states.
func Gen(gen func(yield func(Node) bool) Node) Renderable {
	return genNode{gen: gen}
}

type genNode struct {
	gen func(yield func(Node) bool) Node
}

func (genNode) renderable() {}

// Generator is a pull-based asynchronous step sequence. Next returns
// intermediate nodes until done is true; the done step carries the
// terminal value.
type Generator interface {
	Next(ctx context.Context) (node Node, done bool, err error)
}

// AsyncGen wraps an asynchronous step sequence. The orchestrator drains
// it in its own goroutine, forwarding intermediates and closing on the
// terminal step.
func AsyncGen(gen Generator) Renderable {
	return asyncGenNode{gen: gen}
}

type asyncGenNode struct {
	gen Generator
}

func (asyncGenNode) renderable() {}

// Interface compliance checks.
var (
	_ Renderable = rawNode{}
	_ Renderable = futureNode{}
	_ Renderable = genNode{}
	_ Renderable = asyncGenNode{}
)

// TextPayload is the argument handed to text renderers: the accumulated
// content so far, the latest delta, and whether this is the terminal
// payload.
type TextPayload struct {
	Content string
	Delta   string
	Done    bool
}

// TextRenderer maps one text payload to a UI contribution. Invoked once
// per arriving chunk in simple mode.
type TextRenderer func(ctx context.Context, payload TextPayload) (Renderable, error)

// StreamTextRenderer consumes the long-lived payload iterator in iterator
// mode. It is invoked exactly once and receives the terminal payload as
// the iterator's last item.
type StreamTextRenderer func(ctx context.Context, it *TextIterator) (Renderable, error)

// ArgsRenderer maps a function or tool call's parsed arguments to a UI
// contribution.
type ArgsRenderer func(ctx context.Context, args json.RawMessage) (Renderable, error)
