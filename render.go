package streamable

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Config describes one Render invocation: the completion source, the
// conversation to send, and the renderers that turn streamed events into
// UI states.
//
// Text and TextStream are mutually exclusive text-handling modes, as are
// Tools and Functions. Configuring both members of either pair fails
// validation before any provider interaction.
type Config struct {
	Provider     Provider
	Model        string
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  *float64

	// Initial seeds the output stream's first state.
	Initial Node

	// Text renders each arriving text chunk (simple mode).
	Text TextRenderer
	// TextStream renders the whole text sequence through a pull iterator
	// (iterator mode). Invoked exactly once, lazily.
	TextStream StreamTextRenderer

	// Tools configures parallel tool calling; Functions the legacy
	// single-function protocol.
	Tools     map[string]Tool
	Functions map[string]Tool

	// OnRendererError observes renderer failures. A failing renderer's
	// contribution is dropped, never retried; when nil, failures are
	// discarded.
	OnRendererError func(error)
}

// Validate checks the mutual-exclusivity constraints and the presence of
// a provider.
func (c Config) Validate() error {
	if c.Provider == nil {
		return fmt.Errorf("provider is required: %w", ErrValidation)
	}
	if c.Text != nil && c.TextStream != nil {
		return fmt.Errorf("text and text stream renderers are mutually exclusive: %w", ErrValidation)
	}
	if c.Tools != nil && c.Functions != nil {
		return fmt.Errorf("tools and functions are mutually exclusive: %w", ErrValidation)
	}
	return nil
}

// Render drives a completion stream through the configured renderers into
// a node-flavored output stream. It returns the output's chain head
// immediately; all production happens asynchronously afterward. The
// returned promise chain ends in exactly one terminal chunk, or in a
// rejection if the source or configuration fails mid-flight.
func Render(ctx context.Context, cfg Config) (*Promise[Chunk], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tools := cfg.Tools
	if tools == nil {
		tools = cfg.Functions
	}
	defs, err := ToolDefs(tools)
	if err != nil {
		return nil, err
	}
	req := Request{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Messages:     cfg.Messages,
		Tools:        defs,
		FunctionMode: cfg.Functions != nil,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ui := NewUI(cfg.Initial)
	r := &run{cfg: cfg, ui: ui, seq: newSequencer()}
	go r.drive(ctx, req)
	return ui.Value(), nil
}

// run holds the mutable state of one Render invocation. Event handling is
// confined to the drive goroutine; only the text queue is shared with the
// iterator-mode renderer.
type run struct {
	cfg Config
	ui  *UI
	seq *sequencer

	content     string
	hasFunction bool

	// Iterator-mode buffer, shared with TextIterator.
	mu    sync.Mutex
	queue []TextPayload
	wake  *Promise[struct{}]
	once  sync.Once
}

func (r *run) drive(ctx context.Context, req Request) {
	stream, err := r.cfg.Provider.Stream(ctx, req)
	if err != nil {
		r.ui.Error(err)
		return
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if err == io.EOF {
			r.onFinal(ctx)
			return
		}
		if err != nil {
			r.ui.Error(err)
			return
		}
		switch e := evt.(type) {
		case EventTextDelta:
			r.onText(ctx, e.Delta)
		case EventFunctionCall:
			r.onFunctionCall(ctx, e.Call)
		case EventToolCalls:
			r.onToolCalls(ctx, e.Calls)
		}
	}
}

// onText accumulates the chunk and hands it to the configured text mode.
func (r *run) onText(ctx context.Context, delta string) {
	r.content += delta
	payload := TextPayload{Content: r.content, Delta: delta}
	if r.cfg.TextStream != nil {
		r.pushText(ctx, payload)
		return
	}
	if r.cfg.Text == nil {
		return
	}
	r.handleRender(ctx, func(ctx context.Context) (Renderable, error) {
		return r.cfg.Text(ctx, payload)
	}, false)
}

// onFunctionCall dispatches the single function call's renderer as the
// final call: its terminal step closes the output.
func (r *run) onFunctionCall(ctx context.Context, call FunctionCall) {
	r.hasFunction = true
	f, ok := r.cfg.Functions[call.Name]
	if !ok || f.Render == nil {
		return
	}
	r.handleRender(ctx, func(ctx context.Context) (Renderable, error) {
		return f.Render(ctx, call.Arguments)
	}, true)
}

// onToolCalls dispatches every call's renderer concurrently — no mutual
// ordering — then awaits the completion chain and closes the output.
func (r *run) onToolCalls(ctx context.Context, calls []FunctionCall) {
	r.hasFunction = true
	for _, call := range calls {
		t, ok := r.cfg.Tools[call.Name]
		if !ok || t.Render == nil {
			continue
		}
		release := r.seq.join()
		go func(call FunctionCall, t Tool) {
			out, err := t.Render(ctx, call.Arguments)
			if err != nil {
				release(ctx)
				r.rendererError(err)
				return
			}
			r.forward(ctx, out, false, release)
		}(call, t)
	}
	r.seq.wait(ctx)
	if err := r.ui.Done(); err != nil {
		r.rendererError(err)
	}
}

// onFinal handles the source's terminal signal. A function or tool call
// that already claimed termination makes this a no-op. Iterator mode
// enqueues the done sentinel — triggering the once-only renderer if no
// text ever arrived — and leaves closure to that final invocation. Simple
// mode dispatches the terminal payload, awaits all renderer completions,
// and closes on the last forwarded value.
func (r *run) onFinal(ctx context.Context) {
	if r.hasFunction {
		return
	}
	final := TextPayload{Content: r.content, Done: true}
	if r.cfg.TextStream != nil {
		r.pushText(ctx, final)
		return
	}
	if r.cfg.Text != nil {
		r.handleRender(ctx, func(ctx context.Context) (Renderable, error) {
			return r.cfg.Text(ctx, final)
		}, false)
	}
	r.seq.wait(ctx)
	if err := r.ui.Done(); err != nil {
		r.rendererError(err)
	}
}

// pushText enqueues a payload for the iterator-mode renderer and invokes
// that renderer on first use. The invocation is detached: the renderer
// blocks on the iterator while the drive loop keeps feeding it.
func (r *run) pushText(ctx context.Context, payload TextPayload) {
	r.mu.Lock()
	r.queue = append(r.queue, payload)
	if r.wake != nil {
		r.wake.Resolve(struct{}{})
		r.wake = nil
	}
	r.mu.Unlock()

	r.once.Do(func() {
		release := r.seq.join()
		it := &TextIterator{r: r}
		go func() {
			out, err := r.cfg.TextStream(ctx, it)
			if err != nil {
				release(ctx)
				r.rendererError(err)
				return
			}
			r.forward(ctx, out, true, release)
		}()
	})
}

// handleRender invokes one renderer and forwards its output. The renderer
// is invoked synchronously — matching the cooperative dispatch order of
// arriving events — while future and asynchronous-sequence results
// complete in their own goroutine. The sequencer slot claimed here is
// released when the invocation's effects are fully applied.
func (r *run) handleRender(ctx context.Context, invoke func(context.Context) (Renderable, error), final bool) {
	release := r.seq.join()
	out, err := invoke(ctx)
	if err != nil {
		release(ctx)
		r.rendererError(err)
		return
	}
	r.forward(ctx, out, final, release)
}

// forward routes a Renderable into the output stream. Intermediate steps
// go through Update; the terminal step goes through Done when final,
// Update otherwise. A nil Renderable contributes nothing — except as the
// final call, where it closes the output on the last forwarded value.
func (r *run) forward(ctx context.Context, out Renderable, final bool, release func(context.Context)) {
	switch v := out.(type) {
	case rawNode:
		r.emit(v.node, final)
		release(ctx)
	case futureNode:
		go func() {
			defer release(ctx)
			node, err := v.fn(ctx)
			if err != nil {
				r.rendererError(err)
				return
			}
			r.emit(node, final)
		}()
	case genNode:
		terminal := v.gen(func(n Node) bool {
			return r.update(n)
		})
		r.emit(terminal, final)
		release(ctx)
	case asyncGenNode:
		go func() {
			defer release(ctx)
			for {
				node, done, err := v.gen.Next(ctx)
				if err != nil {
					r.rendererError(err)
					return
				}
				if done {
					r.emit(node, final)
					return
				}
				if !r.update(node) {
					return
				}
			}
		}()
	default: // nil or unknown: no contribution
		if final {
			if err := r.ui.Done(); err != nil {
				r.rendererError(err)
			}
		}
		release(ctx)
	}
}

func (r *run) update(n Node) bool {
	if err := r.ui.Update(n); err != nil {
		r.rendererError(err)
		return false
	}
	return true
}

func (r *run) emit(n Node, final bool) {
	var err error
	if final {
		err = r.ui.Done(n)
	} else {
		err = r.ui.Update(n)
	}
	if err != nil {
		r.rendererError(err)
	}
}

// rendererError reports a dropped contribution. Failures are fatal to the
// invocation that produced them and are never retried.
func (r *run) rendererError(err error) {
	if r.cfg.OnRendererError != nil {
		r.cfg.OnRendererError(err)
	}
}

// TextIterator is the pull side of iterator mode. Next suspends while the
// buffer is empty and returns io.EOF after the terminal payload has been
// delivered.
type TextIterator struct {
	r     *run
	ended bool
}

// Next returns the next buffered payload, blocking until one arrives or
// ctx is done. The payload with Done set is the last; subsequent calls
// return io.EOF.
func (it *TextIterator) Next(ctx context.Context) (TextPayload, error) {
	if it.ended {
		return TextPayload{}, io.EOF
	}
	for {
		it.r.mu.Lock()
		if len(it.r.queue) > 0 {
			p := it.r.queue[0]
			it.r.queue = it.r.queue[1:]
			it.r.mu.Unlock()
			if p.Done {
				it.ended = true
			}
			return p, nil
		}
		if it.r.wake == nil {
			it.r.wake = NewPromise[struct{}]()
		}
		w := it.r.wake
		it.r.mu.Unlock()
		if _, err := w.Await(ctx); err != nil {
			return TextPayload{}, err
		}
	}
}

// sequencer totally orders renderer completions relative to stream
// closure: an explicit rotating tail promise replaces implicit promise
// chaining. Every dispatched renderer claims a slot with join and
// releases it when its effects are applied; wait blocks until every slot
// claimed so far has been released, in dispatch order.
type sequencer struct {
	mu   sync.Mutex
	tail *Promise[struct{}]
}

func newSequencer() *sequencer {
	settled := NewPromise[struct{}]()
	settled.Resolve(struct{}{})
	return &sequencer{tail: settled}
}

// join claims the next completion slot. The returned release must be
// called exactly once; it resolves this slot after the previous slot has
// resolved, without blocking the caller.
func (s *sequencer) join() func(context.Context) {
	s.mu.Lock()
	prev := s.tail
	next := NewPromise[struct{}]()
	s.tail = next
	s.mu.Unlock()
	return func(ctx context.Context) {
		go func() {
			prev.Await(ctx)
			next.Resolve(struct{}{})
		}()
	}
}

// wait blocks until the most recently claimed slot resolves.
func (s *sequencer) wait(ctx context.Context) error {
	s.mu.Lock()
	tail := s.tail
	s.mu.Unlock()
	_, err := tail.Await(ctx)
	return err
}
