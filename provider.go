package streamable

import (
	"context"
	"fmt"
)

// CompletionStream is a pull-based iterator over completion events.
// Next returns io.EOF when the source has emitted its final event;
// cancellation flows through the context passed to Provider.Stream.
type CompletionStream interface {
	Next() (Event, error)
	Close() error
}

// Provider is a strategy pattern interface for chat-completion sources.
type Provider interface {
	Stream(ctx context.Context, req Request) (CompletionStream, error)
}

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDef
	// FunctionMode selects the legacy single-function-call protocol
	// instead of parallel tool calls, for providers that distinguish.
	FunctionMode bool
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}
