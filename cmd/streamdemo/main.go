// Command streamdemo streams a model answer into a terminal viewer.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... streamdemo [flags] [prompt]
//	GEMINI_API_KEY=gk-... streamdemo [flags] [prompt]
//
// Flags:
//
//	-provider string  Provider: openai, gemini, mock (auto-detected from env vars if omitted)
//	-model string     Model ID (default: provider default)
//	-api-key string   API key (overrides provider's env var)
//	-width int        Render width for markdown output (default 78)
//
// With no API keys and no -provider flag, a scripted mock provider is
// used so the demo runs offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/streamable"
	bt "github.com/fwojciec/streamable/bubbletea"
	"github.com/fwojciec/streamable/markdown"
)

const defaultPrompt = "Explain Go's concurrency story in a few short paragraphs."

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "streamdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		providerFlag = flag.String("provider", "", "Provider: openai, gemini, mock (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID (provider-specific)")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
		width        = flag.Int("width", 78, "Render width for markdown output")
	)
	flag.Parse()

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		prompt = defaultPrompt
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, *providerFlag, *apiKey,
		os.Getenv("OPENAI_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}

	theme := markdown.DefaultTheme()

	chain, err := streamable.Render(ctx, streamable.Config{
		Provider:     provider,
		Model:        *model,
		SystemPrompt: "You are a concise assistant. Answer in markdown.",
		Messages: []streamable.Message{
			streamable.UserMessage{Content: []streamable.ContentBlock{
				streamable.TextBlock{Text: prompt},
			}},
		},
		Initial: "...",
		Text:    markdown.Text(theme, *width),
		Tools:   tools(theme, *width),
	})
	if err != nil {
		return err
	}

	if err := bt.Run(ctx, bt.New(chain, theme)); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
