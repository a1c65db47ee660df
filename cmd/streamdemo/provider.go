package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/streamable"
	"github.com/fwojciec/streamable/gemini"
	"github.com/fwojciec/streamable/mock"
	"github.com/fwojciec/streamable/openai"
)

// resolveProvider selects and constructs the provider. All env var
// values are passed in as parameters — env is only read in main().
// When nothing selects a real provider, the scripted mock is used.
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag, openaiEnvKey, geminiEnvKey string) (streamable.Provider, error) {
	provider := providerFlag

	// Auto-detect from env vars if no flag.
	if provider == "" {
		hasOpenAI := openaiEnvKey != ""
		hasGemini := geminiEnvKey != ""
		switch {
		case hasOpenAI && hasGemini:
			return nil, fmt.Errorf("multiple API keys found (OPENAI_API_KEY, GEMINI_API_KEY): use -provider flag to select")
		case hasOpenAI:
			provider = "openai"
		case hasGemini:
			provider = "gemini"
		default:
			provider = "mock"
		}
	}

	// Resolve API key: explicit flag overrides env var.
	key := apiKeyFlag
	switch provider {
	case "openai":
		if key == "" {
			key = openaiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use -api-key flag or environment variable)")
		}
		return openai.New(key), nil
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	case "mock":
		return mockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"openai\", \"gemini\", or \"mock\"", provider)
	}
}

// mockProvider replays a canned markdown answer so the demo works
// without credentials.
func mockProvider() streamable.Provider {
	script := []string{
		"# Goroutines\n\n",
		"Go ships concurrency as a language feature: ",
		"`go f()` starts a cheap, runtime-scheduled thread.\n\n",
		"## Channels\n\n",
		"Goroutines talk over typed channels:\n\n",
		"```go\nch := make(chan int)\ngo func() { ch <- 42 }()\nfmt.Println(<-ch)\n```\n\n",
		"- `select` multiplexes channel operations\n",
		"- `context` propagates cancellation\n",
		"- `sync` covers the rest\n",
	}
	events := make([]streamable.Event, len(script))
	for i, s := range script {
		events[i] = streamable.EventTextDelta{Delta: s}
	}
	return &mock.Provider{
		StreamFn: func(_ context.Context, _ streamable.Request) (streamable.CompletionStream, error) {
			return mock.Scripted(events, io.EOF), nil
		},
	}
}
