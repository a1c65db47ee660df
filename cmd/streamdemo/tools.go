package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/streamable"
	"github.com/fwojciec/streamable/markdown"
	"github.com/google/jsonschema-go/jsonschema"
)

// tools returns the demo tool set: a single weather lookup whose
// renderer shows a placeholder step before the final card.
func tools(theme markdown.Theme, width int) map[string]streamable.Tool {
	return map[string]streamable.Tool{
		"get_weather": {
			Description: "Get the current weather for a city",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city": {Type: "string", Description: "City name"},
				},
				Required: []string{"city"},
			},
			Render: weatherRenderer(theme, width),
		},
	}
}

func weatherRenderer(theme markdown.Theme, width int) streamable.ArgsRenderer {
	return func(_ context.Context, args json.RawMessage) (streamable.Renderable, error) {
		var params struct {
			City string `json:"city"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("weather args: %w", err)
		}
		return streamable.Gen(func(yield func(streamable.Node) bool) streamable.Node {
			yield(fmt.Sprintf("Checking weather in %s...", params.City))
			// No weather backend in the demo; render a canned card.
			card := fmt.Sprintf("## Weather: %s\n\n- Condition: overcast\n- Temperature: 12C", params.City)
			return markdown.Render(card, width, theme)
		}), nil
	}
}
