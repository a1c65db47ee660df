// Package markdown renders markdown text to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package markdown

import (
	"context"

	"github.com/fwojciec/streamable"
)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

// Text returns a text renderer that re-renders the accumulated content
// as styled markdown on every payload. Suited for terminal outputs that
// replace the whole assistant turn on each update.
func Text(theme Theme, width int) streamable.TextRenderer {
	return func(_ context.Context, payload streamable.TextPayload) (streamable.Renderable, error) {
		return streamable.Raw(Render(payload.Content, width, theme)), nil
	}
}
