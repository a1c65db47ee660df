// Package bubbletea provides a Bubble Tea viewer for a streamed chunk
// chain. It follows the chain produced by [streamable.NewUI] or
// [streamable.Render], re-rendering the accumulated output as each
// chunk resolves.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamable"
)

// Run creates and runs the Bubble Tea viewer program. It blocks until
// the program exits. When the context is cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ChunkMsg delivers one resolved chunk to the viewer.
type ChunkMsg struct {
	Chunk streamable.Chunk
}

// StreamDoneMsg signals that the chain ended: Err is nil after a Done
// chunk and non-nil when the chain was rejected.
type StreamDoneMsg struct {
	Err error
}

// awaitChunk resolves the next link of the chain.
func awaitChunk(p *streamable.Promise[streamable.Chunk]) tea.Cmd {
	return func() tea.Msg {
		c, err := p.Await(context.Background())
		if err != nil {
			return StreamDoneMsg{Err: err}
		}
		return ChunkMsg{Chunk: c}
	}
}
