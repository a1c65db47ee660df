package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamable"
	"github.com/fwojciec/streamable/markdown"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chunk chain viewer. The chain's
// output is kept as a list of segments: an append chunk starts a new
// segment, an update chunk replaces the most recent one.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	chain  *streamable.Promise[streamable.Chunk]
	styles Styles

	segments []string
	done     bool
	err      error
	ready    bool
}

// New creates a viewer Model following the given chain.
func New(chain *streamable.Promise[streamable.Chunk], theme markdown.Theme) Model {
	return Model{
		chain:  chain,
		styles: NewStyles(theme),
	}
}

// Done reports whether the chain has ended.
func (m Model) Done() bool { return m.done }

// Err returns the chain rejection error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return awaitChunk(m.chain)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return m, tea.Quit
			}
		}

	case ChunkMsg:
		m = m.applyChunk(msg.Chunk)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.done {
			return m, nil
		}
		return m, awaitChunk(msg.Chunk.Next)

	case StreamDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.Viewport.View() + "\n" + m.statusLine()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 2 // newline plus status line
	vpHeight := msg.Height - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	return m
}

func (m Model) applyChunk(c streamable.Chunk) Model {
	text := nodeText(c.Node)
	if c.Append || len(m.segments) == 0 {
		m.segments = append(m.segments, text)
	} else {
		m.segments[len(m.segments)-1] = text
	}
	if c.Done {
		m.done = true
	}
	return m
}

func (m Model) renderContent() string {
	return strings.Join(m.segments, "\n")
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.done:
		return m.styles.Muted.Render("Done — q to quit")
	default:
		return m.styles.Muted.Render("Streaming... Ctrl+C to quit")
	}
}

// nodeText flattens a node into displayable text. Strings pass through;
// anything else renders via fmt.
func nodeText(n streamable.Node) string {
	switch v := n.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
