package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamable/markdown"
)

// Styles maps a Theme to lipgloss styles for viewer chrome.
type Styles struct {
	Accent lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t markdown.Theme) Styles {
	return Styles{
		Accent: lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Error:  lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
