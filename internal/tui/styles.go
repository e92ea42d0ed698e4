package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Header styles
	Title lipgloss.Style
	Label lipgloss.Style
	Stat  lipgloss.Style
	Muted lipgloss.Style

	// List styles
	Columns lipgloss.Style
	Cursor  lipgloss.Style
	Divider lipgloss.Style

	// Footer styles
	Footer lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Stat: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Columns: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("245")),

	Cursor: lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color("236")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),
}
