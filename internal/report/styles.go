package report

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the text report.
var styles = struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Total   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Key: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(keyWidth),

	Value: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Total: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),
}

// CommandStyle returns the style used to show a stitch command.
func CommandStyle(name string) lipgloss.Style {
	switch name {
	case "COLOR_CHANGE":
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	case "MOVE":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	case "SEQUIN_MODE", "SEQUIN_EJECT":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("177"))
	case "END":
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	}
}
