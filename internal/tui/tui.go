// Package tui provides an interactive terminal viewer for decoded designs
// using bubbletea.
package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/dstview/internal/dst"
)

// Update carries a reloaded design, or the error from a failed reload.
type Update struct {
	Pattern *dst.Pattern
	Err     error
}

// TUI is the terminal viewer for one design file.
type TUI struct {
	name    string
	pattern *dst.Pattern
	updates <-chan Update
	out     io.Writer
	onQuit  func()
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a viewer for pattern, shown under name.
func New(name string, pattern *dst.Pattern, opts ...Option) *TUI {
	t := &TUI{
		name:    name,
		pattern: pattern,
		out:     os.Stdout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithUpdates sets a channel of live reloads. The viewer replaces the shown
// design on each update and exits when the channel closes.
func WithUpdates(ch <-chan Update) Option {
	return func(t *TUI) {
		t.updates = ch
	}
}

// WithOutput sets where the non-interactive fallback writes.
func WithOutput(w io.Writer) Option {
	return func(t *TUI) {
		t.out = w
	}
}

// WithOnQuit sets the callback invoked when the user quits.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// Run starts the viewer and blocks until it exits. Without a terminal it
// prints the text report instead.
func (t *TUI) Run() error {
	if !isTerminal() {
		return t.runSimple()
	}

	m := newModel(t.name, t.pattern, t.updates, t.onQuit)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
