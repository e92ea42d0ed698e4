package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// channelClosedMsg signals that the update channel was closed.
type channelClosedMsg struct{}

// waitForUpdate creates a command that waits for the next reload from the channel.
// Returns channelClosedMsg if the channel is closed.
func waitForUpdate(ch <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return updateMsg(u)
	}
}

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case updateMsg:
		m.handleUpdate(Update(msg))
		return m, waitForUpdate(m.updates)

	case channelClosedMsg:
		slog.Info("update channel closed, exiting viewer")
		return m, tea.Quit
	}

	return m, nil
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "up", "k":
		m.moveTo(m.cursor - 1)

	case "down", "j":
		m.moveTo(m.cursor + 1)

	case "pgup", "b":
		m.moveTo(m.cursor - m.listHeight())

	case "pgdown", "f", " ":
		m.moveTo(m.cursor + m.listHeight())

	case "home", "g":
		m.moveTo(0)

	case "end", "G":
		m.moveTo(len(m.pattern.Stitches) - 1)

	case "n":
		if i := m.nextColorChange(); i >= 0 {
			m.moveTo(i)
			m.setStatus("", false)
		} else {
			m.setStatus("no later color change", false)
		}

	case "p":
		if i := m.prevColorChange(); i >= 0 {
			m.moveTo(i)
			m.setStatus("", false)
		} else {
			m.setStatus("no earlier color change", false)
		}
	}

	return m, nil
}

// handleUpdate applies a live reload.
func (m *model) handleUpdate(u Update) {
	if u.Err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", u.Err), true)
		return
	}
	m.setPattern(u.Pattern)
	m.setStatus("reloaded at "+time.Now().Format("15:04:05"), false)
}

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}
