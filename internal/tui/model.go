package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/dstview/internal/dst"
)

// Layout size constants.
const (
	// headerLines is the number of lines used by the header.
	headerLines = 3
	// chromeLines is header, two dividers, column titles and footer.
	chromeLines = headerLines + 4
)

// model is the bubbletea model for the viewer.
type model struct {
	name    string
	pattern *dst.Pattern
	deltas  [][2]float64
	updates <-chan Update

	// UI state
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool

	// status is a transient line shown in the footer, e.g. after a reload.
	status    string
	statusErr bool

	onQuit func()
}

// updateMsg wraps a live reload for the bubbletea message system.
type updateMsg Update

// newModel creates a new model for pattern.
func newModel(name string, pattern *dst.Pattern, updates <-chan Update, onQuit func()) model {
	m := model{
		name:    name,
		updates: updates,
		onQuit:  onQuit,
	}
	m.setPattern(pattern)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return waitForUpdate(m.updates)
}

// setPattern replaces the shown design, keeping the cursor in range.
func (m *model) setPattern(p *dst.Pattern) {
	if p == nil {
		p = &dst.Pattern{}
	}
	m.pattern = p
	m.deltas = p.Displacements()
	m.cursor = clamp(m.cursor, 0, max(0, len(p.Stitches)-1))
	m.refresh()
}

// listHeight returns the number of stitch rows that fit in the viewport.
func (m model) listHeight() int {
	return max(1, m.height-chromeLines)
}

// resize fits the viewport to the terminal.
func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	if !m.ready {
		m.viewport = viewport.New(width, m.listHeight())
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = m.listHeight()
	}
	m.refresh()
}

// refresh re-renders the stitch list and scrolls the cursor into view.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())
	m.ensureVisible()
}

// ensureVisible adjusts the viewport offset so the cursor row is shown.
func (m *model) ensureVisible() {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	switch {
	case m.cursor < top:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor > bottom:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// moveTo places the cursor at i, clamped to the stitch list.
func (m *model) moveTo(i int) {
	last := len(m.pattern.Stitches) - 1
	if last < 0 {
		return
	}
	m.cursor = clamp(i, 0, last)
	m.refresh()
}

// nextColorChange returns the index of the first color change after the
// cursor, or -1.
func (m model) nextColorChange() int {
	for i := m.cursor + 1; i < len(m.pattern.Stitches); i++ {
		if m.pattern.Stitches[i].Command == dst.CommandColorChange {
			return i
		}
	}
	return -1
}

// prevColorChange returns the index of the last color change before the
// cursor, or -1.
func (m model) prevColorChange() int {
	for i := min(m.cursor, len(m.pattern.Stitches)) - 1; i >= 0; i-- {
		if m.pattern.Stitches[i].Command == dst.CommandColorChange {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
