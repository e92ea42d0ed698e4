package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/npratt/dstview/internal/dst"
	"github.com/npratt/dstview/internal/report"
)

const (
	minWidth  = 50
	minHeight = 10
)

// View implements tea.Model. This renders the full viewer display.
func (m model) View() string {
	if !m.ready || m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	sections := []string{
		m.renderHeader(),
		m.renderDivider(),
		styles.Columns.Render(columnTitles()),
		m.viewport.View(),
		m.renderDivider(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

// renderHeader renders the design summary: name and label, counts, extent.
func (m model) renderHeader() string {
	p := m.pattern
	st := p.Statistics

	label := "-"
	if p.Metadata.Label != nil {
		label = *p.Metadata.Label
	}
	line1 := styles.Title.Render(m.name) + "  " + styles.Label.Render(label)

	line2 := styles.Stat.Render(fmt.Sprintf(
		"%d stitches  %d jumps  %d color changes  %s",
		st.RealStitchCount, st.JumpCount, st.ColorChangeCount,
		report.FormatDuration(st.EstimatedTimeMinutes),
	))

	line3 := styles.Muted.Render("empty design")
	if b := p.Bounds; b != nil {
		line3 = styles.Muted.Render(fmt.Sprintf(
			"%.1f x %.1f mm  (%g, %g) to (%g, %g)",
			b.Width()*report.MMPerUnit, b.Height()*report.MMPerUnit,
			b.MinX, b.MinY, b.MaxX, b.MaxY,
		))
	}

	return strings.Join([]string{line1, line2, line3}, "\n")
}

func (m model) renderDivider() string {
	return styles.Divider.Render(strings.Repeat("─", max(0, m.width)))
}

func columnTitles() string {
	return fmt.Sprintf("%7s  %-13s %8s %8s %6s %6s", "#", "command", "x", "y", "dx", "dy")
}

// renderRows renders every stitch as one line, highlighting the cursor.
func (m model) renderRows() string {
	if len(m.pattern.Stitches) == 0 {
		return styles.Muted.Render("  no stitches")
	}

	var b strings.Builder
	for i, s := range m.pattern.Stitches {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := formatRow(i, s, m.deltas[i])
		if i == m.cursor {
			b.WriteString(styles.Cursor.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	return b.String()
}

// formatRow renders a stitch as: index, command, absolute position, displacement.
func formatRow(i int, s dst.Stitch, d [2]float64) string {
	name := fmt.Sprintf("%-13s", s.Command.String())
	return fmt.Sprintf("%7d  %s %8.0f %8.0f %+6.0f %+6.0f",
		i, report.CommandStyle(s.Command.String()).Render(name), s.X, s.Y, d[0], d[1])
}

// renderFooter renders the position, status line and key help.
func (m model) renderFooter() string {
	pos := "0/0"
	if n := len(m.pattern.Stitches); n > 0 {
		pos = fmt.Sprintf("%d/%d", m.cursor+1, n)
	}
	parts := []string{styles.Footer.Render(pos)}

	if m.status != "" {
		st := styles.Status
		if m.statusErr {
			st = styles.Error
		}
		parts = append(parts, st.Render(m.status))
	}

	parts = append(parts, styles.Footer.Render("↑/↓ move  pgup/pgdn page  n/p color  q quit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}

func (m model) renderTooSmall() string {
	msg := fmt.Sprintf("Terminal too small (%dx%d), need %dx%d", m.width, m.height, minWidth, minHeight)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.Error.Render(msg))
}
