package tui

import (
	"strings"
	"testing"

	"github.com/npratt/dstview/internal/dst"
)

func TestView_Loading(t *testing.T) {
	m := newModel("test.dst", threeBlocks(t, "L"), nil, nil)
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before size = %q, want Loading...", got)
	}
}

func TestView_TooSmall(t *testing.T) {
	m := sizedModel(t, threeBlocks(t, "S"), 30, 5)
	if got := m.View(); !strings.Contains(got, "Terminal too small") {
		t.Errorf("View() = %q, want too small message", got)
	}
}

func TestView_Layout(t *testing.T) {
	m := sizedModel(t, threeBlocks(t, "BLOCKS"), 80, 24)
	out := m.View()

	for _, want := range []string{
		"test.dst",
		"BLOCKS",
		"25 stitches",
		"2 color changes",
		"command",
		"COLOR_CHANGE",
		"1/28",
		"q quit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	if len(lines) > 24 {
		t.Errorf("View() has %d lines, want at most 24", len(lines))
	}
}

func TestView_StatusLine(t *testing.T) {
	m := sizedModel(t, threeBlocks(t, "S"), 80, 24)
	m.setStatus("reloaded at 12:00:00", false)
	if out := m.renderFooter(); !strings.Contains(out, "reloaded at 12:00:00") {
		t.Errorf("footer = %q, want status", out)
	}
}

func TestView_EmptyPattern(t *testing.T) {
	m := sizedModel(t, &dst.Pattern{}, 80, 24)
	out := m.View()
	for _, want := range []string{"no stitches", "0/0", "empty design", "0:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRow(t *testing.T) {
	row := formatRow(3, dst.Stitch{X: 10, Y: -5, Command: dst.CommandMove}, [2]float64{1, -2})
	for _, want := range []string{"      3", "MOVE", "10", "-5", "+1", "-2"} {
		if !strings.Contains(row, want) {
			t.Errorf("formatRow() = %q, missing %q", row, want)
		}
	}
}

func TestRenderRows_HighlightsCursor(t *testing.T) {
	m := sizedModel(t, threeBlocks(t, "C"), 80, 24)
	rows := strings.Split(m.renderRows(), "\n")
	if len(rows) != 28 {
		t.Fatalf("got %d rows, want 28", len(rows))
	}
	if !strings.Contains(rows[10], "COLOR_CHANGE") {
		t.Errorf("row 10 = %q, want color change", rows[10])
	}
	if !strings.Contains(rows[27], "END") {
		t.Errorf("row 27 = %q, want end", rows[27])
	}
}
