package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/npratt/dstview/internal/dst"
)

// FormatDuration renders minutes as h:mm:ss.
func FormatDuration(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		minutes = 0
	}
	total := int(math.Round(minutes * 60))
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

// Describe returns a short human label for a command.
func Describe(cmd dst.StitchCommand) string {
	switch cmd {
	case dst.CommandStitch:
		return "stitch"
	case dst.CommandMove:
		return "jump"
	case dst.CommandTrim:
		return "trim"
	case dst.CommandColorChange:
		return "color change"
	case dst.CommandSequinMode:
		return "sequin mode"
	case dst.CommandSequinEject:
		return "sequin eject"
	case dst.CommandEnd:
		return "end"
	default:
		return cmd.String()
	}
}

func row(key, value string) string {
	return styles.Key.Render(key) + styles.Value.Render(value) + "\n"
}

func declared(v *uint32) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// Text renders a human readable summary of p.
func Text(name string, p *dst.Pattern) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(name) + "\n")

	label := "-"
	if p.Metadata.Label != nil {
		label = *p.Metadata.Label
	}
	b.WriteString(row("Label", label))
	b.WriteString(row("Records", fmt.Sprintf("%d", len(p.Stitches))))

	stitches := fmt.Sprintf("%d (header: %s)", p.Statistics.RealStitchCount, declared(p.Metadata.StitchCount))
	b.WriteString(row("Stitches", stitches))
	b.WriteString(row("Jumps", fmt.Sprintf("%d", p.Statistics.JumpCount)))

	colors := fmt.Sprintf("%d (header colors: %s)", p.Statistics.ColorChangeCount, declared(p.Metadata.ColorCount))
	b.WriteString(row("Color changes", colors))

	if p.Bounds != nil {
		bounds := p.Bounds
		b.WriteString(row("Size", fmt.Sprintf("%.1f x %.1f mm", roundMM(bounds.Width()), roundMM(bounds.Height()))))
		b.WriteString(row("Bounds", fmt.Sprintf("(%g, %g) to (%g, %g)", bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY)))
	} else {
		b.WriteString(row("Size", styles.Muted.Render("empty design")))
	}

	b.WriteString(row("Estimated time", FormatDuration(p.Statistics.EstimatedTimeMinutes)))

	if n := len(p.Stitches); n > 0 && p.Stitches[n-1].Command != dst.CommandEnd {
		b.WriteString(styles.Warning.Render("no end record; file may be truncated") + "\n")
	}

	return b.String()
}

func batchText(doc BatchDocument) string {
	var b strings.Builder
	for _, f := range doc.Files {
		if f.Error != "" {
			b.WriteString(styles.Title.Render(f.File) + "\n")
			b.WriteString(styles.Error.Render(f.Error) + "\n\n")
			continue
		}
		d := f.Doc
		if d == nil {
			b.WriteString(styles.Title.Render(f.File) + "\n")
			b.WriteString(styles.Muted.Render("not loaded") + "\n\n")
			continue
		}
		line := fmt.Sprintf("%d stitches, %d jumps, %d color changes, %s",
			d.Statistics.RealStitchCount, d.Statistics.JumpCount,
			d.Statistics.ColorChangeCount, FormatDuration(d.Statistics.EstimatedTimeMinutes))
		b.WriteString(styles.Title.Render(f.File) + "\n")
		b.WriteString(styles.Value.Render(line) + "\n\n")
	}

	t := doc.Totals
	b.WriteString(styles.Total.Render(fmt.Sprintf("%d files (%d failed)", t.Files, t.Failed)) + "\n")
	b.WriteString(row("Stitches", fmt.Sprintf("%d", t.Stitches)))
	b.WriteString(row("Jumps", fmt.Sprintf("%d", t.Jumps)))
	b.WriteString(row("Color changes", fmt.Sprintf("%d", t.ColorChanges)))
	b.WriteString(row("Estimated time", FormatDuration(t.Minutes)))
	return b.String()
}
