// Package report formats decoded patterns as text, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/npratt/dstview/internal/design"
	"github.com/npratt/dstview/internal/dst"
)

const keyWidth = 16

// MMPerUnit converts DST machine units to millimetres.
const MMPerUnit = 0.1

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options controls what goes into a report.
type Options struct {
	// IncludeStitches adds the full stitch list to JSON and YAML output.
	IncludeStitches bool
}

// Size is the design extent in millimetres.
type Size struct {
	WidthMM  float64 `json:"width_mm" yaml:"width_mm"`
	HeightMM float64 `json:"height_mm" yaml:"height_mm"`
}

// Document is the structured form of a single pattern report.
type Document struct {
	File         string              `json:"file" yaml:"file"`
	Metadata     dst.PatternMetadata `json:"metadata" yaml:"metadata"`
	Records      int                 `json:"records" yaml:"records"`
	Bounds       *dst.Bounds         `json:"bounds" yaml:"bounds"`
	Size         *Size               `json:"size" yaml:"size"`
	ColorChanges int                 `json:"color_changes" yaml:"color_changes"`
	Statistics   dst.Statistics      `json:"statistics" yaml:"statistics"`
	Stitches     []dst.Stitch        `json:"stitches,omitempty" yaml:"stitches,omitempty"`
}

// NewDocument builds the structured report for p.
func NewDocument(name string, p *dst.Pattern, opts Options) Document {
	doc := Document{
		File:         name,
		Metadata:     p.Metadata,
		Records:      len(p.Stitches),
		Bounds:       p.Bounds,
		ColorChanges: p.ColorChanges,
		Statistics:   p.Statistics,
	}
	if p.Bounds != nil {
		doc.Size = &Size{
			WidthMM:  roundMM(p.Bounds.Width()),
			HeightMM: roundMM(p.Bounds.Height()),
		}
	}
	if opts.IncludeStitches {
		doc.Stitches = p.Stitches
	}
	return doc
}

func roundMM(units float64) float64 {
	return math.Round(units*MMPerUnit*10) / 10
}

// Write renders a single pattern report to w.
func Write(w io.Writer, format Format, name string, p *dst.Pattern, opts Options) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, Text(name, p))
		return err
	case FormatJSON:
		return writeJSON(w, NewDocument(name, p, opts))
	case FormatYAML:
		return writeYAML(w, NewDocument(name, p, opts))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// BatchEntry is one file in a batch report.
type BatchEntry struct {
	File  string    `json:"file" yaml:"file"`
	Error string    `json:"error,omitempty" yaml:"error,omitempty"`
	Doc   *Document `json:"design,omitempty" yaml:"design,omitempty"`
}

// BatchDocument is the structured form of a batch report.
type BatchDocument struct {
	Files  []BatchEntry   `json:"files" yaml:"files"`
	Totals design.Summary `json:"totals" yaml:"totals"`
}

// WriteBatch renders the results of a batch load.
func WriteBatch(w io.Writer, format Format, results []design.Result) error {
	doc := BatchDocument{
		Files:  make([]BatchEntry, 0, len(results)),
		Totals: design.Summarize(results),
	}
	for _, r := range results {
		entry := BatchEntry{File: r.Path}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else if r.Pattern != nil {
			d := NewDocument(r.Path, r.Pattern, Options{})
			entry.Doc = &d
		}
		doc.Files = append(doc.Files, entry)
	}

	switch format {
	case FormatText:
		_, err := io.WriteString(w, batchText(doc))
		return err
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
