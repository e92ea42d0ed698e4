package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/npratt/dstview/internal/design"
	"github.com/npratt/dstview/internal/dst"
	"github.com/npratt/dstview/internal/testutil"
)

func decode(t *testing.T, b *testutil.DSTBuilder) *dst.Pattern {
	t.Helper()
	p, err := dst.Decode(b.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return p
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0:00:00"},
		{0.5, "0:00:30"},
		{1.25, "0:01:15"},
		{61, "1:01:00"},
		{125.5, "2:05:30"},
		{-3, "0:00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	p := decode(t, testutil.Square(200, 50).StitchCountField("16").ColorCountField("1"))

	out := Text("square.dst", p)
	for _, want := range []string{
		"square.dst",
		"SQUARE",
		"16 (header: 16)",
		"0 (header colors: 1)",
		"20.0 x 20.0 mm",
		"(0, 0) to (200, 200)",
		"0:00:01",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "truncated") {
		t.Errorf("Text() should not warn for a terminated design:\n%s", out)
	}
}

func TestText_EmptyAndTruncated(t *testing.T) {
	empty := decode(t, testutil.NewDST())
	out := Text("empty.dst", empty)
	if !strings.Contains(out, "empty design") {
		t.Errorf("Text() for empty design:\n%s", out)
	}
	if !strings.Contains(out, "(header: -)") {
		t.Errorf("Text() should show absent header count:\n%s", out)
	}

	cut := decode(t, testutil.NewDST().Stitch(10, 10))
	if out := Text("cut.dst", cut); !strings.Contains(out, "truncated") {
		t.Errorf("Text() should warn about missing end record:\n%s", out)
	}
}

func TestWrite_JSON(t *testing.T) {
	p := decode(t, testutil.NewDST().Label("J").Stitch(10, 0).ColorChange().Stitch(0, 10).End())

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, "j.dst", p, Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc["file"] != "j.dst" {
		t.Errorf("file = %v", doc["file"])
	}
	if _, ok := doc["stitches"]; ok {
		t.Error("stitches should be omitted without IncludeStitches")
	}
	if doc["records"] != 4.0 {
		t.Errorf("records = %v, want 4", doc["records"])
	}
	size := doc["size"].(map[string]any)
	// Every record sits at x=10, so the extent has no width.
	if size["width_mm"] != 0.0 || size["height_mm"] != 1.0 {
		t.Errorf("size = %v, want 0x1 mm", size)
	}

	buf.Reset()
	if err := Write(&buf, FormatJSON, "j.dst", p, Options{IncludeStitches: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var full Document
	if err := json.Unmarshal(buf.Bytes(), &full); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(full.Stitches) != 4 || full.Stitches[1].Command != dst.CommandColorChange {
		t.Errorf("stitches = %+v", full.Stitches)
	}
}

func TestWrite_YAML(t *testing.T) {
	p := decode(t, testutil.NewDST().Label("Y").Jump(5, 5).Stitch(1, 1).End())

	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, "y.dst", p, Options{IncludeStitches: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "command: MOVE") {
		t.Errorf("YAML should carry command names:\n%s", out)
	}

	var doc struct {
		File       string `yaml:"file"`
		Statistics struct {
			Jumps int `yaml:"jump_count"`
		} `yaml:"statistics"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if doc.File != "y.dst" || doc.Statistics.Jumps != 1 {
		t.Errorf("decoded YAML = %+v", doc)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	p := decode(t, testutil.NewDST())
	err := Write(&bytes.Buffer{}, Format("csv"), "x", p, Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestWriteBatch(t *testing.T) {
	good := decode(t, testutil.Square(40, 20))
	results := []design.Result{
		{Path: "a.dst", Pattern: good},
		{Path: "b.dst", Err: errors.New("failed to read file: boom")},
	}

	var buf bytes.Buffer
	if err := WriteBatch(&buf, FormatText, results); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"a.dst", "8 stitches", "b.dst", "boom", "2 files (1 failed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("batch text missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteBatch(&buf, FormatJSON, results); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	var doc BatchDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Totals.Stitches != 8 || doc.Totals.Failed != 1 {
		t.Errorf("totals = %+v", doc.Totals)
	}
	if doc.Files[1].Error == "" || doc.Files[1].Doc != nil {
		t.Errorf("failed entry = %+v", doc.Files[1])
	}
}

func TestWriteBatch_CancelledLoad(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testutil.WriteDST(t, dir, "a.dst", testutil.Square(20, 10)),
		testutil.WriteDST(t, dir, "b.dst", testutil.Square(20, 10)),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := design.NewLoader(dst.Options{}, testutil.DiscardLogger())
	results, err := loader.LoadAll(ctx, paths, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadAll err = %v, want context.Canceled", err)
	}

	var buf bytes.Buffer
	if err := WriteBatch(&buf, FormatText, results); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"a.dst", "b.dst", "context canceled", "2 files (2 failed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteBatch_EntryWithoutPattern(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBatch(&buf, FormatText, []design.Result{{Path: "ghost.dst"}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "ghost.dst") || !strings.Contains(out, "not loaded") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(dst.CommandMove); got != "jump" {
		t.Errorf("Describe(Move) = %q", got)
	}
	if got := Describe(dst.StitchCommand(77)); got != "StitchCommand(77)" {
		t.Errorf("Describe(77) = %q", got)
	}
}
