// Package design loads DST design files from disk for the command layer.
package design

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/npratt/dstview/internal/dst"
)

// Loader reads and decodes design files.
type Loader struct {
	opts   dst.Options
	logger *slog.Logger
}

// NewLoader creates a Loader using the given decoder options.
func NewLoader(opts dst.Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		opts:   opts,
		logger: logger.With("component", "design"),
	}
}

// Load reads the file at path once and decodes it. The file handle is
// released before decoding starts.
func (l *Loader) Load(path string) (*dst.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	pattern, err := dst.DecodeWithOptions(data, l.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DST: %w", err)
	}

	l.logger.Debug("decoded design",
		"path", path,
		"bytes", len(data),
		"records", len(pattern.Stitches),
		"stitches", pattern.Statistics.RealStitchCount,
		"jumps", pattern.Statistics.JumpCount,
		"color_changes", pattern.Statistics.ColorChangeCount,
	)
	return pattern, nil
}

// Result is the outcome of loading one file in a batch.
type Result struct {
	Path    string
	Pattern *dst.Pattern
	Err     error
}

// LoadAll decodes paths concurrently, at most concurrency at a time.
// Per-file failures are reported in the matching Result; only context
// cancellation aborts the batch. Results are in the order of paths and
// always carry their Path; files skipped after cancellation hold the
// context error.
func (l *Loader) LoadAll(ctx context.Context, paths []string, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			pattern, err := l.Load(path)
			if err != nil {
				l.logger.Warn("design failed to load", "path", path, "error", err)
			}
			results[i] = Result{Path: path, Pattern: pattern, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Summary totals statistics over a batch.
type Summary struct {
	Files        int     `json:"files" yaml:"files"`
	Failed       int     `json:"failed" yaml:"failed"`
	Stitches     int     `json:"stitches" yaml:"stitches"`
	Jumps        int     `json:"jumps" yaml:"jumps"`
	ColorChanges int     `json:"color_changes" yaml:"color_changes"`
	Minutes      float64 `json:"estimated_time_minutes" yaml:"estimated_time_minutes"`
}

// Summarize totals the successful results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Files++
		if r.Err != nil || r.Pattern == nil {
			s.Failed++
			continue
		}
		st := r.Pattern.Statistics
		s.Stitches += st.RealStitchCount
		s.Jumps += st.JumpCount
		s.ColorChanges += st.ColorChangeCount
		s.Minutes += st.EstimatedTimeMinutes
	}
	return s
}
