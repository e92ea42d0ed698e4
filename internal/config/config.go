// Package config provides configuration types and defaults for dstview.
package config

import (
	"fmt"
	"time"

	"github.com/npratt/dstview/internal/dst"
)

// Output formats accepted in OutputConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all configuration for dstview.
type Config struct {
	Decoder     DecoderConfig     `yaml:"decoder" mapstructure:"decoder"`
	Render      RenderConfig      `yaml:"render" mapstructure:"render"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// DecoderConfig holds the machine model used for time estimates.
type DecoderConfig struct {
	MachineSpeedSPM           float64 `yaml:"machine_speed_spm" mapstructure:"machine_speed_spm"`
	ColorChangePenaltySeconds float64 `yaml:"color_change_penalty_seconds" mapstructure:"color_change_penalty_seconds"`
}

// Options converts the decoder settings to dst.Options.
func (d DecoderConfig) Options() dst.Options {
	return dst.Options{
		MachineSpeedSPM:           d.MachineSpeedSPM,
		ColorChangePenaltySeconds: d.ColorChangePenaltySeconds,
	}
}

// RenderConfig holds PNG preview settings.
type RenderConfig struct {
	Width      int      `yaml:"width" mapstructure:"width"`
	Height     int      `yaml:"height" mapstructure:"height"`
	Padding    int      `yaml:"padding" mapstructure:"padding"`
	LineWidth  float64  `yaml:"line_width" mapstructure:"line_width"`
	Background string   `yaml:"background" mapstructure:"background"`
	Palette    []string `yaml:"palette" mapstructure:"palette"` // Thread colors, advanced on each color change
	ShowJumps  bool     `yaml:"show_jumps" mapstructure:"show_jumps"`
	JumpColor  string   `yaml:"jump_color" mapstructure:"jump_color"`
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// BatchConfig holds settings for decoding many files at once.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text, json or yaml
}

// PathsConfig holds file paths.
type PathsConfig struct {
	Log string `yaml:"log" mapstructure:"log"` // Empty logs to stderr
}

// LogRotationConfig holds settings for log file rotation.
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// DefaultPalette is a set of common thread colors.
var DefaultPalette = []string{
	"#1F3A93", "#C0392B", "#27AE60", "#F39C12",
	"#8E44AD", "#16A085", "#2C3E50", "#D35400",
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			MachineSpeedSPM:           dst.DefaultMachineSpeedSPM,
			ColorChangePenaltySeconds: dst.DefaultColorChangePenaltySeconds,
		},
		Render: RenderConfig{
			Width:      800,
			Height:     800,
			Padding:    20,
			LineWidth:  1.5,
			Background: "#FFFFFF",
			Palette:    append([]string(nil), DefaultPalette...),
			ShowJumps:  false,
			JumpColor:  "#BBBBBB",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Paths: PathsConfig{
			Log: "",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if c.Decoder.MachineSpeedSPM <= 0 {
		return fmt.Errorf("decoder.machine_speed_spm must be positive, got %v", c.Decoder.MachineSpeedSPM)
	}
	if c.Decoder.ColorChangePenaltySeconds <= 0 {
		return fmt.Errorf("decoder.color_change_penalty_seconds must be positive, got %v", c.Decoder.ColorChangePenaltySeconds)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.Padding < 0 || 2*c.Render.Padding >= min(c.Render.Width, c.Render.Height) {
		return fmt.Errorf("render.padding %d does not fit a %dx%d image", c.Render.Padding, c.Render.Width, c.Render.Height)
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output.format must be text, json or yaml, got %q", c.Output.Format)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	return nil
}
