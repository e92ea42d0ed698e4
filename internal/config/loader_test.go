package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// isolate moves the test into an empty working directory with no global config.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	return tmpDir
}

func writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(ProjectConfigDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	configPath := filepath.Join(ProjectConfigDir, ProjectConfigFile)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Decoder.MachineSpeedSPM != 800 {
		t.Errorf("Decoder.MachineSpeedSPM = %v, want 800", cfg.Decoder.MachineSpeedSPM)
	}
	if cfg.Decoder.ColorChangePenaltySeconds != 15 {
		t.Errorf("Decoder.ColorChangePenaltySeconds = %v, want 15", cfg.Decoder.ColorChangePenaltySeconds)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want %v", cfg.Watch.Debounce, 200*time.Millisecond)
	}
	if len(cfg.Render.Palette) != len(DefaultPalette) {
		t.Errorf("Render.Palette has %d colors, want %d", len(cfg.Render.Palette), len(DefaultPalette))
	}
}

func TestLoadConfig_ProjectFile(t *testing.T) {
	isolate(t)
	writeProjectConfig(t, `
decoder:
  machine_speed_spm: 1000
  color_change_penalty_seconds: 30
render:
  width: 400
  height: 300
  palette: ["#000000", "#FF0000"]
watch:
  debounce: 1s
output:
  format: json
`)

	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Decoder.MachineSpeedSPM != 1000 {
		t.Errorf("Decoder.MachineSpeedSPM = %v, want 1000", cfg.Decoder.MachineSpeedSPM)
	}
	if cfg.Decoder.ColorChangePenaltySeconds != 30 {
		t.Errorf("Decoder.ColorChangePenaltySeconds = %v, want 30", cfg.Decoder.ColorChangePenaltySeconds)
	}
	if cfg.Render.Width != 400 || cfg.Render.Height != 300 {
		t.Errorf("Render size = %dx%d, want 400x300", cfg.Render.Width, cfg.Render.Height)
	}
	if got := strings.Join(cfg.Render.Palette, ","); got != "#000000,#FF0000" {
		t.Errorf("Render.Palette = %q", got)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch.Debounce = %v, want 1s", cfg.Watch.Debounce)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, FormatJSON)
	}
	// Untouched values keep their defaults
	if cfg.Batch.Concurrency != 4 {
		t.Errorf("Batch.Concurrency = %d, want 4", cfg.Batch.Concurrency)
	}
}

func TestLoadConfig_GlobalThenProject(t *testing.T) {
	dir := isolate(t)

	globalDir := filepath.Join(dir, "xdg", GlobalConfigDir)
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	global := "batch:\n  concurrency: 9\nrender:\n  padding: 5\n"
	if err := os.WriteFile(filepath.Join(globalDir, GlobalConfigFile), []byte(global), 0644); err != nil {
		t.Fatalf("write global config failed: %v", err)
	}
	writeProjectConfig(t, "batch:\n  concurrency: 2\n")

	cfg, err := LoadConfig(viper.New())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Batch.Concurrency != 2 {
		t.Errorf("Batch.Concurrency = %d, want 2 (project wins)", cfg.Batch.Concurrency)
	}
	if cfg.Render.Padding != 5 {
		t.Errorf("Render.Padding = %d, want 5 (from global)", cfg.Render.Padding)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "custom-config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  show_jumps: true\n"), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", configPath)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Render.ShowJumps {
		t.Error("Render.ShowJumps = false, want true")
	}
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	v := viper.New()
	v.Set("config", "/nonexistent/config.yaml")

	if _, err := LoadConfig(v); err == nil {
		t.Error("LoadConfig should fail for missing explicit config")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	isolate(t)
	writeProjectConfig(t, "output:\n  format: yaml\nrender:\n  width: 500\n")
	t.Setenv("DSTVIEW_OUTPUT_FORMAT", "json")
	t.Setenv("DSTVIEW_RENDER_PALETTE", "#111111,#222222")

	v := viper.New()
	v.SetEnvPrefix("DSTVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, FormatJSON)
	}
	if got := strings.Join(cfg.Render.Palette, ","); got != "#111111,#222222" {
		t.Errorf("Render.Palette = %q", got)
	}
	if cfg.Render.Width != 500 {
		t.Errorf("Render.Width = %d, want 500 (from project file)", cfg.Render.Width)
	}
}

func TestLoadConfigWithSources(t *testing.T) {
	dir := isolate(t)
	writeProjectConfig(t, "batch:\n  concurrency: 3\n")

	explicit := filepath.Join(dir, "extra.yaml")
	if err := os.WriteFile(explicit, []byte("batch:\n  concurrency: 6\n"), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	v := viper.New()
	v.Set("config", explicit)

	cfg, sources, err := LoadConfigWithSources(v)
	if err != nil {
		t.Fatalf("LoadConfigWithSources failed: %v", err)
	}
	if cfg.Batch.Concurrency != 6 {
		t.Errorf("Batch.Concurrency = %d, want 6 (explicit wins)", cfg.Batch.Concurrency)
	}

	want := []Source{
		{Kind: SourceProject, Path: filepath.Join(ProjectConfigDir, ProjectConfigFile)},
		{Kind: SourceExplicit, Path: explicit},
	}
	if len(sources) != len(want) {
		t.Fatalf("sources = %+v, want %+v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %+v, want %+v", i, sources[i], want[i])
		}
	}
}

func TestLoadConfigWithSources_None(t *testing.T) {
	isolate(t)
	_, sources, err := LoadConfigWithSources(viper.New())
	if err != nil {
		t.Fatalf("LoadConfigWithSources failed: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("sources = %+v, want none", sources)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero speed", "decoder:\n  machine_speed_spm: 0\n"},
		{"negative penalty", "decoder:\n  color_change_penalty_seconds: -1\n"},
		{"unknown format", "output:\n  format: xml\n"},
		{"zero concurrency", "batch:\n  concurrency: 0\n"},
		{"padding too large", "render:\n  width: 100\n  height: 100\n  padding: 50\n"},
		{"bad yaml", "render: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			writeProjectConfig(t, tt.yaml)

			if _, err := LoadConfig(viper.New()); err == nil {
				t.Error("LoadConfig should fail")
			}
		})
	}
}

func TestGlobalConfigPath(t *testing.T) {
	isolate(t)
	if path := globalConfigPath(); path != "" {
		t.Errorf("globalConfigPath() = %q, want empty", path)
	}
}

func TestProjectConfigPath(t *testing.T) {
	isolate(t)
	if path := projectConfigPath(); path != "" {
		t.Errorf("projectConfigPath() = %q, want empty", path)
	}
	writeProjectConfig(t, "")
	if path := projectConfigPath(); path == "" {
		t.Error("projectConfigPath() should find .dstview/config.yaml")
	}
}
