package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config file locations.
const (
	// GlobalConfigDir is the directory under XDG_CONFIG_HOME (and the user
	// cache dir) owned by dstview.
	GlobalConfigDir = "dstview"
	// GlobalConfigFile is the global config file name
	GlobalConfigFile = "config.yaml"
	// ProjectConfigDir is looked up in the working directory
	ProjectConfigDir = ".dstview"
	// ProjectConfigFile is the project-local config file name
	ProjectConfigFile = "config.yaml"
)

// SourceKind names a configuration layer.
type SourceKind string

const (
	SourceGlobal   SourceKind = "global"
	SourceProject  SourceKind = "project"
	SourceExplicit SourceKind = "explicit"
)

// Source is a config file that contributed to a loaded Config.
type Source struct {
	Kind SourceKind
	Path string
}

// LoadConfig loads configuration from files and viper settings.
// See LoadConfigWithSources for the layering rules.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg, _, err := LoadConfigWithSources(v)
	return cfg, err
}

// LoadConfigWithSources builds a Config from, in increasing precedence:
//  1. Default() values
//  2. $XDG_CONFIG_HOME/dstview/config.yaml (or ~/.config/dstview/config.yaml)
//  3. .dstview/config.yaml in the working directory
//  4. the file named by the "config" key (--config or DSTVIEW_CONFIG)
//  5. anything set on v directly, including bound flags and DSTVIEW_* env
//
// Missing global and project files are skipped; a missing explicit file is an
// error. It returns the files that were read, lowest precedence first.
func LoadConfigWithSources(v *viper.Viper) (*Config, []Source, error) {
	cfg := Default()

	defaults, err := structToMap(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, nil, err
	}

	candidates := []Source{
		{Kind: SourceGlobal, Path: globalConfigPath()},
		{Kind: SourceProject, Path: projectConfigPath()},
	}
	if explicit := v.GetString("config"); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, nil, fmt.Errorf("config file: %w", err)
		}
		candidates = append(candidates, Source{Kind: SourceExplicit, Path: explicit})
	}

	var loaded []Source
	for _, src := range candidates {
		if src.Path == "" {
			continue
		}
		ok, err := mergeFile(v, src.Path)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			loaded = append(loaded, src)
		}
	}

	if err := v.Unmarshal(cfg, decodeHooks()); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loaded, nil
}

// globalConfigPath returns the global config path if the file exists.
func globalConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return existing(filepath.Join(dir, GlobalConfigDir, GlobalConfigFile))
}

// projectConfigPath returns the project config path if the file exists.
func projectConfigPath() string {
	return existing(filepath.Join(ProjectConfigDir, ProjectConfigFile))
}

func existing(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// mergeFile reads a YAML file into its own viper instance and merges the
// settings into v. It reports false when the file does not exist.
func mergeFile(v *viper.Viper, path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	fv := viper.New()
	fv.SetConfigType("yaml")
	if err := fv.ReadConfig(f); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := v.MergeConfigMap(fv.AllSettings()); err != nil {
		return false, fmt.Errorf("merge config %s: %w", path, err)
	}
	return true, nil
}

// decodeHooks lets durations be written as "250ms" and palettes as a comma
// separated string (the form DSTVIEW_RENDER_PALETTE takes).
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// structToMap flattens cfg into nested maps keyed by mapstructure tags so it
// can seed viper's defaults.
func structToMap(cfg *Config) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &result,
		DecodeHook: durationToString,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}
	return result, nil
}

func durationToString(from, _ reflect.Type, data interface{}) (interface{}, error) {
	if from != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return data.(time.Duration).String(), nil
}
