package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the optional fsindex configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset.
type DefaultsConfig struct {
	Depth            *int      `toml:"depth"`
	SkipHidden       *bool     `toml:"skip_hidden"`
	Verbose          *bool     `toml:"verbose"`
	NoProgress       *bool     `toml:"no_progress"`
	ProgressInterval *Duration `toml:"progress_interval"`
	ShutdownGrace    *Duration `toml:"shutdown_grace"`
	OutputDir        *string   `toml:"output_dir"`
	Exclude          []string  `toml:"exclude"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v <= 0 {
		return fmt.Errorf("invalid duration %q: must be positive", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fsindex", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path; a missing file yields a zero
// Config. Unknown keys are rejected so typos do not pass silently.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if d := cfg.Defaults.Depth; d != nil && !DepthInRange(*d) {
		return Config{}, fmt.Errorf("config %s: depth %d: %w", path, *d, ErrDepthRange)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory. An existing file
// is left alone unless overwrite is set.
func Save(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, os.ErrExist)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644) //nolint:gosec // user config, not secret
}

// Sample returns a config populated with the built-in defaults.
func Sample() Config {
	depth := DefaultDepth
	f := false
	interval := Duration{5 * time.Second}
	grace := Duration{15 * time.Second}
	return Config{Defaults: DefaultsConfig{
		Depth:            &depth,
		SkipHidden:       &f,
		Verbose:          &f,
		NoProgress:       &f,
		ProgressInterval: &interval,
		ShutdownGrace:    &grace,
		Exclude:          []string{},
	}}
}
