// Package config loads the hunkslice TOML configuration file.
// The file lives at ~/.config/hunkslice/config.toml by default and can be
// overridden with --config. Per-repository git config and CLI flags take
// precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/interpretive-systems/hunkslice/internal/errors"
	"github.com/interpretive-systems/hunkslice/internal/logging"
	"github.com/interpretive-systems/hunkslice/internal/pager"
)

// Config represents the configuration file structure.
type Config struct {
	// Base is the revision the working tree is diffed against.
	// Default: HEAD
	Base string `toml:"base"`

	// Count is the number of hunks "list" shows per page.
	// Default: 5
	Count int `toml:"count"`

	// KeepTemp keeps the reconstructed patch file after a successful commit.
	// Default: false
	KeepTemp bool `toml:"keep_temp"`

	// Color controls thumbnail styling: auto, always or never.
	// Default: auto
	Color string `toml:"color"`

	// LogLevel controls diagnostics on stderr: debug, info, warn, error.
	// Default: warn
	LogLevel string `toml:"log_level"`

	// LogFormat is text or json.
	// Default: text
	LogFormat string `toml:"log_format"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		Base:      DefaultBase,
		Count:     DefaultCount,
		Color:     string(pager.ColorAuto),
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// DefaultConfigPath returns ~/.config/hunkslice/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hunkslice", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hunkslice", "config.toml"), nil
}

// Load reads a TOML config file from path on top of the defaults.
//
// Behavior:
//   - If path is empty, the default location is tried and a missing file is
//     not an error.
//   - If path is given, the file must exist.
//   - A file that exists but cannot be parsed or holds invalid values is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			return cfg, nil
		}
		path = defaultPath
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("config file not found: %s", path), nil)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	if _, err := pager.ParseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}
