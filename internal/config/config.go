package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Theme selects the color palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// UnmarshalText accepts "dark"/"light" in any case. Unknown values fall back to dark.
func (t *Theme) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "light":
		*t = ThemeLight
	default:
		*t = ThemeDark
	}
	return nil
}

// Config is the persistent user preference record.
type Config struct {
	Theme Theme `json:"theme"`

	path string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{Theme: ThemeDark}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// Load reads the config at path. The returned Config is never nil: a missing
// file is created with defaults, and an unreadable or corrupt one yields
// defaults together with the error so the caller can log it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := DefaultConfig()
		cfg.path = path
		if os.IsNotExist(err) {
			if err := cfg.Save(); err != nil {
				return cfg, fmt.Errorf("create default config: %w", err)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
		cfg.path = path
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.path = path
	return cfg, nil
}

// Path returns where Save writes.
func (c *Config) Path() string {
	return c.path
}

// Save writes config to disk
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("save config: no path")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0644)
}
