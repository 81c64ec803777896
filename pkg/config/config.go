// Package config handles loading and saving pipescope configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/pipescope/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CommandConfig describes how external build commands are invoked.
type CommandConfig struct {
	Program string   `yaml:"program,omitempty"` // build tool binary, default "dbt"
	Wrapper []string `yaml:"wrapper,omitempty"` // wrapper prefix, default ["poetry", "run"]
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	MinZoom     float64  `yaml:"min_zoom,omitempty"`
	MaxZoom     float64  `yaml:"max_zoom,omitempty"`
	HiddenTypes []string `yaml:"hidden_types,omitempty"` // node types filtered out at startup
}

// Config is the top-level configuration for pipescope.
type Config struct {
	Command CommandConfig `yaml:"command,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Command: CommandConfig{
			Program: "dbt",
			Wrapper: []string{"poetry", "run"},
		},
		UI: UIConfig{
			MinZoom: 0.5,
			MaxZoom: 3.0,
		},
	}
}

// ConfigDir returns the XDG config directory for pipescope.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pipescope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pipescope")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path, filling unset fields with
// defaults.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	if cfg.Command.Program == "" {
		cfg.Command.Program = "dbt"
	}
	if cfg.UI.MinZoom <= 0 {
		cfg.UI.MinZoom = 0.5
	}
	if cfg.UI.MaxZoom < cfg.UI.MinZoom {
		cfg.UI.MaxZoom = 3.0
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
