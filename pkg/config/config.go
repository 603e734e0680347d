// Package config handles loading and saving carmen-catalog configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/carmen-catalog/config.yaml
//   - State:   ~/.local/state/carmen-catalog/ (snapshot cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the connection settings for the Carmen back-office API.
type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	// ExpandDepth is how many levels start expanded (0 = all collapsed,
	// 1 = categories expanded, 2 = everything).
	ExpandDepth int `yaml:"expand_depth,omitempty"`
	// SearchDebounceMS is the delay before a typed query is applied.
	SearchDebounceMS int `yaml:"search_debounce_ms,omitempty"`
}

// Config is the top-level configuration for carmen-catalog.
type Config struct {
	API APIConfig `yaml:"api,omitempty"`
	UI  UIConfig  `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			ExpandDepth:      1,
			SearchDebounceMS: 300,
		},
	}
}

// ConfigDir returns the XDG config directory for carmen-catalog.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "carmen-catalog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "carmen-catalog")
}

// StateDir returns the XDG state directory for carmen-catalog.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "carmen-catalog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "carmen-catalog")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// SnapshotPath returns the full path to the snapshot cache database.
func SnapshotPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "snapshot.db")
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

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.UI.ExpandDepth < 0 || cfg.UI.ExpandDepth > 2 {
		cfg.UI.ExpandDepth = 1
	}
	if cfg.UI.SearchDebounceMS <= 0 {
		cfg.UI.SearchDebounceMS = 300
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Resolve applies environment and flag overrides on top of the loaded file.
// Precedence: explicit flag > environment > config file.
func (c Config) Resolve(flagBaseURL, flagToken string) Config {
	if env := strings.TrimSpace(os.Getenv("CARMEN_API_URL")); env != "" {
		c.API.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv("CARMEN_API_TOKEN")); env != "" {
		c.API.Token = env
	}
	if flagBaseURL != "" {
		c.API.BaseURL = flagBaseURL
	}
	if flagToken != "" {
		c.API.Token = flagToken
	}
	return c
}
