// Package config loads the skiff runtime configuration.
package config

import (
	"os"
	"path/filepath"

	"skiff/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It defines mail sources, runtime intervals, and data locations.
type Config struct {
	Directories struct {
		Data  string `yaml:"data"`  // Index, lock file and crash reports
		Hooks string `yaml:"hooks"` // Hook scripts directory
	} `yaml:"directories"`
	Log struct {
		File  string `yaml:"file"`  // Diagnostic log sink path
		Debug bool   `yaml:"debug"` // Enable debug-level output
	} `yaml:"log"`
	Sources []SourceConfig `yaml:"sources"`
	Intervals struct {
		Poll         int `yaml:"poll"`          // Seconds between automatic polls
		LeaseRenewal int `yaml:"lease_renewal"` // Seconds between lock lease renewals
		Heartbeat    int `yaml:"heartbeat"`     // Seconds between keep-alive pings
	} `yaml:"intervals"`
	Keys []KeyOverride `yaml:"keys"` // Global keymap overrides
}

// SourceConfig declares one mail source to connect and poll.
type SourceConfig struct {
	Name    string   `yaml:"name"`    // Diagnostic name, must be unique
	Path    string   `yaml:"path"`    // Maildir root
	Folders []string `yaml:"folders"` // Glob patterns of folders to poll; empty means all
	Watch   bool     `yaml:"watch"`   // Watch new/ dirs for incoming mail
}

// KeyOverride rebinds one action in the global keymap.
type KeyOverride struct {
	Action string `yaml:"action"`
	Key    string `yaml:"key"`
}

// Load loads configuration from the default location
// (~/.config/skiff/config.yaml).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "skiff", "config.yaml")
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if tempCfg.Directories.Data != "" {
		cfg.Directories.Data = tempCfg.Directories.Data
	}
	if tempCfg.Directories.Hooks != "" {
		cfg.Directories.Hooks = tempCfg.Directories.Hooks
	}
	if tempCfg.Log.File != "" {
		cfg.Log.File = tempCfg.Log.File
	}
	cfg.Log.Debug = tempCfg.Log.Debug

	if len(tempCfg.Sources) > 0 {
		cfg.Sources = tempCfg.Sources
	}
	if tempCfg.Intervals.Poll > 0 {
		cfg.Intervals.Poll = tempCfg.Intervals.Poll
	}
	if tempCfg.Intervals.LeaseRenewal > 0 {
		cfg.Intervals.LeaseRenewal = tempCfg.Intervals.LeaseRenewal
	}
	if tempCfg.Intervals.Heartbeat > 0 {
		cfg.Intervals.Heartbeat = tempCfg.Intervals.Heartbeat
	}
	if len(tempCfg.Keys) > 0 {
		cfg.Keys = tempCfg.Keys
	}

	return cfg, nil
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	cfg := &Config{}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg.Directories.Data = filepath.Join(home, ".local", "share", "skiff")
	cfg.Directories.Hooks = filepath.Join(home, ".config", "skiff", "hooks")
	cfg.Log.File = filepath.Join(cfg.Directories.Data, "skiff.log")

	cfg.Intervals.Poll = 300
	cfg.Intervals.LeaseRenewal = 30
	cfg.Intervals.Heartbeat = 60

	return cfg
}

// Save writes the configuration to the given path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewConfigError("error encoding config", path, errors.InvalidConfig, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
