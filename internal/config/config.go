// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// StorageConfig selects and locates the backing store.
type StorageConfig struct {
	// Backend is one of "sqlite", "file", or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database file (sqlite) or store directory (file).
	Path string `mapstructure:"path" yaml:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// DefaultProject names the auto-created default project.
	DefaultProject string `mapstructure:"default_project" yaml:"default_project"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskdesk/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskdesk", "config.yaml")
}

// DefaultDataPath returns the default SQLite database location,
// ~/.local/share/taskdesk/taskdesk.db.
func DefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "taskdesk.db")
	}
	return filepath.Join(home, ".local", "share", "taskdesk", "taskdesk.db")
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    DefaultDataPath(),
		},
		DefaultProject: "Inbox",
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", DefaultDataPath())
	v.SetDefault("default_project", "Inbox")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("default_project", cfg.DefaultProject)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
