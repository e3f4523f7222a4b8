// Package config provides configuration management for featgate with
// Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0o755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0o644 // Standard file permissions (rw-r--r--)
)

// Storage backends for the profile store.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "json"
)

// Config represents the complete configuration for featgate.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage" json:"storage"`
	Manifests ManifestsConfig `mapstructure:"manifests" yaml:"manifests" json:"manifests"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// StorageConfig selects and locates the profile store backend.
type StorageConfig struct {
	// Backend is "sqlite" or "json". The json backend supports watching
	// for changes made by other processes sharing the profile.
	Backend string `mapstructure:"backend" yaml:"backend" json:"backend"`
	// Path overrides the XDG-derived store location.
	Path string `mapstructure:"path" yaml:"path" json:"path,omitempty"`
}

// ManifestsConfig locates feature manifest directories.
type ManifestsConfig struct {
	Dirs []string `mapstructure:"dirs" yaml:"dirs" json:"dirs,omitempty"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendJSONFile},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from the XDG config directory and the
// FEATGATE_* environment, falling back to defaults. A missing config
// file is not an error.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("FEATGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("manifests.dirs", defaults.Manifests.Dirs)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the rest of the system cannot honor.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendJSONFile:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)",
			c.Storage.Backend, BackendSQLite, BackendJSONFile)
	}
	return nil
}

// StorePath resolves the profile store location, honoring the configured
// override and otherwise deriving it from the XDG data directory.
func (c *Config) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	switch c.Storage.Backend {
	case BackendSQLite:
		return filepath.Join(dataDir, databaseName), nil
	default:
		return filepath.Join(dataDir, profileFileName), nil
	}
}

// ManifestDirs resolves the manifest search path: the configured
// directories, or the default "features" directory under config.
func (c *Config) ManifestDirs() ([]string, error) {
	if len(c.Manifests.Dirs) > 0 {
		return c.Manifests.Dirs, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}
	return []string{filepath.Join(configDir, "features")}, nil
}

// WriteDefault writes a commented default config file when none exists,
// alongside its generated JSON schema.
func WriteDefault() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, dirPerm); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	const defaultYAML = `# featgate configuration
# yaml-language-server: $schema=config.schema.json

storage:
  # "json" keeps the profile in a watchable JSON file;
  # "sqlite" uses a SQLite database instead.
  backend: json

manifests:
  # Directories scanned for *.json feature manifests.
  # Defaults to the "features" directory next to this file.
  dirs: []

logging:
  level: info
  format: console
`
	if err := os.WriteFile(path, []byte(defaultYAML), filePerm); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	if err := GenerateSchemaFile(); err != nil {
		return "", err
	}
	return path, nil
}
