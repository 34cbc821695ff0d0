// Package config handles configuration loading and validation for
// easyconfd tooling.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete tool configuration.
type Config struct {
	// Storage configuration for change-log persistence.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Catalog configuration for profile definitions.
	Catalog CatalogConfig `toml:"catalog" json:"catalog" yaml:"catalog"`

	// ChangeLog configuration.
	ChangeLog ChangeLogConfig `toml:"changelog" json:"changelog" yaml:"changelog"`

	// Server configuration for the daemon API.
	Server ServerConfig `toml:"server" json:"server" yaml:"server"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Locale is the default locale for profile names and preset labels.
	Locale string `toml:"locale" json:"locale" yaml:"locale"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Path is the path to the change-log database file.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// CatalogConfig holds profile catalog configuration.
type CatalogConfig struct {
	// Dir is the directory holding per-receiver profile definition files.
	Dir string `toml:"dir" json:"dir" yaml:"dir"`

	// WatchReload enables rebuilding the catalog when definition files
	// change on disk.
	WatchReload bool `toml:"watch_reload" json:"watch_reload" yaml:"watch_reload"`
}

// ChangeLogConfig holds change-log configuration.
type ChangeLogConfig struct {
	// MaxEntries caps the in-memory change log (FIFO eviction).
	MaxEntries int `toml:"max_entries" json:"max_entries" yaml:"max_entries"`
}

// ServerConfig holds daemon API configuration.
type ServerConfig struct {
	// Listen is the address the daemon API binds to.
	Listen string `toml:"listen" json:"listen" yaml:"listen"`

	// Metrics enables the /metrics scrape endpoint.
	Metrics bool `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level" yaml:"level"`
	Format     string `toml:"format" json:"format" yaml:"format"`
	Output     string `toml:"output" json:"output" yaml:"output"`
	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int64  `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := DataDir()

	return &Config{
		Storage: StorageConfig{
			Path: filepath.Join(dir, "changelog.db"),
		},
		Catalog: CatalogConfig{
			Dir:         filepath.Join(dir, "profiles"),
			WatchReload: false,
		},
		ChangeLog: ChangeLogConfig{
			MaxEntries: 500,
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:8420",
			Metrics: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(dir, "easyconfd.log"),
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Locale: "en",
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads configuration from the specified path. If the file doesn't
// exist, returns default configuration. Supports TOML, JSON, and YAML
// formats based on file extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		// Try TOML by default
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode config (unknown format): %w", err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides. Variables are
// prefixed with EASYCONFD_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("EASYCONFD_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("EASYCONFD_CATALOG_DIR"); v != "" {
		c.Catalog.Dir = v
	}
	if v := os.Getenv("EASYCONFD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EASYCONFD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("EASYCONFD_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("EASYCONFD_LOCALE"); v != "" {
		c.Locale = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ChangeLog.MaxEntries < 0 {
		return fmt.Errorf("changelog.max_entries must not be negative, got %d", c.ChangeLog.MaxEntries)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file", "both":
	default:
		return fmt.Errorf("logging.output must be stdout, stderr, file or both, got %q", c.Logging.Output)
	}
	return nil
}

// EnsureDirectories creates the directories the tool writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Storage.Path),
		filepath.Dir(c.Logging.FilePath),
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DataDir returns the base easyconfd directory. The EASYCONFD_DATA_DIR
// environment variable overrides the platform default.
func DataDir() string {
	if envDir := os.Getenv("EASYCONFD_DATA_DIR"); envDir != "" {
		return envDir
	}
	return platformDataDir()
}
