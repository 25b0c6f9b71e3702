// Package config handles SnapKit's global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in $XDG_CONFIG_HOME/snapkit/config.yml.
type Config struct {
	DBPath     string `yaml:"db_path,omitempty"`     // Catalog database; defaults to ~/.snapkit/snapkit.db
	LogLevel   string `yaml:"log_level,omitempty"`   // debug, info, warn, error
	RestoreDir string `yaml:"restore_dir,omitempty"` // Default --restore-to for imports
	Browser    string `yaml:"browser,omitempty"`     // Command used to open URLs; empty uses the system handler
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "snapkit"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DataDir is the directory under the home directory holding the database.
	DataDir = ".snapkit"
	// DBFile is the database file name.
	DBFile = "snapkit.db"
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Keys lists the settable keys in the order `snapkit config` shows them.
var Keys = []string{"db-path", "log-level", "restore-dir", "browser"}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, ConfigDir, ConfigFile)
}

// DefaultDBPath returns ~/.snapkit/snapkit.db, or a relative path if the
// home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DataDir, DBFile)
	}
	return filepath.Join(home, DataDir, DBFile)
}

// LoadFile reads a config file. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SaveFile writes the config to path, creating parent directories.
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case "db-path":
		return c.DBPath, nil
	case "log-level":
		return c.LogLevel, nil
	case "restore-dir":
		return c.RestoreDir, nil
	case "browser":
		return c.Browser, nil
	default:
		return "", unknownKeyError(key)
	}
}

// Set validates and assigns a config key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	switch normalizeKey(key) {
	case "db-path":
		c.DBPath = value
	case "log-level":
		if err := ValidateLogLevel(value); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(value)
	case "restore-dir":
		c.RestoreDir = value
	case "browser":
		c.Browser = strings.TrimSpace(value)
	default:
		return unknownKeyError(key)
	}
	return nil
}

// ValidateLogLevel checks that the level is one of ValidLogLevels.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil // Empty defaults to info
	}
	if slices.Contains(ValidLogLevels, strings.ToLower(level)) {
		return nil
	}
	return fmt.Errorf("invalid log_level: %s (valid: %v)", level, ValidLogLevels)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// normalizeKey accepts both db-path and db_path spellings.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
}
