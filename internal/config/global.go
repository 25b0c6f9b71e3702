package config

import (
	"fmt"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment overrides, e.g. SNAPKIT_DB.
const EnvPrefix = "SNAPKIT"

// envOverrides holds settings read from the environment.
type envOverrides struct {
	DB         string `envconfig:"DB"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	RestoreDir string `envconfig:"RESTORE_DIR"`
}

// globalConfigCache caches the effective config.
var globalConfigCache *Config

// Load returns the effective configuration: the config file, then
// SNAPKIT_* environment overrides, then defaults for anything still unset.
// Paths are tilde-expanded. The result is cached.
func Load() (*Config, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if env.DB != "" {
		cfg.DBPath = env.DB
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.RestoreDir != "" {
		cfg.RestoreDir = env.RestoreDir
	}

	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	cfg.DBPath = ExpandPath(cfg.DBPath)
	cfg.RestoreDir = ExpandPath(cfg.RestoreDir)

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached config and re-reads the XDG
// base directories. Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
	xdg.Reload()
}

// ResolveDBPath returns the database path to use: the flag value when set,
// otherwise the configured path.
func ResolveDBPath(flagValue string) (string, error) {
	if flagValue != "" {
		return ExpandPath(flagValue), nil
	}
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.DBPath, nil
}
