// ABOUTME: gymlog configuration management with backend selection.
// ABOUTME: Handles settings, environment overrides, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/sirupsen/logrus"
)

// Supported storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config stores gymlog configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts gymlog.db here. Badger puts its files in a badger/ folder here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gymlog.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel is a logrus level name. Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// Timezone is the IANA zone used for CSV date and time columns.
	// Defaults to the local zone.
	Timezone string `json:"timezone,omitempty"`

	// OneRMFormula is used when the profile has no formula set. Defaults to "epley".
	OneRMFormula string `json:"one_rm_formula,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return store.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel parses the configured log level, defaulting to info.
func (c *Config) GetLogLevel() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}

// GetLocation loads the configured time zone, defaulting to local time.
func (c *Config) GetLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

// GetOneRMFormula returns the fallback 1RM formula, defaulting to Epley.
func (c *Config) GetOneRMFormula() (stats.Formula, error) {
	if c.OneRMFormula == "" {
		return stats.Epley, nil
	}
	return stats.ParseFormula(c.OneRMFormula)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// BackendPath returns where the given backend keeps its files.
func (c *Config) BackendPath(backend string) string {
	if backend == BackendBadger {
		return filepath.Join(c.GetDataDir(), "badger")
	}
	return store.DefaultSQLitePath(c.GetDataDir())
}

// OpenStore creates a Store implementation based on the configured backend.
func (c *Config) OpenStore(log logrus.FieldLogger) (store.Store, error) {
	return c.OpenBackend(c.GetBackend(), log)
}

// OpenBackend opens the named backend under the configured data directory.
func (c *Config) OpenBackend(backend string, log logrus.FieldLogger) (store.Store, error) {
	switch backend {
	case BackendSQLite:
		return store.OpenSQLite(c.BackendPath(backend), log)
	case BackendBadger:
		return store.OpenBadger(c.BackendPath(backend), log)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gymlog", "config.json")
}

// Load reads config from disk and applies GYMLOG_* environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMLOG_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("GYMLOG_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("GYMLOG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
