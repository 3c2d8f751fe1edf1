// ABOUTME: Tests for gymlog configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, backend selection, and path expansion.
package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/stats"
	"github.com/sirupsen/logrus"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GYMLOG_BACKEND", "GYMLOG_DATA_DIR", "GYMLOG_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "badger"}
	if got := cfg.GetBackend(); got != "badger" {
		t.Errorf("GetBackend() = %q, want %q", got, "badger")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != "/tmp/xdg-data/gymlog" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/xdg-data/gymlog")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/gym-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "gym-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/gymlog", filepath.Join(home, "data/gymlog")},
		{"data/gymlog", "data/gymlog"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetLogLevel(t *testing.T) {
	lvl, err := (&Config{}).GetLogLevel()
	if err != nil || lvl != logrus.InfoLevel {
		t.Errorf("default level = %v, %v; want info", lvl, err)
	}

	lvl, err = (&Config{LogLevel: "debug"}).GetLogLevel()
	if err != nil || lvl != logrus.DebugLevel {
		t.Errorf("debug level = %v, %v; want debug", lvl, err)
	}

	if _, err := (&Config{LogLevel: "loud"}).GetLogLevel(); err == nil {
		t.Error("Expected error for unknown log level")
	}
}

func TestGetLocation(t *testing.T) {
	loc, err := (&Config{}).GetLocation()
	if err != nil || loc != time.Local {
		t.Errorf("default location = %v, %v; want Local", loc, err)
	}

	loc, err = (&Config{Timezone: "UTC"}).GetLocation()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("UTC location = %v, %v", loc, err)
	}

	if _, err := (&Config{Timezone: "Nowhere/Special"}).GetLocation(); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

func TestGetOneRMFormula(t *testing.T) {
	f, err := (&Config{}).GetOneRMFormula()
	if err != nil || f != stats.Epley {
		t.Errorf("default formula = %v, %v; want epley", f, err)
	}

	f, err = (&Config{OneRMFormula: "brzycki"}).GetOneRMFormula()
	if err != nil || f != stats.Brzycki {
		t.Errorf("formula = %v, %v; want brzycki", f, err)
	}

	if _, err := (&Config{OneRMFormula: "guess"}).GetOneRMFormula(); err == nil {
		t.Error("Expected error for unknown formula")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" {
		t.Errorf("Expected empty Backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		Backend:      "badger",
		DataDir:      "/tmp/gym-data",
		LogLevel:     "warn",
		Timezone:     "Europe/Warsaw",
		OneRMFormula: "lombardi",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Loaded config = %+v, want %+v", *loaded, *cfg)
	}

	info, err := os.Stat(GetConfigPath())
	if err != nil {
		t.Fatalf("Stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := (&Config{Backend: "sqlite", DataDir: "/from/file"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	t.Setenv("GYMLOG_BACKEND", "badger")
	t.Setenv("GYMLOG_DATA_DIR", "/from/env")
	t.Setenv("GYMLOG_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "badger" || cfg.DataDir != "/from/env" || cfg.LogLevel != "debug" {
		t.Errorf("Env overrides not applied: %+v", *cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "gymlog")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "gymlog", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{DataDir: tmpDir}

	s, err := cfg.OpenStore(quietLogger())
	if err != nil {
		t.Fatalf("OpenStore() for sqlite failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "gymlog.db")); os.IsNotExist(err) {
		t.Error("Expected gymlog.db to be created")
	}
}

func TestOpenStoreBadger(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{Backend: "badger", DataDir: tmpDir}

	s, err := cfg.OpenStore(quietLogger())
	if err != nil {
		t.Fatalf("OpenStore() for badger failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "badger")); os.IsNotExist(err) {
		t.Error("Expected badger directory to be created")
	}
}

func TestOpenStoreInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: t.TempDir()}
	if _, err := cfg.OpenStore(quietLogger()); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
