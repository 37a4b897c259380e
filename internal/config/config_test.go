// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, defaults, env var expansion, duration parsing and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:7575"
  grpc_addr: "0.0.0.0:7576"
  shutdown_timeout: "30s"

database:
  path: "./test.db"

auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"

boards:
  default_board: "home"
  seed_dir: "./boards"
  event_dedupe_ttl: "1m"
  event_dedupe_size: 500

locale:
  default: "de"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:7575" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:7575")
	}
	if cfg.Server.GRPCAddr != "0.0.0.0:7576" {
		t.Errorf("Server.GRPCAddr = %q, want %q", cfg.Server.GRPCAddr, "0.0.0.0:7576")
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 30*time.Second)
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Boards.DefaultBoard != "home" {
		t.Errorf("Boards.DefaultBoard = %q, want %q", cfg.Boards.DefaultBoard, "home")
	}
	if cfg.Boards.SeedDir != "./boards" {
		t.Errorf("Boards.SeedDir = %q, want %q", cfg.Boards.SeedDir, "./boards")
	}
	if cfg.Boards.EventDedupeTTL != time.Minute {
		t.Errorf("Boards.EventDedupeTTL = %v, want %v", cfg.Boards.EventDedupeTTL, time.Minute)
	}
	if cfg.Boards.EventDedupeSize != 500 {
		t.Errorf("Boards.EventDedupeSize = %d, want %d", cfg.Boards.EventDedupeSize, 500)
	}
	if cfg.Locale.Default != "de" {
		t.Errorf("Locale.Default = %q, want %q", cfg.Locale.Default, "de")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./boards.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Server.HTTPAddr != def.Server.HTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	}
	if cfg.Boards.DefaultBoard != "default" {
		t.Errorf("Boards.DefaultBoard = %q, want %q", cfg.Boards.DefaultBoard, "default")
	}
	if cfg.Boards.EventDedupeTTL != 5*time.Minute {
		t.Errorf("Boards.EventDedupeTTL = %v, want %v", cfg.Boards.EventDedupeTTL, 5*time.Minute)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 10*time.Second)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_HOMARR_SECRET", "abcdefghijklmnopqrstuvwxyz0123456789")
	t.Setenv("TEST_HOMARR_SEEDS", "/srv/boards")

	configPath := writeConfig(t, `
auth:
  jwt_secret: "${TEST_HOMARR_SECRET}"
boards:
  seed_dir: "${TEST_HOMARR_SEEDS}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "abcdefghijklmnopqrstuvwxyz0123456789" {
		t.Errorf("Auth.JWTSecret = %q, want expanded value", cfg.Auth.JWTSecret)
	}
	if cfg.Boards.SeedDir != "/srv/boards" {
		t.Errorf("Boards.SeedDir = %q, want %q", cfg.Boards.SeedDir, "/srv/boards")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, `
auth:
  jwt_secret: "${UNSET_VAR_FOR_TEST}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset env vars expand to empty string, which disables auth
	if cfg.Auth.JWTSecret != "" {
		t.Errorf("Auth.JWTSecret = %q, want empty string for unset env var", cfg.Auth.JWTSecret)
	}
}

func TestLoad_DBPathOverride(t *testing.T) {
	t.Setenv("HOMARR_DB_PATH", "/tmp/override.db")

	configPath := writeConfig(t, `
database:
  path: "./from-file.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOMARR_DB_PATH", "/tmp/override.db")

	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if found {
		t.Error("found should be false for a missing file")
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want override", cfg.Database.Path)
	}

	path := writeConfig(t, "boards:\n  default_board: home\n")
	cfg, found, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if !found || cfg.Boards.DefaultBoard != "home" {
		t.Errorf("got found=%v default_board=%q", found, cfg.Boards.DefaultBoard)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server:\n  http_addr: [unclosed\n")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "invalid shutdown_timeout",
			content: "server:\n  shutdown_timeout: \"soon\"\n",
			field:   "shutdown_timeout",
		},
		{
			name:    "invalid event_dedupe_ttl",
			content: "boards:\n  event_dedupe_ttl: \"5 minutes\"\n",
			field:   "event_dedupe_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Load() expected error for %s, got nil", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "missing http addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, wantErr: "server.http_addr"},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "jwt_secret"},
		{name: "missing default board", mutate: func(c *Config) { c.Boards.DefaultBoard = "" }, wantErr: "default_board"},
		{name: "negative dedupe size", mutate: func(c *Config) { c.Boards.EventDedupeSize = -1 }, wantErr: "event_dedupe_size"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.yaml")
	cfg := Default()
	cfg.Boards.DefaultBoard = "family"

	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Boards.DefaultBoard != "family" {
		t.Errorf("Boards.DefaultBoard = %q, want %q", loaded.Boards.DefaultBoard, "family")
	}
	if loaded.Boards.EventDedupeTTL != 5*time.Minute {
		t.Errorf("Boards.EventDedupeTTL = %v, want %v", loaded.Boards.EventDedupeTTL, 5*time.Minute)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOMARR_CONFIG", "/etc/homarr/board.yaml")
	if got := DefaultPath(); got != "/etc/homarr/board.yaml" {
		t.Errorf("DefaultPath() = %q, want HOMARR_CONFIG value", got)
	}

	t.Setenv("HOMARR_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "homarr", "board.yaml") {
		t.Errorf("DefaultPath() = %q, want XDG location", got)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single env var", input: "${FOO}", expected: "bar"},
		{name: "env var with surrounding text", input: "prefix-${FOO}-suffix", expected: "prefix-bar-suffix"},
		{name: "multiple env vars", input: "${FOO}/${BAZ}", expected: "bar/qux"},
		{name: "no env vars", input: "no-vars-here", expected: "no-vars-here"},
		{name: "unset env var", input: "${UNSET_VAR}", expected: ""},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
