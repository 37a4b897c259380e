// ABOUTME: Configuration loading and parsing for homarr-board
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete homarr-board configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Boards   BoardsConfig   `yaml:"boards"`
	Locale   LocaleConfig   `yaml:"locale"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration. An empty secret disables
// authentication of the API.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// BoardsConfig holds board bootstrapping and layout event settings
type BoardsConfig struct {
	DefaultBoard    string `yaml:"default_board"`
	SeedDir         string `yaml:"seed_dir"`
	EventDedupeSize int    `yaml:"event_dedupe_size"`

	EventDedupeTTL    time.Duration `yaml:"-"`
	EventDedupeTTLRaw string        `yaml:"event_dedupe_ttl"`
}

// LocaleConfig holds the fallback language
type LocaleConfig struct {
	Default string `yaml:"default"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration that runs without a file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:           "127.0.0.1:7575",
			GRPCAddr:           "127.0.0.1:7576",
			ShutdownTimeout:    10 * time.Second,
			ShutdownTimeoutRaw: "10s",
		},
		Database: DatabaseConfig{Path: DefaultDBPath()},
		Boards: BoardsConfig{
			DefaultBoard:      "default",
			EventDedupeSize:   10_000,
			EventDedupeTTL:    5 * time.Minute,
			EventDedupeTTLRaw: "5m",
		},
		Locale:  LocaleConfig{Default: "en-gb"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the config file location: HOMARR_CONFIG if set, else
// the XDG config directory.
func DefaultPath() string {
	if p := os.Getenv("HOMARR_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "homarr", "board.yaml")
}

// DefaultDBPath returns the database location under the XDG data directory.
func DefaultDBPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "homarr", "boards.db")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, fallback)
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
// Values missing from the file keep their Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path like Load. When the file does not exist it returns
// the defaults with environment overrides applied and found set to false.
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		cfg = Default()
		cfg.applyEnv()
		return cfg, false, cfg.Validate()
	}
	cfg, err = Load(path)
	return cfg, err == nil, err
}

// applyEnv lets HOMARR_DB_PATH override the database path.
func (c *Config) applyEnv() {
	if p := os.Getenv("HOMARR_DB_PATH"); p != "" {
		c.Database.Path = p
	}
}

// Write stores c as YAML at path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}
	if c.Boards.DefaultBoard == "" {
		return fmt.Errorf("boards.default_board is required")
	}
	if c.Boards.EventDedupeSize < 0 {
		return fmt.Errorf("boards.event_dedupe_size must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ShutdownTimeoutRaw != "" {
		cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
	}

	if cfg.Boards.EventDedupeTTLRaw != "" {
		cfg.Boards.EventDedupeTTL, err = time.ParseDuration(cfg.Boards.EventDedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing event_dedupe_ttl %q: %w", cfg.Boards.EventDedupeTTLRaw, err)
		}
	}

	return nil
}
