// Package config loads service configuration from an optional YAML file
// overlaid by environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/guest-list/internal/query"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Seed    SeedConfig    `yaml:"seed"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StoreConfig selects and tunes the backing store.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`

	PingInterval time.Duration `yaml:"-"`
	PingTimeout  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	PingIntervalRaw string `yaml:"ping_interval"`
	PingTimeoutRaw  string `yaml:"ping_timeout"`
}

// SeedConfig controls the startup reset.
type SeedConfig struct {
	Reset bool `yaml:"reset"`
}

// QueryConfig controls how the name filter treats its input.
type QueryConfig struct {
	NameMatch     string `yaml:"name_match"`
	NameMaxLength int    `yaml:"name_max_length"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8000},
		Store: StoreConfig{
			Driver:          DriverPostgres,
			URL:             "postgres://localhost:5432/guest-list?sslmode=disable",
			SQLitePath:      "./data/guest-list.db",
			PingIntervalRaw: "5s",
			PingTimeoutRaw:  "2s",
		},
		Query: QueryConfig{
			NameMatch:     string(query.PatternRegex),
			NameMaxLength: query.DefaultMaxPatternLength,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment variables. ${VAR} references in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to "".
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envRef.FindStringSubmatch(match)[1])
	})
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if err := num("PORT", &cfg.Server.Port); err != nil {
		return err
	}
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("DATABASE_URL", &cfg.Store.URL)
	str("SQLITE_PATH", &cfg.Store.SQLitePath)
	str("PING_INTERVAL", &cfg.Store.PingIntervalRaw)
	str("PING_TIMEOUT", &cfg.Store.PingTimeoutRaw)
	// Any non-empty value enables the reset.
	if v, ok := lookup("RESET_DB"); ok && v != "" {
		cfg.Seed.Reset = true
	}
	str("NAME_MATCH", &cfg.Query.NameMatch)
	if err := num("NAME_MAX_LENGTH", &cfg.Query.NameMaxLength); err != nil {
		return err
	}
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Store.PingInterval, err = time.ParseDuration(cfg.Store.PingIntervalRaw)
	if err != nil {
		return fmt.Errorf("parsing ping_interval %q: %w", cfg.Store.PingIntervalRaw, err)
	}

	cfg.Store.PingTimeout, err = time.ParseDuration(cfg.Store.PingTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing ping_timeout %q: %w", cfg.Store.PingTimeoutRaw, err)
	}

	return nil
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}

	if c.Store.PingInterval <= 0 {
		return fmt.Errorf("store.ping_interval must be positive")
	}
	if c.Store.PingTimeout <= 0 {
		return fmt.Errorf("store.ping_timeout must be positive")
	}

	if _, err := query.ParsePatternMode(c.Query.NameMatch); err != nil {
		return fmt.Errorf("query.name_match: %w", err)
	}
	if c.Query.NameMaxLength <= 0 {
		return fmt.Errorf("query.name_max_length must be positive")
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported", c.Logging.Format)
	}

	return nil
}

// PatternMode returns the validated name match mode.
func (c *Config) PatternMode() query.PatternMode {
	m, _ := query.ParsePatternMode(c.Query.NameMatch)
	return m
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds the process logger described by l.
func (l LoggingConfig) NewLogger() *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
