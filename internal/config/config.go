// Package config resolves cache configuration from the environment and
// an optional YAML file.
//
// Two environment variables are documented for library use: the store
// location and the logging verbosity. The YAML file exists for the CLI,
// where pinning poll behavior per invocation is inconvenient. The
// environment always takes precedence over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the cache layer.
const (
	// EnvDBPath locates the SQLite record store.
	EnvDBPath = "RECACHE_DB_PATH"

	// EnvLogLevel sets logging verbosity: debug, info, warn, error, or
	// a numeric slog level.
	EnvLogLevel = "RECACHE_LOG_LEVEL"
)

// DefaultDBPath is used when EnvDBPath is unset.
const DefaultDBPath = "recache.db"

// Config holds resolved cache settings.
type Config struct {
	DBPath       string
	LogLevel     slog.Level
	PollInterval time.Duration
	MaxPollTime  time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:       DefaultDBPath,
		LogLevel:     slog.LevelInfo,
		PollInterval: 3 * time.Millisecond,
		MaxPollTime:  10 * time.Second,
	}
}

// FromEnv resolves configuration from the environment on top of the
// defaults.
func FromEnv() (Config, error) {
	cfg := Default()
	return cfg.applyEnv()
}

// fileConfig is the YAML shape of a config file. Durations are strings
// in time.ParseDuration syntax.
type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	LogLevel     string `yaml:"log_level"`
	PollInterval string `yaml:"poll_interval"`
	MaxPollTime  string `yaml:"max_poll_time"`
}

// Load reads a YAML config file and overlays the environment on top.
// A missing file is an error; call FromEnv when no file is expected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := Default()
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.LogLevel != "" {
		level, err := ParseLevel(fc.LogLevel)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		cfg.LogLevel = level
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: poll_interval: %w", path, err)
		}
		cfg.PollInterval = d
	}
	if fc.MaxPollTime != "" {
		d, err := time.ParseDuration(fc.MaxPollTime)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: max_poll_time: %w", path, err)
		}
		cfg.MaxPollTime = d
	}

	return cfg.applyEnv()
}

func (c Config) applyEnv() (Config, error) {
	if path := os.Getenv(EnvDBPath); path != "" {
		c.DBPath = path
	}
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		level, err := ParseLevel(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = level
	}
	return c, nil
}

// ParseLevel parses a slog level from a name or a numeric value.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return slog.Level(n), nil
	}

	return 0, fmt.Errorf("invalid log level %q", raw)
}
