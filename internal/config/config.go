// Package config loads ibisdb settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tordrt/ibisdb/internal/dsn"
)

// Environment variables read by Load.
const (
	EnvDatabaseURL = "IBIS_DATABASE_URL"
	EnvUser        = "IBIS_DB_USER"
	EnvPassword    = "IBIS_DB_PASSWORD"
	EnvName        = "IBIS_DB_NAME"
	EnvHost        = "IBIS_DB_HOST"
	EnvPort        = "IBIS_DB_PORT"
	EnvLogLevel    = "IBIS_LOG_LEVEL"
)

// Config contains application configuration.
type Config struct {
	// DatabaseURL wins over Endpoint when set.
	DatabaseURL string
	Endpoint    dsn.Endpoint
	LogLevel    slog.Level
}

// Load reads configuration from environment variables and .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		Endpoint: dsn.Endpoint{
			User:     os.Getenv(EnvUser),
			Password: os.Getenv(EnvPassword),
			Database: os.Getenv(EnvName),
			Host:     os.Getenv(EnvHost),
		},
	}

	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Endpoint.Port = p
	}

	level, err := ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// URL returns the configured database URL. Without IBIS_DATABASE_URL the
// endpoint must at least name a user and a database.
func (c Config) URL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.Endpoint == (dsn.Endpoint{}) {
		return "", fmt.Errorf("no database configured (set %s or %s/%s)", EnvDatabaseURL, EnvUser, EnvName)
	}
	if err := c.Endpoint.Validate(); err != nil {
		return "", fmt.Errorf("invalid database endpoint: %w", err)
	}
	return c.Endpoint.URL(), nil
}

// ParseLevel maps debug, info, warn and error onto slog levels. Empty means
// info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", s)
	}
}
