// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"memory-gallery.db"`
	RedisURL       string `env:"REDIS_URL"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"both"`

	// Uploads larger than this are rejected before encoding.
	MaxImageBytes int64 `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Comma-separated list of allowed origins; empty disables CORS.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Mutating requests per second (and burst) allowed per client.
	WriteRateLimit float64 `env:"WRITE_RATE_LIMIT" envDefault:"10"`
	WriteRateBurst float64 `env:"WRITE_RATE_BURST" envDefault:"20"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Storage circuit breaker
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerTimeout  time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks combinations that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want sqlite, redis or memory)", c.StorageBackend)
	}

	switch c.LogFormat {
	case "text", "json", "both":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q (want text, json or both)", c.LogFormat)
	}

	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	if c.WriteRateLimit < 0 || c.WriteRateBurst < 1 {
		return fmt.Errorf("WRITE_RATE_LIMIT must be >= 0 and WRITE_RATE_BURST >= 1")
	}
	if c.BreakerFailures == 0 || c.BreakerTimeout <= 0 {
		return fmt.Errorf("BREAKER_FAILURES and BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// Load parses environment variables and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
