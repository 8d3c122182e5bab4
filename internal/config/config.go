// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrMissingDatabaseURL is returned by Validate when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("missing required environment variable: DATABASE_URL")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppHost string `env:"APP_HOST" envDefault:"0.0.0.0"`
	AppPort int    `env:"APP_PORT" envDefault:"3000"`

	// Database (PostgreSQL). Required in production; Validate enforces it.
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis (optional). When set, the rate limiter uses a shared Redis
	// store so counters survive restarts and work across instances.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting. A max of 0 disables limiting entirely.
	RateLimitMax           int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitSweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"60s"`

	// CORS configuration (comma-separated lists)
	CORSOrigins     string `env:"CORS_ORIGINS" envDefault:"*"`
	CORSMethods     string `env:"CORS_METHODS" envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	CORSHeaders     string `env:"CORS_HEADERS" envDefault:"Content-Type,Authorization"`
	CORSCredentials bool   `env:"CORS_CREDENTIALS" envDefault:"false"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Prometheus metrics endpoint
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.AppHost, c.AppPort)
}

// CORSOriginList parses the comma-separated origins string into a slice.
func (c *Config) CORSOriginList() []string {
	return splitCSV(c.CORSOrigins)
}

// CORSMethodList parses the comma-separated methods string into a slice.
func (c *Config) CORSMethodList() []string {
	return splitCSV(c.CORSMethods)
}

// CORSHeaderList parses the comma-separated headers string into a slice.
func (c *Config) CORSHeaderList() []string {
	return splitCSV(c.CORSHeaders)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks configuration that cannot be expressed as env tags.
// DATABASE_URL is only a hard requirement in production; development and
// test environments report the problem and let the caller decide.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
