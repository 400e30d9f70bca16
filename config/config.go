// Package config loads server settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Log levels accepted in LOG_LEVEL.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// Config holds the server configuration.
type Config struct {
	HTTPPort        int
	NATSPort        int
	ShutdownTimeout time.Duration
	LogLevel        string

	BatchWorkers int
	MaxBatchSize int

	RateLimit RateLimitConfig
}

// RateLimitConfig configures the Redis-backed rate limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Limit         int
	Window        time.Duration
}

// Load reads the configuration from the environment. Every malformed
// variable is reported in the returned error.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 3000, &errs),
		NATSPort:        getEnvInt("NATS_PORT", 4222, &errs),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &errs),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", LogLevelInfo)),
		BatchWorkers:    getEnvInt("BATCH_WORKERS", 8, &errs),
		MaxBatchSize:    getEnvInt("MAX_BATCH_SIZE", 1000, &errs),
		RateLimit: RateLimitConfig{
			Enabled:       getEnvBool("RATE_LIMIT_ENABLED", false, &errs),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0, &errs),
			Limit:         getEnvInt("RATE_LIMIT", 100, &errs),
			Window:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),
		},
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	for name, port := range map[string]int{"HTTP_PORT": c.HTTPPort, "NATS_PORT": c.NATSPort} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s: port %d out of range", name, port))
		}
	}
	if c.LogLevel != LogLevelInfo && c.LogLevel != LogLevelError {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unsupported level %q", c.LogLevel))
	}
	if c.BatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("BATCH_WORKERS: must be positive, got %d", c.BatchWorkers))
	}
	if c.MaxBatchSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_SIZE: must be positive, got %d", c.MaxBatchSize))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Limit < 1 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT: must be positive, got %d", c.RateLimit.Limit))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW: must be positive, got %v", c.RateLimit.Window))
		}
	}

	return errors.Join(errs...)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid int %q: %w", key, value, err))
		return defaultValue
	}
	return n
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q: %w", key, value, err))
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid bool %q: %w", key, value, err))
		return defaultValue
	}
	return b
}
