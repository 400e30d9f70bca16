package ratelimit

import (
	"log/slog"
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	// RedisAddr is the Redis server address (e.g., "localhost:6379")
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional)
	RedisPassword string

	// RedisDB is the Redis database number (default: 0)
	RedisDB int

	// DefaultLimit is the default rate limit if no service-specific limit is configured
	DefaultLimit int

	// DefaultWindow is the default time window for rate limiting
	DefaultWindow time.Duration

	// ServiceLimits maps service names to their specific rate limits
	ServiceLimits map[string]ServiceLimit

	// Exempt lists services that are never rate limited
	Exempt map[string]bool

	// KeyPrefix is the prefix for Redis keys (default: "arith:ratelimit:")
	KeyPrefix string

	// ClientIDHeader is the header name to extract client ID from (default: "X-Client-ID")
	ClientIDHeader string

	// FallbackClientID is used when no client ID is found in request
	FallbackClientID string

	// Logger is the structured logger for middleware events
	Logger *slog.Logger
}

// ServiceLimit defines rate limits for a specific service.
type ServiceLimit struct {
	// Limit is the maximum number of requests allowed in the window
	Limit int

	// Window is the time window for the rate limit
	Window time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RedisAddr:        "localhost:6379",
		DefaultLimit:     100,
		DefaultWindow:    time.Minute,
		ServiceLimits:    make(map[string]ServiceLimit),
		Exempt:           make(map[string]bool),
		KeyPrefix:        "arith:ratelimit:",
		ClientIDHeader:   "X-Client-ID",
		FallbackClientID: "anonymous",
		Logger:           slog.Default(),
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithRedis sets the Redis connection parameters.
func WithRedis(addr, password string, db int) Option {
	return func(c *Config) {
		c.RedisAddr = addr
		c.RedisPassword = password
		c.RedisDB = db
	}
}

// WithDefaultLimit sets the default rate limit. Non-positive values are ignored.
func WithDefaultLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		if limit > 0 {
			c.DefaultLimit = limit
		}
		if window > 0 {
			c.DefaultWindow = window
		}
	}
}

// WithServiceLimit sets a specific rate limit for a service.
func WithServiceLimit(serviceName string, limit int, window time.Duration) Option {
	return func(c *Config) {
		c.ServiceLimits[serviceName] = ServiceLimit{
			Limit:  limit,
			Window: window,
		}
	}
}

// WithExemptService disables rate limiting for the named services.
func WithExemptService(names ...string) Option {
	return func(c *Config) {
		for _, name := range names {
			c.Exempt[name] = true
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithClientIDHeader sets the header name for client ID extraction.
func WithClientIDHeader(header string) Option {
	return func(c *Config) {
		c.ClientIDHeader = header
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
