package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is wrapped by every LimitExceededError.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrorType is the Mono-Error-Type header value mono derives from
// LimitExceededError when it crosses a service boundary.
const ErrorType = "limitexceeded"

// maxClientIDLength limits client ID length in Redis keys.
const maxClientIDLength = 128

// Middleware implements rate limiting as a mono.MiddlewareModule.
// It wraps request-reply handlers at registration time, so it must be
// registered before the modules whose services it limits.
type Middleware struct {
	config  Config
	client  *redis.Client
	limiter allower
	logger  *slog.Logger
}

// Compile-time interface checks
var _ mono.Module = (*Middleware)(nil)
var _ mono.MiddlewareModule = (*Middleware)(nil)

// LimitExceededError is returned, and sent as the reply body, when a client
// runs out of requests for a service.
type LimitExceededError struct {
	Service   string    `json:"service"`
	Message   string    `json:"error"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Limit     int       `json:"limit"`
}

func (e *LimitExceededError) Error() string {
	return e.Message
}

func (e *LimitExceededError) Unwrap() error {
	return ErrRateLimited
}

// IsLimitExceeded reports whether err is a rate limit rejection, either
// in-process or as a remote error returned through a service call.
func IsLimitExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var remote *monoerrors.RemoteError
	if errors.As(err, &remote) {
		return remote.ErrorType == ErrorType
	}
	return strings.Contains(err.Error(), "("+ErrorType+")")
}

// New creates a new rate limiting middleware.
func New(opts ...Option) (*Middleware, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.ClientIDHeader == "" {
		return nil, fmt.Errorf("client ID header must not be empty")
	}
	for name, sl := range config.ServiceLimits {
		if sl.Window <= 0 {
			return nil, fmt.Errorf("service %q: window must be positive, got %v", name, sl.Window)
		}
	}

	return &Middleware{
		config: config,
		logger: config.Logger,
	}, nil
}

// Name returns the middleware name.
func (m *Middleware) Name() string {
	return "rate-limit"
}

// Start connects to Redis. A limiter set beforehand is kept as is.
func (m *Middleware) Start(ctx context.Context) error {
	if m.limiter != nil {
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.config.RedisAddr,
		Password:     m.config.RedisPassword,
		DB:           m.config.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		_ = m.client.Close()
		m.client = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.config.RedisAddr, err)
	}

	m.limiter = NewLimiter(m.client, m.config.KeyPrefix)
	m.logger.Info("Rate limiting middleware started",
		"redis", m.config.RedisAddr,
		"default_limit", m.config.DefaultLimit,
		"default_window", m.config.DefaultWindow)

	return nil
}

// Stop closes the Redis connection.
func (m *Middleware) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Error("Failed to close Redis connection", "error", err)
			return err
		}
		m.client = nil
	}
	m.logger.Info("Rate limiting middleware stopped")
	return nil
}

// OnModuleLifecycle passes through module lifecycle events unchanged.
func (m *Middleware) OnModuleLifecycle(_ context.Context, event types.ModuleLifecycleEvent) types.ModuleLifecycleEvent {
	return event
}

// OnServiceRegistration wraps request-reply handlers with rate limiting.
func (m *Middleware) OnServiceRegistration(_ context.Context, reg types.ServiceRegistration) types.ServiceRegistration {
	if reg.Type != types.ServiceTypeRequestReply || reg.RequestHandler == nil {
		return reg
	}
	if m.config.Exempt[reg.Name] {
		m.logger.Debug("Service exempt from rate limiting", "service", reg.Name)
		return reg
	}

	limit, window := m.limitFor(reg.Name)
	if limit <= 0 {
		return reg
	}

	m.logger.Debug("Wrapping service with rate limiting",
		"service", reg.Name,
		"limit", limit,
		"window", window)

	reg.RequestHandler = m.wrap(reg.Name, limit, window, reg.RequestHandler)
	return reg
}

func (m *Middleware) wrap(
	service string,
	limit int,
	window time.Duration,
	next func(context.Context, *types.Msg) ([]byte, error),
) func(context.Context, *types.Msg) ([]byte, error) {
	return func(ctx context.Context, req *types.Msg) ([]byte, error) {
		if m.limiter == nil {
			return next(ctx, req)
		}

		clientID := m.clientID(req)
		decision, err := m.limiter.Allow(ctx, service+":"+clientID, limit, window)
		if err != nil {
			// Fail open on Redis errors.
			m.logger.Error("Rate limit check failed",
				"service", service,
				"client_id", clientID,
				"error", err)
			return next(ctx, req)
		}

		if !decision.Allowed {
			m.logger.Warn("Rate limit exceeded",
				"service", service,
				"client_id", clientID,
				"limit", decision.Limit,
				"reset_at", decision.ResetAt)

			limitErr := &LimitExceededError{
				Service:   service,
				Message:   fmt.Sprintf("rate limit exceeded for service %s", service),
				Remaining: decision.Remaining,
				ResetAt:   decision.ResetAt,
				Limit:     decision.Limit,
			}
			body, err := json.Marshal(limitErr)
			if err != nil {
				return nil, limitErr
			}
			return body, limitErr
		}

		return next(ctx, req)
	}
}

// OnConfigurationChange passes through configuration changes unchanged.
func (m *Middleware) OnConfigurationChange(_ context.Context, event types.ConfigurationEvent) types.ConfigurationEvent {
	return event
}

// OnOutgoingMessage passes through outgoing messages unchanged.
func (m *Middleware) OnOutgoingMessage(octx types.OutgoingMessageContext) types.OutgoingMessageContext {
	return octx
}

// OnEventConsumerRegistration passes through event consumer registrations unchanged.
func (m *Middleware) OnEventConsumerRegistration(_ context.Context, entry types.EventConsumerEntry) types.EventConsumerEntry {
	return entry
}

// OnEventStreamConsumerRegistration passes through event stream consumer registrations unchanged.
func (m *Middleware) OnEventStreamConsumerRegistration(
	_ context.Context,
	entry types.EventStreamConsumerEntry,
) types.EventStreamConsumerEntry {
	return entry
}

func (m *Middleware) limitFor(service string) (int, time.Duration) {
	if sl, ok := m.config.ServiceLimits[service]; ok {
		return sl.Limit, sl.Window
	}
	return m.config.DefaultLimit, m.config.DefaultWindow
}

// clientID returns the first non-empty client ID header value, truncated,
// or the fallback ID.
func (m *Middleware) clientID(req *types.Msg) string {
	if req == nil || req.Header == nil {
		return m.config.FallbackClientID
	}
	values := req.Header[m.config.ClientIDHeader]
	if len(values) == 0 || values[0] == "" {
		return m.config.FallbackClientID
	}
	id := values[0]
	if len(id) > maxClientIDLength {
		id = id[:maxClientIDLength]
	}
	return id
}
