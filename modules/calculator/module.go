package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/arithmetic-dispatcher/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Config holds calculator module settings.
type Config struct {
	// Workers bounds the goroutines evaluating one batch.
	Workers int

	// MaxBatchSize is the largest accepted batch.
	MaxBatchSize int
}

// DefaultConfig returns the default calculator configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      8,
		MaxBatchSize: 1000,
	}
}

// Option modifies Config.
type Option func(*Config)

// WithWorkers sets the batch concurrency limit.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

// WithMaxBatchSize sets the largest accepted batch.
func WithMaxBatchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxBatchSize = n
		}
	}
}

// CalculatorModule exposes the arithmetic dispatcher as request-reply services.
type CalculatorModule struct {
	config    Config
	logger    types.Logger
	eventBus  mono.EventBus
	startTime time.Time
	evaluated atomic.Int64
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*CalculatorModule)(nil)
	_ mono.ServiceProviderModule = (*CalculatorModule)(nil)
	_ mono.EventBusAwareModule   = (*CalculatorModule)(nil)
	_ mono.EventEmitterModule    = (*CalculatorModule)(nil)
	_ mono.HealthCheckableModule = (*CalculatorModule)(nil)
)

// NewModule creates a new CalculatorModule.
func NewModule(logger types.Logger, opts ...Option) *CalculatorModule {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CalculatorModule{
		config: cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *CalculatorModule) Name() string {
	return "calculator"
}

// SetEventBus receives the framework event bus.
func (m *CalculatorModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *CalculatorModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CalculationPerformedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CalculatorModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCompute, json.Unmarshal, json.Marshal, m.compute,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCompute, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceComputeBatch, json.Unmarshal, json.Marshal, m.computeBatch,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceComputeBatch, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceOperations, json.Unmarshal, json.Marshal, m.operations,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceOperations, err)
	}

	m.logger.Info("Registered calculator services",
		"services", []string{ServiceCompute, ServiceComputeBatch, ServiceOperations})
	return nil
}

// Start initializes the calculator module.
func (m *CalculatorModule) Start(_ context.Context) error {
	m.startTime = time.Now()
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, calculation events will not be published")
	}
	m.logger.Info("Calculator module started",
		"workers", m.config.Workers,
		"max_batch_size", m.config.MaxBatchSize)
	return nil
}

// Stop stops the calculator module.
func (m *CalculatorModule) Stop(_ context.Context) error {
	m.logger.Info("Calculator module stopped", "evaluated", m.evaluated.Load())
	return nil
}

// Health returns the health status of the module.
func (m *CalculatorModule) Health(_ context.Context) mono.HealthStatus {
	if m.startTime.IsZero() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"uptime":    time.Since(m.startTime).Round(time.Second).String(),
			"evaluated": m.evaluated.Load(),
		},
	}
}
