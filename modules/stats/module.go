package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/arithmetic-dispatcher/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// StatsModule counts calculations as a driven adapter.
// It subscribes to calculator events using the EventConsumerModule interface.
type StatsModule struct {
	counters *Counters
	logger   types.Logger
}

var _ mono.Module = (*StatsModule)(nil)
var _ mono.EventConsumerModule = (*StatsModule)(nil)
var _ mono.ServiceProviderModule = (*StatsModule)(nil)

func NewModule(logger types.Logger) *StatsModule {
	return &StatsModule{
		counters: NewCounters(),
		logger:   logger,
	}
}

func (m *StatsModule) Name() string {
	return "stats"
}

func (m *StatsModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.CalculationPerformedV1, m.handleCalculationPerformed, m); err != nil {
		return fmt.Errorf("failed to register CalculationPerformed consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"CalculationPerformed"})
	return nil
}

func (m *StatsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetStats, json.Unmarshal, json.Marshal, m.getStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}

	m.logger.Info("Registered stats services", "services", []string{ServiceGetStats})
	return nil
}

func (m *StatsModule) handleCalculationPerformed(_ context.Context, event events.CalculationPerformedEvent, _ *mono.Msg) error {
	m.logger.Debug("Calculation performed",
		"calculation_id", event.CalculationID,
		"operation", event.Operation,
		"ok", event.OK)
	m.counters.Record(event)
	return nil
}

func (m *StatsModule) getStats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	return m.counters.Snapshot(), nil
}

func (m *StatsModule) Start(_ context.Context) error {
	m.logger.Info("Stats module started - listening for calculation events")
	return nil
}

func (m *StatsModule) Stop(_ context.Context) error {
	snapshot := m.counters.Snapshot()
	m.logger.Info("Stats module stopped",
		"total", snapshot.Total,
		"failed", snapshot.Failed)
	return nil
}
