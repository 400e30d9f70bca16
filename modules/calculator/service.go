package calculator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/example/arithmetic-dispatcher/domain/arithmetic"
	"github.com/example/arithmetic-dispatcher/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// compute handles the calculator.compute service request.
func (m *CalculatorModule) compute(_ context.Context, req CalculateRequest, _ *mono.Msg) (CalculateResponse, error) {
	resp := m.evaluate(req)
	m.publishPerformed(resp, "")
	return resp, nil // Arithmetic failures travel in the response, not as Go errors
}

// computeBatch handles the calculator.compute-batch service request.
func (m *CalculatorModule) computeBatch(ctx context.Context, req BatchRequest, _ *mono.Msg) (BatchResponse, error) {
	if len(req.Items) == 0 {
		return BatchResponse{}, ErrEmptyBatch
	}
	if len(req.Items) > m.config.MaxBatchSize {
		return BatchResponse{}, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(req.Items), m.config.MaxBatchSize)
	}

	batchID := uuid.New().String()
	results := make([]CalculateResponse, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	for i, item := range req.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.evaluate(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResponse{}, fmt.Errorf("batch %s interrupted: %w", batchID, err)
	}

	// Events go out only for batches the caller receives.
	for _, r := range results {
		m.publishPerformed(r, batchID)
	}

	resp := BatchResponse{
		BatchID: batchID,
		Results: results,
	}
	for _, r := range results {
		if r.OK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	m.logger.Debug("Batch evaluated",
		"batch_id", batchID,
		"items", len(results),
		"failed", resp.Failed)
	return resp, nil
}

// operations handles the calculator.operations service request.
func (m *CalculatorModule) operations(_ context.Context, _ OperationsRequest, _ *mono.Msg) (OperationsResponse, error) {
	return listOperations(), nil
}

// evaluate dispatches one request.
func (m *CalculatorModule) evaluate(req CalculateRequest) CalculateResponse {
	outcome := arithmetic.Dispatch(req.A, req.B, req.Operation)
	resp := toCalculateResponse(uuid.New().String(), req.Operation, outcome)
	m.evaluated.Add(1)
	return resp
}

// publishPerformed emits CalculationPerformed. Publishing is best-effort.
func (m *CalculatorModule) publishPerformed(resp CalculateResponse, batchID string) {
	if m.eventBus == nil {
		return
	}
	event := events.CalculationPerformedEvent{
		CalculationID: resp.ID,
		BatchID:       batchID,
		Operation:     resp.Operation,
		OK:            resp.OK,
		ErrorKind:     resp.ErrorKind,
		PerformedAt:   time.Now(),
	}
	if err := events.CalculationPerformedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish CalculationPerformed event",
			"calculation_id", resp.ID,
			"error", err)
	}
}

// toCalculateResponse converts an Outcome to its wire form.
func toCalculateResponse(id, operation string, o arithmetic.Outcome) CalculateResponse {
	resp := CalculateResponse{
		ID:        id,
		Operation: operation,
		OK:        o.OK(),
		Text:      o.String(),
	}
	if !o.OK() {
		resp.Error = o.Kind().String()
		resp.ErrorKind = o.Kind().Code()
		return resp
	}
	v, _ := o.Value()
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		resp.Result = &v
	}
	return resp
}

// listOperations describes the supported operations.
func listOperations() OperationsResponse {
	ops := arithmetic.Operations()
	resp := OperationsResponse{
		Operations: make([]OperationInfo, 0, len(ops)),
	}
	for _, op := range ops {
		resp.Operations = append(resp.Operations, OperationInfo{
			Name:    op.String(),
			Symbol:  op.Symbol(),
			Aliases: arithmetic.Aliases(op),
		})
	}
	return resp
}
