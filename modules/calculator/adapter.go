package calculator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// calculatorAdapter wraps ServiceContainer for type-safe cross-module communication.
type calculatorAdapter struct {
	container mono.ServiceContainer
}

// NewCalculatorAdapter creates a CalculatorPort backed by the calculator services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewCalculatorAdapter(container mono.ServiceContainer) CalculatorPort {
	if container == nil {
		panic("calculator adapter requires non-nil ServiceContainer")
	}
	return &calculatorAdapter{container: container}
}

// Compute evaluates a single calculation via the compute service.
func (a *calculatorAdapter) Compute(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error) {
	var resp CalculateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCompute,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceCompute, err)
	}
	return &resp, nil
}

// ComputeBatch evaluates several calculations via the compute-batch service.
func (a *calculatorAdapter) ComputeBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceComputeBatch,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceComputeBatch, err)
	}
	return &resp, nil
}

// Operations lists the supported operations via the operations service.
func (a *calculatorAdapter) Operations(ctx context.Context) (*OperationsResponse, error) {
	var resp OperationsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceOperations,
		json.Marshal,
		json.Unmarshal,
		&OperationsRequest{},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceOperations, err)
	}
	return &resp, nil
}
