package calculator

import "context"

// Service names registered by the calculator module. The framework prefixes
// them with "services.calculator.".
const (
	ServiceCompute      = "compute"
	ServiceComputeBatch = "compute-batch"
	ServiceOperations   = "operations"
)

// ComputeSubject is the NATS subject external clients use for compute.
const ComputeSubject = "services.calculator." + ServiceCompute

// CalculateRequest is the request for a single calculation.
type CalculateRequest struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
}

// CalculateResponse is the response for a single calculation.
// Arithmetic failures are reported in Error/ErrorKind, never as a service error.
type CalculateResponse struct {
	ID        string   `json:"id"`
	Operation string   `json:"operation"`
	OK        bool     `json:"ok"`
	Result    *float64 `json:"result,omitempty"` // nil on failure or non-finite value
	Text      string   `json:"text"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// BatchRequest is the request for evaluating several calculations at once.
type BatchRequest struct {
	Items []CalculateRequest `json:"items"`
}

// BatchResponse holds per-item results in request order.
type BatchResponse struct {
	BatchID   string              `json:"batch_id"`
	Results   []CalculateResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// OperationsRequest is the (empty) request for listing operations.
type OperationsRequest struct{}

// OperationInfo describes one supported operation.
type OperationInfo struct {
	Name    string   `json:"name"`
	Symbol  string   `json:"symbol"`
	Aliases []string `json:"aliases,omitempty"`
}

// OperationsResponse lists the supported operations.
type OperationsResponse struct {
	Operations []OperationInfo `json:"operations"`
}

// CalculatorPort defines the calculator operations available to other modules.
type CalculatorPort interface {
	Compute(ctx context.Context, req *CalculateRequest) (*CalculateResponse, error)
	ComputeBatch(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
	Operations(ctx context.Context) (*OperationsResponse, error)
}
