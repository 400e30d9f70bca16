package api

import "time"

// ComputeRequest is the HTTP request for a single calculation.
type ComputeRequest struct {
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Operation string  `json:"operation"`
}

// BatchComputeRequest is the HTTP request for a batch of calculations.
type BatchComputeRequest struct {
	Items []ComputeRequest `json:"items"`
}

// ComputeResponse is the HTTP response for a single calculation.
type ComputeResponse struct {
	ID        string   `json:"id"`
	Operation string   `json:"operation"`
	OK        bool     `json:"ok"`
	Result    *float64 `json:"result,omitempty"`
	Text      string   `json:"text"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// BatchComputeResponse is the HTTP response for a batch.
type BatchComputeResponse struct {
	BatchID   string            `json:"batch_id"`
	Results   []ComputeResponse `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// OperationResponse describes one supported operation.
type OperationResponse struct {
	Name    string   `json:"name"`
	Symbol  string   `json:"symbol"`
	Aliases []string `json:"aliases,omitempty"`
}

// ListOperationsResponse is the HTTP response for listing operations.
type ListOperationsResponse struct {
	Operations []OperationResponse `json:"operations"`
}

// StatsResponse is the HTTP response for calculation counters.
type StatsResponse struct {
	Total       int64            `json:"total"`
	Succeeded   int64            `json:"succeeded"`
	Failed      int64            `json:"failed"`
	ByOperation map[string]int64 `json:"by_operation"`
	ByErrorKind map[string]int64 `json:"by_error_kind"`
	LastSeenAt  *time.Time       `json:"last_seen_at,omitempty"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
