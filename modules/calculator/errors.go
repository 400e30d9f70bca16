package calculator

import "errors"

// Sentinel errors for batch requests.
var (
	// ErrEmptyBatch is returned when a batch request has no items.
	ErrEmptyBatch = errors.New("batch has no items")

	// ErrBatchTooLarge is returned when a batch exceeds the configured size.
	ErrBatchTooLarge = errors.New("batch too large")
)
