package stats

import (
	"context"
	"time"
)

// ServiceGetStats is the stats module's request-reply service.
const ServiceGetStats = "get-stats"

// StatsRequest is the (empty) request for the current counters.
type StatsRequest struct{}

// StatsResponse is a snapshot of calculation counters.
type StatsResponse struct {
	Total       int64            `json:"total"`
	Succeeded   int64            `json:"succeeded"`
	Failed      int64            `json:"failed"`
	ByOperation map[string]int64 `json:"by_operation"`
	ByErrorKind map[string]int64 `json:"by_error_kind"`
	LastSeenAt  *time.Time       `json:"last_seen_at,omitempty"`
}

// StatsPort defines the stats operations available to other modules.
type StatsPort interface {
	GetStats(ctx context.Context) (*StatsResponse, error)
}
