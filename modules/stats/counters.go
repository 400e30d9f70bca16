package stats

import (
	"sync"
	"time"

	"github.com/example/arithmetic-dispatcher/events"
)

// maxLabelLength caps operation labels used as map keys, since invalid
// labels come straight from clients.
const maxLabelLength = 32

// Counters aggregates calculation events in memory.
type Counters struct {
	mu          sync.RWMutex
	total       int64
	succeeded   int64
	failed      int64
	byOperation map[string]int64
	byErrorKind map[string]int64
	lastSeenAt  time.Time
}

// NewCounters creates empty counters.
func NewCounters() *Counters {
	return &Counters{
		byOperation: make(map[string]int64),
		byErrorKind: make(map[string]int64),
	}
}

// Record adds one calculation event.
func (c *Counters) Record(event events.CalculationPerformedEvent) {
	label := event.Operation
	if len(label) > maxLabelLength {
		label = label[:maxLabelLength]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.byOperation[label]++
	if event.OK {
		c.succeeded++
	} else {
		c.failed++
		c.byErrorKind[event.ErrorKind]++
	}
	if event.PerformedAt.After(c.lastSeenAt) {
		c.lastSeenAt = event.PerformedAt
	}
}

// Snapshot returns a copy of the current counters.
func (c *Counters) Snapshot() StatsResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp := StatsResponse{
		Total:       c.total,
		Succeeded:   c.succeeded,
		Failed:      c.failed,
		ByOperation: make(map[string]int64, len(c.byOperation)),
		ByErrorKind: make(map[string]int64, len(c.byErrorKind)),
	}
	for k, v := range c.byOperation {
		resp.ByOperation[k] = v
	}
	for k, v := range c.byErrorKind {
		resp.ByErrorKind[k] = v
	}
	if !c.lastSeenAt.IsZero() {
		last := c.lastSeenAt
		resp.LastSeenAt = &last
	}
	return resp
}
