package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CalculationPerformedEvent is emitted for every evaluated calculation,
// successful or not.
type CalculationPerformedEvent struct {
	CalculationID string    `json:"calculation_id"`
	BatchID       string    `json:"batch_id,omitempty"`
	Operation     string    `json:"operation"`
	OK            bool      `json:"ok"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	PerformedAt   time.Time `json:"performed_at"`
}

// CalculationPerformedV1 is the typed event definition for calculations.
// Subject: events.calculator.v1.calculation-performed
var CalculationPerformedV1 = helper.EventDefinition[CalculationPerformedEvent](
	"calculator", "CalculationPerformed", "v1",
)
