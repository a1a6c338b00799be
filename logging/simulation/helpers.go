// Package simulation defines loop health events: tick budget breaches and
// command intake drops.
package simulation

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a tick takes longer than the
	// loop's fixed timestep.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventCommandDropped is emitted when the intake buffer rejects a
	// command.
	EventCommandDropped logging.EventType = "simulation.command_dropped"
)

// TickBudgetOverrunPayload captures timing details for a budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// CommandDroppedPayload records a rejected command.
type CommandDroppedPayload struct {
	Type   string `json:"type"`
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason"`
}

// TickBudgetOverrun publishes a warning when a tick overran its budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	publish(ctx, pub, EventTickBudgetOverrun, tick, logging.SeverityWarn, payload)
}

// CommandDropped publishes a warning when intake rejects a command.
func CommandDropped(ctx context.Context, pub logging.Publisher, tick uint64, payload CommandDroppedPayload) {
	publish(ctx, pub, EventCommandDropped, tick, logging.SeverityWarn, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Severity: severity,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
