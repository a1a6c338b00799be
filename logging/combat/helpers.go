// Package combat defines the health-change events the world publishes
// when harm or heal commands land on an entity.
package combat

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventHarm is emitted when a command damages an entity.
	EventHarm logging.EventType = "combat.harm"
	// EventHeal is emitted when a command restores health.
	EventHeal logging.EventType = "combat.heal"
)

// HealthPayload captures a single health change and the resulting pool.
type HealthPayload struct {
	Amount       int    `json:"amount"`
	TargetHealth int    `json:"targetHealth"`
	Status       string `json:"status,omitempty"`
}

// Harm publishes a damage event crediting the actor as culprit.
func Harm(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HealthPayload) {
	publish(ctx, pub, EventHarm, tick, actor, target, payload)
}

// Heal publishes a restoration event.
func Heal(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HealthPayload) {
	publish(ctx, pub, EventHeal, tick, actor, target, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HealthPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
