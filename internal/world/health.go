package world

import (
	"context"

	"rune-and-ruin/server/logging/combat"
	"rune-and-ruin/server/spell"
)

// applyHarm adjusts a target's health by a signed amount, clamped to
// [0, max]. Hitting zero removes the entity and credits the culprit.
func (w *World) applyHarm(cmd spell.HarmEffect) {
	e, ok := w.entities[cmd.Entity]
	if !ok || cmd.Amount == 0 {
		return
	}
	w.shiftHealth(e, cmd.Amount, cmd.Culprit, "")
}

// shiftHealth is the single health mutation path shared by commands and
// status ticks.
func (w *World) shiftHealth(e *Entity, amount int, culprit string, status string) {
	next := e.Health + amount
	if next < 0 {
		next = 0
	}
	if next > e.MaxHealth {
		next = e.MaxHealth
	}
	if next == e.Health {
		return
	}
	delta := next - e.Health
	e.Health = next

	payload := combat.HealthPayload{Amount: delta, TargetHealth: e.Health, Status: status}
	if delta < 0 {
		combat.Harm(context.Background(), w.publisher, w.tick, w.entityRef(culprit), w.entityRef(e.ID), payload)
	} else {
		combat.Heal(context.Background(), w.publisher, w.tick, w.entityRef(culprit), w.entityRef(e.ID), payload)
	}

	if e.Health == 0 {
		w.kill(e, culprit)
	}
}

// regenerate restores health to entities with a regeneration stat. Chilled
// entities skip the pulse.
func (w *World) regenerate() {
	for _, id := range append([]string(nil), w.order...) {
		e, ok := w.entities[id]
		if !ok || e.Regen <= 0 || e.Health >= e.MaxHealth {
			continue
		}
		if _, chilled := e.Statuses[StatusChilled]; chilled {
			continue
		}
		e.Health += e.Regen
		if e.Health > e.MaxHealth {
			e.Health = e.MaxHealth
		}
	}
}
