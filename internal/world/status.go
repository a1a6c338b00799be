package world

import (
	"context"

	"rune-and-ruin/server/logging/status_effects"
	"rune-and-ruin/server/spell"
)

// Status names a condition the status engine knows how to run.
type Status string

const (
	StatusBurning  Status = "burning"
	StatusBleeding Status = "bleeding"
	StatusChilled  Status = "chilled"
	StatusBlessed  Status = "blessed"
	StatusMarked   Status = "marked"
)

// StatusInstance is one live condition on an entity. Stacks count the
// remaining upkeep ticks; each tick burns one stack.
type StatusInstance struct {
	Kind    Status
	Potency int
	Stacks  int
	Source  string
}

// StatusHook runs against the afflicted entity. Hooks may mutate health
// and may remove the entity entirely; the engine re-checks existence after
// every call.
type StatusHook func(w *World, target *Entity, inst *StatusInstance)

// StatusDefinition describes a condition: its base duration in ticks, used
// when an application carries no stack count, and its lifecycle hooks.
type StatusDefinition struct {
	Kind     Status
	Duration int
	OnApply  StatusHook
	OnTick   StatusHook
	OnExpire StatusHook
}

// RegisterStatus installs a definition. Kind order is registration order,
// which fixes the per-entity upkeep sequence.
func (w *World) RegisterStatus(def StatusDefinition) {
	if def.Kind == "" {
		return
	}
	if _, exists := w.statusDefs[def.Kind]; !exists {
		w.statusKinds = append(w.statusKinds, def.Kind)
	}
	w.statusDefs[def.Kind] = def
}

func (w *World) registerDefaultStatuses() {
	w.statusDefs = make(map[Status]StatusDefinition)
	w.RegisterStatus(StatusDefinition{
		Kind:     StatusBurning,
		Duration: 3,
		OnTick: func(w *World, target *Entity, inst *StatusInstance) {
			w.shiftHealth(target, -inst.Potency, inst.Source, string(StatusBurning))
		},
	})
	w.RegisterStatus(StatusDefinition{
		Kind:     StatusBleeding,
		Duration: 5,
		OnTick: func(w *World, target *Entity, inst *StatusInstance) {
			w.shiftHealth(target, -1, inst.Source, string(StatusBleeding))
		},
	})
	// Chilled carries no hooks: the regeneration pass checks for it.
	w.RegisterStatus(StatusDefinition{Kind: StatusChilled, Duration: 4})
	w.RegisterStatus(StatusDefinition{
		Kind:     StatusBlessed,
		Duration: 3,
		OnTick: func(w *World, target *Entity, inst *StatusInstance) {
			w.shiftHealth(target, inst.Potency, inst.Source, string(StatusBlessed))
		},
	})
	// Marked is a bare tag other systems read off the snapshot.
	w.RegisterStatus(StatusDefinition{Kind: StatusMarked, Duration: 2})
}

// applyStatus lands a status command on its target. First application
// installs a fresh instance and runs OnApply. Re-application with higher
// potency overwrites the potency and resets the stacks; equal or lower
// potency adds its stacks to the remainder.
func (w *World) applyStatus(cmd spell.StatusApplyEffect) {
	target, ok := w.entities[cmd.Entity]
	if !ok {
		return
	}
	kind := Status(cmd.Kind)
	def, known := w.statusDefs[kind]
	if !known {
		status_effects.Unknown(context.Background(), w.publisher, w.tick, w.entityRef(cmd.Source), w.entityRef(cmd.Entity), status_effects.InstancePayload{
			Status: cmd.Kind,
			Source: cmd.Source,
		})
		return
	}

	stacks := cmd.Stacks
	if stacks <= 0 {
		stacks = def.Duration
	}

	inst, active := target.Statuses[kind]
	if !active {
		inst = &StatusInstance{Kind: kind, Potency: cmd.Potency, Stacks: stacks, Source: cmd.Source}
		if target.Statuses == nil {
			target.Statuses = make(map[Status]*StatusInstance)
		}
		target.Statuses[kind] = inst
		if def.OnApply != nil {
			def.OnApply(w, target, inst)
		}
		status_effects.Applied(context.Background(), w.publisher, w.tick, w.entityRef(cmd.Source), w.entityRef(target.ID), instancePayload(inst))
		return
	}

	if cmd.Potency > inst.Potency {
		inst.Potency = cmd.Potency
		inst.Stacks = stacks
		inst.Source = cmd.Source
	} else {
		inst.Stacks += stacks
	}
	status_effects.Refreshed(context.Background(), w.publisher, w.tick, w.entityRef(cmd.Source), w.entityRef(target.ID), instancePayload(inst))
}

// advanceStatuses runs one upkeep pass: OnTick, then one stack burned,
// then OnExpire and removal at zero. Entities are visited in spawn order
// and kinds in registration order so the pass is deterministic.
func (w *World) advanceStatuses() {
	for _, id := range append([]string(nil), w.order...) {
		for _, kind := range w.statusKinds {
			target, ok := w.entities[id]
			if !ok {
				break
			}
			inst, active := target.Statuses[kind]
			if !active {
				continue
			}
			def := w.statusDefs[kind]
			if def.OnTick != nil {
				def.OnTick(w, target, inst)
				if _, alive := w.entities[id]; !alive {
					break
				}
			}
			inst.Stacks--
			if inst.Stacks > 0 {
				continue
			}
			if def.OnExpire != nil {
				def.OnExpire(w, target, inst)
			}
			delete(target.Statuses, kind)
			status_effects.Expired(context.Background(), w.publisher, w.tick, w.entityRef(inst.Source), w.entityRef(id), instancePayload(inst))
		}
	}
}

func instancePayload(inst *StatusInstance) status_effects.InstancePayload {
	return status_effects.InstancePayload{
		Status:  string(inst.Kind),
		Potency: inst.Potency,
		Stacks:  inst.Stacks,
		Source:  inst.Source,
	}
}

// StatusOf returns a snapshot of one status instance on an entity.
func (w *World) StatusOf(entity string, kind Status) (StatusSnapshot, bool) {
	e, ok := w.entities[entity]
	if !ok {
		return StatusSnapshot{}, false
	}
	inst, active := e.Statuses[kind]
	if !active {
		return StatusSnapshot{}, false
	}
	return StatusSnapshot{Status: inst.Kind, Potency: inst.Potency, Stacks: inst.Stacks}, true
}
