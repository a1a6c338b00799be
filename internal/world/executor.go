package world

import (
	"context"

	"rune-and-ruin/server/logging/lifecycle"
	"rune-and-ruin/server/spell"
)

const MetricCommandsExecuted = "world.commands_executed"

// ExecuteBatch applies a popped frame's command batch in the order given,
// inside the same tick that popped the frame. Trap placements never reach
// the executor; the dispatcher peels them off for the trap keeper.
func (w *World) ExecuteBatch(batch []spell.Effect) {
	for _, cmd := range batch {
		switch cmd.Kind {
		case spell.EffectMove:
			if cmd.Move != nil {
				w.applyMove(*cmd.Move)
			}
		case spell.EffectSpawn:
			if cmd.Spawn != nil {
				w.applySpawn(*cmd.Spawn)
			}
		case spell.EffectHarmOrHeal:
			if cmd.Harm != nil {
				w.applyHarm(*cmd.Harm)
			}
		case spell.EffectApplyStatus:
			if cmd.Status != nil {
				w.applyStatus(*cmd.Status)
			}
		case spell.EffectDespawn:
			if cmd.Remove != nil {
				w.applyDespawn(*cmd.Remove)
			}
		case spell.EffectBanishSpawns:
			if cmd.Banish != nil {
				w.applyBanish(*cmd.Banish)
			}
		}
	}
	w.metrics.Add(MetricCommandsExecuted, uint64(len(batch)))
}

// applySpawn creates an entity of the commanded species if the target tile
// is still passable. The caster validated the tile when the spell ran; the
// board may have moved on since, and a blocked spawn just fizzles.
func (w *World) applySpawn(cmd spell.SpawnEffect) {
	species := Species(cmd.Species)
	if _, known := BlueprintFor(species); !known {
		lifecycle.UnknownSpecies(context.Background(), w.publisher, w.tick, w.entityRef(cmd.Summoner), lifecycle.UnknownSpeciesPayload{
			Species: cmd.Species,
		})
		return
	}
	if !w.IsPassable(cmd.At) {
		return
	}
	w.spawnEntity(species, cmd.At, cmd.Summoner)
}

// applyDespawn removes one entity outright.
func (w *World) applyDespawn(cmd spell.DespawnEffect) {
	e, ok := w.entities[cmd.Entity]
	if !ok {
		return
	}
	w.despawn(e)
}

// applyBanish removes every entity whose progenitor matches, in spawn
// order.
func (w *World) applyBanish(cmd spell.BanishSpawnsEffect) {
	if cmd.Progenitor == "" {
		return
	}
	var banished []*Entity
	for _, id := range w.order {
		e := w.entities[id]
		if e != nil && e.Progenitor == cmd.Progenitor {
			banished = append(banished, e)
		}
	}
	for _, e := range banished {
		w.despawn(e)
	}
}
