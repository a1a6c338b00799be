package world

import (
	"context"
	"fmt"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/logging/lifecycle"
)

const (
	MetricEntitiesSpawned = "world.entities_spawned"
	MetricEntitiesRemoved = "world.entities_removed"
)

// spawnEntity mints an id, stamps the species blueprint, claims the tile
// when the newcomer is tangible, and records the spawn.
func (w *World) spawnEntity(species Species, at grid.Position, progenitor string) *Entity {
	bp, ok := BlueprintFor(species)
	if !ok {
		return nil
	}

	w.nextID++
	e := &Entity{
		ID:          fmt.Sprintf("%s-%d", species, w.nextID),
		Species:     species,
		Position:    at,
		Facing:      grid.South,
		Health:      bp.MaxHealth,
		MaxHealth:   bp.MaxHealth,
		Regen:       bp.Regen,
		SpellImmune: bp.SpellImmune,
		Structural:  bp.Structural,
		Intangible:  bp.Intangible,
		Progenitor:  progenitor,
	}

	w.entities[e.ID] = e
	w.order = append(w.order, e.ID)
	if e.claimsTile() {
		w.occupancy[at] = e.ID
	}

	w.metrics.Add(MetricEntitiesSpawned, 1)
	lifecycle.EntitySpawned(context.Background(), w.publisher, w.tick, w.entityRef(e.ID), lifecycle.EntitySpawnedPayload{
		Species: string(species),
		X:       at.X,
		Y:       at.Y,
		Origin:  progenitor,
	})
	return e
}

// despawn removes an entity without a death event: banishment, consumed
// walls, and host-driven leaves all end here.
func (w *World) despawn(e *Entity) {
	lifecycle.EntityDespawned(context.Background(), w.publisher, w.tick, w.entityRef(e.ID), lifecycle.EntityDespawnedPayload{
		Species: string(e.Species),
		X:       e.Position.X,
		Y:       e.Position.Y,
	})
	w.removeEntity(e)
}

// kill removes an entity whose health reached zero, crediting the culprit.
func (w *World) kill(e *Entity, culprit string) {
	lifecycle.EntityDied(context.Background(), w.publisher, w.tick, w.entityRef(e.ID), lifecycle.EntityDiedPayload{
		X:       e.Position.X,
		Y:       e.Position.Y,
		Culprit: culprit,
	})
	w.removeEntity(e)
}

// removeEntity unindexes the entity and queues the removal so the driving
// loop can prune any interpreter frames it still owns.
func (w *World) removeEntity(e *Entity) {
	if _, ok := w.entities[e.ID]; !ok {
		return
	}
	if e.claimsTile() && w.occupancy[e.Position] == e.ID {
		delete(w.occupancy, e.Position)
	}
	delete(w.entities, e.ID)
	for i, id := range w.order {
		if id == e.ID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.playerID == e.ID {
		w.playerID = ""
	}
	w.removals = append(w.removals, e.ID)
	w.metrics.Add(MetricEntitiesRemoved, 1)
}

func (w *World) entityRef(id string) logging.EntityRef {
	e, ok := w.entities[id]
	if !ok {
		return logging.EntityRef{ID: id, Kind: logging.EntityKindUnknown}
	}
	switch {
	case e.Species == SpeciesPlayer:
		return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
	case e.Structural:
		return logging.EntityRef{ID: id, Kind: logging.EntityKindWall}
	}
	return logging.EntityRef{ID: id, Kind: logging.EntityKindCreature}
}
