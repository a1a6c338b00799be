// Package lifecycle defines the world events around entities entering and
// leaving the board.
package lifecycle

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventEntitySpawned is emitted when the world creates an entity.
	EventEntitySpawned logging.EventType = "world.entity_spawned"
	// EventEntityDied is emitted when damage removes an entity.
	EventEntityDied logging.EventType = "world.entity_died"
	// EventEntityDespawned is emitted when an entity is removed without
	// dying: banished, consumed, or withdrawn by the host.
	EventEntityDespawned logging.EventType = "world.entity_despawned"
	// EventTrapArmed is emitted when a dormant spell is placed on a tile.
	EventTrapArmed logging.EventType = "world.trap_armed"
	// EventTrapSprung is emitted when an entity steps onto an armed tile.
	EventTrapSprung logging.EventType = "world.trap_sprung"
	// EventUnknownSpecies is emitted when a summon names a species the
	// catalog does not know. The command is dropped.
	EventUnknownSpecies logging.EventType = "world.unknown_species"
)

// EntitySpawnedPayload captures where and what came into being.
type EntitySpawnedPayload struct {
	Species string `json:"species"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Origin  string `json:"origin,omitempty"`
}

// EntityDiedPayload captures the death tile and the credited culprit.
type EntityDiedPayload struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Culprit string `json:"culprit,omitempty"`
}

// EntityDespawnedPayload captures the tile an entity vanished from.
type EntityDespawnedPayload struct {
	Species string `json:"species"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// UnknownSpeciesPayload names the species a summon asked for.
type UnknownSpeciesPayload struct {
	Species string `json:"species"`
}

// TrapPayload captures the armed or sprung tile and payload size.
type TrapPayload struct {
	X            int `json:"x"`
	Y            int `json:"y"`
	Instructions int `json:"instructions"`
}

// EntitySpawned publishes a spawn event.
func EntitySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntitySpawnedPayload) {
	publish(ctx, pub, EventEntitySpawned, tick, actor, logging.SeverityInfo, payload)
}

// EntityDied publishes a death event.
func EntityDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntityDiedPayload) {
	publish(ctx, pub, EventEntityDied, tick, actor, logging.SeverityInfo, payload)
}

// EntityDespawned publishes a non-death removal event.
func EntityDespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntityDespawnedPayload) {
	publish(ctx, pub, EventEntityDespawned, tick, actor, logging.SeverityInfo, payload)
}

// UnknownSpecies publishes a warning about an unrecognised summon species.
func UnknownSpecies(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnknownSpeciesPayload) {
	publish(ctx, pub, EventUnknownSpecies, tick, actor, logging.SeverityWarn, payload)
}

// TrapArmed publishes a trap placement event.
func TrapArmed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TrapPayload) {
	publish(ctx, pub, EventTrapArmed, tick, actor, logging.SeverityInfo, payload)
}

// TrapSprung publishes a trap trigger event.
func TrapSprung(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TrapPayload) {
	publish(ctx, pub, EventTrapSprung, tick, actor, logging.SeverityInfo, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryWorld,
		Payload:  payload,
	})
}
