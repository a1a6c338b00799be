package sim

import (
	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/spell"
	"rune-and-ruin/server/spellbook"
)

// Board is the world surface the loop drives each tick.
type Board interface {
	SpawnPlayer() (string, error)
	CurrentPlayer() (string, bool)
	Walk(id string, dir grid.Direction) bool
	Remove(id string) bool
	Upkeep(tick uint64)
	RecordNote(note spell.Note)
	DrainSprungCasts() []spell.CastRequest
	DrainRemovals() []string
	Snapshot() []world.EntitySnapshot
}

// Caster is the interpreter surface the loop advances.
type Caster interface {
	Cast(req spell.CastRequest) error
	Step(tick uint64) *spell.Note
	PruneCaster(id string) int
}

// Deps carries the collaborators the loop coordinates. World and Caster
// are required; the rest default to no-op implementations.
type Deps struct {
	World     Board
	Caster    Caster
	Book      map[string]spellbook.Definition
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Clock     logging.Clock
}
