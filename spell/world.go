package spell

import "rune-and-ruin/server/grid"

// WorldView is the read-only capability the interpreter consumes. The
// world collaborator implements it; the interpreter never mutates the
// world directly, it only emits effects.
type WorldView interface {
	// OccupantAt returns the primary occupant of a tile.
	OccupantAt(p grid.Position) (string, bool)
	// IsPassable reports whether a tile can be entered: in bounds and
	// holding no tangible occupant.
	IsPassable(p grid.Position) bool
	// PositionOf returns an entity's tile.
	PositionOf(entity string) (grid.Position, bool)
	// FacingOf returns the direction of an entity's last movement.
	FacingOf(entity string) (grid.Direction, bool)
	// SpellImmune reports the warded marker: beams cannot pierce the
	// entity and harm passes over it.
	SpellImmune(entity string) bool
	// Structural reports the wall marker.
	Structural(entity string) bool
	// Intangible reports whether the entity ignores occupancy when moved.
	Intangible(entity string) bool
	// Exists reports whether the entity is still in the world. Frames
	// whose caster stopped existing are pruned.
	Exists(entity string) bool
	// CurrentPlayer returns the designated player entity.
	CurrentPlayer() (string, bool)
}

// beamField adapts a WorldView to the grid.Field queries beams propagate
// with.
type beamField struct {
	view WorldView
}

func (f beamField) IsPassable(p grid.Position) bool {
	return f.view.IsPassable(p)
}

func (f beamField) Occupied(p grid.Position) bool {
	_, ok := f.view.OccupantAt(p)
	return ok
}

func (f beamField) SpellImmuneAt(p grid.Position) bool {
	id, ok := f.view.OccupantAt(p)
	return ok && f.view.SpellImmune(id)
}

// Executor applies a popped frame's translated effects to the world, in
// the order given.
type Executor interface {
	ExecuteBatch(batch []Effect)
}

// ExecutorFunc adapts a function into an Executor.
type ExecutorFunc func(batch []Effect)

func (f ExecutorFunc) ExecuteBatch(batch []Effect) {
	if f == nil {
		return
	}
	f(batch)
}

// TrapPlacer stores dormant spells and owns their triggering. The keeper,
// not the interpreter, issues the fresh cast when an occupant arrives.
type TrapPlacer interface {
	PlaceTrap(record TrapRecord)
}

// TrapPlacerFunc adapts a function into a TrapPlacer.
type TrapPlacerFunc func(record TrapRecord)

func (f TrapPlacerFunc) PlaceTrap(record TrapRecord) {
	if f == nil {
		return
	}
	f(record)
}
