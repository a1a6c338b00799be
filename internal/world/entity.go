package world

import "rune-and-ruin/server/grid"

// Entity is one occupant of the board. Walls are entities too: they hold a
// tile, carry the Structural marker, and can be consumed like anything
// else the executor is pointed at.
type Entity struct {
	ID        string
	Species   Species
	Position  grid.Position
	Facing    grid.Direction
	Health    int
	MaxHealth int
	Regen     int

	SpellImmune bool
	Structural  bool
	Intangible  bool

	// Progenitor is the entity that summoned this one. Banish commands
	// remove every entity sharing a progenitor.
	Progenitor string

	Statuses map[Status]*StatusInstance
}

// claimsTile reports whether the entity holds its tile in the occupancy
// index. Intangible entities drift over tiles without claiming them.
func (e *Entity) claimsTile() bool {
	return e != nil && !e.Intangible
}
