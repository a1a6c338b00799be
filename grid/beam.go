package grid

// Field exposes the tile queries a beam needs while it propagates. The
// world collaborator satisfies it directly; tests use small literal stubs.
type Field interface {
	// IsPassable reports whether a tile blocks neither movement nor
	// ordinary beams. Out-of-bounds tiles are never passable.
	IsPassable(Position) bool
	// Occupied reports whether a tile holds a primary occupant.
	Occupied(Position) bool
	// SpellImmuneAt reports whether the tile's occupant, if any, is warded
	// against spells.
	SpellImmuneAt(Position) bool
}

// TraceBeam steps from origin in the given direction up to maxLen tiles
// and returns every stepped-to tile in order. The tile that stops the beam
// is always included. A plain beam stops on the first impassable tile. A
// piercing beam passes through ordinary occupants and stops only on a
// spell-immune occupant, except that a tile impassable without any
// occupant (terrain, bounds) stops every beam.
func TraceBeam(field Field, origin Position, delta Direction, maxLen int, piercing bool) []Position {
	if field == nil || delta.Zero() || maxLen <= 0 {
		return nil
	}
	out := make([]Position, 0, maxLen)
	cur := origin
	for i := 0; i < maxLen; i++ {
		cur = cur.Shift(delta)
		out = append(out, cur)
		if piercing {
			if field.SpellImmuneAt(cur) {
				break
			}
			if !field.IsPassable(cur) && !field.Occupied(cur) {
				break
			}
			continue
		}
		if !field.IsPassable(cur) {
			break
		}
	}
	return out
}
