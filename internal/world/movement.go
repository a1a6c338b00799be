package world

import (
	"context"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/logging/lifecycle"
	"rune-and-ruin/server/spell"
)

const MetricMovesExecuted = "world.moves_executed"

// Walk is the host-input path: the entity turns to face the direction and
// takes a single step if the destination can be entered. The facing turn
// happens even when the step is blocked.
func (w *World) Walk(id string, dir grid.Direction) bool {
	e, ok := w.entities[id]
	if !ok || dir.Zero() {
		return false
	}
	e.Facing = dir
	dest := e.Position.Shift(dir)
	if !w.canEnter(e, dest) {
		return false
	}
	w.relocate(e, dest)
	return true
}

// applyMove executes a move command. The commanded destination was chosen
// against a snapshot that may be stale by now, so the path is re-walked
// from the entity's live position and clamped to the last enterable tile.
// The mover is never dropped, only stopped short.
func (w *World) applyMove(cmd spell.MoveEffect) {
	e, ok := w.entities[cmd.Entity]
	if !ok || cmd.To == e.Position {
		return
	}

	path := grid.WalkGridLine(e.Position, cmd.To)
	last := e.Position
	for _, tile := range path[1:] {
		if !w.canEnter(e, tile) {
			break
		}
		last = tile
	}

	if last == e.Position {
		if facing := facingBetween(e.Position, cmd.To); !facing.Zero() {
			e.Facing = facing
		}
		return
	}
	w.relocate(e, last)
	w.metrics.Add(MetricMovesExecuted, 1)
}

// canEnter reports whether the entity may stand on the tile. Intangible
// entities ignore occupancy but still stop at the board edge.
func (w *World) canEnter(e *Entity, p grid.Position) bool {
	if !w.inBounds(p) {
		return false
	}
	if e.Intangible {
		return true
	}
	occupant, occupied := w.occupancy[p]
	return !occupied || occupant == e.ID
}

// relocate moves the entity, updates the occupancy index and facing, and
// lets the trap keeper inspect the arrival tile.
func (w *World) relocate(e *Entity, dest grid.Position) {
	from := e.Position
	if e.claimsTile() {
		if w.occupancy[from] == e.ID {
			delete(w.occupancy, from)
		}
		w.occupancy[dest] = e.ID
	}
	e.Position = dest
	if facing := facingBetween(from, dest); !facing.Zero() {
		e.Facing = facing
	}
	w.springTrap(e)
}

// springTrap fires the one-shot trap under the entity, if any. Intangible
// entities drift over armed tiles without disturbing them.
func (w *World) springTrap(e *Entity) {
	if !e.claimsTile() {
		return
	}
	record, ok := w.traps[e.Position]
	if !ok {
		return
	}
	delete(w.traps, e.Position)

	w.sprung = append(w.sprung, spell.CastRequest{
		Caster:       e.ID,
		Instructions: spell.CloneSequence(record.Instructions),
	})
	w.metrics.Add(MetricTrapsSprung, 1)
	lifecycle.TrapSprung(context.Background(), w.publisher, w.tick, w.entityRef(e.ID), lifecycle.TrapPayload{
		X:            e.Position.X,
		Y:            e.Position.Y,
		Instructions: len(record.Instructions),
	})
}

// facingBetween reduces a displacement to the unit direction of its axis
// signs.
func facingBetween(from, to grid.Position) grid.Direction {
	return grid.Direction{DX: sign(to.X - from.X), DY: sign(to.Y - from.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
