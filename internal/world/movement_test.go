package world

import (
	"testing"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/spell"
)

func moveCommand(entity string, from, to grid.Position) []spell.Effect {
	return []spell.Effect{{
		Kind: spell.EffectMove,
		Move: &spell.MoveEffect{Entity: entity, From: from, To: to},
	}}
}

func TestApplyMoveClampsAtObstruction(t *testing.T) {
	w := newTestWorld(t, Config{Width: 10, Height: 6})
	mover := w.spawnEntity(SpeciesImp, grid.Position{X: 1, Y: 1}, "")
	w.spawnEntity(SpeciesWall, grid.Position{X: 4, Y: 1}, "")

	w.ExecuteBatch(moveCommand(mover.ID, mover.Position, grid.Position{X: 6, Y: 1}))

	if (mover.Position != grid.Position{X: 3, Y: 1}) {
		t.Fatalf("mover should clamp before the wall, got %v", mover.Position)
	}
	if mover.Facing != grid.East {
		t.Fatalf("mover should face its travel direction, got %v", mover.Facing)
	}
	if occupant, _ := w.OccupantAt(grid.Position{X: 3, Y: 1}); occupant != mover.ID {
		t.Fatalf("occupancy did not follow the mover, tile holds %q", occupant)
	}
	if _, stale := w.OccupantAt(grid.Position{X: 1, Y: 1}); stale {
		t.Fatalf("origin tile should be vacated")
	}
}

func TestApplyMoveRewalksFromLivePosition(t *testing.T) {
	w := newTestWorld(t, Config{Width: 10, Height: 6})
	mover := w.spawnEntity(SpeciesImp, grid.Position{X: 1, Y: 1}, "")

	// The world moved the imp after the command was issued; the stale From
	// in the command is ignored in favor of the live position.
	w.relocate(mover, grid.Position{X: 1, Y: 3})
	w.ExecuteBatch(moveCommand(mover.ID, grid.Position{X: 1, Y: 1}, grid.Position{X: 4, Y: 3}))

	if (mover.Position != grid.Position{X: 4, Y: 3}) {
		t.Fatalf("mover should re-walk from its live tile, got %v", mover.Position)
	}
}

func TestApplyMoveFullyBlockedOnlyTurns(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	mover := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")
	w.spawnEntity(SpeciesWall, grid.Position{X: 3, Y: 2}, "")

	w.ExecuteBatch(moveCommand(mover.ID, mover.Position, grid.Position{X: 5, Y: 2}))

	if (mover.Position != grid.Position{X: 2, Y: 2}) {
		t.Fatalf("fully blocked mover should stay put, got %v", mover.Position)
	}
	if mover.Facing != grid.East {
		t.Fatalf("blocked mover should still turn toward the target, got %v", mover.Facing)
	}
}

func TestApplyMoveIntangiblePassesOccupantsNotBounds(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	shade := w.spawnEntity(SpeciesShade, grid.Position{X: 5, Y: 1}, "")
	w.spawnEntity(SpeciesImp, grid.Position{X: 6, Y: 1}, "")

	// Through the imp, onto the border wall's tile, stopped by the board
	// edge itself.
	w.ExecuteBatch(moveCommand(shade.ID, shade.Position, grid.Position{X: 9, Y: 1}))

	if (shade.Position != grid.Position{X: 7, Y: 1}) {
		t.Fatalf("shade should stop at the last in-bounds tile, got %v", shade.Position)
	}
	if occupant, _ := w.OccupantAt(grid.Position{X: 7, Y: 1}); occupant == shade.ID {
		t.Fatalf("intangible mover should not claim the tile")
	}
}

func TestApplyMoveMissingEntityIsNoop(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	w.ExecuteBatch(moveCommand("nobody", grid.Position{X: 1, Y: 1}, grid.Position{X: 3, Y: 1}))
}
