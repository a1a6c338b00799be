package spell

import (
	"testing"

	"rune-and-ruin/server/grid"
)

func TestSpreadRetainsOriginals(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 0, 0)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)
	frame.AddTarget(grid.Position{X: 0, Y: 0})

	if err := mutSpread(rt, frame, Spread()); err != nil {
		t.Fatalf("mutSpread: %v", err)
	}
	want := []grid.Position{
		{X: 0, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 0},
		{X: 0, Y: -1},
		{X: -1, Y: 0},
	}
	if got := frame.TargetTiles(); !samePositions(got, want) {
		t.Fatalf("targets = %+v, want %+v", got, want)
	}
}

func TestSpreadGroupsNeighborsByDirection(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 0, 0)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)
	frame.AddTarget(grid.Position{X: 0, Y: 0})
	frame.AddTarget(grid.Position{X: 5, Y: 5})

	if err := mutSpread(rt, frame, Spread()); err != nil {
		t.Fatalf("mutSpread: %v", err)
	}
	// All up-neighbors, then right, then down, then left.
	want := []grid.Position{
		{X: 0, Y: 0}, {X: 5, Y: 5},
		{X: 0, Y: 1}, {X: 5, Y: 6},
		{X: 1, Y: 0}, {X: 6, Y: 5},
		{X: 0, Y: -1}, {X: 5, Y: 4},
		{X: -1, Y: 0}, {X: 4, Y: 5},
	}
	if got := frame.TargetTiles(); !samePositions(got, want) {
		t.Fatalf("targets = %+v, want %+v", got, want)
	}
}

func TestSpreadDeduplicatesOverlap(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 0, 0)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)
	frame.AddTarget(grid.Position{X: 0, Y: 0})
	frame.AddTarget(grid.Position{X: 1, Y: 0})

	if err := mutSpread(rt, frame, Spread()); err != nil {
		t.Fatalf("mutSpread: %v", err)
	}
	// Two adjacent originals share neighbors with each other; the set
	// grows to exactly 8 tiles.
	if frame.TargetCount() != 8 {
		t.Fatalf("expected 8 targets, got %+v", frame.TargetTiles())
	}
}

func TestUntargetCasterRemovesOwnTile(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 3, 3)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)
	frame.AddTarget(grid.Position{X: 3, Y: 3})
	frame.AddTarget(grid.Position{X: 4, Y: 3})

	if err := mutUntargetCaster(rt, frame, UntargetCaster()); err != nil {
		t.Fatalf("mutUntargetCaster: %v", err)
	}
	want := []grid.Position{{X: 4, Y: 3}}
	if got := frame.TargetTiles(); !samePositions(got, want) {
		t.Fatalf("targets = %+v, want %+v", got, want)
	}

	// Absent tile is a no-op.
	if err := mutUntargetCaster(rt, frame, UntargetCaster()); err != nil {
		t.Fatalf("second mutUntargetCaster: %v", err)
	}
	if got := frame.TargetTiles(); !samePositions(got, want) {
		t.Fatalf("targets changed on no-op removal: %+v", got)
	}
}

func TestClearTargetsEmptiesSet(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 0, 0)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)
	frame.AddTarget(grid.Position{X: 1, Y: 1})
	frame.AddTarget(grid.Position{X: 2, Y: 2})

	if err := mutClearTargets(rt, frame, ClearTargets()); err != nil {
		t.Fatalf("mutClearTargets: %v", err)
	}
	if frame.TargetCount() != 0 {
		t.Fatalf("expected no targets, got %+v", frame.TargetTiles())
	}
}

func TestFlagMutatorsRaiseFlags(t *testing.T) {
	w := newStubWorld()
	w.place("caster", 0, 0)
	rt := &Runtime{World: w}
	frame := NewFrame("caster", nil)

	if err := mutPierce(rt, frame, Pierce()); err != nil {
		t.Fatalf("mutPierce: %v", err)
	}
	if err := mutTrace(rt, frame, Trace()); err != nil {
		t.Fatalf("mutTrace: %v", err)
	}
	if !frame.HasFlag(FlagPiercing) || !frame.HasFlag(FlagMovementTrace) {
		t.Fatalf("expected piercing and trace flags raised")
	}
	if frame.HasFlag(FlagTerminate) || frame.HasFlag(FlagSkipAdvance) {
		t.Fatalf("unrelated flags must stay clear")
	}
}
