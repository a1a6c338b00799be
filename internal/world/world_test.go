package world

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/spell"
)

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	return w
}

// capturePublisher returns a world wired to record every published event.
func captureWorld(t *testing.T, cfg Config) (*World, *[]logging.Event) {
	t.Helper()
	var events []logging.Event
	w, err := New(cfg, Deps{
		Publisher: logging.PublisherFunc(func(_ context.Context, event logging.Event) {
			events = append(events, event)
		}),
	})
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	return w, &events
}

func eventsOfType(events []logging.Event, kind logging.EventType) []logging.Event {
	var matched []logging.Event
	for _, event := range events {
		if event.Type == kind {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestNewRingsBoardWithWalls(t *testing.T) {
	w := newTestWorld(t, Config{Width: 5, Height: 4})

	walls := 0
	for _, id := range w.order {
		if w.entities[id].Species == SpeciesWall {
			walls++
		}
	}
	if want := 2*5 + 2*(4-2); walls != want {
		t.Fatalf("expected %d border walls, got %d", want, walls)
	}

	for x := 0; x < 5; x++ {
		for y := 0; y < 4; y++ {
			tile := grid.Position{X: x, Y: y}
			onBorder := x == 0 || x == 4 || y == 0 || y == 3
			if onBorder && w.IsPassable(tile) {
				t.Fatalf("border tile %v should be walled", tile)
			}
			if !onBorder && !w.IsPassable(tile) {
				t.Fatalf("interior tile %v should be passable", tile)
			}
		}
	}
}

func TestIsPassableOutOfBounds(t *testing.T) {
	w := newTestWorld(t, Config{Width: 6, Height: 6})

	for _, tile := range []grid.Position{
		{X: -1, Y: 2},
		{X: 6, Y: 2},
		{X: 2, Y: -1},
		{X: 2, Y: 6},
	} {
		if w.IsPassable(tile) {
			t.Fatalf("out-of-bounds tile %v reported passable", tile)
		}
	}
}

func TestSpawnPlayerLandsNearCenter(t *testing.T) {
	w := newTestWorld(t, Config{Width: 9, Height: 9})

	id, err := w.SpawnPlayer()
	if err != nil {
		t.Fatalf("SpawnPlayer returned %v", err)
	}

	pos, ok := w.PositionOf(id)
	if !ok || (pos != grid.Position{X: 4, Y: 4}) {
		t.Fatalf("player should stand on the center, got %v ok=%v", pos, ok)
	}
	if current, ok := w.CurrentPlayer(); !ok || current != id {
		t.Fatalf("CurrentPlayer should report %q, got %q ok=%v", id, current, ok)
	}

	if _, err := w.SpawnPlayer(); !errors.Is(err, ErrPlayerPresent) {
		t.Fatalf("second spawn should fail with ErrPlayerPresent, got %v", err)
	}
}

func TestSpawnPlayerSweepsOutwardWhenCenterBlocked(t *testing.T) {
	w := newTestWorld(t, Config{Width: 9, Height: 9})
	center := grid.Position{X: 4, Y: 4}
	w.spawnEntity(SpeciesWall, center, "")

	id, err := w.SpawnPlayer()
	if err != nil {
		t.Fatalf("SpawnPlayer returned %v", err)
	}
	pos, _ := w.PositionOf(id)
	if (pos != grid.Position{X: 3, Y: 3}) {
		t.Fatalf("expected the first ring tile (3,3), got %v", pos)
	}
}

func TestCurrentPlayerClearsOnDeath(t *testing.T) {
	w := newTestWorld(t, Config{Width: 9, Height: 9})
	id, err := w.SpawnPlayer()
	if err != nil {
		t.Fatalf("SpawnPlayer returned %v", err)
	}

	player := w.entities[id]
	w.shiftHealth(player, -player.MaxHealth, "imp-13", "")

	if _, ok := w.CurrentPlayer(); ok {
		t.Fatalf("CurrentPlayer should be empty after the player dies")
	}
	if w.Exists(id) {
		t.Fatalf("dead player %q still exists", id)
	}
}

func TestWalkStepsAndTurns(t *testing.T) {
	w := newTestWorld(t, Config{Width: 9, Height: 9})
	mover := w.spawnEntity(SpeciesImp, grid.Position{X: 4, Y: 4}, "")

	if !w.Walk(mover.ID, grid.North) {
		t.Fatalf("step into open tile should succeed")
	}
	if (mover.Position != grid.Position{X: 4, Y: 5}) || mover.Facing != grid.North {
		t.Fatalf("unexpected state after step: pos=%v facing=%v", mover.Position, mover.Facing)
	}

	w.spawnEntity(SpeciesWall, grid.Position{X: 4, Y: 6}, "")
	if w.Walk(mover.ID, grid.North) {
		t.Fatalf("step into a wall should fail")
	}
	if (mover.Position != grid.Position{X: 4, Y: 5}) {
		t.Fatalf("blocked walk moved the entity to %v", mover.Position)
	}

	// The turn lands even when the step is blocked.
	if !w.Walk(mover.ID, grid.East) && mover.Facing != grid.East {
		t.Fatalf("expected facing east after walking east")
	}
	if w.Walk(mover.ID, grid.Direction{}) {
		t.Fatalf("zero direction should not move")
	}
}

func TestWorldViewMarkers(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	wall := w.spawnEntity(SpeciesWall, grid.Position{X: 3, Y: 3}, "")
	sentinel := w.spawnEntity(SpeciesSentinel, grid.Position{X: 4, Y: 3}, "")
	shade := w.spawnEntity(SpeciesShade, grid.Position{X: 5, Y: 3}, "")

	if !w.Structural(wall.ID) || !w.SpellImmune(wall.ID) {
		t.Fatalf("wall markers wrong: structural=%v immune=%v", w.Structural(wall.ID), w.SpellImmune(wall.ID))
	}
	if !w.SpellImmune(sentinel.ID) || w.Structural(sentinel.ID) {
		t.Fatalf("sentinel should be warded but not structural")
	}
	if !w.Intangible(shade.ID) {
		t.Fatalf("shade should be intangible")
	}
	if w.SpellImmune("nobody") || w.Structural("nobody") || w.Intangible("nobody") {
		t.Fatalf("markers for a missing entity should be false")
	}
	if _, ok := w.FacingOf("nobody"); ok {
		t.Fatalf("FacingOf should miss for unknown entities")
	}

	// Intangible entities never claim their tile.
	if !w.IsPassable(shade.Position) {
		t.Fatalf("the shade's tile should stay passable")
	}
	if occupant, ok := w.OccupantAt(sentinel.Position); !ok || occupant != sentinel.ID {
		t.Fatalf("sentinel should hold its tile, got %q ok=%v", occupant, ok)
	}
}

func TestRemoveFreesTileAndQueuesRemoval(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")

	if !w.Remove(imp.ID) {
		t.Fatalf("Remove should report success for a live entity")
	}
	if w.Exists(imp.ID) {
		t.Fatalf("removed entity still exists")
	}
	if !w.IsPassable(grid.Position{X: 2, Y: 2}) {
		t.Fatalf("removed entity's tile should be passable again")
	}
	removals := w.DrainRemovals()
	if len(removals) != 1 || removals[0] != imp.ID {
		t.Fatalf("expected the removal queued, got %v", removals)
	}
	if w.DrainRemovals() != nil {
		t.Fatalf("second drain should be empty")
	}
	if w.Remove(imp.ID) {
		t.Fatalf("Remove should fail for a missing entity")
	}
}

func TestDeterministicSeeding(t *testing.T) {
	cfg := Config{
		Width: 16, Height: 16, Seed: "alpha",
		Pillars: true, PillarCount: 6,
		Sentinels: true, SentinelCount: 2,
		Imps: true, ImpCount: 3,
		Acolytes: true, AcolyteCount: 2,
	}

	first := newTestWorld(t, cfg)
	second := newTestWorld(t, cfg)
	if !reflect.DeepEqual(first.Snapshot(), second.Snapshot()) {
		t.Fatalf("identical seeds should build identical boards")
	}

	cfg.Seed = "beta"
	third := newTestWorld(t, cfg)
	if reflect.DeepEqual(first.Snapshot(), third.Snapshot()) {
		t.Fatalf("different seeds should scatter differently")
	}
}

func TestSnapshotFollowsSpawnAndRegistrationOrder(t *testing.T) {
	w := newTestWorld(t, Config{Width: 6, Height: 6})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")
	w.spawnEntity(SpeciesAcolyte, grid.Position{X: 3, Y: 2}, "")

	// Apply in reverse registration order; the snapshot reads them back in
	// registration order.
	w.applyStatus(spell.StatusApplyEffect{Entity: imp.ID, Kind: string(StatusMarked), Potency: 1, Stacks: 2})
	w.applyStatus(spell.StatusApplyEffect{Entity: imp.ID, Kind: string(StatusBurning), Potency: 1, Stacks: 2})

	snapshot := w.Snapshot()
	if len(snapshot) != len(w.order) {
		t.Fatalf("snapshot length %d does not match population %d", len(snapshot), len(w.order))
	}
	for i, id := range w.order {
		if snapshot[i].ID != id {
			t.Fatalf("snapshot order diverges at %d: %q vs %q", i, snapshot[i].ID, id)
		}
	}

	var impEntry *EntitySnapshot
	for i := range snapshot {
		if snapshot[i].ID == imp.ID {
			impEntry = &snapshot[i]
			break
		}
	}
	if impEntry == nil {
		t.Fatalf("imp missing from snapshot")
	}
	if len(impEntry.Statuses) != 2 || impEntry.Statuses[0].Status != StatusBurning || impEntry.Statuses[1].Status != StatusMarked {
		t.Fatalf("statuses out of registration order: %+v", impEntry.Statuses)
	}
}
