package world

import (
	"testing"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/logging/status_effects"
	"rune-and-ruin/server/spell"
)

func applyStatusCommand(w *World, target, kind string, potency, stacks int, source string) {
	w.ExecuteBatch([]spell.Effect{{
		Kind:   spell.EffectApplyStatus,
		Status: &spell.StatusApplyEffect{Entity: target, Kind: kind, Potency: potency, Stacks: stacks, Source: source},
	}})
}

func TestBurningTicksDownToDeath(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")

	applyStatusCommand(w, imp.ID, string(StatusBurning), 2, 3, "witch-1")

	w.Upkeep(1)
	if imp.Health != 2 {
		t.Fatalf("first burn tick should leave 2 health, got %d", imp.Health)
	}
	inst, ok := w.StatusOf(imp.ID, StatusBurning)
	if !ok || inst.Stacks != 2 {
		t.Fatalf("one stack should be spent, got %+v ok=%v", inst, ok)
	}

	w.Upkeep(2)
	if w.Exists(imp.ID) {
		t.Fatalf("second burn tick should kill the imp")
	}
}

func TestReapplyPotencyRules(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	acolyte := w.spawnEntity(SpeciesAcolyte, grid.Position{X: 2, Y: 2}, "")

	applyStatusCommand(w, acolyte.ID, string(StatusMarked), 1, 2, "witch-1")

	// Higher potency overwrites and resets the clock.
	applyStatusCommand(w, acolyte.ID, string(StatusMarked), 3, 4, "witch-2")
	inst, _ := w.StatusOf(acolyte.ID, StatusMarked)
	if inst.Potency != 3 || inst.Stacks != 4 {
		t.Fatalf("higher potency should overwrite, got %+v", inst)
	}

	// Equal or lower potency only piles on stacks.
	applyStatusCommand(w, acolyte.ID, string(StatusMarked), 2, 5, "witch-3")
	inst, _ = w.StatusOf(acolyte.ID, StatusMarked)
	if inst.Potency != 3 || inst.Stacks != 9 {
		t.Fatalf("lower potency should add stacks, got %+v", inst)
	}
}

func TestUnknownStatusWarnsAndSkips(t *testing.T) {
	w, events := captureWorld(t, Config{Width: 8, Height: 8})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")

	applyStatusCommand(w, imp.ID, "petrified", 1, 2, "witch-1")

	if _, ok := w.StatusOf(imp.ID, Status("petrified")); ok {
		t.Fatalf("unknown status should not be applied")
	}
	if warns := eventsOfType(*events, status_effects.EventUnknown); len(warns) != 1 {
		t.Fatalf("expected one unknown-status warning, got %d", len(warns))
	}
}

func TestChilledSkipsRegeneration(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	chilledOne := w.spawnEntity(SpeciesAcolyte, grid.Position{X: 2, Y: 2}, "")
	warmOne := w.spawnEntity(SpeciesAcolyte, grid.Position{X: 3, Y: 2}, "")
	chilledOne.Health = 3
	warmOne.Health = 3

	applyStatusCommand(w, chilledOne.ID, string(StatusChilled), 1, 12, "witch-1")
	for tick := uint64(1); tick <= 10; tick++ {
		w.Upkeep(tick)
	}

	if warmOne.Health != 4 {
		t.Fatalf("regeneration should pulse on the interval, got %d", warmOne.Health)
	}
	if chilledOne.Health != 3 {
		t.Fatalf("chilled entities should not regenerate, got %d", chilledOne.Health)
	}
}

func TestRegenerationWaitsForInterval(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	acolyte := w.spawnEntity(SpeciesAcolyte, grid.Position{X: 2, Y: 2}, "")
	acolyte.Health = 3

	for tick := uint64(1); tick <= 9; tick++ {
		w.Upkeep(tick)
	}
	if acolyte.Health != 3 {
		t.Fatalf("no pulse before the interval, got %d", acolyte.Health)
	}
	w.Upkeep(10)
	if acolyte.Health != 4 {
		t.Fatalf("pulse should land on the interval tick, got %d", acolyte.Health)
	}
}

func TestBlessedHealsUntilExpiry(t *testing.T) {
	w, events := captureWorld(t, Config{Width: 8, Height: 8})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")
	imp.Health = 1

	applyStatusCommand(w, imp.ID, string(StatusBlessed), 1, 2, "witch-1")

	w.Upkeep(1)
	w.Upkeep(2)
	if imp.Health != 3 {
		t.Fatalf("two blessed ticks should heal to 3, got %d", imp.Health)
	}
	if _, ok := w.StatusOf(imp.ID, StatusBlessed); ok {
		t.Fatalf("blessing should expire after its stacks run out")
	}
	if expiries := eventsOfType(*events, status_effects.EventExpired); len(expiries) != 1 {
		t.Fatalf("expected one expiry event, got %d", len(expiries))
	}

	w.Upkeep(3)
	if imp.Health != 3 {
		t.Fatalf("expired blessing should stop healing, got %d", imp.Health)
	}
}

func TestBleedingTrickleIgnoresPotency(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	acolyte := w.spawnEntity(SpeciesAcolyte, grid.Position{X: 2, Y: 2}, "")

	applyStatusCommand(w, acolyte.ID, string(StatusBleeding), 4, 2, "witch-1")

	w.Upkeep(1)
	if acolyte.Health != 5 {
		t.Fatalf("bleeding drains one point per tick regardless of potency, got %d", acolyte.Health)
	}
}

func TestStacksDefaultToDefinitionDuration(t *testing.T) {
	w := newTestWorld(t, Config{Width: 8, Height: 8})
	imp := w.spawnEntity(SpeciesImp, grid.Position{X: 2, Y: 2}, "")

	// Commands validated by the interpreter always carry stacks; worlds
	// applying conditions themselves can lean on the definition default.
	w.applyStatus(spell.StatusApplyEffect{Entity: imp.ID, Kind: string(StatusChilled), Potency: 1})

	inst, ok := w.StatusOf(imp.ID, StatusChilled)
	if !ok || inst.Stacks != 4 {
		t.Fatalf("stacks should default to the chilled base duration, got %+v ok=%v", inst, ok)
	}
}
