package spell

import (
	"fmt"

	"rune-and-ruin/server/grid"
)

// Functions walk the target set in insertion order so the effect batch
// stays deterministic under replay.

func execHarmOrHeal(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	if ax.Pulse == nil {
		return false, fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	produced := false
	for _, tile := range frame.TargetTiles() {
		occupant, ok := rt.World.OccupantAt(tile)
		if !ok || rt.World.SpellImmune(occupant) {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectHarmOrHeal, Harm: &HarmEffect{
			Entity:  occupant,
			Amount:  ax.Pulse.Amount,
			Culprit: frame.Caster(),
		}})
		produced = true
	}
	return produced, nil
}

func execDash(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	if ax.Dash == nil {
		return false, fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	facing, ok := rt.World.FacingOf(frame.Caster())
	if !ok || facing.Zero() {
		return false, nil
	}
	produced := false
	for _, tile := range frame.TargetTiles() {
		occupant, ok := rt.World.OccupantAt(tile)
		if !ok {
			continue
		}
		dest := dashDestination(rt, occupant, tile, facing, ax.Dash.MaxDistance)
		if dest == tile {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectMove, Move: &MoveEffect{
			Entity: occupant,
			From:   tile,
			To:     dest,
		}})
		produced = true
	}
	return produced, nil
}

// dashDestination walks up to maxDistance steps in the push direction and
// stops one short of the first blocking tile. Intangible movers ignore
// occupants and stop only where no occupant explains the blockage.
func dashDestination(rt *Runtime, mover string, from grid.Position, dir grid.Direction, maxDistance int) grid.Position {
	intangible := rt.World.Intangible(mover)
	cur := from
	for i := 0; i < maxDistance; i++ {
		next := cur.Shift(dir)
		if !rt.World.IsPassable(next) {
			if !intangible {
				break
			}
			if _, occupied := rt.World.OccupantAt(next); !occupied {
				break
			}
		}
		cur = next
	}
	return cur
}

func execSummon(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	if ax.Summon == nil {
		return false, fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	origin, err := casterPosition(rt, frame)
	if err != nil {
		return false, err
	}
	produced := false
	for _, tile := range frame.TargetTiles() {
		if !rt.World.IsPassable(tile) {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectSpawn, Spawn: &SpawnEffect{
			Species:  ax.Summon.Species,
			At:       tile,
			Origin:   origin,
			Summoner: frame.Caster(),
		}})
		produced = true
	}
	return produced, nil
}

func execApplyStatus(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	if ax.Status == nil {
		return false, fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	produced := false
	for _, tile := range frame.TargetTiles() {
		occupant, ok := rt.World.OccupantAt(tile)
		if !ok {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectApplyStatus, Status: &StatusApplyEffect{
			Entity:  occupant,
			Kind:    ax.Status.Kind,
			Potency: ax.Status.Potency,
			Stacks:  ax.Status.Stacks,
			Source:  frame.Caster(),
		}})
		produced = true
	}
	return produced, nil
}

func execConsumeWalls(rt *Runtime, frame *Frame, _ Axiom) (bool, error) {
	produced := false
	for _, tile := range frame.TargetTiles() {
		occupant, ok := rt.World.OccupantAt(tile)
		if !ok || !rt.World.Structural(occupant) {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectDespawn, Remove: &DespawnEffect{Entity: occupant}})
		frame.PushEffect(Effect{Kind: EffectHarmOrHeal, Harm: &HarmEffect{
			Entity:  frame.Caster(),
			Amount:  1,
			Culprit: frame.Caster(),
		}})
		produced = true
	}
	return produced, nil
}

func execBanishSpawns(rt *Runtime, frame *Frame, _ Axiom) (bool, error) {
	produced := false
	for _, tile := range frame.TargetTiles() {
		occupant, ok := rt.World.OccupantAt(tile)
		if !ok {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectBanishSpawns, Banish: &BanishSpawnsEffect{Progenitor: occupant}})
		produced = true
	}
	return produced, nil
}

func execPlaceTrap(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	if ax.Trap == nil || len(ax.Trap.Instructions) == 0 {
		return false, fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	produced := false
	for _, tile := range frame.TargetTiles() {
		if !rt.World.IsPassable(tile) {
			continue
		}
		frame.PushEffect(Effect{Kind: EffectPlaceTrap, Trap: &PlaceTrapEffect{
			Tile:         tile,
			Instructions: CloneSequence(ax.Trap.Instructions),
		}})
		produced = true
	}
	// Arming a trap ends the spell; anything after this instruction in
	// the same spell never runs.
	frame.SetFlag(FlagTerminate)
	return produced, nil
}
