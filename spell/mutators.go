package spell

import "rune-and-ruin/server/grid"

// Mutators rewrite frame state. Flag mutators affect instructions that run
// after them, never ones that already ran.

func mutPierce(_ *Runtime, frame *Frame, _ Axiom) error {
	frame.SetFlag(FlagPiercing)
	return nil
}

func mutTrace(_ *Runtime, frame *Frame, _ Axiom) error {
	frame.SetFlag(FlagMovementTrace)
	return nil
}

// mutSpread adds the four orthogonal neighbors of every current target on
// top of the existing set. Originals are kept. Neighbors land in four
// direction-grouped passes so downstream consumers see a stable sweep:
// all the up-neighbors, then right, then down, then left.
func mutSpread(_ *Runtime, frame *Frame, _ Axiom) error {
	originals := frame.TargetTiles()
	for _, step := range grid.CrossSteps() {
		for _, tile := range originals {
			frame.AddTarget(tile.Shift(step))
		}
	}
	return nil
}

// mutUntargetCaster drops the caster's current tile from the set. Absent
// tiles are a no-op.
func mutUntargetCaster(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	frame.RemoveTarget(at)
	return nil
}

func mutClearTargets(_ *Runtime, frame *Frame, _ Axiom) error {
	frame.ClearTargets()
	return nil
}
