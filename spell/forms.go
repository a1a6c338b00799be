package spell

import (
	"errors"
	"fmt"

	"rune-and-ruin/server/grid"
)

var errNoSuchEntity = errors.New("no such entity")

// Forms only ever grow the target set; removal is mutator territory.

func evalSelf(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	frame.AddTarget(at)
	return nil
}

func evalPlayer(rt *Runtime, frame *Frame, _ Axiom) error {
	player, ok := rt.World.CurrentPlayer()
	if !ok {
		return nil
	}
	at, ok := rt.World.PositionOf(player)
	if !ok {
		return fmt.Errorf("%w: designated player %q", errNoSuchEntity, player)
	}
	frame.AddTarget(at)
	return nil
}

func evalAdjacentCross(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	for _, step := range grid.CrossSteps() {
		frame.AddTarget(at.Shift(step))
	}
	return nil
}

func evalRing(rt *Runtime, frame *Frame, ax Axiom) error {
	if ax.Ring == nil {
		return fmt.Errorf("%w: %s", errMissingPayload, ax.Op)
	}
	center, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	for _, p := range grid.RingOutline(center, ax.Ring.Radius) {
		frame.AddTarget(p)
	}
	return nil
}

func evalBeamLastMove(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	facing, ok := rt.World.FacingOf(frame.Caster())
	if !ok || facing.Zero() {
		return nil
	}
	fireBeam(rt, frame, at, facing)
	return nil
}

func evalBeamDiagonals(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	for _, dir := range grid.DiagonalBeams() {
		fireBeam(rt, frame, at, dir)
	}
	return nil
}

func evalBeamCardinals(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	for _, dir := range grid.CardinalBeams() {
		fireBeam(rt, frame, at, dir)
	}
	return nil
}

func evalFrontTile(rt *Runtime, frame *Frame, _ Axiom) error {
	at, err := casterPosition(rt, frame)
	if err != nil {
		return err
	}
	facing, ok := rt.World.FacingOf(frame.Caster())
	if !ok || facing.Zero() {
		return nil
	}
	frame.AddTarget(at.Shift(facing))
	return nil
}

func fireBeam(rt *Runtime, frame *Frame, origin grid.Position, dir grid.Direction) {
	pierce := frame.HasFlag(FlagPiercing)
	for _, p := range grid.TraceBeam(beamField{view: rt.World}, origin, dir, rt.beamLength(), pierce) {
		frame.AddTarget(p)
	}
}

func (rt *Runtime) beamLength() int {
	if rt.BeamLength > 0 {
		return rt.BeamLength
	}
	return DefaultBeamLength
}

func casterPosition(rt *Runtime, frame *Frame) (grid.Position, error) {
	at, ok := rt.World.PositionOf(frame.Caster())
	if !ok {
		return grid.Position{}, fmt.Errorf("%w: caster %q", errNoSuchEntity, frame.Caster())
	}
	return at, nil
}
