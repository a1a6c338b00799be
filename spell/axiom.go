// Package spell implements the spell interpreter: a small virtual machine
// that runs ordered lists of instructions (axioms) against a tile world.
// Form instructions grow a frame's target set, Function instructions turn
// targets into abstract effects, and Mutator instructions bend how the
// rest of the frame executes. Frames stack last-in-first-out so a spell
// cast mid-spell runs to completion before its parent resumes.
package spell

import (
	"errors"
	"fmt"
)

// Op identifies an instruction variant. Dispatch keys on the op alone;
// parameters ride along on the Axiom payload.
type Op string

const (
	// Forms.
	OpSelf          Op = "self"
	OpPlayer        Op = "player"
	OpAdjacentCross Op = "adjacent_cross"
	OpRing          Op = "ring"
	OpBeamLastMove  Op = "beam_last_move"
	OpBeamDiagonals Op = "beam_diagonals"
	OpBeamCardinals Op = "beam_cardinals"
	OpFrontTile     Op = "front_tile"

	// Functions.
	OpDash         Op = "dash"
	OpSummon       Op = "summon"
	OpHarmOrHeal   Op = "harm_or_heal"
	OpApplyStatus  Op = "apply_status"
	OpConsumeWalls Op = "consume_walls"
	OpBanishSpawns Op = "banish_spawns"
	OpPlaceTrap    Op = "place_trap"

	// Mutators.
	OpPierce         Op = "pierce"
	OpTrace          Op = "trace"
	OpSpread         Op = "spread"
	OpUntargetCaster Op = "untarget_caster"
	OpClearTargets   Op = "clear_targets"
)

// Kind partitions the instruction set by what an instruction is allowed to
// touch: Forms read the world and grow targets, Functions append effects,
// Mutators rewrite frame state only.
type Kind string

const (
	KindForm     Kind = "form"
	KindFunction Kind = "function"
	KindMutator  Kind = "mutator"
)

// KindOf reports the category of a known op, or "" for an unknown one.
func KindOf(op Op) Kind {
	switch op {
	case OpSelf, OpPlayer, OpAdjacentCross, OpRing, OpBeamLastMove, OpBeamDiagonals, OpBeamCardinals, OpFrontTile:
		return KindForm
	case OpDash, OpSummon, OpHarmOrHeal, OpApplyStatus, OpConsumeWalls, OpBanishSpawns, OpPlaceTrap:
		return KindFunction
	case OpPierce, OpTrace, OpSpread, OpUntargetCaster, OpClearTargets:
		return KindMutator
	}
	return ""
}

// Axiom is one immutable spell instruction: an op plus at most one payload
// matching that op. A spell is an ordered []Axiom owned by whoever casts
// it. Construct axioms through the helpers below; never mutate a payload
// after the axiom joins a spell.
type Axiom struct {
	Op     Op             `json:"op"`
	Ring   *RingPayload   `json:"ring,omitempty"`
	Dash   *DashPayload   `json:"dash,omitempty"`
	Summon *SummonPayload `json:"summon,omitempty"`
	Pulse  *PulsePayload  `json:"pulse,omitempty"`
	Status *StatusPayload `json:"status,omitempty"`
	Trap   *TrapPayload   `json:"trap,omitempty"`
}

// RingPayload parameterises the ring Form.
type RingPayload struct {
	Radius int `json:"radius"`
}

// DashPayload parameterises forced movement.
type DashPayload struct {
	MaxDistance int `json:"maxDistance"`
}

// SummonPayload names the species to spawn on targeted tiles.
type SummonPayload struct {
	Species string `json:"species"`
}

// PulsePayload carries the signed health delta: negative damages, positive
// heals.
type PulsePayload struct {
	Amount int `json:"amount"`
}

// StatusPayload parameterises status application.
type StatusPayload struct {
	Kind    string `json:"kind"`
	Potency int    `json:"potency"`
	Stacks  int    `json:"stacks"`
}

// TrapPayload carries the instruction list a sprung trap casts, with the
// triggering entity as caster.
type TrapPayload struct {
	Instructions []Axiom `json:"instructions"`
}

func Self() Axiom          { return Axiom{Op: OpSelf} }
func Player() Axiom        { return Axiom{Op: OpPlayer} }
func AdjacentCross() Axiom { return Axiom{Op: OpAdjacentCross} }
func Ring(radius int) Axiom {
	return Axiom{Op: OpRing, Ring: &RingPayload{Radius: radius}}
}
func BeamLastMove() Axiom  { return Axiom{Op: OpBeamLastMove} }
func BeamDiagonals() Axiom { return Axiom{Op: OpBeamDiagonals} }
func BeamCardinals() Axiom { return Axiom{Op: OpBeamCardinals} }
func FrontTile() Axiom     { return Axiom{Op: OpFrontTile} }

func Dash(maxDistance int) Axiom {
	return Axiom{Op: OpDash, Dash: &DashPayload{MaxDistance: maxDistance}}
}
func Summon(species string) Axiom {
	return Axiom{Op: OpSummon, Summon: &SummonPayload{Species: species}}
}
func HarmOrHeal(amount int) Axiom {
	return Axiom{Op: OpHarmOrHeal, Pulse: &PulsePayload{Amount: amount}}
}
func ApplyStatus(kind string, potency, stacks int) Axiom {
	return Axiom{Op: OpApplyStatus, Status: &StatusPayload{Kind: kind, Potency: potency, Stacks: stacks}}
}
func ConsumeWalls() Axiom { return Axiom{Op: OpConsumeWalls} }
func BanishSpawns() Axiom { return Axiom{Op: OpBanishSpawns} }
func PlaceTrap(instructions ...Axiom) Axiom {
	return Axiom{Op: OpPlaceTrap, Trap: &TrapPayload{Instructions: instructions}}
}

func Pierce() Axiom         { return Axiom{Op: OpPierce} }
func Trace() Axiom          { return Axiom{Op: OpTrace} }
func Spread() Axiom         { return Axiom{Op: OpSpread} }
func UntargetCaster() Axiom { return Axiom{Op: OpUntargetCaster} }
func ClearTargets() Axiom   { return Axiom{Op: OpClearTargets} }

// Clone deep-copies the axiom, detaching every payload pointer.
func (a Axiom) Clone() Axiom {
	cloned := a
	if a.Ring != nil {
		ring := *a.Ring
		cloned.Ring = &ring
	}
	if a.Dash != nil {
		dash := *a.Dash
		cloned.Dash = &dash
	}
	if a.Summon != nil {
		summon := *a.Summon
		cloned.Summon = &summon
	}
	if a.Pulse != nil {
		pulse := *a.Pulse
		cloned.Pulse = &pulse
	}
	if a.Status != nil {
		status := *a.Status
		cloned.Status = &status
	}
	if a.Trap != nil {
		cloned.Trap = &TrapPayload{Instructions: CloneSequence(a.Trap.Instructions)}
	}
	return cloned
}

// CloneSequence deep-copies a spell.
func CloneSequence(axioms []Axiom) []Axiom {
	if axioms == nil {
		return nil
	}
	cloned := make([]Axiom, len(axioms))
	for i, a := range axioms {
		cloned[i] = a.Clone()
	}
	return cloned
}

var (
	errUnknownOp      = errors.New("unknown op")
	errMissingPayload = errors.New("missing payload")
	errBadPayload     = errors.New("bad payload")
)

// Validate checks the axiom is well formed: a known op with the payload
// that op requires in a sane range. Trap payloads validate recursively.
func (a Axiom) Validate() error {
	if KindOf(a.Op) == "" {
		return fmt.Errorf("%w: %q", errUnknownOp, a.Op)
	}
	switch a.Op {
	case OpRing:
		if a.Ring == nil {
			return fmt.Errorf("%w: %s needs a ring payload", errMissingPayload, a.Op)
		}
		if a.Ring.Radius < 0 {
			return fmt.Errorf("%w: ring radius %d is negative", errBadPayload, a.Ring.Radius)
		}
	case OpDash:
		if a.Dash == nil {
			return fmt.Errorf("%w: %s needs a dash payload", errMissingPayload, a.Op)
		}
		if a.Dash.MaxDistance <= 0 {
			return fmt.Errorf("%w: dash distance %d is not positive", errBadPayload, a.Dash.MaxDistance)
		}
	case OpSummon:
		if a.Summon == nil || a.Summon.Species == "" {
			return fmt.Errorf("%w: %s needs a species", errMissingPayload, a.Op)
		}
	case OpHarmOrHeal:
		if a.Pulse == nil {
			return fmt.Errorf("%w: %s needs an amount", errMissingPayload, a.Op)
		}
	case OpApplyStatus:
		if a.Status == nil || a.Status.Kind == "" {
			return fmt.Errorf("%w: %s needs a status kind", errMissingPayload, a.Op)
		}
		if a.Status.Stacks <= 0 {
			return fmt.Errorf("%w: status stacks %d is not positive", errBadPayload, a.Status.Stacks)
		}
	case OpPlaceTrap:
		if a.Trap == nil || len(a.Trap.Instructions) == 0 {
			return fmt.Errorf("%w: %s needs trap instructions", errMissingPayload, a.Op)
		}
		for i, inner := range a.Trap.Instructions {
			if err := inner.Validate(); err != nil {
				return fmt.Errorf("trap instruction %d: %w", i, err)
			}
		}
	}
	return nil
}
