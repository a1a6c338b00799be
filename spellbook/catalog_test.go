package spellbook

import (
	"errors"
	"testing"

	"rune-and-ruin/server/spell"
)

func TestDefaultBookValidates(t *testing.T) {
	book := Default()
	if err := book.Validate(); err != nil {
		t.Fatalf("default book invalid: %v", err)
	}
	index := book.MustIndex()
	if _, ok := index["spark"]; !ok {
		t.Fatalf("default book is missing spark")
	}
}

func TestDefaultBookExercisesEveryOp(t *testing.T) {
	seen := make(map[spell.Op]bool)
	var walk func(axioms []spell.Axiom)
	walk = func(axioms []spell.Axiom) {
		for _, ax := range axioms {
			seen[ax.Op] = true
			if ax.Trap != nil {
				walk(ax.Trap.Instructions)
			}
		}
	}
	for _, def := range Default() {
		walk(def.Instructions)
	}
	for _, op := range []spell.Op{
		spell.OpSelf, spell.OpPlayer, spell.OpAdjacentCross, spell.OpRing,
		spell.OpBeamLastMove, spell.OpBeamDiagonals, spell.OpBeamCardinals, spell.OpFrontTile,
		spell.OpDash, spell.OpSummon, spell.OpHarmOrHeal, spell.OpApplyStatus,
		spell.OpConsumeWalls, spell.OpBanishSpawns, spell.OpPlaceTrap,
		spell.OpPierce, spell.OpTrace, spell.OpSpread, spell.OpUntargetCaster, spell.OpClearTargets,
	} {
		if !seen[op] {
			t.Fatalf("no default spell uses %q", op)
		}
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	book := Registry{
		{ID: "twin", Name: "Twin", Instructions: []spell.Axiom{spell.Self()}},
		{ID: "twin", Name: "Twin Again", Instructions: []spell.Axiom{spell.Self()}},
	}
	if err := book.Validate(); !errors.Is(err, errDuplicateID) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestValidateRejectsMalformedDefinitions(t *testing.T) {
	cases := []struct {
		name string
		book Registry
		want error
	}{
		{"blank id", Registry{{ID: "  ", Instructions: []spell.Axiom{spell.Self()}}}, errEmptyDefinitionID},
		{"no instructions", Registry{{ID: "hollow"}}, errNoInstructions},
	}
	for _, tc := range cases {
		if err := tc.book.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	bad := Registry{{ID: "lame-dash", Instructions: []spell.Axiom{spell.Dash(0)}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected instruction validation to fail")
	}
}

func TestMergeOverlaysById(t *testing.T) {
	base := Registry{
		{ID: "spark", Name: "Spark", Instructions: []spell.Axiom{spell.Self()}},
		{ID: "lance", Name: "Lance", Instructions: []spell.Axiom{spell.Self()}},
	}
	overlay := Registry{
		{ID: "lance", Name: "Greater Lance", Instructions: []spell.Axiom{spell.Self(), spell.Spread()}},
		{ID: "nova", Name: "Nova", Instructions: []spell.Axiom{spell.Ring(2)}},
	}
	merged := base.Merge(overlay)
	if len(merged) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(merged))
	}
	if merged[1].Name != "Greater Lance" || len(merged[1].Instructions) != 2 {
		t.Fatalf("overlay should replace in place, got %+v", merged[1])
	}
	if merged[2].ID != "nova" {
		t.Fatalf("new definitions should append, got %+v", merged[2])
	}
	if base[1].Name != "Lance" {
		t.Fatalf("merge must not mutate the receiver")
	}
}
