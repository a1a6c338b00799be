package spell

import (
	"errors"
	"testing"
)

func TestAxiomValidate(t *testing.T) {
	cases := []struct {
		name string
		ax   Axiom
		want error
	}{
		{"self", Self(), nil},
		{"ring", Ring(3), nil},
		{"trap", PlaceTrap(Self(), HarmOrHeal(-1)), nil},
		{"unknown op", Axiom{Op: "scriven"}, errUnknownOp},
		{"ring without payload", Axiom{Op: OpRing}, errMissingPayload},
		{"negative ring radius", Ring(-1), errBadPayload},
		{"zero dash distance", Dash(0), errBadPayload},
		{"summon without species", Axiom{Op: OpSummon, Summon: &SummonPayload{}}, errMissingPayload},
		{"status without stacks", ApplyStatus("chill", 1, 0), errBadPayload},
		{"empty trap payload", PlaceTrap(), errMissingPayload},
		{"trap with bad inner axiom", PlaceTrap(Dash(0)), errBadPayload},
	}
	for _, tc := range cases {
		err := tc.ax.Validate()
		if tc.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestKindClassification(t *testing.T) {
	if KindOf(OpRing) != KindForm || KindOf(OpDash) != KindFunction || KindOf(OpSpread) != KindMutator {
		t.Fatalf("misclassified built-in ops")
	}
	if KindOf("scriven") != "" {
		t.Fatalf("unknown op should classify as empty kind")
	}
}

func TestCloneSequenceDetachesPayloads(t *testing.T) {
	original := []Axiom{Ring(2), PlaceTrap(HarmOrHeal(-3))}
	cloned := CloneSequence(original)

	original[0].Ring.Radius = 9
	original[1].Trap.Instructions[0].Pulse.Amount = 9

	if cloned[0].Ring.Radius != 2 {
		t.Fatalf("ring payload shared after clone")
	}
	if cloned[1].Trap.Instructions[0].Pulse.Amount != -3 {
		t.Fatalf("trap payload shared after clone")
	}
}
