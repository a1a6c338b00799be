package spellbook

import "rune-and-ruin/server/spell"

// Default returns the compiled-in book. Hosts serve it as-is or overlay a
// Lua-authored book on top with Merge.
func Default() Registry {
	return Registry{
		{
			ID:          "spark",
			Name:        "Spark",
			Description: "A bolt loosed along the caster's momentum.",
			Instructions: []spell.Axiom{
				spell.BeamLastMove(),
				spell.HarmOrHeal(-1),
			},
		},
		{
			ID:          "lance",
			Name:        "Lance",
			Description: "A piercing beam that only wards can stop.",
			Instructions: []spell.Axiom{
				spell.Pierce(),
				spell.BeamLastMove(),
				spell.HarmOrHeal(-2),
			},
		},
		{
			ID:          "gale-step",
			Name:        "Gale Step",
			Description: "Hurl yourself forward, scorching the path behind.",
			Instructions: []spell.Axiom{
				spell.Self(),
				spell.Trace(),
				spell.Dash(4),
			},
		},
		{
			ID:          "crown-of-thorns",
			Name:        "Crown of Thorns",
			Description: "Everything at arm's length starts bleeding.",
			Instructions: []spell.Axiom{
				spell.Ring(1),
				spell.ApplyStatus("bleeding", 1, 3),
			},
		},
		{
			ID:          "star-lattice",
			Name:        "Star Lattice",
			Description: "Four piercing diagonals, then the web tightens.",
			Instructions: []spell.Axiom{
				spell.Pierce(),
				spell.BeamDiagonals(),
				spell.Spread(),
				spell.HarmOrHeal(-1),
			},
		},
		{
			ID:          "shade-ring",
			Name:        "Shade Ring",
			Description: "Call shades to every open tile of the near ring.",
			Instructions: []spell.Axiom{
				spell.Ring(2),
				spell.Summon("shade"),
			},
		},
		{
			ID:          "glyph-of-ruin",
			Name:        "Glyph of Ruin",
			Description: "A dormant glyph that detonates under the next foot.",
			Instructions: []spell.Axiom{
				spell.FrontTile(),
				spell.PlaceTrap(
					spell.Self(),
					spell.Spread(),
					spell.HarmOrHeal(-3),
				),
			},
		},
		{
			ID:          "mending-pulse",
			Name:        "Mending Pulse",
			Description: "A soft pulse that knits the caster's neighbors.",
			Instructions: []spell.Axiom{
				spell.Self(),
				spell.Spread(),
				spell.UntargetCaster(),
				spell.HarmOrHeal(2),
			},
		},
		{
			ID:          "sunder",
			Name:        "Sunder",
			Description: "Eat the wall in front of you and grow stronger.",
			Instructions: []spell.Axiom{
				spell.FrontTile(),
				spell.ConsumeWalls(),
			},
		},
		{
			ID:          "banishment",
			Name:        "Banishment",
			Description: "Unmake everything the creature ahead has called forth.",
			Instructions: []spell.Axiom{
				spell.FrontTile(),
				spell.BanishSpawns(),
			},
		},
		{
			ID:          "world-scourge",
			Name:        "World Scourge",
			Description: "Cardinal beams that rake the whole board.",
			Instructions: []spell.Axiom{
				spell.BeamCardinals(),
				spell.HarmOrHeal(-1),
				spell.ClearTargets(),
				spell.Player(),
				spell.ApplyStatus("marked", 1, 1),
			},
		},
		{
			ID:          "ward-walk",
			Name:        "Ward Walk",
			Description: "Slip through the crowd to the far wall.",
			Instructions: []spell.Axiom{
				spell.AdjacentCross(),
				spell.Dash(3),
			},
		},
	}
}
