package spell

import "rune-and-ruin/server/grid"

// EffectKind tags the abstract effects a Function appends to its frame.
type EffectKind string

const (
	EffectMove         EffectKind = "move"
	EffectSpawn        EffectKind = "spawn"
	EffectHarmOrHeal   EffectKind = "harm_or_heal"
	EffectApplyStatus  EffectKind = "apply_status"
	EffectDespawn      EffectKind = "despawn"
	EffectBanishSpawns EffectKind = "banish_spawns"
	EffectPlaceTrap    EffectKind = "place_trap"
)

// Effect is one world-mutation intent. Effects accumulate on a frame in
// execution order and are translated exactly once when the frame pops;
// until then nothing touches the world. The same shape doubles as the
// concrete command the executor receives, with trap placements peeled off
// into TrapRecords along the way.
type Effect struct {
	Kind   EffectKind          `json:"kind"`
	Move   *MoveEffect         `json:"move,omitempty"`
	Spawn  *SpawnEffect        `json:"spawn,omitempty"`
	Harm   *HarmEffect         `json:"harm,omitempty"`
	Status *StatusApplyEffect  `json:"status,omitempty"`
	Remove *DespawnEffect      `json:"remove,omitempty"`
	Banish *BanishSpawnsEffect `json:"banish,omitempty"`
	Trap   *PlaceTrapEffect    `json:"trap,omitempty"`
}

// MoveEffect relocates an entity. From is the tile it stood on when the
// effect was produced; the executor re-validates against the live world.
type MoveEffect struct {
	Entity string        `json:"entity"`
	From   grid.Position `json:"from"`
	To     grid.Position `json:"to"`
}

// SpawnEffect creates an entity of a species. Origin is the caster's tile
// at emission time, kept so presentation layers can slide the newcomer in
// from its summoner. Summoner is recorded on the spawned entity as its
// progenitor, which is what banish_spawns keys on.
type SpawnEffect struct {
	Species  string        `json:"species"`
	At       grid.Position `json:"at"`
	Origin   grid.Position `json:"origin"`
	Summoner string        `json:"summoner"`
}

// HarmEffect adjusts health by a signed amount: negative damages, positive
// heals. Culprit is credited with the outcome.
type HarmEffect struct {
	Entity  string `json:"entity"`
	Amount  int    `json:"amount"`
	Culprit string `json:"culprit"`
}

// StatusApplyEffect asks the status engine to apply a status instance.
// Re-application stacking rules belong to that engine, not the caster.
type StatusApplyEffect struct {
	Entity  string `json:"entity"`
	Kind    string `json:"kind"`
	Potency int    `json:"potency"`
	Stacks  int    `json:"stacks"`
	Source  string `json:"source"`
}

// DespawnEffect removes one entity outright.
type DespawnEffect struct {
	Entity string `json:"entity"`
}

// BanishSpawnsEffect removes every entity whose spawn origin is the named
// progenitor.
type BanishSpawnsEffect struct {
	Progenitor string `json:"progenitor"`
}

// PlaceTrapEffect arms a tile with a dormant spell.
type PlaceTrapEffect struct {
	Tile         grid.Position `json:"tile"`
	Instructions []Axiom       `json:"instructions"`
}

// TrapRecord is the dormant spell handed to the trap keeper: when an
// occupant arrives on Tile, the keeper casts Instructions with that
// occupant as caster.
type TrapRecord struct {
	Tile         grid.Position `json:"tile"`
	Instructions []Axiom       `json:"instructions"`
}
