package world

// Species names a kind of entity the world knows how to spawn. Summon
// commands carry species as plain strings; unknown ones are dropped with
// a warning rather than conjuring something undefined.
type Species string

const (
	SpeciesPlayer   Species = "player"
	SpeciesWall     Species = "wall"
	SpeciesSentinel Species = "sentinel"
	SpeciesShade    Species = "shade"
	SpeciesImp      Species = "imp"
	SpeciesAcolyte  Species = "acolyte"
)

// Blueprint is the per-species template entities are stamped from.
// Markers are copied onto the entity at spawn time so individual entities
// can diverge later without touching the catalog.
type Blueprint struct {
	MaxHealth   int
	Regen       int
	SpellImmune bool
	Structural  bool
	Intangible  bool
}

var blueprints = map[Species]Blueprint{
	SpeciesPlayer:   {MaxHealth: 20, Regen: 1},
	SpeciesWall:     {MaxHealth: 1, SpellImmune: true, Structural: true},
	SpeciesSentinel: {MaxHealth: 8, SpellImmune: true},
	SpeciesShade:    {MaxHealth: 3, Intangible: true},
	SpeciesImp:      {MaxHealth: 4},
	SpeciesAcolyte:  {MaxHealth: 6, Regen: 1},
}

// BlueprintFor looks up the template for a species.
func BlueprintFor(species Species) (Blueprint, bool) {
	bp, ok := blueprints[species]
	return bp, ok
}
