package world

import (
	"math/rand"

	"rune-and-ruin/server/grid"
)

// Placement attempts are bounded so a crowded board degrades to fewer
// spawns instead of spinning.
const placementAttempts = 32

// seedTerrain rings the board with walls and scatters the configured
// pillar count across the interior.
func (w *World) seedTerrain() {
	width, height := w.config.Width, w.config.Height
	for x := 0; x < width; x++ {
		w.spawnEntity(SpeciesWall, grid.Position{X: x, Y: 0}, "")
		w.spawnEntity(SpeciesWall, grid.Position{X: x, Y: height - 1}, "")
	}
	for y := 1; y < height-1; y++ {
		w.spawnEntity(SpeciesWall, grid.Position{X: 0, Y: y}, "")
		w.spawnEntity(SpeciesWall, grid.Position{X: width - 1, Y: y}, "")
	}

	if !w.config.Pillars || w.config.PillarCount <= 0 {
		return
	}
	rng := w.SubsystemRNG("terrain")
	for i := 0; i < w.config.PillarCount; i++ {
		tile, ok := w.randomPassable(rng)
		if !ok {
			break
		}
		w.spawnEntity(SpeciesWall, tile, "")
	}
}

// seedCreatures scatters the configured creatures on random passable
// interior tiles.
func (w *World) seedCreatures() {
	rng := w.SubsystemRNG("creatures")
	if w.config.Sentinels {
		w.scatter(rng, SpeciesSentinel, w.config.SentinelCount)
	}
	if w.config.Imps {
		w.scatter(rng, SpeciesImp, w.config.ImpCount)
	}
	if w.config.Acolytes {
		w.scatter(rng, SpeciesAcolyte, w.config.AcolyteCount)
	}
}

func (w *World) scatter(rng *rand.Rand, species Species, count int) {
	for i := 0; i < count; i++ {
		tile, ok := w.randomPassable(rng)
		if !ok {
			return
		}
		w.spawnEntity(species, tile, "")
	}
}

// randomPassable draws interior tiles until one is free or the attempt
// budget runs out.
func (w *World) randomPassable(rng *rand.Rand) (grid.Position, bool) {
	interiorW := w.config.Width - 2
	interiorH := w.config.Height - 2
	if interiorW <= 0 || interiorH <= 0 {
		return grid.Position{}, false
	}
	for attempt := 0; attempt < placementAttempts; attempt++ {
		tile := grid.Position{
			X: 1 + rng.Intn(interiorW),
			Y: 1 + rng.Intn(interiorH),
		}
		if w.IsPassable(tile) {
			return tile, true
		}
	}
	return grid.Position{}, false
}
