package world

import (
	"context"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/logging/lifecycle"
	"rune-and-ruin/server/spell"
)

const (
	MetricTrapsArmed  = "world.traps_armed"
	MetricTrapsSprung = "world.traps_sprung"
)

// PlaceTrap arms a tile with a dormant spell. The tile was unoccupied when
// the caster targeted it; if the board shifted since, the glyph settles
// underneath whoever stands there and waits for the next arrival. A later
// placement on the same tile replaces the earlier one.
func (w *World) PlaceTrap(record spell.TrapRecord) {
	if len(record.Instructions) == 0 || !w.inBounds(record.Tile) {
		return
	}
	w.traps[record.Tile] = spell.TrapRecord{
		Tile:         record.Tile,
		Instructions: spell.CloneSequence(record.Instructions),
	}
	w.metrics.Add(MetricTrapsArmed, 1)
	lifecycle.TrapArmed(context.Background(), w.publisher, w.tick, logging.EntityRef{Kind: logging.EntityKindWorld}, lifecycle.TrapPayload{
		X:            record.Tile.X,
		Y:            record.Tile.Y,
		Instructions: len(record.Instructions),
	})
}

// TrapAt returns a copy of the armed trap on a tile.
func (w *World) TrapAt(p grid.Position) (spell.TrapRecord, bool) {
	record, ok := w.traps[p]
	if !ok {
		return spell.TrapRecord{}, false
	}
	return spell.TrapRecord{
		Tile:         record.Tile,
		Instructions: spell.CloneSequence(record.Instructions),
	}, true
}
