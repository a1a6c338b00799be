package spell

import "rune-and-ruin/server/grid"

// Dispatcher drains a popped frame: it translates the accumulated effects
// in append order, hands the executable batch to the host's executor, and
// peels trap placements off to the trap keeper. Append order is causal
// order; nothing here reorders it.
type Dispatcher struct {
	executor Executor
	traps    TrapPlacer
}

func NewDispatcher(executor Executor, traps TrapPlacer) *Dispatcher {
	return &Dispatcher{executor: executor, traps: traps}
}

// Flush translates and applies one frame's effects. It returns the
// executed batch and the trap records armed, for observers and the
// journal.
//
// A Move effect under the frame's MovementTrace flag first feeds every
// intermediate tile between its endpoints back into the originating
// frame's target set, then the move itself goes into the batch
// unconditionally. Trap placements never reach the executor: they become
// TrapRecords, armed only after the batch has been applied so a move in
// the same batch cannot land on a trap that causally followed it.
func (d *Dispatcher) Flush(frame *Frame) ([]Effect, []TrapRecord) {
	if frame == nil {
		return nil, nil
	}
	effects := frame.Effects()
	batch := make([]Effect, 0, len(effects))
	var armed []TrapRecord
	for _, e := range effects {
		switch e.Kind {
		case EffectMove:
			if e.Move != nil && frame.HasFlag(FlagMovementTrace) {
				for _, tile := range between(e.Move.From, e.Move.To) {
					frame.AddTarget(tile)
				}
			}
			batch = append(batch, e)
		case EffectPlaceTrap:
			if e.Trap != nil {
				armed = append(armed, TrapRecord{
					Tile:         e.Trap.Tile,
					Instructions: e.Trap.Instructions,
				})
			}
		default:
			batch = append(batch, e)
		}
	}
	if d.executor != nil && len(batch) > 0 {
		d.executor.ExecuteBatch(batch)
	}
	if d.traps != nil {
		for _, record := range armed {
			d.traps.PlaceTrap(record)
		}
	}
	return batch, armed
}

// between returns the walked tiles strictly between two positions.
func between(from, to grid.Position) []grid.Position {
	walked := grid.WalkGridLine(from, to)
	if len(walked) <= 2 {
		return nil
	}
	return walked[1 : len(walked)-1]
}
