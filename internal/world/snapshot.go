package world

import "rune-and-ruin/server/grid"

// StatusSnapshot is the wire form of one status instance.
type StatusSnapshot struct {
	Status  Status `json:"status"`
	Potency int    `json:"potency,omitempty"`
	Stacks  int    `json:"stacks"`
}

// EntitySnapshot is the wire form of one entity, ordered and stable for
// broadcast.
type EntitySnapshot struct {
	ID        string           `json:"id"`
	Species   Species          `json:"species"`
	Position  grid.Position    `json:"position"`
	Facing    grid.Direction   `json:"facing"`
	Health    int              `json:"health"`
	MaxHealth int              `json:"maxHealth"`
	Statuses  []StatusSnapshot `json:"statuses,omitempty"`
}

// Snapshot copies every entity in spawn order. Status lists follow the
// engine's registration order so identical worlds serialize identically.
func (w *World) Snapshot() []EntitySnapshot {
	if w == nil {
		return nil
	}
	snapshot := make([]EntitySnapshot, 0, len(w.order))
	for _, id := range w.order {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		entry := EntitySnapshot{
			ID:        e.ID,
			Species:   e.Species,
			Position:  e.Position,
			Facing:    e.Facing,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
		}
		for _, kind := range w.statusKinds {
			if inst, active := e.Statuses[kind]; active {
				entry.Statuses = append(entry.Statuses, StatusSnapshot{
					Status:  inst.Kind,
					Potency: inst.Potency,
					Stacks:  inst.Stacks,
				})
			}
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot
}
