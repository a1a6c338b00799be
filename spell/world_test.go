package spell

import (
	"testing"

	"rune-and-ruin/server/grid"
)

// stubWorld is a flat unbounded board for handler tests: entities placed
// by hand, optional blocked terrain tiles, lookups in placement order so
// results stay deterministic.
type stubWorld struct {
	blocked  map[grid.Position]bool
	entities map[string]*stubEntity
	order    []string
	player   string
}

type stubEntity struct {
	at         grid.Position
	hasTile    bool
	facing     grid.Direction
	immune     bool
	structural bool
	intangible bool
}

func newStubWorld() *stubWorld {
	return &stubWorld{
		blocked:  make(map[grid.Position]bool),
		entities: make(map[string]*stubEntity),
	}
}

func (w *stubWorld) place(id string, x, y int) *stubEntity {
	e, ok := w.entities[id]
	if !ok {
		e = &stubEntity{}
		w.entities[id] = e
		w.order = append(w.order, id)
	}
	e.at = grid.Position{X: x, Y: y}
	e.hasTile = true
	return e
}

func (w *stubWorld) remove(id string) {
	delete(w.entities, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// displace keeps the entity alive but strips its tile, the shape a
// contract violation takes at runtime.
func (w *stubWorld) displace(id string) {
	if e, ok := w.entities[id]; ok {
		e.hasTile = false
	}
}

func (w *stubWorld) block(x, y int) {
	w.blocked[grid.Position{X: x, Y: y}] = true
}

func (w *stubWorld) OccupantAt(p grid.Position) (string, bool) {
	for _, id := range w.order {
		if e := w.entities[id]; e.hasTile && e.at == p {
			return id, true
		}
	}
	return "", false
}

func (w *stubWorld) IsPassable(p grid.Position) bool {
	if w.blocked[p] {
		return false
	}
	_, occupied := w.OccupantAt(p)
	return !occupied
}

func (w *stubWorld) PositionOf(id string) (grid.Position, bool) {
	e, ok := w.entities[id]
	if !ok || !e.hasTile {
		return grid.Position{}, false
	}
	return e.at, true
}

func (w *stubWorld) FacingOf(id string) (grid.Direction, bool) {
	e, ok := w.entities[id]
	if !ok || e.facing.Zero() {
		return grid.Direction{}, false
	}
	return e.facing, true
}

func (w *stubWorld) SpellImmune(id string) bool {
	e, ok := w.entities[id]
	return ok && e.immune
}

func (w *stubWorld) Structural(id string) bool {
	e, ok := w.entities[id]
	return ok && e.structural
}

func (w *stubWorld) Intangible(id string) bool {
	e, ok := w.entities[id]
	return ok && e.intangible
}

func (w *stubWorld) Exists(id string) bool {
	_, ok := w.entities[id]
	return ok
}

func (w *stubWorld) CurrentPlayer() (string, bool) {
	return w.player, w.player != ""
}

// execRecorder captures every batch the dispatcher hands over. The shared
// log lets tests assert ordering against the trap recorder.
type execRecorder struct {
	batches [][]Effect
	log     *[]string
}

func (r *execRecorder) ExecuteBatch(batch []Effect) {
	r.batches = append(r.batches, batch)
	if r.log != nil {
		*r.log = append(*r.log, "batch")
	}
}

func (r *execRecorder) all() []Effect {
	var flat []Effect
	for _, batch := range r.batches {
		flat = append(flat, batch...)
	}
	return flat
}

type trapRecorder struct {
	records []TrapRecord
	log     *[]string
}

func (r *trapRecorder) PlaceTrap(record TrapRecord) {
	r.records = append(r.records, record)
	if r.log != nil {
		*r.log = append(*r.log, "trap")
	}
}

func newTestInterpreter(t *testing.T, w *stubWorld) (*Interpreter, *execRecorder, *trapRecorder) {
	t.Helper()
	exec := &execRecorder{}
	traps := &trapRecorder{}
	it, err := New(Config{World: w, Executor: exec, Traps: traps})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return it, exec, traps
}

// castAndRun pushes one spell and steps the interpreter until the stack
// drains, returning every per-step note.
func castAndRun(t *testing.T, it *Interpreter, caster string, instructions ...Axiom) []Note {
	t.Helper()
	if err := it.Cast(CastRequest{Caster: caster, Instructions: instructions}); err != nil {
		t.Fatalf("Cast: %v", err)
	}
	return runUntilIdle(t, it)
}

func runUntilIdle(t *testing.T, it *Interpreter) []Note {
	t.Helper()
	var notes []Note
	for tick := uint64(1); !it.Idle(); tick++ {
		if tick > 64 {
			t.Fatalf("interpreter did not drain after %d ticks", tick-1)
		}
		if note := it.Step(tick); note != nil {
			notes = append(notes, *note)
		}
	}
	return notes
}

func samePositions(got, want []grid.Position) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
