package spell

import "rune-and-ruin/server/grid"

// Flag alters how the rest of a frame executes.
type Flag uint8

const (
	// FlagTerminate ends the frame after the current instruction.
	FlagTerminate Flag = 1 << iota
	// FlagSkipAdvance holds the cursor in place for exactly one cleanup
	// step, then clears itself. No shipped instruction sets it yet; the
	// driver supports it for instructions that re-run themselves.
	FlagSkipAdvance
	// FlagMovementTrace makes translated moves feed their walked tiles
	// back into the frame's target set.
	FlagMovementTrace
	// FlagPiercing makes later beam Forms pierce ordinary occupants.
	FlagPiercing
)

// targetSet is an insertion-ordered set of tiles. Set semantics keep
// targets unique; the preserved order keeps Function effects and the
// outbound notifications deterministic.
type targetSet struct {
	order []grid.Position
	index map[grid.Position]struct{}
}

func (s *targetSet) add(p grid.Position) bool {
	if s.index == nil {
		s.index = make(map[grid.Position]struct{})
	}
	if _, dup := s.index[p]; dup {
		return false
	}
	s.index[p] = struct{}{}
	s.order = append(s.order, p)
	return true
}

func (s *targetSet) remove(p grid.Position) bool {
	if _, ok := s.index[p]; !ok {
		return false
	}
	delete(s.index, p)
	for i, q := range s.order {
		if q == p {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *targetSet) clear() {
	s.order = s.order[:0]
	for p := range s.index {
		delete(s.index, p)
	}
}

func (s *targetSet) has(p grid.Position) bool {
	_, ok := s.index[p]
	return ok
}

func (s *targetSet) tiles() []grid.Position {
	copied := make([]grid.Position, len(s.order))
	copy(copied, s.order)
	return copied
}

func (s *targetSet) len() int {
	return len(s.order)
}

// Frame is one spell invocation in flight: the instruction list, a cursor,
// the accumulated targets and effects, the caster, and the active flags.
// The driver owns every frame; handlers receive the live frame explicitly
// and mutate nothing else.
type Frame struct {
	caster       string
	instructions []Axiom
	cursor       int
	flags        Flag
	targets      targetSet
	effects      []Effect
}

// NewFrame builds the initial frame state for a cast: cursor zero, no
// targets, no flags, no effects.
func NewFrame(caster string, instructions []Axiom) *Frame {
	return &Frame{caster: caster, instructions: instructions}
}

// Caster returns the entity the frame runs on behalf of.
func (f *Frame) Caster() string {
	return f.caster
}

// Cursor returns the index of the next instruction to execute.
func (f *Frame) Cursor() int {
	return f.cursor
}

// Remaining reports how many instructions have not executed yet.
func (f *Frame) Remaining() int {
	if f.cursor >= len(f.instructions) {
		return 0
	}
	return len(f.instructions) - f.cursor
}

// SetFlag raises a behavior flag.
func (f *Frame) SetFlag(flag Flag) {
	f.flags |= flag
}

// ClearFlag lowers a behavior flag.
func (f *Frame) ClearFlag(flag Flag) {
	f.flags &^= flag
}

// HasFlag reports whether a behavior flag is raised.
func (f *Frame) HasFlag(flag Flag) bool {
	return f.flags&flag != 0
}

// AddTarget inserts a tile into the target set. It reports whether the
// tile was new.
func (f *Frame) AddTarget(p grid.Position) bool {
	return f.targets.add(p)
}

// RemoveTarget deletes a tile from the target set if present.
func (f *Frame) RemoveTarget(p grid.Position) bool {
	return f.targets.remove(p)
}

// ClearTargets empties the target set.
func (f *Frame) ClearTargets() {
	f.targets.clear()
}

// HasTarget reports whether a tile is currently targeted.
func (f *Frame) HasTarget(p grid.Position) bool {
	return f.targets.has(p)
}

// TargetTiles copies the target set in insertion order.
func (f *Frame) TargetTiles() []grid.Position {
	return f.targets.tiles()
}

// TargetCount returns the size of the target set.
func (f *Frame) TargetCount() int {
	return f.targets.len()
}

// PushEffect appends an abstract effect. Append order is causal order and
// the dispatcher replays it verbatim.
func (f *Frame) PushEffect(e Effect) {
	f.effects = append(f.effects, e)
}

// Effects returns the accumulated effects in append order.
func (f *Frame) Effects() []Effect {
	return f.effects
}

// Done reports whether the frame has nothing left to run: the cursor
// passed the last instruction or Terminate was raised.
func (f *Frame) Done() bool {
	return f.cursor >= len(f.instructions) || f.HasFlag(FlagTerminate)
}

// current returns the instruction under the cursor.
func (f *Frame) current() (Axiom, bool) {
	if f.cursor < 0 || f.cursor >= len(f.instructions) {
		return Axiom{}, false
	}
	return f.instructions[f.cursor], true
}

// cleanup runs the post-instruction step: a raised SkipAdvance clears and
// holds the cursor for one re-run, otherwise the cursor advances.
func (f *Frame) cleanup() {
	if f.HasFlag(FlagSkipAdvance) {
		f.ClearFlag(FlagSkipAdvance)
		return
	}
	f.cursor++
}
