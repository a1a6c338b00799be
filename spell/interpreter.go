package spell

import (
	"context"
	"errors"
	"fmt"

	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/logging/spells"
)

// Counter keys the interpreter reports through telemetry.Metrics.
const (
	MetricFramesPushed      = "spell.frames_pushed"
	MetricFramesCompleted   = "spell.frames_completed"
	MetricFramesPruned      = "spell.frames_pruned"
	MetricInstructionsTotal = "spell.instructions_total"
	MetricViolationsTotal   = "spell.contract_violations"
	MetricStackDepth        = "spell.stack_depth"
)

// Cast rejection errors.
var (
	ErrNoCaster      = errors.New("cast has no caster")
	ErrEmptySpell    = errors.New("cast has no instructions")
	ErrUnknownCaster = errors.New("caster does not exist")
)

// CastRequest names a caster and the spell to run on its behalf.
type CastRequest struct {
	Caster       string  `json:"caster"`
	Instructions []Axiom `json:"instructions"`
}

// Note reports what one Step did, for the journal and the outbound feed.
// Batch and Traps are populated only on the step that popped the frame.
type Note struct {
	Tick      uint64       `json:"tick"`
	Caster    string       `json:"caster"`
	Op        Op           `json:"op"`
	Index     int          `json:"index"`
	Depth     int          `json:"depth"`
	Targets   int          `json:"targets"`
	Completed bool         `json:"completed,omitempty"`
	Violation string       `json:"violation,omitempty"`
	Batch     []Effect     `json:"batch,omitempty"`
	Traps     []TrapRecord `json:"traps,omitempty"`
}

// Config wires an Interpreter to its host. World is required; everything
// else falls back to a no-op collaborator.
type Config struct {
	World      WorldView
	Executor   Executor
	Traps      TrapPlacer
	Registry   *Registry
	Publisher  logging.Publisher
	Metrics    telemetry.Metrics
	BeamLength int
}

// Interpreter runs spell frames one instruction per Step. It owns the
// frame stack outright; handlers only ever see the frame they are handed.
type Interpreter struct {
	runtime    Runtime
	registry   *Registry
	stack      Stack
	dispatcher *Dispatcher
	publisher  logging.Publisher
	metrics    telemetry.Metrics
	tick       uint64
}

// New validates the configuration and builds an idle interpreter.
func New(cfg Config) (*Interpreter, error) {
	if cfg.World == nil {
		return nil, errors.New("interpreter requires a world view")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("interpreter registry: %w", err)
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	beam := cfg.BeamLength
	if beam <= 0 {
		beam = DefaultBeamLength
	}
	return &Interpreter{
		runtime:    Runtime{World: cfg.World, BeamLength: beam},
		registry:   registry,
		dispatcher: NewDispatcher(cfg.Executor, cfg.Traps),
		publisher:  publisher,
		metrics:    metrics,
	}, nil
}

// Cast validates a request and pushes a fresh frame. The new frame sits
// on top of the stack, so its first instruction runs on the next Step and
// any spell already in flight resumes afterwards. Instructions are deep
// copied; the caller's slice stays its own.
func (it *Interpreter) Cast(req CastRequest) error {
	if req.Caster == "" {
		return ErrNoCaster
	}
	if len(req.Instructions) == 0 {
		return ErrEmptySpell
	}
	for i, ax := range req.Instructions {
		if err := ax.Validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	if !it.runtime.World.Exists(req.Caster) {
		return fmt.Errorf("%w: %s", ErrUnknownCaster, req.Caster)
	}
	it.stack.Push(NewFrame(req.Caster, CloneSequence(req.Instructions)))
	it.metrics.Add(MetricFramesPushed, 1)
	it.metrics.Store(MetricStackDepth, uint64(it.stack.Len()))
	spells.FramePushed(context.Background(), it.publisher, it.tick, it.casterRef(req.Caster), spells.FramePushedPayload{
		Instructions: len(req.Instructions),
		Depth:        it.stack.Len(),
	})
	return nil
}

// Step advances the interpreter by exactly one instruction. Frames whose
// caster has left the world are pruned first, their effects discarded.
// The surviving top frame executes its current instruction; if that
// finishes the frame, the frame pops and its effects flush in the same
// step. A nil Note means the stack was idle.
func (it *Interpreter) Step(tick uint64) *Note {
	it.tick = tick
	it.prune(tick, "caster_missing", func(f *Frame) bool {
		return !it.runtime.World.Exists(f.Caster())
	})
	frame := it.stack.Top()
	if frame == nil {
		return nil
	}
	note := &Note{
		Tick:   tick,
		Caster: frame.Caster(),
		Index:  frame.Cursor(),
		Depth:  it.stack.Len(),
	}
	ax, ok := frame.current()
	if !ok {
		// Cursor already past the end. Casts reject empty spells, so this
		// only happens if a handler rewound state badly; finish the frame
		// rather than wedge the stack.
		it.popAndFlush(tick, frame, note)
		return note
	}
	note.Op = ax.Op
	_, err := it.registry.dispatch(&it.runtime, frame, ax)
	it.metrics.Add(MetricInstructionsTotal, 1)
	note.Targets = frame.TargetCount()
	if err != nil {
		it.metrics.Add(MetricViolationsTotal, 1)
		spells.ContractViolation(context.Background(), it.publisher, tick, it.casterRef(frame.Caster()), spells.ContractViolationPayload{
			Op:     string(ax.Op),
			Index:  note.Index,
			Detail: err.Error(),
		})
		note.Violation = err.Error()
		it.popAndFlush(tick, frame, note)
		return note
	}
	spells.InstructionExecuted(context.Background(), it.publisher, tick, it.casterRef(frame.Caster()), spells.InstructionExecutedPayload{
		Op:      string(ax.Op),
		Index:   note.Index,
		Targets: note.Targets,
		Depth:   note.Depth,
	})
	frame.cleanup()
	if frame.Done() {
		it.popAndFlush(tick, frame, note)
	}
	return note
}

// PruneCaster drops every frame the given entity cast, at any depth,
// discarding their effects. Hosts call this when an entity dies mid-tick
// so a queued spell cannot act for a corpse before the next Step.
func (it *Interpreter) PruneCaster(id string) int {
	return it.prune(it.tick, "caster_died", func(f *Frame) bool {
		return f.Caster() == id
	})
}

// Idle reports whether no spell is in flight.
func (it *Interpreter) Idle() bool {
	return it.stack.Len() == 0
}

// Depth returns the number of frames in flight.
func (it *Interpreter) Depth() int {
	return it.stack.Len()
}

func (it *Interpreter) prune(tick uint64, reason string, drop func(*Frame) bool) int {
	dropped := it.stack.Prune(drop)
	for _, f := range dropped {
		it.metrics.Add(MetricFramesPruned, 1)
		spells.FramePruned(context.Background(), it.publisher, tick, it.casterRef(f.Caster()), spells.FramePrunedPayload{
			Reason: reason,
			Index:  f.Cursor(),
		})
	}
	if len(dropped) > 0 {
		it.metrics.Store(MetricStackDepth, uint64(it.stack.Len()))
	}
	return len(dropped)
}

func (it *Interpreter) popAndFlush(tick uint64, frame *Frame, note *Note) {
	if it.stack.Top() == frame {
		it.stack.Pop()
	}
	batch, armed := it.dispatcher.Flush(frame)
	note.Completed = true
	note.Batch = batch
	note.Traps = armed
	// Trace-expanded moves grow the target set during translation; report
	// the final count so highlight collaborators see the walked tiles.
	note.Targets = frame.TargetCount()
	it.metrics.Add(MetricFramesCompleted, 1)
	it.metrics.Store(MetricStackDepth, uint64(it.stack.Len()))
	spells.FrameCompleted(context.Background(), it.publisher, tick, it.casterRef(frame.Caster()), spells.FrameCompletedPayload{
		Effects:    len(frame.Effects()),
		Terminated: frame.HasFlag(FlagTerminate),
	})
}

func (it *Interpreter) casterRef(id string) logging.EntityRef {
	kind := logging.EntityKindCreature
	if player, ok := it.runtime.World.CurrentPlayer(); ok && player == id {
		kind = logging.EntityKindPlayer
	}
	return logging.EntityRef{ID: id, Kind: kind}
}
