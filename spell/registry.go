package spell

import (
	"errors"
	"fmt"
)

// Runtime is the execution context handed to instruction handlers: the
// world view plus the tunables that shape spatial queries.
type Runtime struct {
	World WorldView
	// BeamLength caps every beam Form. DefaultBeamLength applies when the
	// interpreter is built with a non-positive value.
	BeamLength int
}

// DefaultBeamLength is how far beam Forms reach unless configured.
const DefaultBeamLength = 10

// FormFunc evaluates a Form: it may read the world and grow the frame's
// target set, nothing else.
type FormFunc func(rt *Runtime, frame *Frame, ax Axiom) error

// FunctionFunc executes a Function: it consumes the target set and appends
// abstract effects, reporting whether it produced any.
type FunctionFunc func(rt *Runtime, frame *Frame, ax Axiom) (bool, error)

// MutatorFunc applies a Mutator: frame mutation only, with at most
// read-only world lookups (untargeting the caster needs its tile).
type MutatorFunc func(rt *Runtime, frame *Frame, ax Axiom) error

// Handler binds an instruction tag to its behavior. Exactly one of the
// three funcs must be set, matching Kind.
type Handler struct {
	Kind     Kind
	Form     FormFunc
	Function FunctionFunc
	Mutator  MutatorFunc
}

var (
	errEmptyOp         = errors.New("empty op")
	errDuplicateOp     = errors.New("duplicate op")
	errKindMismatch    = errors.New("handler kind mismatch")
	errUnknownHandler  = errors.New("no handler registered")
	errMissingHandlers = errors.New("missing built-in handlers")
)

// Registry maps instruction tags to handlers. Dispatch looks at the op
// alone and never inspects payloads; payload checking is each handler's
// contract. New instructions register without touching the driver.
type Registry struct {
	entries map[Op]Handler
}

// NewRegistry returns a registry preloaded with every built-in
// instruction.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[Op]Handler, 20)}
	for op, h := range builtinHandlers() {
		r.entries[op] = h
	}
	return r
}

// Register adds a handler for an op. Re-registering an existing op is a
// wiring mistake and fails.
func (r *Registry) Register(op Op, h Handler) error {
	if op == "" {
		return errEmptyOp
	}
	if _, exists := r.entries[op]; exists {
		return fmt.Errorf("%w: %q", errDuplicateOp, op)
	}
	if err := checkHandler(op, h); err != nil {
		return err
	}
	r.entries[op] = h
	return nil
}

// Lookup returns the handler for an op.
func (r *Registry) Lookup(op Op) (Handler, bool) {
	h, ok := r.entries[op]
	return h, ok
}

// Validate confirms every built-in op is present and every entry is
// coherent. The interpreter runs it once at construction so a miswired
// table fails at startup, not mid-spell.
func (r *Registry) Validate() error {
	for op := range builtinHandlers() {
		if _, ok := r.entries[op]; !ok {
			return fmt.Errorf("%w: %q", errMissingHandlers, op)
		}
	}
	for op, h := range r.entries {
		if err := checkHandler(op, h); err != nil {
			return err
		}
	}
	return nil
}

func checkHandler(op Op, h Handler) error {
	if want := KindOf(op); want != "" && want != h.Kind {
		return fmt.Errorf("%w: %q is a %s, handler says %s", errKindMismatch, op, want, h.Kind)
	}
	switch h.Kind {
	case KindForm:
		if h.Form == nil || h.Function != nil || h.Mutator != nil {
			return fmt.Errorf("%w: %q needs exactly a form func", errKindMismatch, op)
		}
	case KindFunction:
		if h.Function == nil || h.Form != nil || h.Mutator != nil {
			return fmt.Errorf("%w: %q needs exactly a function func", errKindMismatch, op)
		}
	case KindMutator:
		if h.Mutator == nil || h.Form != nil || h.Function != nil {
			return fmt.Errorf("%w: %q needs exactly a mutator func", errKindMismatch, op)
		}
	default:
		return fmt.Errorf("%w: %q has kind %q", errKindMismatch, op, h.Kind)
	}
	return nil
}

// dispatch runs one instruction against the frame. The returned bool
// mirrors the Function contract: true only when a Function produced at
// least one effect.
func (r *Registry) dispatch(rt *Runtime, frame *Frame, ax Axiom) (bool, error) {
	h, ok := r.entries[ax.Op]
	if !ok {
		return false, fmt.Errorf("%w: %q", errUnknownHandler, ax.Op)
	}
	switch h.Kind {
	case KindForm:
		if h.Form == nil {
			return false, fmt.Errorf("%w: %q", errKindMismatch, ax.Op)
		}
		return false, h.Form(rt, frame, ax)
	case KindFunction:
		if h.Function == nil {
			return false, fmt.Errorf("%w: %q", errKindMismatch, ax.Op)
		}
		return h.Function(rt, frame, ax)
	case KindMutator:
		if h.Mutator == nil {
			return false, fmt.Errorf("%w: %q", errKindMismatch, ax.Op)
		}
		return false, h.Mutator(rt, frame, ax)
	}
	return false, fmt.Errorf("%w: %q", errKindMismatch, ax.Op)
}

func builtinHandlers() map[Op]Handler {
	return map[Op]Handler{
		OpSelf:          {Kind: KindForm, Form: evalSelf},
		OpPlayer:        {Kind: KindForm, Form: evalPlayer},
		OpAdjacentCross: {Kind: KindForm, Form: evalAdjacentCross},
		OpRing:          {Kind: KindForm, Form: evalRing},
		OpBeamLastMove:  {Kind: KindForm, Form: evalBeamLastMove},
		OpBeamDiagonals: {Kind: KindForm, Form: evalBeamDiagonals},
		OpBeamCardinals: {Kind: KindForm, Form: evalBeamCardinals},
		OpFrontTile:     {Kind: KindForm, Form: evalFrontTile},

		OpDash:         {Kind: KindFunction, Function: execDash},
		OpSummon:       {Kind: KindFunction, Function: execSummon},
		OpHarmOrHeal:   {Kind: KindFunction, Function: execHarmOrHeal},
		OpApplyStatus:  {Kind: KindFunction, Function: execApplyStatus},
		OpConsumeWalls: {Kind: KindFunction, Function: execConsumeWalls},
		OpBanishSpawns: {Kind: KindFunction, Function: execBanishSpawns},
		OpPlaceTrap:    {Kind: KindFunction, Function: execPlaceTrap},

		OpPierce:         {Kind: KindMutator, Mutator: mutPierce},
		OpTrace:          {Kind: KindMutator, Mutator: mutTrace},
		OpSpread:         {Kind: KindMutator, Mutator: mutSpread},
		OpUntargetCaster: {Kind: KindMutator, Mutator: mutUntargetCaster},
		OpClearTargets:   {Kind: KindMutator, Mutator: mutClearTargets},
	}
}
