// Package spells defines the typed spellcraft events the interpreter
// publishes while frames move through the execution stack.
package spells

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventFramePushed is emitted when a cast pushes a new frame.
	EventFramePushed logging.EventType = "spellcraft.frame_pushed"
	// EventInstructionExecuted is emitted after each instruction runs.
	EventInstructionExecuted logging.EventType = "spellcraft.instruction_executed"
	// EventFrameCompleted is emitted when a frame pops and its effects flush.
	EventFrameCompleted logging.EventType = "spellcraft.frame_completed"
	// EventFramePruned is emitted when a frame is discarded because its
	// caster no longer exists.
	EventFramePruned logging.EventType = "spellcraft.frame_pruned"
	// EventContractViolation is emitted when registry dispatch rejects an
	// instruction; the offending frame pops with whatever it accumulated.
	EventContractViolation logging.EventType = "spellcraft.contract_violation"
)

// FramePushedPayload describes the spell whose frame just entered the stack.
type FramePushedPayload struct {
	Instructions int `json:"instructions"`
	Depth        int `json:"depth"`
}

// InstructionExecutedPayload describes a single interpreter step.
type InstructionExecutedPayload struct {
	Op      string `json:"op"`
	Index   int    `json:"index"`
	Targets int    `json:"targets"`
	Depth   int    `json:"depth"`
}

// FrameCompletedPayload summarises a popped frame.
type FrameCompletedPayload struct {
	Effects    int  `json:"effects"`
	Terminated bool `json:"terminated"`
}

// FramePrunedPayload records why a frame left the stack early.
type FramePrunedPayload struct {
	Reason string `json:"reason"`
	Index  int    `json:"index"`
}

// ContractViolationPayload records a dispatch mismatch.
type ContractViolationPayload struct {
	Op     string `json:"op"`
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

// FramePushed publishes a frame push event.
func FramePushed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FramePushedPayload) {
	publish(ctx, pub, EventFramePushed, tick, actor, logging.SeverityDebug, payload)
}

// InstructionExecuted publishes a per-step event.
func InstructionExecuted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload InstructionExecutedPayload) {
	publish(ctx, pub, EventInstructionExecuted, tick, actor, logging.SeverityDebug, payload)
}

// FrameCompleted publishes a frame completion event.
func FrameCompleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FrameCompletedPayload) {
	publish(ctx, pub, EventFrameCompleted, tick, actor, logging.SeverityDebug, payload)
}

// FramePruned publishes a frame pruning event.
func FramePruned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FramePrunedPayload) {
	publish(ctx, pub, EventFramePruned, tick, actor, logging.SeverityInfo, payload)
}

// ContractViolation publishes a dispatch failure event.
func ContractViolation(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ContractViolationPayload) {
	publish(ctx, pub, EventContractViolation, tick, actor, logging.SeverityError, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategorySpellcraft,
		Payload:  payload,
	})
}
