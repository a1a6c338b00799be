// Package intake validates decoded client messages and stages them on
// the simulation queue.
package intake

import (
	"time"

	"rune-and-ruin/server/internal/net/proto"
	"rune-and-ruin/server/internal/sim"
)

// Reject reasons produced before a command reaches the queue.
const (
	CommandRejectInvalid      = "invalid_command"
	CommandRejectUnknownSpell = "unknown_spell"
)

// CommandContext carries the hub closures staging needs. Commands carry
// no actor: they act for the world's player.
type CommandContext struct {
	Enqueue    func(sim.Command) (bool, string)
	KnownSpell func(string) bool
	Tick       func() uint64
	Now        func() time.Time
}

// StageClientCommand maps a decoded client message onto a command and
// stages it. The returned reason is empty when the command was accepted;
// rejects that happen here never reach the queue.
func StageClientCommand(ctx CommandContext, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, CommandRejectInvalid
	}

	switch command.Type {
	case sim.CommandMove:
		if command.Move == nil {
			return zero, false, CommandRejectInvalid
		}
	case sim.CommandCast:
		if command.Cast == nil {
			return zero, false, CommandRejectInvalid
		}
		if command.Cast.SpellID != "" && ctx.KnownSpell != nil && !ctx.KnownSpell(command.Cast.SpellID) {
			return zero, false, CommandRejectUnknownSpell
		}
	case sim.CommandJoin, sim.CommandLeave:
	default:
		return zero, false, CommandRejectInvalid
	}

	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Enqueue == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
