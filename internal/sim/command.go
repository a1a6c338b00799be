package sim

import (
	"time"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/spell"
)

// CommandType enumerates the intents the loop accepts.
type CommandType string

const (
	CommandCast  CommandType = "Cast"
	CommandMove  CommandType = "Move"
	CommandJoin  CommandType = "Join"
	CommandLeave CommandType = "Leave"
)

// CastCommand names a spell from the book or carries inline instructions.
// SpellID wins when both are set.
type CastCommand struct {
	SpellID      string        `json:"spellId,omitempty"`
	Instructions []spell.Axiom `json:"instructions,omitempty"`
}

// MoveCommand asks for one step in a direction.
type MoveCommand struct {
	Direction grid.Direction `json:"direction"`
}

// Command represents an intent captured for processing on the next tick.
// An empty ActorID acts for the world's player.
type Command struct {
	OriginTick uint64       `json:"originTick"`
	ActorID    string       `json:"actorId,omitempty"`
	Type       CommandType  `json:"type"`
	IssuedAt   time.Time    `json:"issuedAt"`
	Cast       *CastCommand `json:"cast,omitempty"`
	Move       *MoveCommand `json:"move,omitempty"`
}
