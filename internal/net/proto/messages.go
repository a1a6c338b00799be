// Package proto defines the client side of the websocket protocol: the
// inbound message shape, its mapping onto simulation commands, and the
// per-session response frames (acks, rejects, heartbeats). Outbound tick
// and welcome frames are rendered by the hub.
package proto

import (
	"encoding/json"
	"fmt"

	"rune-and-ruin/server/grid"
	"rune-and-ruin/server/internal/sim"
	"rune-and-ruin/server/spell"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
)

// Client message type identifiers.
const (
	TypeJoin      = "join"
	TypeLeave     = "leave"
	TypeMove      = "move"
	TypeCast      = "cast"
	TypeHeartbeat = "heartbeat"
)

// ClientMessage captures an inbound websocket message. Spell names a book
// entry; Instructions carries an inline spell when the client composes
// its own axiom sequence.
type ClientMessage struct {
	Ver          int           `json:"ver,omitempty"`
	Type         string        `json:"type"`
	Direction    string        `json:"direction,omitempty"`
	Spell        string        `json:"spell,omitempty"`
	Instructions []spell.Axiom `json:"instructions,omitempty"`
	SentAt       int64         `json:"sentAt,omitempty"`
	Seq          *uint64       `json:"seq,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured
// message. A missing version defaults to the current revision.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand maps a decoded message onto a simulation command. Origin
// metadata is stamped later, when the command is accepted for staging.
// Inline instructions are deep-copied so the caller cannot mutate a
// staged spell.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeJoin:
		return sim.Command{Type: sim.CommandJoin}, true
	case TypeLeave:
		return sim.Command{Type: sim.CommandLeave}, true
	case TypeMove:
		dir, ok := ParseDirection(msg.Direction)
		if !ok {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandMove,
			Move: &sim.MoveCommand{Direction: dir},
		}, true
	case TypeCast:
		if msg.Spell == "" && len(msg.Instructions) == 0 {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandCast,
			Cast: &sim.CastCommand{
				SpellID:      msg.Spell,
				Instructions: spell.CloneSequence(msg.Instructions),
			},
		}, true
	default:
		return sim.Command{}, false
	}
}

// ParseDirection resolves the wire names produced by grid.Direction.String.
func ParseDirection(value string) (grid.Direction, bool) {
	switch value {
	case "north":
		return grid.North, true
	case "south":
		return grid.South, true
	case "east":
		return grid.East, true
	case "west":
		return grid.West, true
	case "northeast":
		return grid.NorthEast, true
	case "northwest":
		return grid.NorthWest, true
	case "southeast":
		return grid.SouthEast, true
	case "southwest":
		return grid.SouthWest, true
	default:
		return grid.Direction{}, false
	}
}

// CommandAck acknowledges a staged command back to its sender.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement frame.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
	}
	if msg.Tick > 0 {
		frame.Tick = msg.Tick
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused. Retry
// marks reasons that may clear on a later tick.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
}

// EncodeCommandReject renders a command rejection frame.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
	}
	if msg.Retry {
		frame.Retry = true
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement frame.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}
