package server

import (
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/spell"
	"rune-and-ruin/server/spellbook"
)

// ProtocolVersion is stamped on every message the hub reads or writes.
const ProtocolVersion = 1

// welcomeMessage greets a new subscriber with the board layout, the
// spellbook on offer, and the most recently broadcast world state.
type welcomeMessage struct {
	Ver       int                    `json:"ver"`
	Type      string                 `json:"type"`
	Client    uint64                 `json:"client"`
	Tick      uint64                 `json:"t"`
	Board     world.Config           `json:"board"`
	Spellbook []spellbook.Definition `json:"spellbook"`
	Player    string                 `json:"player,omitempty"`
	Entities  []world.EntitySnapshot `json:"entities,omitempty"`
}

// tickMessage is the per-tick broadcast: the instruction note the
// interpreter produced (if any), summaries of the commands applied, the
// ids pruned from the world, and the full entity snapshot.
type tickMessage struct {
	Ver        int                    `json:"ver"`
	Type       string                 `json:"type"`
	Tick       uint64                 `json:"t"`
	ServerTime int64                  `json:"serverTime"`
	Player     string                 `json:"player,omitempty"`
	Note       *spell.Note            `json:"note,omitempty"`
	Commands   []commandSummary       `json:"commands,omitempty"`
	Removed    []string               `json:"removed,omitempty"`
	Entities   []world.EntitySnapshot `json:"entities"`
}

// commandSummary strips a command to what observers need to replay intent.
type commandSummary struct {
	Type  string `json:"type"`
	Actor string `json:"actor,omitempty"`
	Spell string `json:"spell,omitempty"`
}
