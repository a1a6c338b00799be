// Package logging carries the structured event bus shared by the spell
// interpreter, the world, and the transport layer. Producers publish
// Events through a Publisher; the Router fans them out to the configured
// sinks without blocking the simulation goroutine.
package logging

import "time"

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

type EntityKind string

const (
	EntityKindUnknown  EntityKind = "unknown"
	EntityKindPlayer   EntityKind = "player"
	EntityKindCreature EntityKind = "creature"
	EntityKindWall     EntityKind = "wall"
	EntityKindWorld    EntityKind = "world"
)

// EntityRef names the entity an event is about without holding any world
// state.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

const (
	CategorySpellcraft = "spellcraft"
	CategoryWorld      = "world"
	CategoryCombat     = "combat"
	CategoryStatus     = "status_effects"
	CategoryNetwork    = "network"
	CategorySimulation = "simulation"
	CategorySystem     = "system"
)

// Event is one structured log record. Payload carries the event-specific
// struct defined next to its constructor; Extra carries ambient fields
// attached by WithFields publishers.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// WithExtra returns a copy of the event with one extra field set.
func (e Event) WithExtra(key string, value any) Event {
	cloned := e
	cloned.Extra = make(map[string]any, len(e.Extra)+1)
	for k, v := range e.Extra {
		cloned.Extra[k] = v
	}
	cloned.Extra[key] = value
	return cloned
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
