package world

import (
	"errors"
	"math/rand"
	"os"
	"strconv"
	"time"

	"rune-and-ruin/server/grid"
	journalpkg "rune-and-ruin/server/internal/journal"
	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/spell"
)

const (
	defaultJournalCapacity = 64
	defaultJournalMaxAge   = 30 * time.Second
	envJournalCapacity     = "SPELL_JOURNAL_CAPACITY"
	envJournalMaxAgeMS     = "SPELL_JOURNAL_MAX_AGE_MS"
)

var (
	ErrPlayerPresent = errors.New("a player is already bound to this world")
	ErrNoRoom        = errors.New("no passable tile to spawn on")
)

// RNGFactory produces deterministic RNG instances for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher        logging.Publisher
	Metrics          telemetry.Metrics
	RNG              RNGFactory
	JournalRetention func() (int, time.Duration)
	JournalTelemetry journalpkg.Telemetry
}

// World owns the board: entities, occupancy, armed traps, and the status
// engine. It implements the interpreter's WorldView for targeting, its
// Executor for command batches, and its TrapPlacer for dormant spells.
//
// Commands the world produces on its own (a sprung trap's cast, a death
// that must prune interpreter frames) are never applied re-entrantly;
// they queue up and the driving loop drains them between ticks.
type World struct {
	config Config
	seed   string

	publisher  logging.Publisher
	metrics    telemetry.Metrics
	rngFactory RNGFactory

	entities  map[string]*Entity
	order     []string
	occupancy map[grid.Position]string
	traps     map[grid.Position]spell.TrapRecord

	statusDefs  map[Status]StatusDefinition
	statusKinds []Status

	playerID string
	nextID   uint64
	tick     uint64

	sprung   []spell.CastRequest
	removals []string

	journal journalpkg.Journal
}

// New constructs a world with normalized configuration, seeds the board
// with its border wall ring plus the configured terrain and creatures, and
// wires the journal retention policy.
func New(cfg Config, deps Deps) (*World, error) {
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}

	capacity, maxAge := journalRetention()
	if deps.JournalRetention != nil {
		capacity, maxAge = normalizeJournalRetention(deps.JournalRetention())
	}

	world := &World{
		config:     normalized,
		seed:       normalized.Seed,
		publisher:  publisher,
		metrics:    metrics,
		rngFactory: factory,
		entities:   make(map[string]*Entity),
		occupancy:  make(map[grid.Position]string),
		traps:      make(map[grid.Position]spell.TrapRecord),
		journal:    journalpkg.New(capacity, maxAge),
	}

	if deps.JournalTelemetry != nil {
		world.journal.AttachTelemetry(deps.JournalTelemetry)
	}

	world.registerDefaultStatuses()
	world.seedTerrain()
	world.seedCreatures()

	return world, nil
}

// Config returns the normalized configuration captured at construction time.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Seed reports the deterministic seed applied to the world RNG hierarchy.
func (w *World) Seed() string {
	if w == nil {
		return ""
	}
	return w.seed
}

// SubsystemRNG returns a deterministic RNG derived from the world seed.
func (w *World) SubsystemRNG(label string) *rand.Rand {
	if w == nil {
		return NewDeterministicRNG(DefaultSeed, label)
	}
	return w.ensureFactory()(w.seed, label)
}

func (w *World) ensureFactory() RNGFactory {
	if w == nil || w.rngFactory == nil {
		return NewDeterministicRNG
	}
	return w.rngFactory
}

// Tick reports the last tick the world advanced to.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

func (w *World) inBounds(p grid.Position) bool {
	return p.X >= 0 && p.X < w.config.Width && p.Y >= 0 && p.Y < w.config.Height
}

// OccupantAt returns the primary occupant of a tile.
func (w *World) OccupantAt(p grid.Position) (string, bool) {
	id, ok := w.occupancy[p]
	return id, ok
}

// IsPassable reports whether a tile is in bounds and holds no tangible
// occupant.
func (w *World) IsPassable(p grid.Position) bool {
	if !w.inBounds(p) {
		return false
	}
	_, occupied := w.occupancy[p]
	return !occupied
}

// PositionOf returns an entity's tile.
func (w *World) PositionOf(entity string) (grid.Position, bool) {
	e, ok := w.entities[entity]
	if !ok {
		return grid.Position{}, false
	}
	return e.Position, true
}

// FacingOf returns the direction of an entity's last movement.
func (w *World) FacingOf(entity string) (grid.Direction, bool) {
	e, ok := w.entities[entity]
	if !ok {
		return grid.Direction{}, false
	}
	return e.Facing, true
}

// SpellImmune reports the warded marker.
func (w *World) SpellImmune(entity string) bool {
	e, ok := w.entities[entity]
	return ok && e.SpellImmune
}

// Structural reports the wall marker.
func (w *World) Structural(entity string) bool {
	e, ok := w.entities[entity]
	return ok && e.Structural
}

// Intangible reports whether the entity ignores occupancy when moved.
func (w *World) Intangible(entity string) bool {
	e, ok := w.entities[entity]
	return ok && e.Intangible
}

// Exists reports whether the entity is still on the board.
func (w *World) Exists(entity string) bool {
	_, ok := w.entities[entity]
	return ok
}

// CurrentPlayer returns the designated player entity.
func (w *World) CurrentPlayer() (string, bool) {
	if w.playerID == "" {
		return "", false
	}
	_, ok := w.entities[w.playerID]
	return w.playerID, ok
}

// HealthOf returns an entity's current health pool.
func (w *World) HealthOf(entity string) (int, bool) {
	e, ok := w.entities[entity]
	if !ok {
		return 0, false
	}
	return e.Health, true
}

// SpawnPlayer places the designated player near the board center. Only one
// player is bound at a time.
func (w *World) SpawnPlayer() (string, error) {
	if _, ok := w.CurrentPlayer(); ok {
		return "", ErrPlayerPresent
	}
	center := grid.Position{X: w.config.Width / 2, Y: w.config.Height / 2}
	tile, ok := w.nearestPassable(center)
	if !ok {
		return "", ErrNoRoom
	}
	e := w.spawnEntity(SpeciesPlayer, tile, "")
	w.playerID = e.ID
	return e.ID, nil
}

// Remove takes an entity off the board outright, vacating its tile and
// queueing the removal for frame pruning.
func (w *World) Remove(id string) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	w.despawn(e)
	return true
}

// DrainSprungCasts returns the casts queued by sprung traps and clears the
// queue. The driving loop feeds them to the interpreter with the stepping
// entity as caster.
func (w *World) DrainSprungCasts() []spell.CastRequest {
	if len(w.sprung) == 0 {
		return nil
	}
	drained := w.sprung
	w.sprung = nil
	return drained
}

// DrainRemovals returns the ids of entities removed since the last drain.
// The driving loop prunes their interpreter frames.
func (w *World) DrainRemovals() []string {
	if len(w.removals) == 0 {
		return nil
	}
	drained := w.removals
	w.removals = nil
	return drained
}

// nearestPassable sweeps ring outlines outward from the center until it
// finds a passable tile.
func (w *World) nearestPassable(center grid.Position) (grid.Position, bool) {
	maxRadius := w.config.Width
	if w.config.Height > maxRadius {
		maxRadius = w.config.Height
	}
	for radius := 0; radius <= maxRadius; radius++ {
		for _, tile := range grid.RingOutline(center, radius) {
			if w.IsPassable(tile) {
				return tile, true
			}
		}
	}
	return grid.Position{}, false
}

// RecordNote journals an interpreter note keyed by its tick.
func (w *World) RecordNote(note spell.Note) {
	if w == nil {
		return
	}
	w.journal.Record(note)
}

// RecentNotes returns a copy of the journaled notes, oldest first.
func (w *World) RecentNotes() []spell.Note {
	if w == nil {
		return nil
	}
	return w.journal.Recent()
}

// NoteByTick looks up the journaled note for a tick.
func (w *World) NoteByTick(tick uint64) (spell.Note, bool) {
	if w == nil {
		return spell.Note{}, false
	}
	return w.journal.ByTick(tick)
}

// JournalWindow reports the journal size and its tick bounds.
func (w *World) JournalWindow() (int, uint64, uint64) {
	if w == nil {
		return 0, 0, 0
	}
	return w.journal.Window()
}

// AttachJournalTelemetry wires drop counters into the journal.
func (w *World) AttachJournalTelemetry(t journalpkg.Telemetry) {
	if w == nil {
		return
	}
	w.journal.AttachTelemetry(t)
}

func journalRetention() (int, time.Duration) {
	capacity := defaultJournalCapacity
	if raw := os.Getenv(envJournalCapacity); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			capacity = parsed
		}
	}

	maxAge := defaultJournalMaxAge
	if raw := os.Getenv(envJournalMaxAgeMS); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			maxAge = time.Duration(parsed) * time.Millisecond
		}
	}

	return normalizeJournalRetention(capacity, maxAge)
}

func normalizeJournalRetention(capacity int, maxAge time.Duration) (int, time.Duration) {
	if capacity < 0 {
		capacity = 0
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return capacity, maxAge
}
