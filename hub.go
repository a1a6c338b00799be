// Package server assembles the spell engine into a running game host: a
// hub that owns the world, interpreter, and tick loop, and fans each
// tick's results out to websocket observers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rune-and-ruin/server/internal/sim"
	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/logging/network"
	"rune-and-ruin/server/spell"
	"rune-and-ruin/server/spellbook"
)

const writeWait = 5 * time.Second

// Counter keys the hub reports through telemetry.Metrics.
const (
	MetricBroadcastsTotal    = "hub.broadcasts_total"
	MetricBroadcastFailures  = "hub.broadcast_failures"
	MetricSubscribersCurrent = "hub.subscribers"
)

// HubConfig assembles the collaborators the hub owns. Zero values fall
// back to the default board, cadence, and compiled-in spellbook.
type HubConfig struct {
	World     world.Config
	Sim       sim.Config
	Book      spellbook.Registry
	Publisher logging.Publisher
	Metrics   *telemetry.Counters
}

// Hub owns the simulation loop and fans its tick results out to
// subscribers. All world access goes through the loop goroutine; the hub
// itself only touches the loop's published results and the journal's
// locked read side.
type Hub struct {
	world     *world.World
	loop      *sim.Loop
	book      spellbook.Registry
	index     map[string]spellbook.Definition
	publisher logging.Publisher
	metrics   *telemetry.Counters

	nextID atomic.Uint64

	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	last        *sim.Result
}

// subscriber serialises writes to one websocket connection.
type subscriber struct {
	id      uint64
	conn    *websocket.Conn
	mu      sync.Mutex
	lastSeq atomic.Uint64
}

// ID reports the hub-assigned client identifier.
func (s *subscriber) ID() uint64 {
	return s.id
}

// WriteMessage sends one frame under the shared write deadline. Safe to
// call from the session goroutine while the hub broadcasts.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// LastCommandSeq reports the highest acknowledged command sequence.
func (s *subscriber) LastCommandSeq() uint64 {
	return s.lastSeq.Load()
}

// StoreLastCommandSeq records an acknowledged command sequence.
func (s *subscriber) StoreLastCommandSeq(seq uint64) {
	s.lastSeq.Store(seq)
}

// NewHub builds the world, interpreter, and loop from the config and
// wires the hub in as the loop's broadcast hook.
func NewHub(cfg HubConfig) (*Hub, error) {
	if cfg.Book == nil {
		cfg.Book = spellbook.Default()
	}
	index, err := cfg.Book.Index()
	if err != nil {
		return nil, fmt.Errorf("spellbook: %w", err)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NewCounters()
	}
	w, err := world.New(cfg.World, world.Deps{
		Publisher: cfg.Publisher,
		Metrics:   cfg.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	caster, err := spell.New(spell.Config{
		World:     w,
		Executor:  w,
		Traps:     w,
		Publisher: cfg.Publisher,
		Metrics:   cfg.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}
	hub := &Hub{
		world:       w,
		book:        cfg.Book,
		index:       index,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		subscribers: make(map[uint64]*subscriber),
	}
	loop, err := sim.NewLoop(cfg.Sim, sim.Deps{
		World:     w,
		Caster:    caster,
		Book:      index,
		Publisher: cfg.Publisher,
		Metrics:   cfg.Metrics,
	}, sim.Hooks{AfterTick: hub.broadcastTick})
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	hub.loop = loop
	return hub, nil
}

// Run drives the simulation loop until the stop channel closes.
func (h *Hub) Run(stop <-chan struct{}) {
	h.loop.Run(stop)
}

// Enqueue stages a client command for the next tick.
func (h *Hub) Enqueue(cmd sim.Command) (bool, string) {
	return h.loop.Enqueue(cmd)
}

// Subscribe registers a connection and greets it with the board, the
// spellbook, and the most recently broadcast state.
func (h *Hub) Subscribe(conn *websocket.Conn, remoteAddr string) (*subscriber, error) {
	sub := &subscriber{id: h.nextID.Add(1), conn: conn}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	count := len(h.subscribers)
	welcome := welcomeMessage{
		Ver:       ProtocolVersion,
		Type:      "welcome",
		Client:    sub.id,
		Tick:      h.loop.Tick(),
		Board:     h.world.Config(),
		Spellbook: h.book,
	}
	if h.last != nil {
		welcome.Player = h.last.Player
		welcome.Entities = h.last.Snapshot
	}
	h.mu.Unlock()
	h.metrics.Store(MetricSubscribersCurrent, uint64(count))

	data, err := json.Marshal(welcome)
	if err == nil {
		err = sub.WriteMessage(websocket.TextMessage, data)
	}
	if err != nil {
		h.drop(sub, "welcome_failed")
		return nil, err
	}

	network.ClientConnected(context.Background(), h.publisher, h.loop.Tick(), network.ClientPayload{
		Client:      sub.id,
		RemoteAddr:  remoteAddr,
		Subscribers: count,
	})
	return sub, nil
}

// Detach removes a subscriber after its read pump ends.
func (h *Hub) Detach(sub *subscriber) {
	if remaining, removed := h.remove(sub); removed {
		network.ClientDisconnected(context.Background(), h.publisher, h.loop.Tick(), network.ClientPayload{
			Client:      sub.id,
			Subscribers: remaining,
		})
	}
	sub.conn.Close()
}

// drop evicts a subscriber the hub could not write to.
func (h *Hub) drop(sub *subscriber, reason string) {
	if remaining, removed := h.remove(sub); removed {
		network.ClientDropped(context.Background(), h.publisher, h.loop.Tick(), network.DropPayload{
			Client:      sub.id,
			Reason:      reason,
			Subscribers: remaining,
		})
	}
	sub.conn.Close()
}

func (h *Hub) remove(sub *subscriber) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub.id]; !ok {
		return len(h.subscribers), false
	}
	delete(h.subscribers, sub.id)
	remaining := len(h.subscribers)
	h.metrics.Store(MetricSubscribersCurrent, uint64(remaining))
	return remaining, true
}

// broadcastTick caches the result and sends it to every subscriber.
// Subscribers the hub cannot write to are evicted on the spot.
func (h *Hub) broadcastTick(result sim.Result) {
	msg := tickMessage{
		Ver:        ProtocolVersion,
		Type:       "tick",
		Tick:       result.Tick,
		ServerTime: time.Now().UnixMilli(),
		Player:     result.Player,
		Note:       result.Note,
		Commands:   summarize(result.Commands),
		Removed:    result.Removed,
		Entities:   result.Snapshot,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.metrics.Add(MetricBroadcastFailures, 1)
		return
	}

	h.mu.Lock()
	h.last = &result
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(sub, err.Error())
		}
	}
	h.metrics.Add(MetricBroadcastsTotal, 1)
}

func summarize(commands []sim.Command) []commandSummary {
	if len(commands) == 0 {
		return nil
	}
	out := make([]commandSummary, len(commands))
	for i, cmd := range commands {
		summary := commandSummary{Type: string(cmd.Type), Actor: cmd.ActorID}
		if cmd.Cast != nil {
			summary.Spell = cmd.Cast.SpellID
		}
		out[i] = summary
	}
	return out
}

// Spellbook returns the validated registry the hub serves.
func (h *Hub) Spellbook() spellbook.Registry {
	return h.book
}

// KnownSpell reports whether the book carries the given spell id.
func (h *Hub) KnownSpell(id string) bool {
	_, ok := h.index[id]
	return ok
}

// MarshalState renders the most recently broadcast tick as a wire frame.
// It reports false until the first tick has been broadcast.
func (h *Hub) MarshalState() ([]byte, bool) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()
	if last == nil {
		return nil, false
	}
	msg := tickMessage{
		Ver:        ProtocolVersion,
		Type:       "tick",
		Tick:       last.Tick,
		ServerTime: time.Now().UnixMilli(),
		Player:     last.Player,
		Note:       last.Note,
		Commands:   summarize(last.Commands),
		Removed:    last.Removed,
		Entities:   last.Snapshot,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, false
	}
	return data, true
}

// BoardConfig returns the normalized world configuration.
func (h *Hub) BoardConfig() world.Config {
	return h.world.Config()
}

// Tick reports the last advanced tick.
func (h *Hub) Tick() uint64 {
	return h.loop.Tick()
}

// Pending reports the number of staged commands.
func (h *Hub) Pending() int {
	return h.loop.Pending()
}

// Subscribers reports the current observer count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// LatestTick returns the most recently broadcast result.
func (h *Hub) LatestTick() (sim.Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return sim.Result{}, false
	}
	return *h.last, true
}

// TelemetrySnapshot copies the current counter values.
func (h *Hub) TelemetrySnapshot() map[string]uint64 {
	return h.metrics.Snapshot()
}

// RecentNotes returns the retained interpreter notes, oldest first.
func (h *Hub) RecentNotes() []spell.Note {
	return h.world.RecentNotes()
}

// NoteByTick looks up a retained note by tick.
func (h *Hub) NoteByTick(tick uint64) (spell.Note, bool) {
	return h.world.NoteByTick(tick)
}

// JournalWindow reports the journal size and its tick bounds.
func (h *Hub) JournalWindow() (int, uint64, uint64) {
	return h.world.JournalWindow()
}
