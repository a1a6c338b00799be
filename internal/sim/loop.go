// Package sim turns queued client intents into world ticks: a ring buffer
// stages commands, and a fixed-timestep loop drains them, advances the
// spell interpreter exactly one instruction, runs world upkeep, and hands
// the results to broadcast hooks.
package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/logging"
	"rune-and-ruin/server/logging/simulation"
	"rune-and-ruin/server/spell"
	"rune-and-ruin/server/spellbook"
)

// Counter keys the loop reports through telemetry.Metrics.
const (
	MetricTicksTotal      = "sim.ticks_total"
	MetricCommandsApplied = "sim.commands_applied"
	MetricCommandsDropped = "sim.commands_dropped"
)

// Enqueue rejection reasons.
const (
	// CommandRejectQueueLimit indicates a command was dropped by per-actor
	// throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the command buffer is saturated.
	CommandRejectQueueFull = "queue_full"
)

const (
	defaultTickRate        = 10
	defaultCommandCapacity = 256
	defaultPerActorLimit   = 32
)

// Config tunes the command buffer and tick cadence.
type Config struct {
	TickRate        int
	CommandCapacity int
	PerActorLimit   int
}

func (c Config) normalized() Config {
	if c.TickRate <= 0 {
		c.TickRate = defaultTickRate
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = defaultCommandCapacity
	}
	if c.PerActorLimit <= 0 {
		c.PerActorLimit = defaultPerActorLimit
	}
	return c
}

// Hooks let the host observe each completed tick.
type Hooks struct {
	AfterTick func(Result)
}

// Result summarises one advanced tick for broadcast.
type Result struct {
	Tick     uint64
	Note     *spell.Note
	Commands []Command
	Removed  []string
	Player   string
	Snapshot []world.EntitySnapshot
	Duration time.Duration
	Budget   time.Duration
}

// Loop coordinates command intake and the fixed-timestep tick pipeline.
// Advance runs on a single goroutine; Enqueue is safe from any.
type Loop struct {
	world     Board
	caster    Caster
	book      map[string]spellbook.Definition
	buffer    *CommandBuffer
	config    Config
	hooks     Hooks
	publisher logging.Publisher
	metrics   telemetry.Metrics
	clock     logging.Clock

	tick atomic.Uint64

	queueMu       sync.Mutex
	perActorCount map[string]int
}

// NewLoop validates dependencies and builds an idle loop.
func NewLoop(cfg Config, deps Deps, hooks Hooks) (*Loop, error) {
	if deps.World == nil {
		return nil, errors.New("loop requires a world")
	}
	if deps.Caster == nil {
		return nil, errors.New("loop requires a caster")
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NopMetrics()
	}
	if deps.Clock == nil {
		deps.Clock = logging.SystemClock{}
	}
	cfg = cfg.normalized()
	return &Loop{
		world:         deps.World,
		caster:        deps.Caster,
		book:          deps.Book,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		config:        cfg,
		hooks:         hooks,
		publisher:     deps.Publisher,
		metrics:       deps.Metrics,
		clock:         deps.Clock,
		perActorCount: make(map[string]int),
	}, nil
}

// Tick reports the last advanced tick.
func (l *Loop) Tick() uint64 {
	return l.tick.Load()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	return l.buffer.Len()
}

// Enqueue stages a command for the next tick, enforcing per-actor
// throttling and buffer capacity. It reports the rejection reason when the
// command is dropped.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	cmd.OriginTick = l.tick.Load()
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = l.clock.Now()
	}

	l.queueMu.Lock()
	if cmd.ActorID != "" {
		if l.perActorCount[cmd.ActorID] >= l.config.PerActorLimit {
			l.queueMu.Unlock()
			l.dropCommand(cmd, CommandRejectQueueLimit)
			return false, CommandRejectQueueLimit
		}
		l.perActorCount[cmd.ActorID]++
	}
	ok := l.buffer.Push(cmd)
	if !ok && cmd.ActorID != "" {
		l.perActorCount[cmd.ActorID]--
	}
	l.queueMu.Unlock()

	if !ok {
		l.dropCommand(cmd, CommandRejectQueueFull)
		return false, CommandRejectQueueFull
	}
	return true, ""
}

// Advance executes one tick: drain and apply staged commands, step the
// interpreter once, record its note, cast any traps sprung by the dispatch,
// run world upkeep, and prune frames for everything that left the world.
func (l *Loop) Advance() Result {
	tick := l.tick.Add(1)

	commands := l.drainCommands()
	for _, cmd := range commands {
		l.applyCommand(tick, cmd)
	}

	note := l.caster.Step(tick)
	if note != nil {
		l.world.RecordNote(*note)
	}

	for _, req := range l.world.DrainSprungCasts() {
		if err := l.caster.Cast(req); err != nil {
			simulation.CommandDropped(context.Background(), l.publisher, tick, simulation.CommandDroppedPayload{
				Type:   string(CommandCast),
				Actor:  req.Caster,
				Reason: err.Error(),
			})
		}
	}

	l.world.Upkeep(tick)

	removed := l.world.DrainRemovals()
	for _, id := range removed {
		l.caster.PruneCaster(id)
	}

	l.metrics.Add(MetricTicksTotal, 1)
	player, _ := l.world.CurrentPlayer()
	return Result{
		Tick:     tick,
		Note:     note,
		Commands: commands,
		Removed:  removed,
		Player:   player,
		Snapshot: l.world.Snapshot(),
	}
}

// Run drives the fixed-timestep loop until the stop channel closes. Ticks
// the loop falls behind on are coalesced by the ticker, never replayed.
func (l *Loop) Run(stop <-chan struct{}) {
	budget := time.Second / time.Duration(l.config.TickRate)
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	var overrunStreak uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := l.clock.Now()
			result := l.Advance()
			result.Duration = l.clock.Now().Sub(start)
			result.Budget = budget

			if result.Duration > budget {
				overrunStreak++
				simulation.TickBudgetOverrun(context.Background(), l.publisher, result.Tick, simulation.TickBudgetOverrunPayload{
					DurationMillis: result.Duration.Milliseconds(),
					BudgetMillis:   budget.Milliseconds(),
					Ratio:          float64(result.Duration) / float64(budget),
					Streak:         overrunStreak,
				})
			} else {
				overrunStreak = 0
			}

			if l.hooks.AfterTick != nil {
				l.hooks.AfterTick(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) applyCommand(tick uint64, cmd Command) {
	switch cmd.Type {
	case CommandJoin:
		if _, ok := l.world.CurrentPlayer(); ok {
			l.dropAtTick(tick, cmd, "player_present")
			return
		}
		if _, err := l.world.SpawnPlayer(); err != nil {
			l.dropAtTick(tick, cmd, err.Error())
			return
		}
	case CommandLeave:
		actor, ok := l.resolveActor(cmd)
		if !ok {
			l.dropAtTick(tick, cmd, "no_player")
			return
		}
		// Frame pruning happens when the removal drains later this tick.
		l.world.Remove(actor)
	case CommandMove:
		if cmd.Move == nil {
			l.dropAtTick(tick, cmd, "missing_payload")
			return
		}
		actor, ok := l.resolveActor(cmd)
		if !ok {
			l.dropAtTick(tick, cmd, "no_player")
			return
		}
		// A blocked walk still turns the walker; not a drop.
		l.world.Walk(actor, cmd.Move.Direction)
	case CommandCast:
		if cmd.Cast == nil {
			l.dropAtTick(tick, cmd, "missing_payload")
			return
		}
		actor, ok := l.resolveActor(cmd)
		if !ok {
			l.dropAtTick(tick, cmd, "no_player")
			return
		}
		instructions := cmd.Cast.Instructions
		if cmd.Cast.SpellID != "" {
			def, found := l.book[cmd.Cast.SpellID]
			if !found {
				l.dropAtTick(tick, cmd, "unknown_spell")
				return
			}
			instructions = def.Instructions
		}
		if err := l.caster.Cast(spell.CastRequest{Caster: actor, Instructions: instructions}); err != nil {
			l.dropAtTick(tick, cmd, err.Error())
			return
		}
	default:
		l.dropAtTick(tick, cmd, "unknown_type")
		return
	}
	l.metrics.Add(MetricCommandsApplied, 1)
}

// resolveActor maps an empty actor to the world's player.
func (l *Loop) resolveActor(cmd Command) (string, bool) {
	if cmd.ActorID != "" {
		return cmd.ActorID, true
	}
	return l.world.CurrentPlayer()
}

func (l *Loop) dropCommand(cmd Command, reason string) {
	l.dropAtTick(l.tick.Load(), cmd, reason)
}

func (l *Loop) dropAtTick(tick uint64, cmd Command, reason string) {
	l.metrics.Add(MetricCommandsDropped, 1)
	simulation.CommandDropped(context.Background(), l.publisher, tick, simulation.CommandDroppedPayload{
		Type:   string(cmd.Type),
		Actor:  cmd.ActorID,
		Reason: reason,
	})
}
