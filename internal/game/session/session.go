// Package session owns one playthrough: it drives the player, the level, the
// narrative engine, the event system, and combat resolution one tick at a time.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/event"
	"github.com/cory-johannsen/duskborne/internal/game/narrative"
	"github.com/cory-johannsen/duskborne/internal/game/npc"
	"github.com/cory-johannsen/duskborne/internal/game/player"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/world"
	"github.com/cory-johannsen/duskborne/internal/storage"
)

const (
	// StartX and StartY are where the player enters every area.
	StartX = 100.0
	StartY = 500.0

	// ContextFoeNearlyBeaten is the combat context key set while a foe is nearly dead.
	ContextFoeNearlyBeaten = "enemyHpLow"
)

// Deps are the shared collaborators every session is built from.
type Deps struct {
	Config   config.Config
	Areas    *world.Manager
	Profiles *ai.Registry
	NPCs     *npc.Catalog
	Events   *event.Catalog
	// Scripts evaluates script event conditions. May be nil.
	Scripts event.ScriptCaller
	// Clock drives deferred effects and decision timestamps.
	Clock  timer.Clock
	Roller *dice.Roller
	Tracer trace.Tracer
	Logger *zap.Logger
}

func (d Deps) validate() error {
	if d.Areas == nil || d.Profiles == nil || d.NPCs == nil || d.Events == nil ||
		d.Clock == nil || d.Roller == nil || d.Tracer == nil || d.Logger == nil {
		return fmt.Errorf("session: every dependency except Scripts must be non-nil")
	}
	return nil
}

// Session is a single playthrough.
//
// Tick is not safe for concurrent use; one goroutine owns a session.
type Session struct {
	ID uuid.UUID

	state    State
	player   *player.Player
	level    *world.Level
	engine   *narrative.Engine
	events   *event.System
	resolver *combat.Resolver
	sched    *timer.Scheduler
	ending   narrative.Ending

	ticks uint64

	deps   Deps
	logger *zap.Logger
}

// New builds a session in the menu state.
//
// Precondition: deps must satisfy every non-nil requirement documented on Deps.
func New(id uuid.UUID, deps Deps) *Session {
	if err := deps.validate(); err != nil {
		panic(err.Error())
	}
	logger := deps.Logger.With(zap.String("session", id.String()))
	engine := narrative.NewEngine(deps.Config.Tuning, deps.Clock, deps.Tracer, logger)
	s := &Session{
		ID:       id,
		state:    StateMenu,
		engine:   engine,
		events:   event.NewSystem(deps.Config.Events, deps.Events, engine, deps.Clock, deps.Roller, deps.Scripts, logger),
		resolver: combat.NewResolver(deps.Config.Tuning.HitEffectLifetime.Seconds(), logger),
		sched:    timer.NewScheduler(deps.Clock, logger),
		deps:     deps,
		logger:   logger,
	}
	s.player = player.New(StartX, StartY, deps.Config.Tuning, s.sched)
	return s
}

// Start begins a new game in the configured start area with the narrator's
// introduction on screen.
//
// Postcondition: State() == StateDialogue.
func (s *Session) Start(ctx context.Context) {
	s.reset()
	s.LoadArea(ctx, s.deps.Config.Content.StartArea)
	s.engine.StartGame()
	s.state = StateDialogue
	s.logger.Info("game started", zap.String("area", s.level.Area.ID))
}

func (s *Session) reset() {
	s.sched.Reset()
	s.engine.Reset()
	s.events.Reset()
	s.resolver.Reset()
	s.player = player.New(StartX, StartY, s.deps.Config.Tuning, s.sched)
	s.ending = narrative.Ending{}
	s.resumeClock()
}

// LoadArea replaces the level with a fresh instance of the named area and
// places the player at the area entrance. Unknown names load the default area.
//
// Postcondition: Returns the loaded area.
func (s *Session) LoadArea(ctx context.Context, name string) *world.Area {
	_, span := s.deps.Tracer.Start(ctx, "session.LoadArea", trace.WithAttributes(attribute.String("area.requested", name)))
	defer span.End()

	if s.level != nil {
		for _, b := range s.level.Bosses() {
			s.sched.CancelOwner(b)
		}
	}
	area := s.deps.Areas.Resolve(name)
	s.level = world.NewLevel(area, world.LevelDeps{
		Registry:  s.deps.Profiles,
		NPCs:      s.deps.NPCs,
		Tuning:    s.deps.Config.Tuning,
		Scheduler: s.sched,
		Roller:    s.deps.Roller,
		Logger:    s.logger,
	})
	s.resolver.Reset()
	s.player.Place(StartX, StartY)

	span.SetAttributes(
		attribute.String("area.id", area.ID),
		attribute.Int("area.enemies", len(s.level.Enemies())),
		attribute.Int("area.bosses", len(s.level.Bosses())),
	)
	s.logger.Info("area loaded", zap.String("area", area.ID), zap.String("name", area.Name))
	return area
}

// EnterPortal loads the destination of the portal the player stands at.
//
// Postcondition: Returns false and changes nothing when no portal is in range.
func (s *Session) EnterPortal(ctx context.Context) bool {
	p, ok := s.level.PortalAt(s.player.Rect())
	if !ok {
		return false
	}
	s.LoadArea(ctx, p.Destination)
	return true
}

// Tick advances the session by dt seconds of frame time under input in.
func (s *Session) Tick(ctx context.Context, dt float64, in player.Input) {
	if in == nil {
		in = player.None
	}
	dt = max(0, min(dt, s.deps.Config.Simulation.MaxDelta))
	s.ticks++
	s.sched.Drain()

	switch s.state {
	case StateMenu:
		if in.IsActionPressed(player.ActionInteract) {
			s.Start(ctx)
		}
	case StatePlaying:
		s.tickPlaying(ctx, dt, in)
	case StatePaused:
		if in.IsActionPressed(player.ActionPause) {
			s.resumeClock()
			s.setState(StatePlaying)
		}
	case StateDialogue:
		if in.IsActionPressed(player.ActionInteract) && s.engine.AdvanceDialogue() {
			s.setState(StatePlaying)
		}
		if s.engine.HasPendingChoice() {
			s.setState(StateChoice)
		}
	case StateChoice:
		switch {
		case in.IsActionPressed(player.ActionUp):
			s.engine.SelectPreviousChoice()
		case in.IsActionPressed(player.ActionDown):
			s.engine.SelectNextChoice()
		case in.IsActionPressed(player.ActionInteract):
			s.engine.MakeChoice()
			s.setState(StatePlaying)
		}
	case StateGameOver, StateEnding:
		if in.IsActionPressed(player.ActionInteract) {
			s.setState(StateMenu)
		}
	}
}

func (s *Session) tickPlaying(ctx context.Context, dt float64, in player.Input) {
	if in.IsActionPressed(player.ActionPause) {
		s.pauseClock()
		s.setState(StatePaused)
		return
	}

	s.player.Update(dt, in, s.level)
	s.level.Update(dt, ai.TargetOf(s.player))

	for _, d := range s.level.TakeBossDefeats() {
		if d.Flag > 0 {
			s.engine.SetFlag(narrative.BossFlag(d.Flag), true)
		}
		s.engine.QueueDialogue(narrative.Dialogue{
			Speaker: "System",
			Text:    fmt.Sprintf("You defeated the %s boss! A great evil has been vanquished.", d.Boss.Type()),
		})
		s.logger.Info("boss defeated", zap.String("boss", d.Boss.Type()), zap.Int("flag", d.Flag))
	}

	s.events.Update(s.level.Area.ID, map[string]bool{
		ContextFoeNearlyBeaten: s.level.FoeNearlyBeaten(),
	})

	s.resolver.Resolve(dt, s.player, s.level.Foes())

	if in.IsActionPressed(player.ActionInteract) {
		s.interact(ctx)
	}

	if s.engine.HasPendingChoice() {
		s.setState(StateChoice)
	} else if _, ok := s.engine.CurrentDialogue(); ok {
		s.setState(StateDialogue)
	}
	if !s.player.Alive() {
		s.setState(StateGameOver)
	}
	if s.engine.ShouldTriggerEnding() {
		s.ending = s.engine.CalculateEnding()
		s.setState(StateEnding)
	}

	if s.player.Attacking() {
		if s.player.Combo > 2 {
			s.engine.TrackCombatStyle(narrative.StyleAggressive)
		} else {
			s.engine.TrackCombatStyle(narrative.StyleTactical)
		}
	}
	if s.player.Dodging {
		s.engine.TrackCombatStyle(narrative.StyleDefensive)
	}
}

// interact talks to the nearest NPC, else enters a portal in range, else
// rolls for a random story beat.
func (s *Session) interact(ctx context.Context) {
	if inst, ok := s.level.NPCNear(s.player.Rect(), npc.InteractRange); ok {
		if err := s.level.NPCs().Interact(inst, s.engine); err != nil {
			s.logger.Warn("npc interaction failed", zap.Error(err))
		}
		return
	}
	if s.EnterPortal(ctx) {
		return
	}
	if s.deps.Roller.Chance("story beat", s.deps.Config.Events.StoryChance) {
		beat := narrative.StoryEvent(s.level.Area.ID, s.deps.Roller)
		if err := s.engine.Play(beat); err != nil {
			s.logger.Warn("story beat not played", zap.Error(err))
		}
	}
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("state change", zap.Stringer("from", s.state), zap.Stringer("to", next))
	s.state = next
}

func (s *Session) pauseClock() {
	if pc, ok := s.deps.Clock.(*timer.PausableClock); ok && !pc.IsPaused() {
		pc.Pause()
	}
}

func (s *Session) resumeClock() {
	if pc, ok := s.deps.Clock.(*timer.PausableClock); ok && pc.IsPaused() {
		pc.Resume()
	}
}

// Snapshot returns the save record for the current state.
func (s *Session) Snapshot() storage.Record {
	area := ""
	if s.level != nil {
		area = s.level.Area.ID
	}
	return storage.Record{
		ID:              s.ID,
		Area:            area,
		Narrative:       s.engine.Snapshot(),
		CompletedEvents: s.events.Completed(),
		PlayerHP:        s.player.Health.HP,
		SavedAt:         s.deps.Clock.Now(),
	}
}

// Restore resumes play from rec in its saved area.
//
// Postcondition: State() == StatePlaying and the player has at least 1 hp.
func (s *Session) Restore(ctx context.Context, rec storage.Record) {
	s.reset()
	s.LoadArea(ctx, rec.Area)
	s.engine.Restore(rec.Narrative)
	s.events.Restore(rec.CompletedEvents)
	hp := max(1, min(rec.PlayerHP, s.player.Health.MaxHP))
	s.player.Health.Damage(s.player.Health.MaxHP - hp)
	s.state = StatePlaying
	s.logger.Info("game restored", zap.String("area", s.level.Area.ID), zap.Int("decisions", s.engine.DecisionCount()))
}

// State returns the current mode.
func (s *Session) State() State { return s.state }

// Player returns the player character.
func (s *Session) Player() *player.Player { return s.player }

// Level returns the current level, or nil before the first Start.
func (s *Session) Level() *world.Level { return s.level }

// Narrative returns the narrative engine.
func (s *Session) Narrative() *narrative.Engine { return s.engine }

// Events returns the event trigger system.
func (s *Session) Events() *event.System { return s.events }

// Effects returns the live hit markers.
func (s *Session) Effects() []combat.Effect { return s.resolver.Effects() }

// Ending returns the ending computed when the session entered StateEnding.
func (s *Session) Ending() narrative.Ending { return s.ending }

// Ticks returns how many times Tick has run.
func (s *Session) Ticks() uint64 { return s.ticks }
