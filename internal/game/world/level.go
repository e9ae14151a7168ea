package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/npc"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

const (
	// PortalRange is how close the player's center must be to a portal's center.
	PortalRange = 30.0
	// LowHealthFraction is the health fraction under which a foe counts as nearly beaten.
	LowHealthFraction = 0.3
)

// LevelDeps are the collaborators a Level needs to spawn its inhabitants.
type LevelDeps struct {
	Registry  *ai.Registry
	NPCs      *npc.Catalog
	Tuning    tuning.Constants
	Scheduler *timer.Scheduler
	Roller    *dice.Roller
	Logger    *zap.Logger
}

// BossDefeat reports one boss that died since the last TakeBossDefeats call.
type BossDefeat struct {
	// Index is the 1-based position of the boss in the level.
	Index int

	// Flag is the spawn's boss-defeat flag slot, 0 when it sets none.
	Flag int

	Boss *ai.Boss
}

// Level is the live instance of an Area. It implements physics.World.
//
// Invariant: enemies and bosses keep their spawn order for the level's lifetime.
type Level struct {
	Area *Area

	enemies []*ai.Enemy
	bosses  []*ai.Boss
	npcs    *npc.Manager
	logger  *zap.Logger
}

// NewLevel spawns area's enemies, boss, and NPCs.
//
// Precondition: area must be valid; every LevelDeps pointer must be non-nil.
// Postcondition: Returns a level with every spawn placed.
func NewLevel(area *Area, deps LevelDeps) *Level {
	if area == nil || deps.Registry == nil || deps.NPCs == nil || deps.Scheduler == nil || deps.Roller == nil || deps.Logger == nil {
		panic("world.NewLevel: area and all dependencies must be non-nil")
	}
	l := &Level{
		Area:   area,
		npcs:   npc.NewManager(deps.NPCs, deps.Logger),
		logger: deps.Logger,
	}
	for i, s := range area.Enemies {
		id := fmt.Sprintf("%s-enemy-%d", area.ID, i+1)
		l.enemies = append(l.enemies, ai.NewEnemy(id, s.X, s.Y, deps.Registry.Enemy(s.Type), deps.Tuning))
	}
	if b := area.Boss; b != nil {
		kind := b.Types[deps.Roller.Intn("boss type", len(b.Types))]
		id := fmt.Sprintf("%s-boss-1", area.ID)
		l.bosses = append(l.bosses, ai.NewBoss(id, b.X, b.Y, deps.Registry.Boss(kind), deps.Tuning, deps.Scheduler, deps.Roller, deps.Logger))
		deps.Logger.Info("boss spawned", zap.String("area", area.ID), zap.String("boss", kind))
	}
	for _, n := range area.NPCs {
		if _, err := l.npcs.Spawn(n.Name, n.Rect); err != nil {
			deps.Logger.Warn("skipping npc spawn", zap.String("area", area.ID), zap.Error(err))
		}
	}
	return l
}

// Platforms implements physics.World.
func (l *Level) Platforms() []physics.Platform { return l.Area.Platforms }

// Width implements physics.World.
func (l *Level) Width() float64 { return l.Area.Width }

// Height implements physics.World.
func (l *Level) Height() float64 { return l.Area.Height }

// Enemies returns every regular enemy, dead or alive, in spawn order.
func (l *Level) Enemies() []*ai.Enemy { return l.enemies }

// Bosses returns every boss, dead or alive, in spawn order.
func (l *Level) Bosses() []*ai.Boss { return l.bosses }

// NPCs returns the level's NPC manager.
func (l *Level) NPCs() *npc.Manager { return l.npcs }

// Update advances every living enemy and boss by dt seconds toward target.
func (l *Level) Update(dt float64, target ai.Target) {
	for _, e := range l.enemies {
		if e.Alive() {
			e.Update(dt, target, l)
		}
	}
	for _, b := range l.bosses {
		if b.Alive() {
			b.Update(dt, target, l)
		}
	}
}

// TakeBossDefeats returns the bosses that died since the previous call.
//
// Postcondition: each boss is reported at most once over the level's lifetime.
func (l *Level) TakeBossDefeats() []BossDefeat {
	var out []BossDefeat
	for i, b := range l.bosses {
		if !b.Alive() && b.MarkDefeated() {
			out = append(out, BossDefeat{Index: i + 1, Flag: l.Area.Boss.Flag, Boss: b})
		}
	}
	return out
}

// Foes returns the living enemies followed by the living bosses.
//
// Postcondition: Returns a non-nil slice.
func (l *Level) Foes() []combat.Combatant {
	out := make([]combat.Combatant, 0, len(l.enemies)+len(l.bosses))
	for _, e := range l.enemies {
		if e.Alive() {
			out = append(out, e)
		}
	}
	for _, b := range l.bosses {
		if b.Alive() {
			out = append(out, b)
		}
	}
	return out
}

// FoeNearlyBeaten reports whether any living foe is under LowHealthFraction of its health.
func (l *Level) FoeNearlyBeaten() bool {
	for _, e := range l.enemies {
		if e.Alive() && e.Health.Fraction() < LowHealthFraction {
			return true
		}
	}
	for _, b := range l.bosses {
		if b.Alive() && b.Health.Fraction() < LowHealthFraction {
			return true
		}
	}
	return false
}

// PortalAt returns the first portal within PortalRange of r.
//
// Postcondition: Returns (Portal{}, false) when none is in range.
func (l *Level) PortalAt(r physics.Rect) (Portal, bool) {
	for _, p := range l.Area.Portals {
		if physics.Distance(r.CenterX(), r.CenterY(), p.CenterX(), p.CenterY()) < PortalRange {
			return p, true
		}
	}
	return Portal{}, false
}

// NPCNear returns the closest NPC within rng of r that still has dialogue.
func (l *Level) NPCNear(r physics.Rect, rng float64) (*npc.Instance, bool) {
	return l.npcs.Nearest(r, rng)
}
