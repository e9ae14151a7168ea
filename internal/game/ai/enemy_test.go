package ai_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/player"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var ground = physics.StaticWorld{
	W: 3000, H: 1000,
	Solids: []physics.Platform{{Rect: physics.Rect{X: 0, Y: 600, W: 3000, H: 400}}},
}

func basicEnemy(x, y float64) *ai.Enemy {
	r := ai.NewRegistry(zap.NewNop())
	return ai.NewEnemy("e1", x, y, r.Enemy("basic"), tuning.Defaults())
}

func TestEnemy_StartsAggressivePatrolling(t *testing.T) {
	e := basicEnemy(300, 560)
	assert.Equal(t, ai.StatePatrol, e.State)
	assert.Equal(t, ai.BehaviorAggressive, e.Behavior)
	assert.Equal(t, 30.0, e.Health.HP)
}

func TestEnemy_StateFollowsDistance(t *testing.T) {
	e := basicEnemy(300, 560)
	e.Update(0.016, ai.Target{X: 1000, Y: 560}, ground)
	assert.Equal(t, ai.StatePatrol, e.State)

	e.Update(0.016, ai.Target{X: e.X + 150, Y: e.Y}, ground)
	assert.Equal(t, ai.StateChase, e.State)
	assert.Equal(t, 3.0, e.VX, "aggressive chase runs at full speed")

	e.Update(0.016, ai.Target{X: e.X + 10, Y: e.Y}, ground)
	assert.Equal(t, ai.StateAttack, e.State)
	assert.True(t, e.Attacking())

	e.Update(0.016, ai.Target{X: 3000, Y: 0}, ground)
	assert.Equal(t, ai.StatePatrol, e.State, "no hysteresis")
}

func TestEnemy_PatrolTurnsAround(t *testing.T) {
	e := basicEnemy(300, 560)
	far := ai.Target{X: 2900, Y: 0}
	for i := 0; i < 100; i++ {
		e.Update(0.016, far, ground)
	}
	assert.LessOrEqual(t, e.X, 300.0+100+2*1.5)
	assert.GreaterOrEqual(t, e.X, 300.0-100-2*1.5)
}

func TestEnemy_AttackWindowAndCooldown(t *testing.T) {
	e := basicEnemy(300, 560)
	near := ai.Target{X: 310, Y: 560}
	e.Update(0.016, near, ground)
	require.True(t, e.Attacking())
	hb, ok := e.AttackHitbox()
	require.True(t, ok)
	assert.Equal(t, 10.0, hb.Damage)
	assert.Equal(t, e.X-20, hb.X)
	assert.Equal(t, 70.0, hb.W)

	e.Update(0.2, near, ground)
	assert.False(t, e.Attacking(), "window closes after 200ms")
	e.Update(0.5, near, ground)
	assert.False(t, e.Attacking(), "cooldown still running")
	e.Update(0.4, near, ground)
	assert.True(t, e.Attacking())
}

func TestAdaptBehavior(t *testing.T) {
	assert.Equal(t, ai.BehaviorDefensive, ai.AdaptBehavior(ai.Target{Combo: 4, DodgeCooldown: 100}))
	assert.Equal(t, ai.BehaviorAggressive, ai.AdaptBehavior(ai.Target{Combo: 3, DodgeCooldown: 100}))
	assert.Equal(t, ai.BehaviorTactical, ai.AdaptBehavior(ai.Target{}))
}

func TestEnemy_BehaviorRerollsAfterFiveSeconds(t *testing.T) {
	e := basicEnemy(300, 560)
	far := ai.Target{X: 2900, Y: 0}
	for i := 0; i < 5; i++ {
		e.Update(1.0, far, ground)
	}
	assert.Equal(t, ai.BehaviorAggressive, e.Behavior)
	e.Update(0.1, far, ground)
	assert.Equal(t, ai.BehaviorTactical, e.Behavior)
}

func TestEnemy_TacticalBacksOffWhenClose(t *testing.T) {
	e := basicEnemy(300, 560)
	e.Behavior = ai.BehaviorTactical
	e.Update(0.016, ai.Target{X: e.X + 80, Y: e.Y}, ground)
	assert.InDelta(t, -1.5, e.VX, 1e-9)
}

func TestEnemy_FallsOutOfWorldAndDies(t *testing.T) {
	e := basicEnemy(300, 900)
	for i := 0; i < 30 && e.Alive(); i++ {
		e.Update(0.016, ai.Target{X: 2900}, physics.StaticWorld{W: 3000, H: 1000})
	}
	assert.False(t, e.Alive())
	assert.Equal(t, 30.0, e.Health.HP, "falling does not change hp")
}

func TestEnemy_ThreeBasicHitsKill(t *testing.T) {
	clk := timer.NewManualClock(epoch)
	sched := timer.NewScheduler(clk, zap.NewNop())
	p := player.New(100, 550, tuning.Defaults(), sched)
	e := basicEnemy(140, 560)
	res := combat.NewResolver(0.3, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.True(t, e.Alive())
		p.Attack(player.AttackBasic)
		hits := res.Resolve(0.016, p, []combat.Combatant{e})
		require.Len(t, hits, 1)
		assert.Equal(t, 10.0, hits[0].Damage)
		clk.Advance(600 * time.Millisecond)
		sched.Drain()
		p.Combo = 0
		e.X = 140
	}
	assert.False(t, e.Alive())
	assert.Equal(t, 0.0, e.Health.HP)
}

func TestPropertyEnemy_StateReactsToDistance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := basicEnemy(1000, 560)
		tx := rapid.Float64Range(0, 3000).Draw(t, "tx")
		ty := rapid.Float64Range(0, 1000).Draw(t, "ty")
		dist := physics.Distance(e.X, e.Y, tx, ty)
		e.Update(0.016, ai.Target{X: tx, Y: ty}, ground)
		switch {
		case dist < 50:
			assert.Equal(t, ai.StateAttack, e.State)
		case dist < 200:
			assert.Equal(t, ai.StateChase, e.State)
		default:
			assert.Equal(t, ai.StatePatrol, e.State)
		}
	})
}

func TestPropertyEnemy_NoPlatformsNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := basicEnemy(rapid.Float64Range(0, 3000).Draw(t, "x"), rapid.Float64Range(0, 1000).Draw(t, "y"))
		empty := physics.StaticWorld{W: 3000, H: 1000}
		for i := 0; i < 20; i++ {
			e.Update(0.016, ai.Target{X: 1500, Y: 500}, empty)
			assert.GreaterOrEqual(t, e.X, 0.0)
			assert.LessOrEqual(t, e.X, 2970.0)
		}
	})
}
