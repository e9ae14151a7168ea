package ai_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

type bossRig struct {
	clock *timer.ManualClock
	sched *timer.Scheduler
	boss  *ai.Boss
}

func newBossRig(kind string, src dice.Source) *bossRig {
	clk := timer.NewManualClock(epoch)
	sched := timer.NewScheduler(clk, zap.NewNop())
	roller := dice.NewLoggedRoller(src, zap.NewNop())
	reg := ai.NewRegistry(zap.NewNop())
	b := ai.NewBoss("boss1", 1000, 550, reg.Boss(kind), tuning.Defaults(), sched, roller, zap.NewNop())
	return &bossRig{clock: clk, sched: sched, boss: b}
}

func (r *bossRig) step(dt float64, t ai.Target) {
	r.clock.Advance(time.Duration(dt * float64(time.Second)))
	r.sched.Drain()
	r.boss.Update(dt, t, ground)
}

var farTarget = ai.Target{X: 100, Y: 550}

func TestBoss_Defaults(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	assert.Equal(t, 1, b.Phase)
	assert.Equal(t, 3, b.MaxPhases)
	assert.Equal(t, 200.0, b.Health.HP)
	assert.Equal(t, ai.BossIdle, b.State)
	assert.Equal(t, []ai.Ability{ai.AbilityCharge, ai.AbilitySpinAttack, ai.AbilityGroundSlam}, b.Abilities())
}

func TestBoss_UnknownTypeFallsBackToWarrior(t *testing.T) {
	r := newBossRig("lich", dice.NewSeededSource(1))
	assert.Equal(t, "warrior", r.boss.Type())
}

func TestBoss_HalfHPTransitionsThroughPhaseTwoToThree(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	r.step(0.016, farTarget)
	require.Equal(t, 1, b.Phase)

	require.True(t, b.TakeDamage(100))
	assert.Equal(t, 3, b.TargetPhase())
	r.step(0.016, farTarget)
	assert.Equal(t, 2, b.Phase)
	assert.True(t, b.Transitioning)
	assert.True(t, b.Invulnerable)
	assert.Equal(t, ai.BossPhaseTransition, b.State)

	assert.False(t, b.TakeDamage(50), "invulnerable during transition")
	assert.Equal(t, 100.0, b.Health.HP)

	r.step(2.0, farTarget)
	assert.Equal(t, 3, b.Phase)
	assert.True(t, b.Transitioning)

	r.step(2.0, farTarget)
	assert.Equal(t, 3, b.Phase)
	assert.False(t, b.Transitioning)
	assert.False(t, b.Invulnerable)
}

func TestBoss_AnyDamageEntersPhaseTwo(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	r.boss.TakeDamage(1)
	r.step(0.016, farTarget)
	assert.Equal(t, 2, r.boss.Phase)
}

func TestBoss_KnockbackHalvedAndIgnoredDuringTransition(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	b.ApplyKnockback(1, 4)
	assert.Equal(t, 2.0, b.VX)

	b.TakeDamage(10)
	r.step(0.016, farTarget)
	require.True(t, b.Transitioning)
	b.VX = 0
	b.ApplyKnockback(1, 4)
	assert.Equal(t, 0.0, b.VX)
}

func TestBoss_TransitionFreezesStrategy(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	b.TakeDamage(10)
	near := ai.Target{X: b.X + 20, Y: b.Y}
	r.step(0.016, near)
	require.True(t, b.Transitioning)
	assert.False(t, b.Attacking())
}

func TestBoss_Phase1BasicAttack(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	r.step(0.016, ai.Target{X: b.X + 50, Y: b.Y})
	assert.True(t, b.Attacking())
	assert.Equal(t, ai.BossAttacking, b.State)
	hb, ok := b.AttackHitbox()
	require.True(t, ok)
	assert.Equal(t, 25.0, hb.Damage)
	assert.Equal(t, 110.0, hb.W)
}

func TestBoss_Phase1UsesFirstAbilityAfterPatternDelay(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	for i := 0; i < 6; i++ {
		r.step(1.0, farTarget)
	}
	assert.Equal(t, ai.AbilityCharge, b.CurrentAbility)
	assert.Greater(t, b.SpecialCooldown, 0.0)
}

func TestBoss_SpinAttackBuffsAndRestoresDamage(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	b.UseAbility(1, farTarget)
	assert.Equal(t, ai.BossSpinning, b.State)
	assert.Equal(t, 37.5, b.Damage)

	r.clock.Advance(time.Second)
	r.sched.Drain()
	assert.Equal(t, ai.BossIdle, b.State)
	assert.Equal(t, 25.0, b.Damage)
}

func TestBoss_SpinningWidensHitbox(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	r.step(0.016, ai.Target{X: b.X + 50, Y: b.Y})
	b.UseAbility(1, farTarget)
	hb, ok := b.AttackHitbox()
	require.True(t, ok)
	assert.Equal(t, b.X-40, hb.X)
	assert.Equal(t, 140.0, hb.W)
}

func TestBoss_ChargeBrakesAfterDelay(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	b.UseAbility(0, ai.Target{X: 2000, Y: 550})
	assert.Equal(t, 6.0, b.VX)
	r.clock.Advance(500 * time.Millisecond)
	r.sched.Drain()
	assert.Equal(t, 3.0, b.VX)
}

func TestBoss_TeleportSide(t *testing.T) {
	r := newBossRig("mage", &dice.SequenceSource{Values: []int{1, 0}})
	b := r.boss
	b.UseAbility(1, ai.Target{X: 500, Y: 550})
	assert.Equal(t, 650.0, b.X)
	b.UseAbility(1, ai.Target{X: 500, Y: 550})
	assert.Equal(t, 350.0, b.X)
}

func TestBoss_InertAbilitiesOnlySpendCooldown(t *testing.T) {
	r := newBossRig("shadow", dice.NewSeededSource(1))
	b := r.boss
	x, vx := b.X, b.VX
	b.UseAbility(1, farTarget)
	assert.Equal(t, ai.AbilityClone, b.CurrentAbility)
	assert.Equal(t, 5000.0, b.SpecialCooldown)
	assert.Equal(t, x, b.X)
	assert.Equal(t, vx, b.VX)
}

func TestBoss_OutOfRangeAbilityIsNoop(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	assert.NotPanics(t, func() { b.UseAbility(7, farTarget) })
	assert.Equal(t, ai.AbilityNone, b.CurrentAbility)
	assert.Equal(t, 0.0, b.SpecialCooldown)
}

func TestBoss_DeferredEffectsDroppedAfterDeath(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	b.UseAbility(1, farTarget)
	b.TakeDamage(1000)
	r.clock.Advance(time.Second)
	assert.Equal(t, 0, r.sched.Drain())
	assert.Equal(t, 37.5, b.Damage)
}

func TestBoss_MarkDefeatedOnce(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	assert.False(t, b.MarkDefeated())
	b.TakeDamage(500)
	assert.True(t, b.MarkDefeated())
	assert.False(t, b.MarkDefeated())
}

func TestBoss_AnalyzeDecaysCounters(t *testing.T) {
	r := newBossRig("warrior", dice.NewSeededSource(1))
	b := r.boss
	aggressive := ai.Target{X: 100, Y: 550, Combo: 3, Dodging: true}
	for i := 0; i < 4; i++ {
		r.step(1.0, aggressive)
	}
	assert.InDelta(t, 0.9, b.Aggression.Value, 1e-9)
	assert.InDelta(t, 0.9, b.Defense.Value, 1e-9)
}

func TestPropertyBoss_PhaseMonotonicAndBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := newBossRig("warrior", dice.NewSeededSource(rapid.Int64Range(1, 1<<30).Draw(t, "seed")))
		b := r.boss
		prev := b.Phase
		steps := rapid.SliceOfN(rapid.Float64Range(0, 40), 1, 40).Draw(t, "damage")
		for _, dmg := range steps {
			b.TakeDamage(dmg)
			r.step(rapid.Float64Range(0.01, 2.5).Draw(t, "dt"), farTarget)
			assert.GreaterOrEqual(t, b.Phase, prev)
			assert.LessOrEqual(t, b.Phase, b.MaxPhases)
			assert.GreaterOrEqual(t, b.Phase, 1)
			prev = b.Phase
		}
	})
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(`
enemies:
  - id: brute
    max_hp: 80
    damage: 20
    speed: 1.5
    width: 40
    height: 50
    patrol_distance: 60
    detection_range: 220
    attack_range: 60
    attack_window_ms: 300
    attack_cooldown_ms: 1400
bosses:
  - id: warrior
    max_hp: 300
    damage: 30
    speed: 2
    width: 60
    height: 80
    max_phases: 3
    transition_ms: 2000
    special_cooldown_ms: 5000
    abilities: [charge, ground_slam]
`), 0644))

	reg := ai.NewRegistry(zap.NewNop())
	require.NoError(t, reg.LoadDir(dir))
	assert.Equal(t, 80.0, reg.Enemy("brute").MaxHP)
	assert.Equal(t, 300.0, reg.Boss("warrior").MaxHP, "loaded profile replaces built-in")
	assert.Equal(t, 30.0, reg.Enemy("basic").MaxHP)

	err := reg.RegisterEnemy(&ai.EnemyProfile{ID: "brute"})
	assert.Error(t, err)
}

func TestParseProfiles_RejectsUnknownAbility(t *testing.T) {
	_, _, err := ai.ParseProfiles([]byte(`
bosses:
  - id: odd
    max_hp: 10
    damage: 1
    speed: 1
    width: 10
    height: 10
    max_phases: 2
    transition_ms: 100
    special_cooldown_ms: 100
    abilities: [moonbeam]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moonbeam")
}

func TestRegistry_UnknownEnemyFallsBack(t *testing.T) {
	reg := ai.NewRegistry(zap.NewNop())
	assert.Equal(t, "basic", reg.Enemy("dragon").ID)
}
