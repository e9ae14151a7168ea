package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
)

type dummy struct {
	id        string
	kind      combat.Kind
	body      physics.Rect
	health    combat.Health
	attacking bool
	hitbox    combat.Hitbox
	iframes   bool
	knockDir  float64
	knockF    float64
	knocked   int
}

func (d *dummy) ID() string               { return d.id }
func (d *dummy) Kind() combat.Kind        { return d.kind }
func (d *dummy) Bounds() physics.Rect     { return d.body }
func (d *dummy) Alive() bool              { return d.health.Alive() }
func (d *dummy) Attacking() bool          { return d.attacking }
func (d *dummy) AttackHitbox() (combat.Hitbox, bool) {
	return d.hitbox, d.attacking
}
func (d *dummy) TakeDamage(amount float64) bool {
	if d.iframes {
		return false
	}
	d.health.Damage(amount)
	return true
}

type pushable struct{ *dummy }

func (p pushable) ApplyKnockback(dir, force float64) {
	p.knockDir, p.knockF = dir, force
	p.knocked++
}

func newPlayer() *dummy {
	return &dummy{id: "player", kind: combat.KindPlayer, body: physics.Rect{X: 100, Y: 100, W: 30, H: 50}, health: combat.NewHealth(100)}
}

func TestHealth_ClampsAndDiesOnce(t *testing.T) {
	h := combat.NewHealth(30)
	assert.False(t, h.Damage(10))
	assert.True(t, h.Damage(25))
	assert.Equal(t, 0.0, h.HP)
	assert.False(t, h.Alive())
	assert.False(t, h.Damage(5))
	h.Heal(10)
	assert.Equal(t, 0.0, h.HP)
}

func TestHealth_IgnoresNonPositiveAmounts(t *testing.T) {
	h := combat.NewHealth(100)
	h.Damage(40)
	assert.False(t, h.Damage(-500))
	assert.Equal(t, 60.0, h.HP)
	h.Heal(-1000)
	assert.Equal(t, 60.0, h.HP)
	assert.True(t, h.Alive())

	assert.True(t, h.Damage(60))
	assert.False(t, h.Damage(-10))
	assert.Equal(t, 0.0, h.HP)
}

func TestHealth_HealCapsAtMax(t *testing.T) {
	h := combat.NewHealth(100)
	h.Damage(30)
	h.Heal(50)
	assert.Equal(t, 100.0, h.HP)
}

func TestAttackWindow_TimerClosesWindow(t *testing.T) {
	var w combat.AttackWindow
	require.True(t, w.Ready())
	w.Start(200, 1000)
	assert.True(t, w.Active)
	assert.False(t, w.Ready())
	w.Tick(150)
	assert.True(t, w.Active)
	w.Tick(50)
	assert.False(t, w.Active)
	w.Tick(800)
	assert.True(t, w.Ready())
}

func TestResolve_PlayerHitAppliesDamageEffectAndKnockback(t *testing.T) {
	r := combat.NewResolver(0.3, zap.NewNop())
	p := newPlayer()
	p.attacking = true
	p.hitbox = combat.Hitbox{Rect: physics.Rect{X: 130, Y: 100, W: 40, H: 50}, Damage: 10}

	foe := pushable{&dummy{id: "e1", kind: combat.KindEnemy, body: physics.Rect{X: 140, Y: 110, W: 30, H: 40}, health: combat.NewHealth(30)}}
	hits := r.Resolve(0.016, p, []combat.Combatant{foe})

	require.Len(t, hits, 1)
	assert.True(t, hits[0].Applied)
	assert.Equal(t, 20.0, foe.health.HP)
	assert.Equal(t, 1.0, foe.knockDir)
	assert.Equal(t, 2.0, foe.knockF)
	assert.Len(t, r.Effects(), 1)
}

func TestResolve_DeadFoesAreSkipped(t *testing.T) {
	r := combat.NewResolver(0.3, zap.NewNop())
	p := newPlayer()
	p.attacking = true
	p.hitbox = combat.Hitbox{Rect: physics.Rect{X: 130, Y: 100, W: 40, H: 50}, Damage: 10}
	foe := &dummy{id: "e1", body: physics.Rect{X: 140, Y: 110, W: 30, H: 40}, health: combat.NewHealth(30)}
	foe.health.Kill()
	assert.Empty(t, r.Resolve(0.016, p, []combat.Combatant{foe}))
}

func TestResolve_FoeHitRespectsInvulnerability(t *testing.T) {
	r := combat.NewResolver(0.3, zap.NewNop())
	p := newPlayer()
	foe := &dummy{id: "e1", kind: combat.KindEnemy, attacking: true,
		hitbox: combat.Hitbox{Rect: physics.Rect{X: 90, Y: 100, W: 70, H: 40}, Damage: 10}}

	hits := r.Resolve(0.016, p, []combat.Combatant{foe})
	require.Len(t, hits, 1)
	assert.True(t, hits[0].Applied)
	assert.Equal(t, 90.0, p.health.HP)

	p.iframes = true
	hits = r.Resolve(0.016, p, []combat.Combatant{foe})
	require.Len(t, hits, 1)
	assert.False(t, hits[0].Applied)
	assert.Equal(t, 90.0, p.health.HP)
	assert.Len(t, r.Effects(), 1)
}

func TestResolve_OverlappingHitboxDamagesEveryTick(t *testing.T) {
	r := combat.NewResolver(0.3, zap.NewNop())
	p := newPlayer()
	p.attacking = true
	p.hitbox = combat.Hitbox{Rect: physics.Rect{X: 130, Y: 100, W: 40, H: 50}, Damage: 10}
	foe := &dummy{id: "e1", body: physics.Rect{X: 140, Y: 110, W: 30, H: 40}, health: combat.NewHealth(30)}

	for i := 0; i < 3; i++ {
		r.Resolve(0.016, p, []combat.Combatant{foe})
	}
	assert.False(t, foe.Alive())
	assert.Equal(t, 0.0, foe.health.HP)
}

func TestResolve_EffectsExpire(t *testing.T) {
	r := combat.NewResolver(0.3, zap.NewNop())
	p := newPlayer()
	foe := &dummy{id: "e1", attacking: true,
		hitbox: combat.Hitbox{Rect: physics.Rect{X: 90, Y: 100, W: 70, H: 40}, Damage: 1}}
	r.Resolve(0.1, p, []combat.Combatant{foe})
	require.Len(t, r.Effects(), 1)
	foe.attacking = false
	r.Resolve(0.1, p, nil)
	assert.Len(t, r.Effects(), 1)
	r.Resolve(0.15, p, nil)
	assert.Empty(t, r.Effects())
}

func TestPropertyHealth_StaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := combat.NewHealth(rapid.Float64Range(1, 500).Draw(t, "max"))
		deaths := 0
		for i, amount := range rapid.SliceOf(rapid.Float64Range(-300, 300)).Draw(t, "amounts") {
			before := h.HP
			if rapid.Bool().Draw(t, "heal") {
				h.Heal(amount)
				if !h.Alive() || amount <= 0 {
					assert.Equal(t, before, h.HP, "step %d", i)
				}
			} else {
				wasAlive := h.Alive()
				died := h.Damage(amount)
				if died {
					deaths++
				}
				assert.Equal(t, wasAlive && h.HP == 0 && amount > 0, died, "step %d", i)
				if amount <= 0 {
					assert.Equal(t, before, h.HP, "step %d", i)
				}
			}
			assert.GreaterOrEqual(t, h.HP, 0.0)
			assert.LessOrEqual(t, h.HP, h.MaxHP)
		}
		assert.LessOrEqual(t, deaths, 1)
		assert.Equal(t, h.HP == 0, !h.Alive())
	})
}
