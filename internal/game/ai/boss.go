package ai

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

// BossState is the boss's animation-facing state.
type BossState string

const (
	BossIdle            BossState = "idle"
	BossAttacking       BossState = "attacking"
	BossCombo           BossState = "combo"
	BossPhaseTransition BossState = "phase_transition"
	BossSpinning        BossState = "spinning"
	BossSlam            BossState = "slam"
	BossCasting         BossState = "casting"
)

const (
	adaptationPeriod = 3.0
	counterDecay     = 0.9
	bossFriction     = 0.9
	pressureLevel    = 5.0
)

// Boss is a multi-phase foe.
//
// Invariant: 1 <= Phase <= MaxPhases and Phase never decreases.
// Invariant: while Transitioning, the boss is invulnerable and runs no strategy.
type Boss struct {
	physics.Body
	Health         combat.Health
	Profile        *BossProfile
	Speed          float64
	Damage         float64
	Phase          int
	MaxPhases      int
	Transitioning  bool
	Invulnerable   bool
	State          BossState
	CurrentAbility Ability

	SpecialCooldown float64
	Aggression      LeakyCounter
	Defense         LeakyCounter

	id              string
	attack          combat.AttackWindow
	abilities       []Ability
	patternTimer    float64
	adaptationTimer float64
	defeated        bool

	t      tuning.Constants
	sched  *timer.Scheduler
	roller *dice.Roller
	logger *zap.Logger
}

// NewBoss spawns a boss of prof at (x, y).
//
// Precondition: prof must be valid; sched, roller, and logger must be non-nil.
func NewBoss(id string, x, y float64, prof *BossProfile, t tuning.Constants, sched *timer.Scheduler, roller *dice.Roller, logger *zap.Logger) *Boss {
	if sched == nil || roller == nil || logger == nil {
		panic("ai.NewBoss: scheduler, roller, and logger must be non-nil")
	}
	abilities := make([]Ability, 0, len(prof.Abilities))
	for _, name := range prof.Abilities {
		a, ok := ParseAbility(name)
		if !ok {
			logger.Warn("unknown boss ability in profile", zap.String("boss", prof.ID), zap.String("ability", name))
			continue
		}
		abilities = append(abilities, a)
	}
	return &Boss{
		Body:       physics.Body{X: x, Y: y, Width: prof.Width, Height: prof.Height},
		Health:     combat.NewHealth(prof.MaxHP),
		Profile:    prof,
		Speed:      prof.Speed,
		Damage:     prof.Damage,
		Phase:      1,
		MaxPhases:  prof.MaxPhases,
		State:      BossIdle,
		Aggression: LeakyCounter{Decay: counterDecay},
		Defense:    LeakyCounter{Decay: counterDecay},
		id:         id,
		abilities:  abilities,
		t:          t,
		sched:      sched,
		roller:     roller,
		logger:     logger,
	}
}

// Type returns the boss type ID.
func (b *Boss) Type() string { return b.Profile.ID }

// Abilities returns the boss's ability set in index order.
func (b *Boss) Abilities() []Ability {
	out := make([]Ability, len(b.abilities))
	copy(out, b.abilities)
	return out
}

// TargetPhase returns the phase the current hp fraction calls for, capped at MaxPhases.
func (b *Boss) TargetPhase() int {
	target := int(math.Ceil((1-b.Health.Fraction())*float64(b.MaxPhases))) + 1
	return min(target, b.MaxPhases)
}

// Update advances the boss by dt seconds.
func (b *Boss) Update(dt float64, target Target, w physics.World) {
	if !b.Alive() {
		return
	}
	dtMs := dt * 1000
	b.attack.Tick(dtMs)
	if b.SpecialCooldown > 0 {
		b.SpecialCooldown -= dtMs
	}
	b.patternTimer += dt
	b.adaptationTimer += dt

	if b.TargetPhase() > b.Phase && !b.Transitioning {
		b.transitionPhase()
	}

	if b.adaptationTimer > adaptationPeriod {
		b.analyze(target)
		b.adaptationTimer = 0
	}

	if !b.Transitioning {
		dist := physics.Distance(b.X, b.Y, target.X, target.Y)
		switch b.Phase {
		case 1:
			b.phase1(target, dist)
		case 2:
			b.phase2(target, dist)
		case 3:
			b.phase3(target, dist)
		}
	}

	b.applyPhysics(w)
}

func (b *Boss) transitionPhase() {
	b.Transitioning = true
	b.Phase++
	b.State = BossPhaseTransition
	b.Invulnerable = true
	b.logger.Info("boss phase transition", zap.String("boss", b.id), zap.String("type", b.Type()), zap.Int("phase", b.Phase))
	b.after(b.Profile.TransitionMs, "phase transition end", func() {
		b.Transitioning = false
		b.Invulnerable = false
		b.State = BossIdle
	})
}

func (b *Boss) analyze(t Target) {
	b.Aggression.Sample(t.Combo > 2)
	b.Defense.Sample(t.Dodging || t.Invulnerable)
}

func (b *Boss) phase1(t Target, dist float64) {
	switch {
	case dist < 100 && b.attack.Ready():
		b.basicAttack()
	case dist > 150:
		b.moveToward(t, 0.7)
	default:
		angle := math.Atan2(t.Y-b.Y, t.X-b.X)
		b.VX = math.Cos(angle+math.Pi/2) * b.Speed * 0.5
	}
	if b.SpecialCooldown <= 0 && b.patternTimer > 5 {
		b.UseAbility(0, t)
		b.patternTimer = 0
	}
}

func (b *Boss) phase2(t Target, dist float64) {
	b.Speed = 3
	switch {
	case dist < 120 && b.attack.Ready():
		b.comboAttack()
	case dist < 200:
		b.moveToward(t, 1.0)
	}
	if b.SpecialCooldown <= 0 && b.patternTimer > 3 {
		b.UseAbility(b.roller.IntRange("boss phase 2 ability", 0, 1), t)
		b.patternTimer = 0
	}
}

func (b *Boss) phase3(t Target, dist float64) {
	b.Speed = 3.5
	switch {
	case b.Aggression.Value > pressureLevel:
		b.defensive(t, dist)
	case b.Defense.Value > pressureLevel:
		b.aggressive(t, dist)
	case int(math.Floor(b.patternTimer))%2 == 0:
		b.aggressive(t, dist)
	default:
		b.defensive(t, dist)
	}
	if b.SpecialCooldown <= 0 && b.patternTimer > 2 && len(b.abilities) > 0 {
		b.UseAbility(b.roller.IntRange("boss phase 3 ability", 0, len(b.abilities)-1), t)
		b.patternTimer = 0
	}
}

func (b *Boss) defensive(t Target, dist float64) {
	if dist < 80 {
		b.VX = -t.direction(b.X) * b.Speed
		return
	}
	if b.attack.Ready() {
		b.basicAttack()
	}
}

func (b *Boss) aggressive(t Target, dist float64) {
	b.moveToward(t, 1.2)
	if dist < 100 && b.attack.Ready() {
		b.comboAttack()
	}
}

func (b *Boss) moveToward(t Target, scale float64) {
	b.VX = t.direction(b.X) * b.Speed * scale
}

func (b *Boss) basicAttack() {
	b.attack.Start(300, 1500)
	b.State = BossAttacking
}

func (b *Boss) comboAttack() {
	b.attack.Start(600, 2000)
	b.State = BossCombo
}

func (b *Boss) applyPhysics(w physics.World) {
	b.VY = physics.IntegrateGravity(b.VY, b.t.Gravity, b.t.MaxFallSpeed)
	b.Integrate()
	b.VX *= bossFriction
	physics.LandOnPlatforms(&b.Body, w.Platforms())
	b.ClampX(w.Width())
	if b.Y > w.Height() {
		b.Y = w.Height() - b.Height
	}
}

func (b *Boss) after(ms float64, label string, fn func()) {
	b.sched.After(time.Duration(ms*float64(time.Millisecond)), b, label, fn)
}

// MarkDefeated records the defeat once.
//
// Postcondition: Returns true only on the first call after the boss has died.
func (b *Boss) MarkDefeated() bool {
	if b.Alive() || b.defeated {
		return false
	}
	b.defeated = true
	return true
}

// ID implements combat.Combatant.
func (b *Boss) ID() string { return b.id }

// Kind implements combat.Combatant.
func (b *Boss) Kind() combat.Kind { return combat.KindBoss }

// Bounds implements combat.Combatant.
func (b *Boss) Bounds() physics.Rect { return b.Rect() }

// Alive implements combat.Combatant and timer.Owner.
func (b *Boss) Alive() bool { return b.Health.Alive() }

// Attacking implements combat.Combatant.
func (b *Boss) Attacking() bool { return b.attack.Active }

// AttackHitbox implements combat.Combatant. Spinning widens the reach.
func (b *Boss) AttackHitbox() (combat.Hitbox, bool) {
	if !b.attack.Active {
		return combat.Hitbox{}, false
	}
	reach := defaultHitReach
	if b.State == BossSpinning {
		reach = spinningReach
	}
	return combat.Hitbox{
		Rect:   physics.Rect{X: b.X - reach/2, Y: b.Y, W: b.Width + reach, H: b.Height},
		Damage: b.Damage,
	}, true
}

// TakeDamage implements combat.Combatant.
//
// Postcondition: Returns false and leaves hp unchanged while invulnerable.
func (b *Boss) TakeDamage(amount float64) bool {
	if b.Invulnerable {
		return false
	}
	b.Health.Damage(amount)
	return true
}

// ApplyKnockback implements combat.Knockbacker. Bosses take half force and
// ignore knockback while transitioning.
func (b *Boss) ApplyKnockback(dir, force float64) {
	if b.Transitioning {
		return
	}
	b.VX = dir * force * 0.5
}
