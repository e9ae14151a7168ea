package ai

import (
	"math"

	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

// EnemyState is the enemy's movement state.
type EnemyState int

const (
	StatePatrol EnemyState = iota
	StateChase
	StateAttack
)

// String returns the state label.
func (s EnemyState) String() string {
	switch s {
	case StatePatrol:
		return "patrol"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Behavior is how an enemy chases.
type Behavior int

const (
	BehaviorAggressive Behavior = iota
	BehaviorTactical
	BehaviorDefensive
)

// String returns the behavior label.
func (b Behavior) String() string {
	switch b {
	case BehaviorAggressive:
		return "aggressive"
	case BehaviorTactical:
		return "tactical"
	case BehaviorDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

const (
	behaviorPeriod   = 5.0
	comboThreshold   = 3
	tacticalGap      = 100.0
	enemyHitReach    = 40.0
	patrolSpeedScale = 0.5
	attackBrake      = 0.5
)

// Enemy is a regular foe.
//
// Invariant: State is recomputed from distance every tick, with no hysteresis.
type Enemy struct {
	physics.Body
	Health   combat.Health
	Profile  *EnemyProfile
	State    EnemyState
	Behavior Behavior

	id            string
	attack        combat.AttackWindow
	patrolDir     float64
	startX        float64
	behaviorTimer float64
	t             tuning.Constants
}

// NewEnemy spawns an enemy of prof at (x, y).
//
// Precondition: prof must be valid.
func NewEnemy(id string, x, y float64, prof *EnemyProfile, t tuning.Constants) *Enemy {
	return &Enemy{
		Body:      physics.Body{X: x, Y: y, Width: prof.Width, Height: prof.Height},
		Health:    combat.NewHealth(prof.MaxHP),
		Profile:   prof,
		State:     StatePatrol,
		Behavior:  BehaviorAggressive,
		id:        id,
		patrolDir: 1,
		startX:    x,
		t:         t,
	}
}

// Update advances the enemy by dt seconds toward or around target.
func (e *Enemy) Update(dt float64, target Target, w physics.World) {
	if !e.Alive() {
		return
	}
	e.attack.Tick(dt * 1000)
	e.behaviorTimer += dt

	dist := physics.Distance(e.X, e.Y, target.X, target.Y)
	switch {
	case dist < e.Profile.AttackRange:
		e.State = StateAttack
	case dist < e.Profile.DetectionRange:
		e.State = StateChase
	default:
		e.State = StatePatrol
	}

	if e.behaviorTimer > behaviorPeriod {
		e.Behavior = AdaptBehavior(target)
		e.behaviorTimer = 0
	}

	switch e.State {
	case StatePatrol:
		e.patrol()
	case StateChase:
		e.chase(target)
	case StateAttack:
		e.attackTarget()
	}

	e.VY = physics.IntegrateGravity(e.VY, e.t.Gravity, e.t.MaxFallSpeed)
	e.Integrate()
	physics.LandOnPlatforms(&e.Body, w.Platforms())
	e.ClampX(w.Width())
	if e.Y > w.Height() {
		e.Health.Kill()
	}
}

// AdaptBehavior picks the chase behavior that counters the player's recent play.
func AdaptBehavior(target Target) Behavior {
	switch {
	case target.Combo > comboThreshold:
		return BehaviorDefensive
	case target.DodgeCooldown > 0:
		return BehaviorAggressive
	default:
		return BehaviorTactical
	}
}

func (e *Enemy) patrol() {
	e.VX = e.patrolDir * e.Profile.Speed * patrolSpeedScale
	if math.Abs(e.X-e.startX) > e.Profile.PatrolDistance {
		e.patrolDir = -e.patrolDir
	}
}

func (e *Enemy) chase(target Target) {
	dir := target.direction(e.X)
	switch e.Behavior {
	case BehaviorAggressive:
		e.VX = dir * e.Profile.Speed
	case BehaviorTactical:
		if math.Abs(target.X-e.X) < tacticalGap {
			e.VX = -dir * e.Profile.Speed * 0.5
		} else {
			e.VX = dir * e.Profile.Speed * 0.7
		}
	case BehaviorDefensive:
		e.VX = dir * e.Profile.Speed * 0.3
	}
}

func (e *Enemy) attackTarget() {
	e.VX *= attackBrake
	if e.attack.Ready() {
		e.attack.Start(e.Profile.AttackWindowMs, e.Profile.AttackCooldownMs)
	}
}

// ID implements combat.Combatant.
func (e *Enemy) ID() string { return e.id }

// Kind implements combat.Combatant.
func (e *Enemy) Kind() combat.Kind { return combat.KindEnemy }

// Bounds implements combat.Combatant.
func (e *Enemy) Bounds() physics.Rect { return e.Rect() }

// Alive implements combat.Combatant and timer.Owner.
func (e *Enemy) Alive() bool { return e.Health.Alive() }

// Attacking implements combat.Combatant.
func (e *Enemy) Attacking() bool { return e.attack.Active }

// AttackHitbox implements combat.Combatant.
func (e *Enemy) AttackHitbox() (combat.Hitbox, bool) {
	if !e.attack.Active {
		return combat.Hitbox{}, false
	}
	return combat.Hitbox{
		Rect:   physics.Rect{X: e.X - enemyHitReach/2, Y: e.Y, W: e.Width + enemyHitReach, H: e.Height},
		Damage: e.Profile.Damage,
	}, true
}

// TakeDamage implements combat.Combatant. Enemies have no invulnerability.
func (e *Enemy) TakeDamage(amount float64) bool {
	e.Health.Damage(amount)
	return true
}

// ApplyKnockback implements combat.Knockbacker.
func (e *Enemy) ApplyKnockback(dir, force float64) {
	e.VX = dir * force
}
