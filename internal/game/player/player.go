// Package player implements the player character: movement, jumping and wall
// climbing, dodging, the attack combo, and invulnerability windows.
package player

import (
	"time"

	"github.com/cory-johannsen/duskborne/internal/game/combat"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

const (
	// Width and Height are the player's body dimensions.
	Width  = 30
	Height = 50

	attackReach   = 40
	comboBonus    = 1.5
	specialBonus  = 2.0
	wallJumpScale = 1.5
)

// AttackKind distinguishes the two attack buttons.
type AttackKind int

const (
	AttackBasic AttackKind = iota
	AttackSpecial
)

// Player is the controllable character.
//
// Invariant: 0 <= Health.HP <= Health.MaxHP.
// Invariant: Facing is 1 or -1.
type Player struct {
	physics.Body
	Health combat.Health
	Facing float64

	attack     combat.AttackWindow
	lastKind   AttackKind
	Combo      int
	lastAttack time.Time

	Dodging       bool
	DodgeCooldown float64
	Invulnerable  bool
	InvulnTimer   float64

	OnGround        bool
	CanDoubleJump   bool
	HasDoubleJumped bool
	Climbing        bool
	Wall            physics.WallSide

	t     tuning.Constants
	sched *timer.Scheduler
}

// New places a player at (x, y).
//
// Precondition: sched must be non-nil.
func New(x, y float64, t tuning.Constants, sched *timer.Scheduler) *Player {
	if sched == nil {
		panic("player.New: scheduler must be non-nil")
	}
	return &Player{
		Body:          physics.Body{X: x, Y: y, Width: Width, Height: Height},
		Health:        combat.NewHealth(t.PlayerMaxHP),
		Facing:        1,
		CanDoubleJump: true,
		t:             t,
		sched:         sched,
	}
}

// Update advances the player by dt seconds.
func (p *Player) Update(dt float64, in Input, w physics.World) {
	dtMs := dt * 1000
	p.attack.Tick(dtMs)
	if p.DodgeCooldown > 0 {
		p.DodgeCooldown -= dtMs
	}
	if p.InvulnTimer > 0 {
		p.InvulnTimer -= dtMs
		if p.InvulnTimer <= 0 {
			p.Invulnerable = false
		}
	}

	p.handleInput(in)

	if !p.Climbing {
		p.VY = physics.IntegrateGravity(p.VY, p.t.Gravity, p.t.MaxFallSpeed)
	}
	p.Integrate()

	c := physics.ResolveCollisions(&p.Body, w)
	p.OnGround = c.OnGround
	p.Wall = c.Wall
	if c.Landed {
		p.HasDoubleJumped = false
	}

	if p.sched.Clock().Now().Sub(p.lastAttack) > p.t.ComboWindow {
		p.Combo = 0
	}
}

func (p *Player) handleInput(in Input) {
	if in.IsActionPressed(ActionDodge) && p.DodgeCooldown <= 0 && !p.Dodging {
		p.StartDodge()
	}
	if p.Dodging {
		return
	}

	if axis := in.Axis(ActionLeft, ActionRight); axis != 0 {
		p.VX = axis * p.t.PlayerSpeed
		if axis > 0 {
			p.Facing = 1
		} else {
			p.Facing = -1
		}
	} else {
		p.VX *= p.t.Friction
	}

	switch {
	case p.Wall != physics.NoWall && in.IsActionDown(ActionUp):
		p.VY = -p.t.PlayerSpeed
		p.Climbing = true
	case p.Wall != physics.NoWall && in.IsActionDown(ActionDown):
		p.VY = p.t.PlayerSpeed
		p.Climbing = true
	default:
		p.Climbing = false
	}

	if in.IsActionPressed(ActionJump) {
		switch {
		case p.OnGround:
			p.VY = p.t.JumpSpeed
			p.OnGround = false
			p.HasDoubleJumped = false
		case p.CanDoubleJump && !p.HasDoubleJumped:
			p.VY = p.t.JumpSpeed
			p.HasDoubleJumped = true
		case p.Wall != physics.NoWall:
			p.VY = p.t.JumpSpeed
			away := -1.0
			if p.Wall == physics.WallLeft {
				away = 1
			}
			p.VX = away * p.t.PlayerSpeed * wallJumpScale
			p.Wall = physics.NoWall
		}
	}

	if in.IsActionPressed(ActionAttack) && p.attack.Ready() {
		p.Attack(AttackBasic)
	}
	if in.IsActionPressed(ActionSpecial) && p.attack.Ready() {
		p.Attack(AttackSpecial)
	}
}

// StartDodge dashes in the facing direction with invulnerability for the dodge duration.
func (p *Player) StartDodge() {
	p.Dodging = true
	p.Invulnerable = true
	p.DodgeCooldown = tuning.Ms(p.t.DodgeCooldown)
	p.VX = p.t.DashSpeed * p.Facing
	p.sched.After(p.t.DodgeDuration, p, "dodge end", func() {
		p.Dodging = false
		p.Invulnerable = false
	})
}

// Attack opens an attack window and advances the combo.
//
// Postcondition: Combo >= 1 and the attack cooldown is running.
func (p *Player) Attack(kind AttackKind) {
	now := p.sched.Clock().Now()
	p.attack.Start(0, tuning.Ms(p.t.AttackCooldown))
	p.lastKind = kind
	if now.Sub(p.lastAttack) <= p.t.ComboWindow {
		p.Combo++
	} else {
		p.Combo = 1
	}
	p.lastAttack = now
	p.sched.After(p.t.AttackWindow, p, "attack end", func() {
		p.attack.Active = false
	})
}

// TakeDamage applies amount unless invulnerable, then starts the invulnerability window.
//
// Postcondition: Returns false iff the player was invulnerable.
func (p *Player) TakeDamage(amount float64) bool {
	if p.Invulnerable {
		return false
	}
	p.Health.Damage(amount)
	p.Invulnerable = true
	p.InvulnTimer = tuning.Ms(p.t.Invulnerability)
	return true
}

// Heal restores hit points up to the maximum.
func (p *Player) Heal(amount float64) {
	p.Health.Heal(amount)
}

// Place moves the player to (x, y) and stops it, as on entering an area.
func (p *Player) Place(x, y float64) {
	p.X, p.Y = x, y
	p.VX, p.VY = 0, 0
	p.Climbing = false
	p.Wall = physics.NoWall
}

// AttackCooldown returns the remaining attack cooldown in milliseconds.
func (p *Player) AttackCooldown() float64 { return p.attack.Cooldown }

// ID implements combat.Combatant.
func (p *Player) ID() string { return "player" }

// Kind implements combat.Combatant.
func (p *Player) Kind() combat.Kind { return combat.KindPlayer }

// Bounds implements combat.Combatant.
func (p *Player) Bounds() physics.Rect { return p.Rect() }

// Alive implements combat.Combatant and timer.Owner.
func (p *Player) Alive() bool { return p.Health.Alive() }

// Attacking implements combat.Combatant.
func (p *Player) Attacking() bool { return p.attack.Active }

// AttackHitbox implements combat.Combatant. The box extends attackReach on the facing side.
func (p *Player) AttackHitbox() (combat.Hitbox, bool) {
	if !p.attack.Active {
		return combat.Hitbox{}, false
	}
	x := p.X + p.Width
	if p.Facing < 0 {
		x = p.X - attackReach
	}
	dmg := p.t.PlayerDamage
	special := p.lastKind == AttackSpecial
	if special {
		dmg *= specialBonus
	}
	if p.Combo > 1 {
		dmg *= comboBonus
	}
	return combat.Hitbox{
		Rect:    physics.Rect{X: x, Y: p.Y, W: attackReach, H: p.Height},
		Damage:  dmg,
		Special: special,
	}, true
}
