// Package combat implements hit detection and damage resolution between the player
// and the foes of the current area.
package combat

import "github.com/cory-johannsen/duskborne/internal/game/physics"

// Kind distinguishes the player from enemy and boss combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
	KindBoss
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// Hitbox is an active attack region and the damage it deals on overlap.
type Hitbox struct {
	physics.Rect
	Damage  float64
	Special bool
}

// Combatant is anything that can deal and receive attacks.
type Combatant interface {
	ID() string
	Kind() Kind
	Bounds() physics.Rect
	Alive() bool
	Attacking() bool
	// AttackHitbox returns the current hitbox; ok is false when no attack is active.
	AttackHitbox() (hb Hitbox, ok bool)
	// TakeDamage applies amount and reports whether it was applied.
	TakeDamage(amount float64) bool
}

// Knockbacker is implemented by combatants that can be pushed by hits.
type Knockbacker interface {
	ApplyKnockback(dir, force float64)
}

// Health tracks hit points and death.
//
// Invariant: 0 <= HP <= MaxHP.
// Invariant: once dead, a Health never becomes alive again.
type Health struct {
	HP    float64
	MaxHP float64
	dead  bool
}

// NewHealth returns full health at max.
//
// Precondition: max > 0.
func NewHealth(max float64) Health {
	return Health{HP: max, MaxHP: max}
}

// Damage subtracts amount, clamping at zero. A non-positive amount does nothing.
//
// Postcondition: Returns true exactly once, on the call that first brings HP to zero.
func (h *Health) Damage(amount float64) bool {
	if amount <= 0 {
		return false
	}
	h.HP -= amount
	if h.HP < 0 {
		h.HP = 0
	}
	if h.HP == 0 && !h.dead {
		h.dead = true
		return true
	}
	return false
}

// Heal adds amount, clamping at MaxHP. Dead health is not restored and a
// non-positive amount does nothing.
func (h *Health) Heal(amount float64) {
	if h.dead || amount <= 0 {
		return
	}
	h.HP = min(h.HP+amount, h.MaxHP)
}

// Kill marks the health dead without changing HP.
func (h *Health) Kill() { h.dead = true }

// Alive reports whether the owner is still alive.
func (h Health) Alive() bool { return !h.dead }

// Fraction returns HP / MaxHP.
func (h Health) Fraction() float64 {
	if h.MaxHP <= 0 {
		return 0
	}
	return h.HP / h.MaxHP
}

// AttackWindow is the cooldown plus active-hitbox timer pair every attacker carries.
// Times are milliseconds.
type AttackWindow struct {
	Active   bool
	Timer    float64
	Cooldown float64
}

// Tick counts both timers down by dtMs. The window closes when its timer runs out.
func (w *AttackWindow) Tick(dtMs float64) {
	if w.Cooldown > 0 {
		w.Cooldown -= dtMs
	}
	if w.Timer > 0 {
		w.Timer -= dtMs
		if w.Timer <= 0 {
			w.Active = false
		}
	}
}

// Ready reports whether the cooldown has elapsed.
func (w AttackWindow) Ready() bool { return w.Cooldown <= 0 }

// Start opens the window for windowMs and begins a cooldown of cooldownMs.
// A zero windowMs leaves closing to the caller.
func (w *AttackWindow) Start(windowMs, cooldownMs float64) {
	w.Active = true
	w.Timer = windowMs
	w.Cooldown = cooldownMs
}
