package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/physics"
)

// Effect is a short-lived hit marker for the renderer.
type Effect struct {
	X, Y      float64
	Remaining float64
	Lifetime  float64
}

// Hit records one damage application attempt.
type Hit struct {
	Attacker string
	Target   string
	Damage   float64
	Applied  bool
	Killed   bool
}

// Resolver tests active hitboxes against combatants once per tick.
//
// An overlapping active hitbox deals damage on every tick it overlaps; the
// player's invulnerability window is the only limiter on repeat hits.
type Resolver struct {
	lifetime float64
	effects  []Effect
	logger   *zap.Logger
}

// NewResolver creates a Resolver whose effects last lifetimeSeconds.
//
// Precondition: lifetimeSeconds > 0 and logger is non-nil.
func NewResolver(lifetimeSeconds float64, logger *zap.Logger) *Resolver {
	if lifetimeSeconds <= 0 || logger == nil {
		panic("combat.NewResolver: lifetime must be > 0 and logger non-nil")
	}
	return &Resolver{lifetime: lifetimeSeconds, logger: logger}
}

// Resolve applies player attacks to living foes, then foe attacks to the player,
// then ages hit effects by dt seconds.
//
// Postcondition: Returns every hit tested positive this tick, in resolution order.
func (r *Resolver) Resolve(dt float64, player Combatant, foes []Combatant) []Hit {
	var hits []Hit

	if player.Attacking() {
		if hb, ok := player.AttackHitbox(); ok {
			for _, foe := range foes {
				if !foe.Alive() || !overlaps(hb, foe) {
					continue
				}
				hits = append(hits, r.strike(player, foe, hb.Damage))
			}
		}
	}

	for _, foe := range foes {
		if !foe.Attacking() {
			continue
		}
		hb, ok := foe.AttackHitbox()
		if !ok || !overlaps(hb, player) {
			continue
		}
		applied := player.TakeDamage(hb.Damage)
		if applied {
			r.spawn(player)
		}
		hits = append(hits, Hit{
			Attacker: foe.ID(),
			Target:   player.ID(),
			Damage:   hb.Damage,
			Applied:  applied,
			Killed:   applied && !player.Alive(),
		})
	}

	kept := r.effects[:0]
	for _, e := range r.effects {
		e.Remaining -= dt
		if e.Remaining > 0 {
			kept = append(kept, e)
		}
	}
	r.effects = kept
	return hits
}

func (r *Resolver) strike(attacker, target Combatant, damage float64) Hit {
	wasAlive := target.Alive()
	applied := target.TakeDamage(damage)
	r.spawn(target)
	if kb, ok := target.(Knockbacker); ok {
		dir := -1.0
		if target.Bounds().X > attacker.Bounds().X {
			dir = 1
		}
		kb.ApplyKnockback(dir, damage/5)
	}
	killed := wasAlive && !target.Alive()
	if killed {
		r.logger.Debug("combatant defeated",
			zap.String("target", target.ID()),
			zap.Stringer("kind", target.Kind()),
		)
	}
	return Hit{Attacker: attacker.ID(), Target: target.ID(), Damage: damage, Applied: applied, Killed: killed}
}

func (r *Resolver) spawn(target Combatant) {
	b := target.Bounds()
	r.effects = append(r.effects, Effect{X: b.CenterX(), Y: b.CenterY(), Remaining: r.lifetime, Lifetime: r.lifetime})
}

// Effects returns the live hit effects.
func (r *Resolver) Effects() []Effect {
	out := make([]Effect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Reset clears every effect, as on area change.
func (r *Resolver) Reset() {
	r.effects = nil
}

func overlaps(hb Hitbox, c Combatant) bool {
	return physics.Overlaps(hb.Rect, c.Bounds())
}
