package ai

import "go.uber.org/zap"

// Ability is a boss special move.
type Ability int

const (
	AbilityNone Ability = iota
	AbilityCharge
	AbilitySpinAttack
	AbilityGroundSlam
	AbilityFireball
	AbilityTeleport
	AbilitySummonMinions
	AbilityDashStrike
	AbilityClone
	AbilityPoisonField
)

var abilityNames = map[Ability]string{
	AbilityNone:          "none",
	AbilityCharge:        "charge",
	AbilitySpinAttack:    "spin_attack",
	AbilityGroundSlam:    "ground_slam",
	AbilityFireball:      "fireball",
	AbilityTeleport:      "teleport",
	AbilitySummonMinions: "summon_minions",
	AbilityDashStrike:    "dash_strike",
	AbilityClone:         "clone",
	AbilityPoisonField:   "poison_field",
}

// String returns the ability's content name.
func (a Ability) String() string {
	if n, ok := abilityNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseAbility resolves a content name.
func ParseAbility(name string) (Ability, bool) {
	for a, n := range abilityNames {
		if n == name && a != AbilityNone {
			return a, true
		}
	}
	return AbilityNone, false
}

const (
	chargeScale     = 3.0
	chargeBrake     = 0.5
	chargeMs        = 500
	spinMultiplier  = 1.5
	spinMs          = 1000
	slamVelocity    = 20.0
	fireballMs      = 800
	teleportOffset  = 150.0
	spinningReach   = 80.0
	defaultHitReach = 50.0
)

// abilityEffects maps each ability to its effect. Abilities with no gameplay
// effect yet (summons, clones, hazards) are absent and resolve to a no-op.
var abilityEffects = map[Ability]func(b *Boss, t Target){
	AbilityCharge:     (*Boss).charge,
	AbilitySpinAttack: (*Boss).spin,
	AbilityGroundSlam: func(b *Boss, _ Target) {
		b.VY = slamVelocity
		b.State = BossSlam
	},
	AbilityFireball: func(b *Boss, _ Target) {
		b.State = BossCasting
		b.after(fireballMs, "fireball end", func() { b.State = BossIdle })
	},
	AbilityTeleport: func(b *Boss, t Target) {
		offset := -teleportOffset
		if b.roller.IntRange("boss teleport side", 0, 1) == 1 {
			offset = teleportOffset
		}
		b.X = t.X + offset
	},
	AbilityDashStrike: func(b *Boss, t Target) {
		b.charge(t)
		b.basicAttack()
	},
}

// UseAbility spends the special cooldown on the ability at index in the boss's set.
// An out-of-range index is logged and ignored.
func (b *Boss) UseAbility(index int, t Target) {
	if index < 0 || index >= len(b.abilities) {
		b.logger.Warn("boss ability index out of range",
			zap.String("boss", b.id),
			zap.Int("index", index),
			zap.Int("abilities", len(b.abilities)),
		)
		return
	}
	a := b.abilities[index]
	b.CurrentAbility = a
	b.SpecialCooldown = b.Profile.SpecialCooldownMs
	if fx, ok := abilityEffects[a]; ok {
		fx(b, t)
	}
	b.logger.Debug("boss ability", zap.String("boss", b.id), zap.Stringer("ability", a), zap.Int("phase", b.Phase))
}

func (b *Boss) charge(t Target) {
	b.VX = t.direction(b.X) * b.Speed * chargeScale
	b.after(chargeMs, "charge end", func() { b.VX *= chargeBrake })
}

func (b *Boss) spin(_ Target) {
	b.State = BossSpinning
	b.Damage *= spinMultiplier
	b.after(spinMs, "spin end", func() {
		b.State = BossIdle
		b.Damage /= spinMultiplier
	})
}
