// Package tuning holds the gameplay constants shared by physics, player, and AI code.
package tuning

import (
	"fmt"
	"strings"
	"time"
)

// Constants is the full set of tunable gameplay values.
//
// Invariant: Validate returns nil for Defaults().
type Constants struct {
	Gravity      float64 `mapstructure:"gravity" yaml:"gravity"`
	MaxFallSpeed float64 `mapstructure:"max_fall_speed" yaml:"max_fall_speed"`
	JumpSpeed    float64 `mapstructure:"jump_speed" yaml:"jump_speed"`
	PlayerSpeed  float64 `mapstructure:"player_speed" yaml:"player_speed"`
	DashSpeed    float64 `mapstructure:"dash_speed" yaml:"dash_speed"`
	Friction     float64 `mapstructure:"friction" yaml:"friction"`

	PlayerMaxHP     float64       `mapstructure:"player_max_hp" yaml:"player_max_hp"`
	PlayerDamage    float64       `mapstructure:"player_damage" yaml:"player_damage"`
	AttackCooldown  time.Duration `mapstructure:"attack_cooldown" yaml:"attack_cooldown"`
	ComboWindow     time.Duration `mapstructure:"combo_window" yaml:"combo_window"`
	DodgeCooldown   time.Duration `mapstructure:"dodge_cooldown" yaml:"dodge_cooldown"`
	Invulnerability time.Duration `mapstructure:"invulnerability" yaml:"invulnerability"`
	DodgeDuration   time.Duration `mapstructure:"dodge_duration" yaml:"dodge_duration"`
	AttackWindow    time.Duration `mapstructure:"attack_window" yaml:"attack_window"`

	WorldWidth  float64 `mapstructure:"world_width" yaml:"world_width"`
	WorldHeight float64 `mapstructure:"world_height" yaml:"world_height"`

	MoralityBound       int `mapstructure:"morality_bound" yaml:"morality_bound"`
	MoralityTier        int `mapstructure:"morality_tier" yaml:"morality_tier"`
	EndingDecisionLimit int `mapstructure:"ending_decision_limit" yaml:"ending_decision_limit"`

	HitEffectLifetime time.Duration `mapstructure:"hit_effect_lifetime" yaml:"hit_effect_lifetime"`
}

// Defaults returns the stock tuning.
func Defaults() Constants {
	return Constants{
		Gravity:             0.8,
		MaxFallSpeed:        20,
		JumpSpeed:           -15,
		PlayerSpeed:         5,
		DashSpeed:           12,
		Friction:            0.85,
		PlayerMaxHP:         100,
		PlayerDamage:        10,
		AttackCooldown:      300 * time.Millisecond,
		ComboWindow:         500 * time.Millisecond,
		DodgeCooldown:       800 * time.Millisecond,
		Invulnerability:     500 * time.Millisecond,
		DodgeDuration:       200 * time.Millisecond,
		AttackWindow:        150 * time.Millisecond,
		WorldWidth:          3000,
		WorldHeight:         1000,
		MoralityBound:       100,
		MoralityTier:        33,
		EndingDecisionLimit: 50,
		HitEffectLifetime:   300 * time.Millisecond,
	}
}

// Ms converts a duration to fractional milliseconds, the unit every countdown timer uses.
func Ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Validate checks that every constant is in range.
//
// Postcondition: Returns nil if valid, or an error listing all violations.
func (c Constants) Validate() error {
	var errs []string
	positive := map[string]float64{
		"tuning.gravity":        c.Gravity,
		"tuning.max_fall_speed": c.MaxFallSpeed,
		"tuning.player_speed":   c.PlayerSpeed,
		"tuning.dash_speed":     c.DashSpeed,
		"tuning.player_max_hp":  c.PlayerMaxHP,
		"tuning.player_damage":  c.PlayerDamage,
		"tuning.world_width":    c.WorldWidth,
		"tuning.world_height":   c.WorldHeight,
	}
	for _, name := range []string{
		"tuning.gravity", "tuning.max_fall_speed", "tuning.player_speed", "tuning.dash_speed",
		"tuning.player_max_hp", "tuning.player_damage", "tuning.world_width", "tuning.world_height",
	} {
		if positive[name] <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %v", name, positive[name]))
		}
	}
	if c.JumpSpeed >= 0 {
		errs = append(errs, fmt.Sprintf("tuning.jump_speed must be < 0, got %v", c.JumpSpeed))
	}
	if c.Friction <= 0 || c.Friction > 1 {
		errs = append(errs, fmt.Sprintf("tuning.friction must be in (0, 1], got %v", c.Friction))
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"tuning.attack_cooldown", c.AttackCooldown},
		{"tuning.combo_window", c.ComboWindow},
		{"tuning.dodge_cooldown", c.DodgeCooldown},
		{"tuning.invulnerability", c.Invulnerability},
		{"tuning.dodge_duration", c.DodgeDuration},
		{"tuning.attack_window", c.AttackWindow},
		{"tuning.hit_effect_lifetime", c.HitEffectLifetime},
	}
	for _, d := range durations {
		if d.d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %s", d.name, d.d))
		}
	}
	if c.MoralityBound < 1 {
		errs = append(errs, fmt.Sprintf("tuning.morality_bound must be >= 1, got %d", c.MoralityBound))
	}
	if c.MoralityTier < 0 || c.MoralityTier >= c.MoralityBound {
		errs = append(errs, fmt.Sprintf("tuning.morality_tier must be in [0, morality_bound), got %d", c.MoralityTier))
	}
	if c.EndingDecisionLimit < 1 {
		errs = append(errs, fmt.Sprintf("tuning.ending_decision_limit must be >= 1, got %d", c.EndingDecisionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
