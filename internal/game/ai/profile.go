// Package ai implements the enemy and boss behavior state machines.
//
// Enemies re-evaluate patrol/chase/attack from distance every tick and re-roll
// a chase behavior from the player's recent actions. Bosses advance through
// hp-driven phases, each with its own strategy, and spend special abilities
// drawn from their type's ability set.
package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnemyProfile holds the stats of one enemy type.
//
// Invariant: Validate returns nil for every registered profile.
type EnemyProfile struct {
	ID               string  `yaml:"id"`
	MaxHP            float64 `yaml:"max_hp"`
	Damage           float64 `yaml:"damage"`
	Speed            float64 `yaml:"speed"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	PatrolDistance   float64 `yaml:"patrol_distance"`
	DetectionRange   float64 `yaml:"detection_range"`
	AttackRange      float64 `yaml:"attack_range"`
	AttackWindowMs   float64 `yaml:"attack_window_ms"`
	AttackCooldownMs float64 `yaml:"attack_cooldown_ms"`
}

// Validate checks all required fields.
func (p *EnemyProfile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.EnemyProfile: ID must not be empty")
	}
	var errs []string
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"max_hp", p.MaxHP}, {"speed", p.Speed}, {"width", p.Width}, {"height", p.Height},
		{"detection_range", p.DetectionRange}, {"attack_range", p.AttackRange},
		{"attack_window_ms", p.AttackWindowMs}, {"attack_cooldown_ms", p.AttackCooldownMs},
	} {
		if f.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0", f.name))
		}
	}
	if p.Damage < 0 {
		errs = append(errs, "damage must be >= 0")
	}
	if p.PatrolDistance < 0 {
		errs = append(errs, "patrol_distance must be >= 0")
	}
	if p.AttackRange >= p.DetectionRange {
		errs = append(errs, "attack_range must be less than detection_range")
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai.EnemyProfile %q: %s", p.ID, strings.Join(errs, "; "))
	}
	return nil
}

// BossProfile holds the stats and ability set of one boss type.
type BossProfile struct {
	ID                string   `yaml:"id"`
	MaxHP             float64  `yaml:"max_hp"`
	Damage            float64  `yaml:"damage"`
	Speed             float64  `yaml:"speed"`
	Width             float64  `yaml:"width"`
	Height            float64  `yaml:"height"`
	MaxPhases         int      `yaml:"max_phases"`
	TransitionMs      float64  `yaml:"transition_ms"`
	SpecialCooldownMs float64  `yaml:"special_cooldown_ms"`
	Abilities         []string `yaml:"abilities"`
}

// Validate checks all required fields and that every ability name is known.
func (p *BossProfile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.BossProfile: ID must not be empty")
	}
	var errs []string
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"max_hp", p.MaxHP}, {"speed", p.Speed}, {"width", p.Width}, {"height", p.Height},
		{"transition_ms", p.TransitionMs}, {"special_cooldown_ms", p.SpecialCooldownMs},
	} {
		if f.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0", f.name))
		}
	}
	if p.Damage < 0 {
		errs = append(errs, "damage must be >= 0")
	}
	if p.MaxPhases < 1 || p.MaxPhases > 3 {
		errs = append(errs, fmt.Sprintf("max_phases must be in [1, 3], got %d", p.MaxPhases))
	}
	if len(p.Abilities) == 0 {
		errs = append(errs, "abilities must not be empty")
	}
	for _, name := range p.Abilities {
		if _, ok := ParseAbility(name); !ok {
			errs = append(errs, fmt.Sprintf("unknown ability %q", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai.BossProfile %q: %s", p.ID, strings.Join(errs, "; "))
	}
	return nil
}

// DefaultEnemyProfiles returns the built-in basic and strong enemy types.
func DefaultEnemyProfiles() []*EnemyProfile {
	base := EnemyProfile{
		Width: 30, Height: 40,
		PatrolDistance: 100, DetectionRange: 200, AttackRange: 50,
		AttackWindowMs: 200, AttackCooldownMs: 1000,
	}
	basic, strong := base, base
	basic.ID, basic.MaxHP, basic.Damage, basic.Speed = "basic", 30, 10, 3
	strong.ID, strong.MaxHP, strong.Damage, strong.Speed = "strong", 50, 15, 2
	return []*EnemyProfile{&basic, &strong}
}

// DefaultBossProfiles returns the built-in warrior, mage, and shadow bosses.
func DefaultBossProfiles() []*BossProfile {
	mk := func(id string, abilities ...string) *BossProfile {
		return &BossProfile{
			ID: id, MaxHP: 200, Damage: 25, Speed: 2, Width: 60, Height: 80,
			MaxPhases: 3, TransitionMs: 2000, SpecialCooldownMs: 5000,
			Abilities: abilities,
		}
	}
	return []*BossProfile{
		mk("warrior", "charge", "spin_attack", "ground_slam"),
		mk("mage", "fireball", "teleport", "summon_minions"),
		mk("shadow", "dash_strike", "clone", "poison_field"),
	}
}

// yamlProfileFile is the top-level layout of a profile file.
type yamlProfileFile struct {
	Enemies []*EnemyProfile `yaml:"enemies"`
	Bosses  []*BossProfile  `yaml:"bosses"`
}

// LoadProfiles reads all *.yaml files from dir and returns the parsed profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadProfiles(dir string) ([]*EnemyProfile, []*BossProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	var enemies []*EnemyProfile
	var bosses []*BossProfile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		en, bo, err := ParseProfiles(data)
		if err != nil {
			return nil, nil, fmt.Errorf("ai.LoadProfiles: %s: %w", e.Name(), err)
		}
		enemies = append(enemies, en...)
		bosses = append(bosses, bo...)
	}
	return enemies, bosses, nil
}

// ParseProfiles parses one profile document.
func ParseProfiles(data []byte) ([]*EnemyProfile, []*BossProfile, error) {
	var f yamlProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing profiles: %w", err)
	}
	for _, p := range f.Enemies {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
	}
	for _, p := range f.Bosses {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return f.Enemies, f.Bosses, nil
}
