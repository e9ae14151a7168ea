// Package world provides the area model: platforms, spawn points, NPC
// placements, and portals, plus the live Level built from an area.
package world

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/duskborne/internal/game/physics"
)

// Spawn places one regular enemy.
type Spawn struct {
	// Type is the enemy profile ID.
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// BossFlagSlots is the number of boss-defeat story flags.
const BossFlagSlots = 3

// BossSpawn places the area boss. The boss type is drawn from Types when the
// level is built.
type BossSpawn struct {
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	Types []string `yaml:"types"`

	// Flag is the boss-defeat flag slot (1..BossFlagSlots) this boss sets when
	// it dies. 0 sets no flag.
	Flag int `yaml:"flag"`
}

// NPCSpawn places one NPC by name.
type NPCSpawn struct {
	physics.Rect `yaml:",inline"`
	Name         string `yaml:"name"`
}

// Portal moves the player to another area on interaction.
type Portal struct {
	physics.Rect `yaml:",inline"`
	// Destination is an area ID or alias.
	Destination string `yaml:"destination"`
}

// Area is the static layout of one level.
type Area struct {
	// ID uniquely identifies this area.
	ID string `yaml:"id"`
	// Name is the display name shown to players and passed to story content.
	Name string `yaml:"name"`
	// Aliases are alternate IDs that resolve to this area.
	Aliases   []string           `yaml:"aliases"`
	Width     float64            `yaml:"width"`
	Height    float64            `yaml:"height"`
	Platforms []physics.Platform `yaml:"platforms"`
	Enemies   []Spawn            `yaml:"enemies"`
	Boss      *BossSpawn         `yaml:"boss"`
	NPCs      []NPCSpawn         `yaml:"npcs"`
	Portals   []Portal           `yaml:"portals"`
	// ScriptDir is the path to Lua scripts for this area. Empty = no scripts.
	ScriptDir string `yaml:"script_dir"`
}

// Validate checks that the area satisfies basic invariants.
//
// Precondition: a must not be nil.
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (a *Area) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("area ID must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("area %q: name must not be empty", a.ID)
	}
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("area %q: dimensions must be positive, got %vx%v", a.ID, a.Width, a.Height)
	}
	if len(a.Platforms) == 0 {
		return fmt.Errorf("area %q: must have at least one platform", a.ID)
	}
	for i, p := range a.Platforms {
		if p.W <= 0 || p.H <= 0 {
			return fmt.Errorf("area %q: platform %d has non-positive size", a.ID, i)
		}
	}
	for i, s := range a.Enemies {
		if s.Type == "" {
			return fmt.Errorf("area %q: enemy %d has no type", a.ID, i)
		}
	}
	if a.Boss != nil && len(a.Boss.Types) == 0 {
		return fmt.Errorf("area %q: boss spawn lists no types", a.ID)
	}
	if a.Boss != nil && (a.Boss.Flag < 0 || a.Boss.Flag > BossFlagSlots) {
		return fmt.Errorf("area %q: boss flag %d outside 0..%d", a.ID, a.Boss.Flag, BossFlagSlots)
	}
	for i, n := range a.NPCs {
		if n.Name == "" {
			return fmt.Errorf("area %q: npc %d has no name", a.ID, i)
		}
	}
	for i, p := range a.Portals {
		if p.Destination == "" {
			return fmt.Errorf("area %q: portal %d has no destination", a.ID, i)
		}
	}
	seen := map[string]bool{strings.ToLower(a.ID): true}
	for _, alias := range a.Aliases {
		key := strings.ToLower(alias)
		if key == "" || seen[key] {
			return fmt.Errorf("area %q: empty or duplicate alias %q", a.ID, alias)
		}
		seen[key] = true
	}
	return nil
}
