package ai

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	fallbackEnemy = "basic"
	fallbackBoss  = "warrior"
)

// Registry indexes enemy and boss profiles by type ID. It starts with the
// built-in profiles; loaded profiles may replace a built-in once.
//
// Invariant: each non-built-in type ID is registered at most once.
type Registry struct {
	enemies  map[string]*EnemyProfile
	bosses   map[string]*BossProfile
	builtins map[string]bool
	logger   *zap.Logger
}

// NewRegistry returns a Registry holding the built-in profiles.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		enemies:  make(map[string]*EnemyProfile),
		bosses:   make(map[string]*BossProfile),
		builtins: make(map[string]bool),
		logger:   logger,
	}
	for _, p := range DefaultEnemyProfiles() {
		r.enemies[p.ID] = p
		r.builtins["enemy:"+p.ID] = true
	}
	for _, p := range DefaultBossProfiles() {
		r.bosses[p.ID] = p
		r.builtins["boss:"+p.ID] = true
	}
	return r
}

// RegisterEnemy stores p.
//
// Postcondition: returns error on a type ID collision with a non-built-in profile.
func (r *Registry) RegisterEnemy(p *EnemyProfile) error {
	key := "enemy:" + p.ID
	if _, exists := r.enemies[p.ID]; exists && !r.builtins[key] {
		return fmt.Errorf("ai.Registry: enemy type %q already registered", p.ID)
	}
	delete(r.builtins, key)
	r.enemies[p.ID] = p
	return nil
}

// RegisterBoss stores p.
//
// Postcondition: returns error on a type ID collision with a non-built-in profile.
func (r *Registry) RegisterBoss(p *BossProfile) error {
	key := "boss:" + p.ID
	if _, exists := r.bosses[p.ID]; exists && !r.builtins[key] {
		return fmt.Errorf("ai.Registry: boss type %q already registered", p.ID)
	}
	delete(r.builtins, key)
	r.bosses[p.ID] = p
	return nil
}

// LoadDir registers every profile found in dir.
func (r *Registry) LoadDir(dir string) error {
	enemies, bosses, err := LoadProfiles(dir)
	if err != nil {
		return err
	}
	for _, p := range enemies {
		if err := r.RegisterEnemy(p); err != nil {
			return err
		}
	}
	for _, p := range bosses {
		if err := r.RegisterBoss(p); err != nil {
			return err
		}
	}
	r.logger.Info("ai profiles loaded", zap.Int("enemies", len(enemies)), zap.Int("bosses", len(bosses)))
	return nil
}

// Enemy returns the profile for kind, falling back to the basic enemy.
func (r *Registry) Enemy(kind string) *EnemyProfile {
	if p, ok := r.enemies[kind]; ok {
		return p
	}
	r.logger.Warn("unknown enemy type, using fallback", zap.String("type", kind), zap.String("fallback", fallbackEnemy))
	return r.enemies[fallbackEnemy]
}

// Boss returns the profile for kind, falling back to the warrior boss.
func (r *Registry) Boss(kind string) *BossProfile {
	if p, ok := r.bosses[kind]; ok {
		return p
	}
	r.logger.Warn("unknown boss type, using fallback", zap.String("type", kind), zap.String("fallback", fallbackBoss))
	return r.bosses[fallbackBoss]
}
