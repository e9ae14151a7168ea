package event

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/narrative"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
)

// System decides each tick whether an event fires and hands it to the
// narrative engine.
//
// Invariant: at most one event fires per Update.
// Invariant: a completed event never fires again until Reset.
type System struct {
	catalog  *Catalog
	engine   *narrative.Engine
	clock    timer.Clock
	roller   *dice.Roller
	eval     evaluator
	cooldown time.Duration
	chance   float64

	last      time.Time
	completed map[string]bool
	logger    *zap.Logger
}

// NewSystem builds a System over catalog. scripts may be nil when no
// descriptor uses script conditions.
//
// Precondition: catalog, engine, clock, roller, and logger must be non-nil.
func NewSystem(cfg config.EventsConfig, catalog *Catalog, engine *narrative.Engine, clock timer.Clock, roller *dice.Roller, scripts ScriptCaller, logger *zap.Logger) *System {
	if catalog == nil || engine == nil || clock == nil || roller == nil || logger == nil {
		panic("event.NewSystem: catalog, engine, clock, roller, and logger must be non-nil")
	}
	return &System{
		catalog:   catalog,
		engine:    engine,
		clock:     clock,
		roller:    roller,
		eval:      evaluator{scripts: scripts, logger: logger},
		cooldown:  cfg.Cooldown,
		chance:    cfg.EncounterChance,
		completed: make(map[string]bool),
		logger:    logger,
	}
}

// Update evaluates the categories in order and fires at most one event.
// Nothing is evaluated while the narrative engine shows a dialogue or choice.
//
// Postcondition: Returns the fired descriptor, or nil.
func (s *System) Update(area string, combat map[string]bool) *Descriptor {
	if s.engine.Busy() {
		return nil
	}
	facts := s.facts(area, combat)

	steps := []func(Facts) *Descriptor{
		s.checkRandom,
		s.checkLocation,
		s.checkCombat,
		s.checkRelationship,
		s.checkProgression,
	}
	for _, step := range steps {
		if d := step(facts); d != nil {
			s.Trigger(d)
			return d
		}
	}
	return nil
}

func (s *System) facts(area string, combat map[string]bool) Facts {
	rels := make(map[string]int)
	for _, sc := range s.engine.Relationships() {
		rels[sc.Name] = sc.Value
	}
	return Facts{
		Area:          area,
		Morality:      s.engine.Morality(),
		Flags:         s.engine.Flags(),
		Relationships: rels,
		Context:       combat,
	}
}

func (s *System) checkRandom(f Facts) *Descriptor {
	now := s.clock.Now()
	if !s.last.IsZero() && now.Sub(s.last) <= s.cooldown {
		return nil
	}
	if !s.roller.Chance("random encounter", s.chance) {
		return nil
	}
	s.last = now

	var eligible []*Descriptor
	var weights []int
	for _, d := range s.catalog.In(CategoryRandom) {
		if s.completed[d.ID] || !s.eval.all(d.Conditions, f) {
			continue
		}
		eligible = append(eligible, d)
		weights = append(weights, d.EffectiveWeight())
	}
	if len(eligible) == 0 {
		return nil
	}
	i := s.roller.WeightedIndex("random encounter pick", weights)
	if i < 0 {
		return nil
	}
	return eligible[i]
}

func (s *System) checkLocation(f Facts) *Descriptor {
	key := AreaKey(f.Area)
	for _, d := range s.catalog.In(CategoryLocation) {
		if s.completed[d.ID] || !d.inArea(key) {
			continue
		}
		if s.eval.all(d.Conditions, f) {
			return d
		}
	}
	return nil
}

func (s *System) checkCombat(f Facts) *Descriptor {
	for _, d := range s.catalog.In(CategoryCombat) {
		if s.completed[d.ID] {
			continue
		}
		if s.eval.all(d.Conditions, f) {
			return d
		}
	}
	return nil
}

func (s *System) checkRelationship(f Facts) *Descriptor {
	for _, d := range s.catalog.In(CategoryRelationship) {
		if d.Once && s.completed[d.ID] {
			continue
		}
		if s.eval.all(d.Conditions, f) {
			return d
		}
	}
	return nil
}

func (s *System) checkProgression(f Facts) *Descriptor {
	for _, d := range s.catalog.In(CategoryProgression) {
		if s.completed[d.ID] {
			continue
		}
		if s.eval.all(d.Conditions, f) {
			return d
		}
	}
	return nil
}

// Trigger shows d's dialogue, presents its choices, and marks it completed.
func (s *System) Trigger(d *Descriptor) {
	if d.Dialogue.Text != "" {
		s.engine.ShowDialogue(d.Dialogue)
	}
	if len(d.Choices) > 0 {
		if err := s.engine.PresentChoice(narrative.Choices(d.Choices)); err != nil {
			s.logger.Warn("event choices not presented", zap.String("event", d.ID), zap.Error(err))
		}
	}
	s.completed[d.ID] = true
	s.logger.Info("event triggered", zap.String("event", d.ID), zap.String("category", string(d.Category)))
}

// Reset forgets completed events and the encounter cooldown.
func (s *System) Reset() {
	s.completed = make(map[string]bool)
	s.last = time.Time{}
}

// Completed returns the completed event IDs in sorted order.
func (s *System) Completed() []string {
	out := make([]string, 0, len(s.completed))
	for id := range s.completed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Restore marks ids completed, replacing the current set.
func (s *System) Restore(ids []string) {
	s.completed = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.completed[id] = true
	}
}

// LastEncounter returns when the last random encounter roll succeeded.
func (s *System) LastEncounter() time.Time { return s.last }
