package npc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/narrative"
	"github.com/cory-johannsen/duskborne/internal/game/physics"
)

// InteractRange is how close the player must stand to talk to an NPC.
const InteractRange = 50.0

// Manager tracks the live NPC instances of the current level in spawn order.
// All methods are safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	instances []*Instance
	catalog   *Catalog
	counter   atomic.Uint64
	logger    *zap.Logger
}

// NewManager creates an empty NPC Manager.
//
// Precondition: catalog and logger must be non-nil.
func NewManager(catalog *Catalog, logger *zap.Logger) *Manager {
	if catalog == nil || logger == nil {
		panic("npc.NewManager: catalog and logger must be non-nil")
	}
	return &Manager{catalog: catalog, logger: logger}
}

// Spawn creates a new Instance of name at rect.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a new Instance with a unique ID.
func (m *Manager) Spawn(name string, rect physics.Rect) (*Instance, error) {
	if name == "" {
		return nil, fmt.Errorf("npc.Manager.Spawn: name must not be empty")
	}
	n := m.counter.Add(1)
	inst := NewInstance(fmt.Sprintf("npc-%d", n), name, rect)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = append(m.instances, inst)
	return inst, nil
}

// Clear removes every instance.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances = nil
}

// Instances returns a snapshot of all live instances in spawn order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) Instances() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Instance{}, m.instances...)
}

// Nearest returns the closest instance within rng of r that still has dialogue.
//
// Postcondition: Returns (nil, false) when none qualifies.
func (m *Manager) Nearest(r physics.Rect, rng float64) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Instance
	bestDist := rng
	for _, inst := range m.instances {
		if !inst.HasDialogue {
			continue
		}
		if d := inst.distance(r); d < bestDist {
			best, bestDist = inst, d
		}
	}
	return best, best != nil
}

// Interact shows inst's greeting and presents its choices. Each choice with a
// followup shows the followup text, applies its effects, and queues its
// nested choices. The greeting is one-shot.
//
// Postcondition: inst.HasDialogue is false.
func (m *Manager) Interact(inst *Instance, engine *narrative.Engine) error {
	def := m.catalog.Lookup(inst.Name)
	speaker := def.SpeakerName()
	engine.ShowDialogue(narrative.Dialogue{Speaker: speaker, Text: def.Text})

	m.mu.Lock()
	inst.HasDialogue = false
	m.mu.Unlock()

	if len(def.Choices) == 0 {
		return nil
	}
	choices := make([]narrative.Choice, len(def.Choices))
	for i, spec := range def.Choices {
		choices[i] = spec.Choice()
		fu, ok := def.Followups[spec.ID]
		if !ok {
			continue
		}
		choices[i].Callback = func() {
			engine.ShowDialogue(narrative.Dialogue{Speaker: speaker, Text: fu.Text})
			engine.ApplyEffects(0, fu.Relationships, fu.Flags)
			engine.QueueChoice(narrative.Choices(fu.Choices))
		}
	}
	if err := engine.PresentChoice(choices); err != nil {
		return fmt.Errorf("npc %q: %w", inst.Name, err)
	}
	m.logger.Debug("npc interaction", zap.String("npc", inst.Name), zap.String("id", inst.ID))
	return nil
}
