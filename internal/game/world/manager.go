package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Manager provides thread-safe lookup of the loaded areas by ID or alias.
type Manager struct {
	mu        sync.RWMutex
	areas     map[string]*Area
	names     map[string]string
	defaultID string
	logger    *zap.Logger
}

// NewManager creates a Manager from the given areas.
//
// Precondition: defaultID must name one of areas; logger must be non-nil.
// Postcondition: Returns a Manager with every ID and alias indexed
// case-insensitively, or an error on duplicates or a missing default.
func NewManager(areas []*Area, defaultID string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		panic("world.NewManager: logger must be non-nil")
	}
	m := &Manager{
		areas:  make(map[string]*Area, len(areas)),
		names:  make(map[string]string),
		logger: logger,
	}

	for _, a := range areas {
		if _, exists := m.areas[a.ID]; exists {
			return nil, fmt.Errorf("duplicate area ID: %q", a.ID)
		}
		m.areas[a.ID] = a
		for _, name := range append([]string{a.ID}, a.Aliases...) {
			key := strings.ToLower(name)
			if owner, exists := m.names[key]; exists {
				return nil, fmt.Errorf("area name %q claimed by %q and %q", name, owner, a.ID)
			}
			m.names[key] = a.ID
		}
	}

	if _, ok := m.areas[defaultID]; !ok {
		return nil, fmt.Errorf("default area %q not loaded", defaultID)
	}
	m.defaultID = defaultID
	return m, nil
}

// ValidatePortals checks that every portal destination resolves to a loaded
// area. Call this after NewManager to catch dangling destinations.
//
// Postcondition: Returns nil if all portals resolve, or an error naming the first dangling one.
func (m *Manager) ValidatePortals() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.sortedLocked() {
		for _, p := range a.Portals {
			if _, ok := m.names[strings.ToLower(p.Destination)]; !ok {
				return fmt.Errorf("area %q: portal targets unknown area %q", a.ID, p.Destination)
			}
		}
	}
	return nil
}

// Get returns the area whose ID or alias matches name, ignoring case.
//
// Postcondition: Returns (area, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(name string) (*Area, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return m.areas[id], true
}

// Resolve returns the area for name, falling back to the default area.
//
// Postcondition: Returns a non-nil area.
func (m *Manager) Resolve(name string) *Area {
	if a, ok := m.Get(name); ok {
		return a
	}
	m.logger.Warn("unknown area, loading default",
		zap.String("area", name),
		zap.String("default", m.defaultID),
	)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.areas[m.defaultID]
}

// Default returns the default area.
func (m *Manager) Default() *Area {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.areas[m.defaultID]
}

// AreaCount returns the number of loaded areas.
func (m *Manager) AreaCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.areas)
}

// AllAreas returns all loaded areas sorted by ID.
//
// Postcondition: Returns a non-nil slice.
func (m *Manager) AllAreas() []*Area {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked()
}

func (m *Manager) sortedLocked() []*Area {
	out := make([]*Area, 0, len(m.areas))
	for _, a := range m.areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
