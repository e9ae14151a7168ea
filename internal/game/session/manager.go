package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/player"
)

// InputSource supplies the input for one session's next tick.
type InputSource func(s *Session) player.Input

// Manager tracks all live sessions by ID.
// All methods are safe for concurrent use; each session is still ticked by one
// goroutine at a time.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	deps     Deps
}

// NewManager creates an empty session Manager sharing deps across sessions.
//
// Precondition: deps must satisfy the requirements of New.
func NewManager(deps Deps) *Manager {
	if err := deps.validate(); err != nil {
		panic(err.Error())
	}
	return &Manager{sessions: make(map[uuid.UUID]*Session), deps: deps}
}

// Create registers a new session in the menu state.
//
// Postcondition: Returns a session with a fresh random ID.
func (m *Manager) Create() *Session {
	s := New(uuid.New(), m.deps)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	m.deps.Logger.Info("session created", zap.String("session", s.ID.String()), zap.Int("sessions", len(m.sessions)))
	return s
}

// Get returns the session with id.
//
// Postcondition: Returns (nil, false) if no such session exists.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove unregisters the session with id.
//
// Postcondition: Returns an error if no such session exists.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns every session ordered by ID.
//
// Postcondition: Returns a non-nil slice.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// TickAll advances every session by dt with input drawn from inputs.
// A nil inputs ticks every session with no input.
func (m *Manager) TickAll(ctx context.Context, dt float64, inputs InputSource) {
	for _, s := range m.All() {
		var in player.Input = player.None
		if inputs != nil {
			in = inputs(s)
		}
		s.Tick(ctx, dt, in)
	}
}
