// Package timer provides the clocks and the deferred-effect scheduler the session
// drains once per tick.
package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// WallClock reads the system clock.
type WallClock struct{}

// Now implements Clock.
func (WallClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. It is safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set moves the clock to t.
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// PausableClock reports base time minus every interval spent paused.
//
// Invariant: Now never moves while paused.
type PausableClock struct {
	mu sync.RWMutex

	base        Clock
	paused      atomic.Bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewPausableClock wraps base. A nil base uses the wall clock.
func NewPausableClock(base Clock) *PausableClock {
	if base == nil {
		base = WallClock{}
	}
	return &PausableClock{base: base}
}

// Now implements Clock.
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.paused.Load() {
		return pc.pauseStart.Add(-pc.totalPaused)
	}
	return pc.base.Now().Add(-pc.totalPaused)
}

// Pause freezes the clock. Pausing twice is a no-op.
func (pc *PausableClock) Pause() {
	if pc.paused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		pc.pauseStart = pc.base.Now()
		pc.mu.Unlock()
	}
}

// Resume unfreezes the clock. Resuming while running is a no-op.
func (pc *PausableClock) Resume() {
	if pc.paused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		pc.totalPaused += pc.base.Now().Sub(pc.pauseStart)
		pc.pauseStart = time.Time{}
		pc.mu.Unlock()
	}
}

// IsPaused reports the pause state.
func (pc *PausableClock) IsPaused() bool {
	return pc.paused.Load()
}

// TotalPaused returns the cumulative pause time, including any pause in progress.
func (pc *PausableClock) TotalPaused() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	total := pc.totalPaused
	if pc.paused.Load() {
		total += pc.base.Now().Sub(pc.pauseStart)
	}
	return total
}
