package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/session"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
)

// SessionTicker drives every session of a manager at a fixed interval. The
// frame delta handed to each tick is the clock time since the previous tick.
//
// Invariant: TickAll never runs concurrently with itself.
type SessionTicker struct {
	interval time.Duration
	sessions *session.Manager
	inputs   session.InputSource
	clock    timer.Clock
	stopWhen func(*session.Manager) bool
	logger   *zap.Logger

	ticks    atomic.Uint64
	stop     chan struct{}
	stopOnce sync.Once
}

// TickerOption configures a SessionTicker.
type TickerOption func(*SessionTicker)

// WithInputs sets the per-session input source. The default feeds no input.
func WithInputs(src session.InputSource) TickerOption {
	return func(t *SessionTicker) { t.inputs = src }
}

// WithStopWhen ends Start once fn reports true after a tick.
func WithStopWhen(fn func(*session.Manager) bool) TickerOption {
	return func(t *SessionTicker) { t.stopWhen = fn }
}

// WithClock sets the clock frame deltas are measured on.
func WithClock(c timer.Clock) TickerOption {
	return func(t *SessionTicker) { t.clock = c }
}

// NewSessionTicker returns a ticker over sessions.
//
// Precondition: interval must be > 0; sessions and logger must be non-nil.
func NewSessionTicker(interval time.Duration, sessions *session.Manager, logger *zap.Logger, opts ...TickerOption) *SessionTicker {
	if interval <= 0 {
		panic("server.NewSessionTicker: interval must be > 0")
	}
	t := &SessionTicker{
		interval: interval,
		sessions: sessions,
		clock:    timer.WallClock{},
		logger:   logger,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Step ticks every session once by dt seconds.
func (t *SessionTicker) Step(ctx context.Context, dt float64) {
	t.sessions.TickAll(ctx, dt, t.inputs)
	t.ticks.Add(1)
}

// Ticks returns the number of completed steps.
func (t *SessionTicker) Ticks() uint64 { return t.ticks.Load() }

// Start implements Service. It returns nil when stopped, when ctx ends, or
// when the stop condition holds.
func (t *SessionTicker) Start(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	last := t.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stop:
			return nil
		case <-ticker.C:
			now := t.clock.Now()
			t.Step(ctx, now.Sub(last).Seconds())
			last = now
			if t.stopWhen != nil && t.stopWhen(t.sessions) {
				t.logger.Info("simulation finished",
					zap.Uint64("ticks", t.Ticks()),
					zap.Int("sessions", t.sessions.Count()),
				)
				return nil
			}
		}
	}
}

// Stop implements Service. Stopping more than once, or before Start, is safe.
func (t *SessionTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}
