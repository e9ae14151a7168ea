package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	stop    chan struct{}
	startFn func() error
}

func newMockService() *mockService {
	return &mockService{stop: make(chan struct{})}
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	select {
	case <-m.stop:
	case <-ctx.Done():
	}
	return nil
}

func (m *mockService) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stop)
	}
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1, svc2 := newMockService(), newMockService()
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, await(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleShutsDownWhenServiceFinishes(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	sim := newMockService()
	sim.startFn = func() error { return nil }
	other := newMockService()
	lc.Add("other", other)
	lc.Add("simulation", sim)

	assert.NoError(t, await(t, runAsync(lc, context.Background())))
	assert.True(t, other.stopped.Load())
}

func TestLifecycleReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	bad := newMockService()
	bad.startFn = func() error { return boom }
	lc.Add("good", newMockService())
	lc.Add("bad", bad)

	err := await(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service bad")
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: func(context.Context) error { return nil }}).Stop()
}
