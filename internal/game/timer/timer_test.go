package timer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duskborne/internal/game/timer"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type owner struct{ alive bool }

func (o *owner) Alive() bool { return o.alive }

func TestScheduler_RunsInDueOrder(t *testing.T) {
	clk := timer.NewManualClock(epoch)
	s := timer.NewScheduler(clk, zap.NewNop())

	var order []string
	s.After(200*time.Millisecond, nil, "b", func() { order = append(order, "b") })
	s.After(100*time.Millisecond, nil, "a", func() { order = append(order, "a") })
	s.After(200*time.Millisecond, nil, "c", func() { order = append(order, "c") })

	assert.Equal(t, 0, s.Drain())
	clk.Advance(150 * time.Millisecond)
	assert.Equal(t, 1, s.Drain())
	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, 2, s.Drain())
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_SkipsDeadOwner(t *testing.T) {
	clk := timer.NewManualClock(epoch)
	s := timer.NewScheduler(clk, zap.NewNop())
	o := &owner{alive: true}
	ran := false
	s.After(10*time.Millisecond, o, "spin end", func() { ran = true })
	o.alive = false
	clk.Advance(time.Second)
	assert.Equal(t, 0, s.Drain())
	assert.False(t, ran)
}

func TestScheduler_CancelAndCancelOwner(t *testing.T) {
	clk := timer.NewManualClock(epoch)
	s := timer.NewScheduler(clk, zap.NewNop())
	o := &owner{alive: true}
	count := 0
	id := s.After(time.Millisecond, nil, "x", func() { count++ })
	s.After(time.Millisecond, o, "y", func() { count++ })
	s.After(time.Millisecond, o, "z", func() { count++ })
	require.Equal(t, 3, s.Pending())

	s.Cancel(id)
	s.CancelOwner(o)
	assert.Equal(t, 0, s.Pending())
	clk.Advance(time.Second)
	assert.Equal(t, 0, s.Drain())
	assert.Equal(t, 0, count)
}

func TestScheduler_NilDependenciesPanic(t *testing.T) {
	assert.Panics(t, func() { timer.NewScheduler(nil, zap.NewNop()) })
}

func TestPausableClock_FreezesWhilePaused(t *testing.T) {
	base := timer.NewManualClock(epoch)
	pc := timer.NewPausableClock(base)

	base.Advance(time.Second)
	assert.Equal(t, epoch.Add(time.Second), pc.Now())

	pc.Pause()
	assert.True(t, pc.IsPaused())
	base.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(time.Second), pc.Now())
	assert.Equal(t, 5*time.Second, pc.TotalPaused())

	pc.Resume()
	base.Advance(time.Second)
	assert.Equal(t, epoch.Add(2*time.Second), pc.Now())
	assert.Equal(t, 5*time.Second, pc.TotalPaused())
}

func TestDeferredPolicy_WallVersusPausable(t *testing.T) {
	base := timer.NewManualClock(epoch)
	pc := timer.NewPausableClock(base)
	wall := timer.NewScheduler(base, zap.NewNop())
	pausable := timer.NewScheduler(pc, zap.NewNop())

	wallRan, pausedRan := false, false
	wall.After(200*time.Millisecond, nil, "dodge end", func() { wallRan = true })
	pausable.After(200*time.Millisecond, nil, "dodge end", func() { pausedRan = true })

	pc.Pause()
	base.Advance(time.Second)
	wall.Drain()
	pausable.Drain()
	assert.True(t, wallRan, "wall policy fires while paused")
	assert.False(t, pausedRan, "pausable policy freezes while paused")

	pc.Resume()
	base.Advance(200 * time.Millisecond)
	pausable.Drain()
	assert.True(t, pausedRan)
}

func TestPropertyScheduler_NeverRunsEarly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clk := timer.NewManualClock(epoch)
		s := timer.NewScheduler(clk, zap.NewNop())
		delays := rapid.SliceOfN(rapid.IntRange(1, 1000), 1, 20).Draw(t, "delays")
		var ranAt []time.Duration
		var want []time.Duration
		for _, d := range delays {
			d := time.Duration(d) * time.Millisecond
			want = append(want, d)
			s.After(d, nil, "t", func() { ranAt = append(ranAt, d) })
		}
		for step := 0; step < 1100; step += 7 {
			clk.Advance(7 * time.Millisecond)
			s.Drain()
			elapsed := clk.Now().Sub(epoch)
			for _, d := range ranAt {
				if d > elapsed {
					t.Fatalf("task due at %s ran at %s", d, elapsed)
				}
			}
		}
		assert.Len(t, ranAt, len(want))
		for i := 1; i < len(ranAt); i++ {
			assert.LessOrEqual(t, ranAt[i-1], ranAt[i])
		}
	})
}
