package timer

import (
	"container/heap"
	"time"

	"go.uber.org/zap"
)

// Owner is the entity a deferred task acts on. Tasks whose owner is no longer
// alive when they come due are dropped.
type Owner interface {
	Alive() bool
}

// TaskID identifies a scheduled task.
type TaskID uint64

type task struct {
	id        TaskID
	due       time.Time
	seq       uint64
	owner     Owner
	label     string
	fn        func()
	cancelled bool
	index     int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}
func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler holds effects that must run a fixed time after they were requested:
// dodge and attack windows, boss ability wind-downs, phase transition ends.
// Tasks only run from Drain, on the goroutine that owns the session.
//
// Invariant: tasks run in (due time, scheduling order) order.
type Scheduler struct {
	clock  Clock
	logger *zap.Logger
	queue  taskQueue
	byID   map[TaskID]*task
	nextID TaskID
	seq    uint64
}

// NewScheduler creates a Scheduler reading time from clock.
//
// Precondition: clock and logger must be non-nil.
func NewScheduler(clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil || logger == nil {
		panic("timer.NewScheduler: clock and logger must be non-nil")
	}
	return &Scheduler{clock: clock, logger: logger, byID: make(map[TaskID]*task)}
}

// Clock returns the clock the scheduler measures due times against.
func (s *Scheduler) Clock() Clock { return s.clock }

// After schedules fn to run d from now. A nil owner is always considered alive.
//
// Postcondition: Returns the id of the scheduled task.
func (s *Scheduler) After(d time.Duration, owner Owner, label string, fn func()) TaskID {
	s.nextID++
	s.seq++
	t := &task{
		id:    s.nextID,
		due:   s.clock.Now().Add(d),
		seq:   s.seq,
		owner: owner,
		label: label,
		fn:    fn,
	}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel drops a pending task. Unknown or already-run ids are ignored.
func (s *Scheduler) Cancel(id TaskID) {
	if t, ok := s.byID[id]; ok {
		t.cancelled = true
		delete(s.byID, id)
	}
}

// CancelOwner drops every pending task bound to owner.
func (s *Scheduler) CancelOwner(owner Owner) {
	for id, t := range s.byID {
		if t.owner == owner {
			t.cancelled = true
			delete(s.byID, id)
		}
	}
}

// Pending returns the number of tasks not yet run or cancelled.
func (s *Scheduler) Pending() int {
	return len(s.byID)
}

// Drain runs every task that is due.
//
// Postcondition: Returns the number of tasks whose action ran.
func (s *Scheduler) Drain() int {
	now := s.clock.Now()
	ran := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if next.cancelled {
			continue
		}
		delete(s.byID, next.id)
		if next.owner != nil && !next.owner.Alive() {
			s.logger.Debug("deferred effect dropped for inactive owner", zap.String("label", next.label))
			continue
		}
		next.fn()
		ran++
	}
	return ran
}

// Reset discards every pending task.
func (s *Scheduler) Reset() {
	s.queue = nil
	s.byID = make(map[TaskID]*task)
}
