package scene

import (
	"sync"
	"time"
)

// IdleScheduler defers callbacks to the next idle point of the frame loop.
// A callback runs on the first Tick after it was scheduled or when its
// timeout elapses, whichever comes first, and never more than once.
// Callbacks run on their own goroutine.
type IdleScheduler struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]*idleTask
}

type idleTask struct {
	fn    func()
	timer *time.Timer
	once  sync.Once
}

func NewIdleScheduler() *IdleScheduler {
	return &IdleScheduler{pending: make(map[uint64]*idleTask)}
}

// Schedule registers fn and returns an idempotent cancel func.
func (s *IdleScheduler) Schedule(timeout time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	s.next++
	id := s.next
	task := &idleTask{fn: fn}
	s.pending[id] = task
	task.timer = time.AfterFunc(timeout, func() { s.fire(id) })
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		t, ok := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if ok {
			t.timer.Stop()
			t.once.Do(func() {})
		}
	}
}

// Tick releases every callback scheduled so far.
func (s *IdleScheduler) Tick() {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		go s.fire(id)
	}
}

// Pending is the number of callbacks waiting for an idle point.
func (s *IdleScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *IdleScheduler) fire(id uint64) {
	s.mu.Lock()
	t, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	t.timer.Stop()
	t.once.Do(t.fn)
}
