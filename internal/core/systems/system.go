package systems

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// System is a per-frame processor driven by the session loop.
type System interface {
	Name() string
	Priority() Priority
	ExecutionPhase() ExecutionPhase

	Update(ctx context.Context, delta time.Duration) error
}

// Priority defines execution order inside a phase. Higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a frame.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

// Func adapts a function to System.
type Func struct {
	SystemName string
	Order      Priority
	Phase      ExecutionPhase
	Fn         func(ctx context.Context, delta time.Duration) error
}

func (f Func) Name() string                   { return f.SystemName }
func (f Func) Priority() Priority             { return f.Order }
func (f Func) ExecutionPhase() ExecutionPhase { return f.Phase }
func (f Func) Update(ctx context.Context, delta time.Duration) error {
	return f.Fn(ctx, delta)
}

// Scheduler runs systems phase by phase, by descending priority, then by
// registration order.
type Scheduler struct {
	mu      sync.Mutex
	systems []System
	metrics map[string]*Metrics
}

func NewScheduler() *Scheduler {
	return &Scheduler{metrics: make(map[string]*Metrics)}
}

// Add registers s. Names must be unique.
func (s *Scheduler) Add(sys System) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metrics[sys.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, sys.Name())
	}
	// Update ranges over the old slice without the lock; sort a copy.
	next := make([]System, len(s.systems), len(s.systems)+1)
	copy(next, s.systems)
	next = append(next, sys)
	sort.SliceStable(next, func(i, j int) bool {
		a, b := next[i], next[j]
		if a.ExecutionPhase() != b.ExecutionPhase() {
			return a.ExecutionPhase() < b.ExecutionPhase()
		}
		return a.Priority() > b.Priority()
	})
	s.systems = next
	s.metrics[sys.Name()] = &Metrics{}
	return nil
}

// Update runs one frame. A failing system does not stop the others; the
// errors are joined.
func (s *Scheduler) Update(ctx context.Context, delta time.Duration) error {
	s.mu.Lock()
	list := s.systems
	s.mu.Unlock()

	var errs []error
	for _, sys := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := sys.Update(ctx, delta)
		s.record(sys.Name(), start, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sys.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) record(name string, start time.Time, err error) {
	elapsed := time.Since(start)
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics[name]
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	m.LastExecutionTime = start
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// Metrics returns a copy of the metrics of the named system.
func (s *Scheduler) Metrics(name string) (Metrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

// Names lists systems in execution order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.systems))
	for i, sys := range s.systems {
		out[i] = sys.Name()
	}
	return out
}
