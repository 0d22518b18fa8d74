package world

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/tilecore/internal/core/observability/log"
	"github.com/zeusync/tilecore/internal/core/systems"
)

// Session drives a World: it starts the first scene and runs the frame loop
// that feeds the registered systems.
type Session struct {
	id       uuid.UUID
	world    *World
	systems  *systems.Scheduler
	interval time.Duration
	logger   log.Log
}

// NewSession creates a session for w. The idle scheduler is ticked at the
// end of every frame, so scene-ready follows the first full frame of a
// scene.
func NewSession(w *World, logger log.Log) *Session {
	id := uuid.New()
	interval := w.settings.FrameInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	s := &Session{
		id:       id,
		world:    w,
		systems:  systems.NewScheduler(),
		interval: interval,
		logger:   logger.With(log.String("session", id.String())),
	}
	_ = s.systems.Add(systems.Func{
		SystemName: "idle",
		Order:      systems.PriorityLowest,
		Phase:      systems.PhaseLateUpdate,
		Fn: func(context.Context, time.Duration) error {
			w.idle.Tick()
			return nil
		},
	})
	return s
}

func (s *Session) ID() string                  { return s.id.String() }
func (s *Session) World() *World               { return s.world }
func (s *Session) Systems() *systems.Scheduler { return s.systems }

// AddSystem registers a per-frame system.
func (s *Session) AddSystem(sys systems.System) error {
	return s.systems.Add(sys)
}

// Start enters the first scene.
func (s *Session) Start(ctx context.Context, sceneID string) error {
	s.logger.Info("session started", log.String("scene", sceneID))
	return s.world.scenes.SetScene(ctx, sceneID)
}

// Step runs one frame. While the world is paused only the idle scheduler is
// ticked.
func (s *Session) Step(ctx context.Context, delta time.Duration) error {
	if s.world.Paused() {
		s.world.idle.Tick()
		return nil
	}
	return s.systems.Update(ctx, delta)
}

// Run steps frames until ctx is cancelled. System errors are logged and do
// not stop the loop.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if err := s.Step(ctx, delta); err != nil && ctx.Err() == nil {
				s.logger.Warn("frame failed", log.Error(err))
			}
		}
	}
}

// Close tears the world down.
func (s *Session) Close() {
	s.world.Close()
}
