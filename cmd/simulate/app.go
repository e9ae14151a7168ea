package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/session"
	"github.com/cory-johannsen/duskborne/internal/observability"
	"github.com/cory-johannsen/duskborne/internal/server"
	"github.com/cory-johannsen/duskborne/internal/storage"
)

// App is the assembled headless simulation.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Tracing  *observability.TracerProvider
	Store    storage.Store
	Sessions *session.Manager
	Ticker   *server.SessionTicker
}

// Run plays count sessions until every one has finished or the tick limit is
// reached, then saves and reports each of them.
//
// Precondition: count >= 1.
func (a *App) Run(ctx context.Context, count int) error {
	if count < 1 {
		return fmt.Errorf("session count must be >= 1, got %d", count)
	}
	for i := 0; i < count; i++ {
		a.Sessions.Create()
	}

	lc := server.NewLifecycle(a.Logger)
	lc.Add("session-ticker", a.Ticker)
	runErr := lc.Run(ctx)

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	for _, s := range a.Sessions.All() {
		a.report(s)
		if err := a.save(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) report(s *session.Session) {
	e := s.Narrative()
	fields := []zap.Field{
		zap.String("session", s.ID.String()),
		zap.Stringer("state", s.State()),
		zap.Uint64("ticks", s.Ticks()),
		zap.Int("morality", e.Morality()),
		zap.Int("decisions", e.DecisionCount()),
		zap.Strings("events", s.Events().Completed()),
	}
	if lvl := s.Level(); lvl != nil {
		fields = append(fields, zap.String("area", lvl.Area.ID))
	}
	if s.State() == session.StateEnding {
		ending := s.Ending()
		fields = append(fields,
			zap.String("ending_id", ending.ID),
			zap.String("ending", ending.Title),
			zap.String("path", ending.PathType),
		)
	}
	a.Logger.Info("session finished", fields...)
}

// save persists the final state of s. Sessions that never left the menu are skipped.
func (a *App) save(ctx context.Context, s *session.Session) error {
	if a.Store == nil {
		return nil
	}
	rec := s.Snapshot()
	if rec.Validate() != nil {
		a.Logger.Debug("nothing to save", zap.String("session", s.ID.String()))
		return nil
	}
	if err := a.Store.Save(ctx, rec); err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	a.Logger.Info("session saved", zap.String("session", s.ID.String()))
	return nil
}
