package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/ai"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/event"
	"github.com/cory-johannsen/duskborne/internal/game/npc"
	"github.com/cory-johannsen/duskborne/internal/game/session"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/game/world"
	"github.com/cory-johannsen/duskborne/internal/observability"
	"github.com/cory-johannsen/duskborne/internal/scripting"
	"github.com/cory-johannsen/duskborne/internal/server"
	"github.com/cory-johannsen/duskborne/internal/storage"
	"github.com/cory-johannsen/duskborne/internal/storage/postgres"
	"github.com/cory-johannsen/duskborne/internal/storage/sqlite"
)

// AppSet provides every component of the headless simulation.
var AppSet = wire.NewSet(
	provideLogger,
	provideTracerProvider,
	provideTracer,
	provideClock,
	provideRoller,
	provideAreas,
	provideProfiles,
	provideNPCs,
	provideEvents,
	provideScripts,
	wire.Bind(new(event.ScriptCaller), new(*scripting.Manager)),
	provideStore,
	provideSessionDeps,
	session.NewManager,
	NewAutopilot,
	provideTicker,
	wire.Struct(new(App), "*"),
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideTracerProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.NewTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	logger.Info("tracing configured", zap.Bool("enabled", tp.Enabled()))
	return tp, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("flushing spans", zap.Error(err))
		}
	}, nil
}

func provideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

func provideClock(cfg config.Config) timer.Clock {
	if cfg.Simulation.DeferredClock == "pausable" {
		return timer.NewPausableClock(timer.WallClock{})
	}
	return timer.WallClock{}
}

func provideRoller(cfg config.Config, logger *zap.Logger) *dice.Roller {
	if cfg.Simulation.Seed != 0 {
		logger.Info("using seeded randomness", zap.Int64("seed", cfg.Simulation.Seed))
		return dice.NewLoggedRoller(dice.NewSeededSource(cfg.Simulation.Seed), logger)
	}
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideAreas(cfg config.Config, logger *zap.Logger) (*world.Manager, error) {
	start := time.Now()
	areas, err := world.LoadAreasFromDir(cfg.Content.AreasDir)
	if err != nil {
		return nil, fmt.Errorf("loading areas: %w", err)
	}
	mgr, err := world.NewManager(areas, cfg.Content.StartArea, logger)
	if err != nil {
		return nil, fmt.Errorf("creating area manager: %w", err)
	}
	if err := mgr.ValidatePortals(); err != nil {
		return nil, err
	}
	logger.Info("areas loaded",
		zap.Int("areas", mgr.AreaCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mgr, nil
}

func provideProfiles(cfg config.Config, logger *zap.Logger) (*ai.Registry, error) {
	reg := ai.NewRegistry(logger)
	if cfg.Content.ProfilesDir == "" {
		return reg, nil
	}
	if err := reg.LoadDir(cfg.Content.ProfilesDir); err != nil {
		return nil, fmt.Errorf("loading ai profiles: %w", err)
	}
	return reg, nil
}

func provideNPCs(cfg config.Config, logger *zap.Logger) (*npc.Catalog, error) {
	if cfg.Content.NPCsDir == "" {
		return npc.NewCatalog(logger), nil
	}
	cat, err := npc.LoadCatalog(cfg.Content.NPCsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("loading npcs: %w", err)
	}
	logger.Info("npcs loaded", zap.Int("count", len(cat.Names())))
	return cat, nil
}

func provideEvents(cfg config.Config, logger *zap.Logger) (*event.Catalog, error) {
	if cfg.Content.EventsDir == "" {
		return event.NewCatalog(), nil
	}
	cat, err := event.LoadCatalog(cfg.Content.EventsDir)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	logger.Info("events loaded", zap.Int("count", cat.Len()))
	return cat, nil
}

// provideScripts loads the shared predicate scripts and every area's own
// scripts into one manager.
func provideScripts(cfg config.Config, areas *world.Manager, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, logger)
	limit := cfg.Events.InstructionLimit
	if cfg.Events.ScriptDir != "" {
		if err := mgr.LoadGlobal(cfg.Events.ScriptDir, limit); err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	for _, area := range areas.AllAreas() {
		if area.ScriptDir == "" {
			continue
		}
		if err := mgr.LoadArea(area.ID, area.ScriptDir, limit); err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	return mgr, mgr.Close, nil
}

// provideStore opens the configured save store. The "none" driver yields a nil store.
func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		st, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("save store opened", zap.String("driver", "sqlite"), zap.String("path", cfg.Storage.SQLitePath))
		return st, func() { _ = st.Close() }, nil
	case "postgres":
		repo, closeFn, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres save store: %w", err)
		}
		return repo, closeFn, nil
	default:
		return nil, func() {}, nil
	}
}

func provideSessionDeps(
	cfg config.Config,
	areas *world.Manager,
	profiles *ai.Registry,
	npcs *npc.Catalog,
	events *event.Catalog,
	scripts event.ScriptCaller,
	clock timer.Clock,
	roller *dice.Roller,
	tracer trace.Tracer,
	logger *zap.Logger,
) session.Deps {
	return session.Deps{
		Config:   cfg,
		Areas:    areas,
		Profiles: profiles,
		NPCs:     npcs,
		Events:   events,
		Scripts:  scripts,
		Clock:    clock,
		Roller:   roller,
		Tracer:   tracer,
		Logger:   logger,
	}
}

func provideTicker(cfg config.Config, sessions *session.Manager, pilot *Autopilot, logger *zap.Logger) *server.SessionTicker {
	return server.NewSessionTicker(cfg.Simulation.TickInterval, sessions, logger,
		server.WithInputs(pilot.Input),
		server.WithStopWhen(Finished(cfg.Simulation.MaxTicks)),
	)
}
