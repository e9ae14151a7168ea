// Package main runs headless playthroughs driven by an autopilot and saves
// their final narrative state.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sessions := flag.Int("sessions", 1, "number of concurrent playthroughs")
	maxTicks := flag.Int("max-ticks", -1, "tick limit per session; -1 keeps the configured value")
	seed := flag.Int64("seed", 0, "random seed; 0 keeps the configured value")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *maxTicks >= 0 {
		cfg.Simulation.MaxTicks = *maxTicks
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing simulation: %v", err)
	}
	defer cleanup()

	app.Logger.Info("starting simulation",
		zap.Int("sessions", *sessions),
		zap.Int("max_ticks", cfg.Simulation.MaxTicks),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)
	if err := app.Run(ctx, *sessions); err != nil {
		app.Logger.Error("simulation failed", zap.Error(err))
		cleanup()
		log.Fatalf("simulation: %v", err)
	}
	app.Logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}
