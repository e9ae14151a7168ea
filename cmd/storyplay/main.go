// Package main is an interactive terminal player for the narrative engine:
// story beats, choices, and the ending they lead to, without the platformer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/config"
	"github.com/cory-johannsen/duskborne/internal/game/dice"
	"github.com/cory-johannsen/duskborne/internal/game/narrative"
	"github.com/cory-johannsen/duskborne/internal/game/timer"
	"github.com/cory-johannsen/duskborne/internal/observability"
	"github.com/cory-johannsen/duskborne/internal/storyui"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	area := flag.String("area", "forest", "story area to start in")
	logPath := flag.String("log", "", "write logs to this file; empty disables logging")
	seed := flag.Int64("seed", 0, "random seed; 0 keeps the configured value")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	logger := zap.NewNop()
	if *logPath != "" {
		cfg.Logging.Output = *logPath
		l, err := observability.NewLogger(cfg.Logging)
		if err != nil {
			log.Fatalf("initializing logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	}
	roller := dice.NewLoggedRoller(src, logger)
	engine := narrative.NewEngine(cfg.Tuning, timer.WallClock{}, observability.NoopTracer(), logger)

	model := storyui.NewModel(engine, roller, *area, logger)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storyplay: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(storyui.Model); ok {
		if end, shown := m.Ending(); shown {
			fmt.Printf("%s (%s)\n", end.Title, end.ID)
		}
	}
	logger.Info("story session ended", zap.Int("decisions", engine.DecisionCount()), zap.Int("morality", engine.Morality()))
}
