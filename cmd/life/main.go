//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"gridlife/internal/app"
	"gridlife/internal/control"
	"gridlife/internal/logging"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := app.NewFlags()
	flags.Bind(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Resolve(flag.CommandLine)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	grid, err := cfg.Grid()
	if err != nil {
		log.Fatalf("failed to build grid: %v", err)
	}
	ctrl, err := control.New(grid, control.Options{
		Rate:     cfg.Rate,
		Preset:   cfg.Preset,
		Patterns: cfg.Patterns,
		Paused:   flags.Paused,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("invalid patterns: %v", err)
	}
	if err := ctrl.Reset(); err != nil {
		logger.Warn("startup preset not loaded", "preset", cfg.Preset, "error", err)
	}

	game := app.New(ctrl, cfg.Scale, flags.HUD, logger)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("gridlife")
	ebiten.SetTPS(flags.TPS)
	ebiten.SetWindowSize(w, h)

	logger.Info("starting", "width", grid.Width(), "height", grid.Height(), "scale", cfg.Scale, "rate", cfg.Rate)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
