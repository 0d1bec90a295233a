package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"gridlife/internal/config"
	"gridlife/internal/control"
	"gridlife/internal/logging"
	"gridlife/internal/server"
	"gridlife/pkg/life"
)

const shutdownTimeout = 5 * time.Second

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "lifectl",
		Usage:     "run Conway's Game of Life without a window",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to an HCL config file",
				Sources: cli.EnvVars("GRIDLIFE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("GRIDLIFE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log format (text, json)",
				Sources: cli.EnvVars("GRIDLIFE_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "preset loaded at startup, overriding the config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "advance a board and print the result",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "generations",
						Aliases: []string{"n"},
						Usage:   "number of generations to compute",
						Value:   100,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "start from a random soup with this seed instead of the preset",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "print only the final status line",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runBoard(ctx, cmd, out)
				},
			},
			{
				Name:  "presets",
				Usage: "list the built-in and configured patterns",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return listPresets(cmd, out)
				},
			},
			{
				Name:  "serve",
				Usage: "run the board behind an HTTP and websocket API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "listen address",
						Value:   ":8080",
						Sources: cli.EnvVars("GRIDLIFE_ADDR"),
					},
					&cli.BoolFlag{
						Name:  "paused",
						Usage: "start with the board paused",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return serve(ctx, cmd)
				},
			},
		},
	}
}

// setup resolves configuration and logging shared by every subcommand.
func setup(cmd *cli.Command) (config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("preset") {
		cfg.Preset = cmd.String("preset")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newController(cfg config.Config, logger *slog.Logger, paused bool) (*control.Controller, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	return control.New(grid, control.Options{
		Rate:     cfg.Rate,
		Preset:   cfg.Preset,
		Patterns: cfg.Patterns,
		Paused:   paused,
		Logger:   logger,
	})
}

func runBoard(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, logger, false)
	if err != nil {
		return err
	}

	if cmd.IsSet("seed") {
		ctrl.Randomize(cmd.Int64("seed"))
	} else if err := ctrl.Reset(); err != nil {
		return fmt.Errorf("failed to load preset: %w", err)
	}

	n := int(cmd.Int("generations"))
	if n < 0 {
		return fmt.Errorf("generations must not be negative, got %d", n)
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ctrl.Step()
	}

	st := ctrl.Status()
	if !cmd.Bool("quiet") {
		fmt.Fprint(out, ctrl.Snapshot())
	}
	fmt.Fprintf(out, "generation %d population %d\n", st.Generation, st.Population)
	return nil
}

func listPresets(cmd *cli.Command, out io.Writer) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}

	custom := make(map[string]life.Pattern, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		custom[p.Name] = p
	}
	names := life.PresetNames()
	for _, p := range cfg.Patterns {
		names = append(names, p.Name)
	}
	for _, name := range names {
		p, ok := custom[name]
		if !ok {
			if p, err = life.Preset(name); err != nil {
				return err
			}
		}
		w, h := p.Size()
		fmt.Fprintf(out, "%-10s %3dx%-3d at (%d,%d)\n", name, w, h, p.Origin.X, p.Origin.Y)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, logger, cmd.Bool("paused"))
	if err != nil {
		return err
	}
	if err := ctrl.Reset(); err != nil {
		logger.Warn("startup preset not loaded", "preset", cfg.Preset, "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := server.NewHub(logger)
	loop := server.NewLoop(ctrl, hub, logger)
	go hub.Run(ctx)
	go loop.Run(ctx)

	httpServer := &http.Server{
		Addr:         cmd.String("addr"),
		Handler:      server.New(loop, hub, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
