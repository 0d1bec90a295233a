package app

import (
	"flag"
	"fmt"

	"gridlife/internal/config"
)

// PanelWidth is the width in pixels of the HUD panel right of the board.
const PanelWidth = 200

// Flags represents the command-line parameters for the GUI.
type Flags struct {
	ConfigPath   string
	WindowWidth  int
	WindowHeight int
	Scale        int
	TPS          int
	Rate         int
	Preset       string
	LogLevel     string
	LogFormat    string
	Paused       bool
	HUD          bool
}

// NewFlags returns Flags populated from config.Default.
func NewFlags() *Flags {
	d := config.Default()
	return &Flags{
		WindowWidth:  d.WindowWidth,
		WindowHeight: d.WindowHeight,
		Scale:        d.Scale,
		TPS:          60,
		Rate:         d.Rate,
		Preset:       d.Preset,
		LogLevel:     d.LogLevel,
		LogFormat:    d.LogFormat,
		HUD:          true,
	}
}

// Bind attaches the flags to the provided FlagSet.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", f.ConfigPath, "path to an HCL config file")
	fs.IntVar(&f.WindowWidth, "width", f.WindowWidth, "board width in pixels")
	fs.IntVar(&f.WindowHeight, "height", f.WindowHeight, "board height in pixels")
	fs.IntVar(&f.Scale, "scale", f.Scale, "pixels per cell")
	fs.IntVar(&f.TPS, "tps", f.TPS, "ticks per second")
	fs.IntVar(&f.Rate, "gps", f.Rate, "generations per second")
	fs.StringVar(&f.Preset, "preset", f.Preset, "preset loaded at startup and on reset")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", f.LogFormat, "log format (text, json)")
	fs.BoolVar(&f.Paused, "paused", f.Paused, "start paused")
	fs.BoolVar(&f.HUD, "hud", f.HUD, "show the status panel")
}

// Resolve loads the -config file, if any, and applies the flags that were set
// explicitly on fs on top of it.
func (f *Flags) Resolve(fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if f.ConfigPath != "" {
		loaded, err := config.Load(f.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "width":
			cfg.WindowWidth = f.WindowWidth
		case "height":
			cfg.WindowHeight = f.WindowHeight
		case "scale":
			cfg.Scale = f.Scale
		case "gps":
			cfg.Rate = f.Rate
		case "preset":
			cfg.Preset = f.Preset
		case "log-level":
			cfg.LogLevel = f.LogLevel
		case "log-format":
			cfg.LogFormat = f.LogFormat
		}
	})

	if f.TPS <= 0 {
		return config.Config{}, fmt.Errorf("%w: tps must be positive, got %d", config.ErrInvalidConfig, f.TPS)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
