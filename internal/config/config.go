// Package config loads gridlife settings from an HCL file.
//
// A file sets the window area, cell scale and generation rate, picks a startup
// preset, and may declare custom patterns:
//
//	window_width           = 800
//	window_height          = 600
//	scale                  = 10
//	generations_per_second = 40
//	preset                 = "acorn"
//
//	pattern "acorn" {
//	  origin = [floor(grid.width / 2) - 3, floor(grid.height / 2) - 1]
//	  cells  = [[1, 0], [3, 1], [0, 2], [1, 2], [4, 2], [5, 2], [6, 2]]
//	}
//
// Pattern blocks are decoded after the top-level attributes, so their
// expressions can refer to grid.width and grid.height (in cells) and call
// floor, min and max.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"gridlife/internal/core"
	"gridlife/internal/logging"
	"gridlife/pkg/life"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the resolved application configuration.
type Config struct {
	WindowWidth  int
	WindowHeight int
	Scale        int
	Rate         int
	Preset       string
	LogLevel     string
	LogFormat    string
	Patterns     []life.Pattern
}

// Default returns the settings used when no file is given: an 800x600 window
// of 10 pixel cells running the glider at 40 generations per second.
func Default() Config {
	return Config{
		WindowWidth:  800,
		WindowHeight: 600,
		Scale:        10,
		Rate:         core.DefaultRate,
		Preset:       "glider",
		LogLevel:     "info",
		LogFormat:    logging.FormatText,
	}
}

// Grid builds an empty grid covering the configured window.
func (c Config) Grid() (*life.Grid, error) {
	return life.Build(c.WindowWidth, c.WindowHeight, c.Scale)
}

// Validate checks the configuration as a whole. Errors from the grid
// dimensions match life.ErrConfiguration; everything else matches
// ErrInvalidConfig.
func (c Config) Validate() error {
	if _, err := c.Grid(); err != nil {
		return err
	}
	if c.Rate < 1 || c.Rate > core.MaxRate {
		return fmt.Errorf("%w: generations_per_second must be between 1 and %d, got %d", ErrInvalidConfig, core.MaxRate, c.Rate)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := logging.ValidateFormat(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	seen := map[string]bool{}
	for _, p := range c.Patterns {
		if p.Name == "" {
			return fmt.Errorf("%w: pattern name must not be empty", ErrInvalidConfig)
		}
		if life.IsPreset(p.Name) {
			return fmt.Errorf("%w: pattern %q shadows a built-in preset", ErrInvalidConfig, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: pattern %q declared twice", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
	}
	if c.Preset != "" && !life.IsPreset(c.Preset) && !seen[c.Preset] {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, &life.UnknownPresetError{Name: c.Preset})
	}
	return nil
}

type fileRoot struct {
	WindowWidth  *int     `hcl:"window_width,optional"`
	WindowHeight *int     `hcl:"window_height,optional"`
	Scale        *int     `hcl:"scale,optional"`
	Rate         *int     `hcl:"generations_per_second,optional"`
	Preset       *string  `hcl:"preset,optional"`
	LogLevel     *string  `hcl:"log_level,optional"`
	LogFormat    *string  `hcl:"log_format,optional"`
	Remain       hcl.Body `hcl:",remain"`
}

type patternFile struct {
	Patterns []patternBlock `hcl:"pattern,block"`
}

type patternBlock struct {
	Name   string  `hcl:"name,label"`
	Origin []int   `hcl:"origin,optional"`
	Cells  [][]int `hcl:"cells"`
}

// Load reads and parses the file at path on top of Default.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source on top of Default and validates the result.
func Parse(src []byte, filename string) (Config, error) {
	cfg := Default()

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	setInt(&cfg.WindowWidth, root.WindowWidth)
	setInt(&cfg.WindowHeight, root.WindowHeight)
	setInt(&cfg.Scale, root.Scale)
	setInt(&cfg.Rate, root.Rate)
	setString(&cfg.Preset, root.Preset)
	setString(&cfg.LogLevel, root.LogLevel)
	setString(&cfg.LogFormat, root.LogFormat)

	grid, err := cfg.Grid()
	if err != nil {
		return Config{}, err
	}

	var pf patternFile
	if diags := gohcl.DecodeBody(root.Remain, evalContext(grid.Width(), grid.Height()), &pf); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode patterns in %s: %w", filename, diags)
	}
	for _, b := range pf.Patterns {
		p, err := b.pattern()
		if err != nil {
			return Config{}, err
		}
		cfg.Patterns = append(cfg.Patterns, p)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func evalContext(w, h int) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"grid": cty.ObjectVal(map[string]cty.Value{
				"width":  cty.NumberIntVal(int64(w)),
				"height": cty.NumberIntVal(int64(h)),
			}),
		},
		Functions: map[string]function.Function{
			"floor": stdlib.FloorFunc,
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
		},
	}
}

func (b patternBlock) pattern() (life.Pattern, error) {
	p := life.Pattern{Name: b.Name}
	if b.Origin != nil {
		if len(b.Origin) != 2 {
			return life.Pattern{}, fmt.Errorf("%w: pattern %q origin must be [x, y]", ErrInvalidConfig, b.Name)
		}
		p.Origin = life.Point{X: b.Origin[0], Y: b.Origin[1]}
	}
	if len(b.Cells) == 0 {
		return life.Pattern{}, fmt.Errorf("%w: pattern %q has no cells", ErrInvalidConfig, b.Name)
	}
	for i, c := range b.Cells {
		if len(c) != 2 {
			return life.Pattern{}, fmt.Errorf("%w: pattern %q cell %d must be [x, y]", ErrInvalidConfig, b.Name, i)
		}
		if c[0] < 0 || c[1] < 0 {
			return life.Pattern{}, fmt.Errorf("%w: pattern %q cell %d has a negative offset", ErrInvalidConfig, b.Name, i)
		}
		p.Cells = append(p.Cells, life.Point{X: c[0], Y: c[1]})
	}
	return p, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
