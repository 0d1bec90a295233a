// Package control implements the loop-side state around a life.Grid: the
// pause flag, generation pacing, custom pattern lookup and the startup preset.
//
// A Controller owns its grid exclusively and, like the grid, is not safe for
// concurrent use. Front ends either drive it from a single game loop (the
// ebiten GUI) or funnel every call through one goroutine (the server).
package control

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"gridlife/internal/core"
	"gridlife/internal/logging"
	"gridlife/pkg/life"
)

// ErrDuplicatePattern is returned when a custom pattern reuses a name.
var ErrDuplicatePattern = errors.New("pattern name already in use")

// RandomDensity is the live-cell probability used by Randomize.
const RandomDensity = 0.3

const rateKey = "rate"

// Options configures a Controller.
type Options struct {
	// Rate is the number of generations per second while running.
	Rate int
	// Preset is loaded by Reset.
	Preset string
	// Patterns extends the built-in presets.
	Patterns []life.Pattern
	// Paused starts the controller paused.
	Paused bool
	Logger *slog.Logger
}

// Status summarizes the controller for status lines and API responses.
type Status struct {
	Generation int    `json:"generation"`
	Population int    `json:"population"`
	Paused     bool   `json:"paused"`
	Preset     string `json:"preset,omitempty"`
	Rate       int    `json:"rate"`
}

// Controller wraps a grid with run/pause state.
type Controller struct {
	grid     *life.Grid
	pacer    *core.Pacer
	log      *slog.Logger
	paused   bool
	preset   string
	startup  string
	patterns map[string]life.Pattern
}

// New wraps grid. Custom patterns may not reuse a built-in or each other's
// names.
func New(grid *life.Grid, opts Options) (*Controller, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Controller{
		grid:     grid,
		pacer:    core.NewPacer(opts.Rate),
		log:      logger,
		paused:   opts.Paused,
		startup:  opts.Preset,
		patterns: make(map[string]life.Pattern, len(opts.Patterns)),
	}
	for _, p := range opts.Patterns {
		if life.IsPreset(p.Name) || c.patterns[p.Name].Name != "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePattern, p.Name)
		}
		c.patterns[p.Name] = p
	}
	return c, nil
}

// Size returns the grid dimensions.
func (c *Controller) Size() core.Size {
	return core.Size{W: c.grid.Width(), H: c.grid.Height()}
}

// Cells exposes the grid's render buffer.
func (c *Controller) Cells() []uint8 { return c.grid.Cells() }

// Snapshot returns a read-only copy of the board.
func (c *Controller) Snapshot() life.Snapshot { return c.grid.Snapshot() }

// Status reports the current counters and flags.
func (c *Controller) Status() Status {
	return Status{
		Generation: c.grid.Generation(),
		Population: c.grid.Population(),
		Paused:     c.paused,
		Preset:     c.preset,
		Rate:       c.pacer.Rate(),
	}
}

// Paused reports whether Advance and Tick are currently suppressed.
func (c *Controller) Paused() bool { return c.paused }

// SetPaused sets the pause flag.
func (c *Controller) SetPaused(paused bool) {
	if c.paused != paused {
		c.log.Debug("pause changed", "paused", paused, "generation", c.grid.Generation())
	}
	c.paused = paused
}

// TogglePause flips the pause flag and returns the new value.
func (c *Controller) TogglePause() bool {
	c.SetPaused(!c.paused)
	return c.paused
}

// Rate returns the generation rate.
func (c *Controller) Rate() int { return c.pacer.Rate() }

// SetRate changes the generation rate; see core.Pacer.SetRate for bounds.
func (c *Controller) SetRate(rate int) {
	c.pacer.SetRate(rate)
}

// Interval returns the time between generations at the current rate.
func (c *Controller) Interval() time.Duration { return c.pacer.Interval() }

// Tick is called once per host frame. It advances the grid by every
// generation that fell due since the previous frame, so rates above the host
// frame rate are honored, and returns how many it computed. Time spent paused
// is not owed afterwards.
func (c *Controller) Tick(now time.Time) int {
	n := c.pacer.Due(now)
	if c.paused {
		return 0
	}
	for i := 0; i < n; i++ {
		c.grid.Step()
	}
	return n
}

// Advance steps the grid unless paused. Callers that already run on a timer
// use it instead of Tick.
func (c *Controller) Advance() bool {
	if c.paused {
		return false
	}
	c.grid.Step()
	return true
}

// Step advances exactly one generation regardless of the pause flag.
func (c *Controller) Step() {
	c.grid.Step()
}

// ToggleOn turns on the cell at (x, y).
func (c *Controller) ToggleOn(x, y int) error {
	if err := c.grid.ToggleOn(x, y); err != nil {
		return err
	}
	c.log.Debug("cell toggled", "x", x, "y", y)
	return nil
}

// Clear kills every cell.
func (c *Controller) Clear() {
	c.grid.Clear()
	c.preset = ""
}

// LoadPreset loads a custom pattern or built-in preset by name.
func (c *Controller) LoadPreset(name string) error {
	var err error
	if p, ok := c.patterns[name]; ok {
		err = c.grid.LoadPattern(p)
	} else {
		err = c.grid.LoadPreset(name)
	}
	if err != nil {
		return err
	}
	c.preset = name
	c.log.Info("preset loaded", "preset", name, "population", c.grid.Population())
	return nil
}

// Randomize fills the board with a seeded random soup.
func (c *Controller) Randomize(seed int64) {
	c.grid.Randomize(seed, RandomDensity)
	c.preset = ""
	c.log.Info("board randomized", "seed", seed, "population", c.grid.Population())
}

// Reset reloads the startup preset, or clears the board when there is none.
func (c *Controller) Reset() error {
	if c.startup == "" {
		c.Clear()
		return nil
	}
	return c.LoadPreset(c.startup)
}

// PresetNames lists built-in and custom pattern names in lexical order.
func (c *Controller) PresetNames() []string {
	names := life.PresetNames()
	for name := range c.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parameters implements core.ParameterProvider.
func (c *Controller) Parameters() core.ParameterSnapshot {
	st := c.Status()
	state := "running"
	if st.Paused {
		state = "paused"
	}
	preset := st.Preset
	if preset == "" {
		preset = "-"
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Board",
			Params: []core.Parameter{
				{Key: "state", Label: "State", Type: core.ParamTypeText, Value: state},
				{Key: "generation", Label: "Generation", Type: core.ParamTypeInt, Value: strconv.Itoa(st.Generation)},
				{Key: "population", Label: "Population", Type: core.ParamTypeInt, Value: strconv.Itoa(st.Population)},
				{Key: "preset", Label: "Preset", Type: core.ParamTypeText, Value: preset},
			},
		},
		{
			Name: "Speed",
			Params: []core.Parameter{
				{Key: rateKey, Label: "Gen/s", Type: core.ParamTypeInt, Value: strconv.Itoa(st.Rate)},
			},
		},
	}}
}

// ParameterControls implements core.ParameterProvider.
func (c *Controller) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: rateKey, Label: "Gen/s", Step: 5, Min: 1, Max: core.MaxRate},
	}
}

// SetIntParameter implements core.IntParameterSetter.
func (c *Controller) SetIntParameter(key string, value int) bool {
	if key != rateKey {
		return false
	}
	c.SetRate(value)
	return true
}
