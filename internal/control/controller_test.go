package control

import (
	"errors"
	"slices"
	"testing"
	"time"

	"gridlife/internal/core"
	"gridlife/pkg/life"
)

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	grid, err := life.New(20, 20)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(grid, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPausedControllerDoesNotAdvance(t *testing.T) {
	c := newController(t, Options{Preset: "glider", Paused: true})
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	now := time.Unix(10, 0)
	for i := 0; i < 10; i++ {
		if n := c.Tick(now.Add(time.Duration(i) * time.Second)); n != 0 {
			t.Fatalf("paused controller advanced %d generations on Tick", n)
		}
		if c.Advance() {
			t.Fatal("paused controller advanced on Advance")
		}
	}
	if c.Status().Generation != 0 {
		t.Fatalf("generation %d while paused", c.Status().Generation)
	}

	c.Step()
	if c.Status().Generation != 1 {
		t.Fatal("Step did not advance a paused controller")
	}

	if c.TogglePause() {
		t.Fatal("TogglePause should resume")
	}
	if !c.Advance() || c.Status().Generation != 2 {
		t.Fatal("running controller did not advance")
	}
}

// tickSecond drives one second of 60 Hz frames and returns the generations computed.
func tickSecond(c *Controller, start time.Time) int {
	steps := 0
	for i := 0; i <= 60; i++ {
		steps += c.Tick(start.Add(time.Duration(i) * time.Second / 60))
	}
	return steps
}

func TestTickFollowsRate(t *testing.T) {
	c := newController(t, Options{Rate: 5})
	if steps := tickSecond(c, time.Unix(10, 0)); steps < 5 || steps > 6 {
		t.Fatalf("advanced %d times in a second at 5 gen/s", steps)
	}
}

func TestTickHonorsRatesAboveFrameRate(t *testing.T) {
	for _, rate := range []int{120, core.MaxRate} {
		c := newController(t, Options{Rate: rate})
		steps := tickSecond(c, time.Unix(10, 0))
		if steps < rate-1 || steps > rate+1 {
			t.Fatalf("advanced %d times in a second at %d gen/s", steps, rate)
		}
		if got := c.Status().Generation; got != steps {
			t.Fatalf("generation %d, expected %d", got, steps)
		}
	}
}

func TestTickDoesNotOweTimeSpentPaused(t *testing.T) {
	c := newController(t, Options{Rate: 20, Paused: true})
	start := time.Unix(10, 0)
	c.Tick(start)
	c.Tick(start.Add(10 * time.Second))
	c.SetPaused(false)

	if n := c.Tick(start.Add(10*time.Second + time.Millisecond)); n != 0 {
		t.Fatalf("resumed controller replayed %d generations", n)
	}
}

func TestLoadPresetPrefersCustomPatterns(t *testing.T) {
	diag := life.Pattern{Name: "diagonal", Origin: life.Point{X: 2, Y: 2}, Cells: []life.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}}
	c := newController(t, Options{Patterns: []life.Pattern{diag}})

	if err := c.LoadPreset("diagonal"); err != nil {
		t.Fatal(err)
	}
	st := c.Status()
	if st.Population != 3 || st.Preset != "diagonal" {
		t.Fatalf("status %+v after loading custom pattern", st)
	}
	if !c.Snapshot().Alive(4, 4) {
		t.Fatal("custom pattern not anchored at its origin")
	}

	if err := c.LoadPreset("glider"); err != nil {
		t.Fatal(err)
	}
	if c.Status().Population != 5 {
		t.Fatal("built-in preset not loaded")
	}

	if err := c.LoadPreset("nope"); !errors.Is(err, life.ErrUnknownPreset) {
		t.Fatalf("error = %v, expected ErrUnknownPreset", err)
	}
	if c.Status().Preset != "glider" {
		t.Fatal("failed load changed the recorded preset")
	}
}

func TestNewRejectsShadowedPatterns(t *testing.T) {
	grid, _ := life.New(5, 5)
	_, err := New(grid, Options{Patterns: []life.Pattern{{Name: "glider"}}})
	if !errors.Is(err, ErrDuplicatePattern) {
		t.Fatalf("error = %v, expected ErrDuplicatePattern", err)
	}
	_, err = New(grid, Options{Patterns: []life.Pattern{{Name: "dot"}, {Name: "dot"}}})
	if !errors.Is(err, ErrDuplicatePattern) {
		t.Fatalf("error = %v, expected ErrDuplicatePattern", err)
	}
}

func TestToggleOnOutOfBoundsIsReturned(t *testing.T) {
	c := newController(t, Options{})
	if err := c.ToggleOn(20, 0); !errors.Is(err, life.ErrOutOfBounds) {
		t.Fatalf("error = %v, expected ErrOutOfBounds", err)
	}
	if err := c.ToggleOn(19, 19); err != nil {
		t.Fatal(err)
	}
}

func TestResetWithoutPresetClears(t *testing.T) {
	c := newController(t, Options{})
	c.Randomize(9)
	if c.Status().Population == 0 {
		t.Fatal("random soup is empty")
	}
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if c.Status().Population != 0 {
		t.Fatal("Reset without a startup preset left cells alive")
	}
}

func TestPresetNamesIncludeCustom(t *testing.T) {
	c := newController(t, Options{Patterns: []life.Pattern{{Name: "acorn"}}})
	names := c.PresetNames()
	if !slices.Contains(names, "acorn") || !slices.Contains(names, "pulsar") {
		t.Fatalf("PresetNames() = %v", names)
	}
	if !slices.IsSorted(names) {
		t.Fatalf("PresetNames() not sorted: %v", names)
	}
}

func TestRateParameter(t *testing.T) {
	c := newController(t, Options{Rate: 40})
	var provider core.ParameterProvider = c
	p, ok := provider.Parameters().Lookup("rate")
	if !ok || p.Value != "40" {
		t.Fatalf("rate parameter = %+v, %v", p, ok)
	}
	if !c.SetIntParameter("rate", 12) || c.Rate() != 12 {
		t.Fatal("SetIntParameter did not change the rate")
	}
	if c.SetIntParameter("generation", 5) {
		t.Fatal("generation should not be settable")
	}
	if len(provider.ParameterControls()) != 1 {
		t.Fatal("expected a single rate control")
	}
	if state, _ := provider.Parameters().Lookup("state"); state.Value != "running" {
		t.Fatalf("state = %q", state.Value)
	}
	for _, group := range provider.Parameters().Groups {
		for _, param := range group.Params {
			if param.Type != core.ParamTypeInt && param.Type != core.ParamTypeText {
				t.Fatalf("parameter %q has unsupported type %q", param.Key, param.Type)
			}
		}
	}
}
