package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gridlife/pkg/life"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	grid, err := cfg.Grid()
	require.NoError(t, err)
	require.Equal(t, 80, grid.Width())
	require.Equal(t, 60, grid.Height())
}

func TestParseOverridesDefaults(t *testing.T) {
	src := `
window_width           = 400
window_height          = 300
scale                  = 20
generations_per_second = 12
preset                 = "pulsar"
log_level              = "debug"
log_format             = "json"
`
	cfg, err := Parse([]byte(src), "over.hcl")
	require.NoError(t, err)
	require.Equal(t, 400, cfg.WindowWidth)
	require.Equal(t, 300, cfg.WindowHeight)
	require.Equal(t, 20, cfg.Scale)
	require.Equal(t, 12, cfg.Rate)
	require.Equal(t, "pulsar", cfg.Preset)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Empty(t, cfg.Patterns)
}

func TestParsePatternsUseGridVariables(t *testing.T) {
	src := `
window_width  = 200
window_height = 100
scale         = 10
preset        = "acorn"

pattern "acorn" {
  origin = [floor(grid.width / 2) - 3, max(0, grid.height - 5)]
  cells  = [[1, 0], [3, 1], [0, 2], [1, 2], [4, 2], [5, 2], [6, 2]]
}

pattern "dot" {
  cells = [[0, 0]]
}
`
	cfg, err := Parse([]byte(src), "patterns.hcl")
	require.NoError(t, err)
	require.Len(t, cfg.Patterns, 2)

	acorn := cfg.Patterns[0]
	require.Equal(t, "acorn", acorn.Name)
	require.Equal(t, life.Point{X: 7, Y: 5}, acorn.Origin)
	require.Len(t, acorn.Cells, 7)
	require.Equal(t, life.Point{X: 3, Y: 1}, acorn.Cells[1])

	dot := cfg.Patterns[1]
	require.Equal(t, life.Point{}, dot.Origin)

	grid, err := cfg.Grid()
	require.NoError(t, err)
	require.NoError(t, grid.LoadPattern(acorn))
	require.Equal(t, 7, grid.Population())
}

func TestParseRejectsIncompatibleScale(t *testing.T) {
	_, err := Parse([]byte("window_width = 100\nwindow_height = 60\nscale = 11\n"), "scale.hcl")
	require.ErrorIs(t, err, life.ErrConfiguration)
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"rate":          `generations_per_second = 0`,
		"log level":     `log_level = "loud"`,
		"log format":    `log_format = "xml"`,
		"unknown":       `preset = "nope"`,
		"shadow":        "pattern \"glider\" {\n  cells = [[0, 0]]\n}\n",
		"duplicate":     "pattern \"a\" {\n  cells = [[0, 0]]\n}\npattern \"a\" {\n  cells = [[1, 1]]\n}\n",
		"short cell":    "pattern \"a\" {\n  cells = [[0]]\n}\n",
		"negative cell": "pattern \"a\" {\n  cells = [[-1, 0]]\n}\n",
		"bad origin":    "pattern \"a\" {\n  origin = [1]\n  cells = [[0, 0]]\n}\n",
		"empty":         "pattern \"a\" {\n  cells = []\n}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), name+".hcl")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	_, err := Parse([]byte("scale = = 3"), "broken.hcl")
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.hcl")

	_, err = Parse([]byte(`scale = "big"`), "typed.hcl")
	require.Error(t, err)

	_, err = Parse([]byte(`colour = "red"`), "unknown.hcl")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gridlife.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`preset = "toad"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "toad", cfg.Preset)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
