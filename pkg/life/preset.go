package life

import "sort"

// Point is a cell coordinate or an offset within a pattern.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pattern is a named set of live cell offsets. Origin is where the offsets are
// anchored when the pattern is loaded without an explicit position.
type Pattern struct {
	Name   string  `json:"name"`
	Origin Point   `json:"origin"`
	Cells  []Point `json:"cells"`
}

// Size returns the width and height of the box spanned by the offsets.
func (p Pattern) Size() (w, h int) {
	for _, c := range p.Cells {
		if c.X+1 > w {
			w = c.X + 1
		}
		if c.Y+1 > h {
			h = c.Y + 1
		}
	}
	return w, h
}

func (p Pattern) clone() Pattern {
	p.Cells = append([]Point(nil), p.Cells...)
	return p
}

var pulsarCells = []Point{
	{2, 0}, {3, 0}, {4, 0}, {8, 0}, {9, 0}, {10, 0},
	{0, 2}, {5, 2}, {7, 2}, {12, 2},
	{0, 3}, {5, 3}, {7, 3}, {12, 3},
	{0, 4}, {5, 4}, {7, 4}, {12, 4},
	{2, 5}, {3, 5}, {4, 5}, {8, 5}, {9, 5}, {10, 5},
	{2, 7}, {3, 7}, {4, 7}, {8, 7}, {9, 7}, {10, 7},
	{0, 8}, {5, 8}, {7, 8}, {12, 8},
	{0, 9}, {5, 9}, {7, 9}, {12, 9},
	{0, 10}, {5, 10}, {7, 10}, {12, 10},
	{2, 12}, {3, 12}, {4, 12}, {8, 12}, {9, 12}, {10, 12},
}

var presets = map[string]Pattern{
	"glider": {
		Name:  "glider",
		Cells: []Point{{2, 0}, {0, 1}, {2, 1}, {1, 2}, {2, 2}},
	},
	"pulsar": {
		Name:   "pulsar",
		Origin: Point{38, 3},
		Cells:  pulsarCells,
	},
	"block": {
		Name:   "block",
		Origin: Point{1, 1},
		Cells:  []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	"blinker": {
		Name:   "blinker",
		Origin: Point{1, 1},
		Cells:  []Point{{0, 1}, {1, 1}, {2, 1}},
	},
	"toad": {
		Name:   "toad",
		Origin: Point{1, 1},
		Cells:  []Point{{1, 0}, {2, 0}, {3, 0}, {0, 1}, {1, 1}, {2, 1}},
	},
	"beacon": {
		Name:   "beacon",
		Origin: Point{1, 1},
		Cells:  []Point{{0, 0}, {1, 0}, {0, 1}, {3, 2}, {2, 3}, {3, 3}},
	},
	"lwss": {
		Name:   "lwss",
		Origin: Point{1, 1},
		Cells:  []Point{{1, 0}, {4, 0}, {0, 1}, {0, 2}, {4, 2}, {0, 3}, {1, 3}, {2, 3}, {3, 3}},
	},
}

// Preset returns a copy of the built-in pattern registered under name.
func Preset(name string) (Pattern, error) {
	p, ok := presets[name]
	if !ok {
		return Pattern{}, &UnknownPresetError{Name: name}
	}
	return p.clone(), nil
}

// IsPreset reports whether name is a built-in pattern.
func IsPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames lists the built-in patterns in lexical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPreset clears the board and draws the named built-in pattern at its
// default origin.
func (g *Grid) LoadPreset(name string) error {
	p, err := Preset(name)
	if err != nil {
		return err
	}
	return g.LoadPattern(p)
}

// LoadPresetAt is LoadPreset with an explicit origin.
func (g *Grid) LoadPresetAt(name string, origin Point) error {
	p, err := Preset(name)
	if err != nil {
		return err
	}
	p.Origin = origin
	return g.LoadPattern(p)
}

// LoadPattern clears the board and turns on p's cells relative to p.Origin.
// A pattern that does not fit leaves the board untouched.
func (g *Grid) LoadPattern(p Pattern) error {
	for _, c := range p.Cells {
		if err := g.check(p.Origin.X+c.X, p.Origin.Y+c.Y); err != nil {
			return err
		}
	}
	g.Clear()
	for _, c := range p.Cells {
		g.cells[(p.Origin.Y+c.Y)*g.w+p.Origin.X+c.X].alive = true
	}
	return nil
}
