// Package life implements Conway's Game of Life on a fixed-size toroidal grid.
//
// A Grid is a plain data structure with no run/pause state of its own: callers
// mutate it with ToggleOn, Clear and the preset loaders, and advance it with
// Step. Step evaluates every cell against the previous generation only, so the
// result does not depend on iteration order.
//
// A Grid is not safe for concurrent use; the owning control loop serializes
// access.
package life

import "fmt"

// Cell is one grid position. Its coordinates are fixed at construction.
type Cell struct {
	x, y      int
	alive     bool
	nextAlive bool
}

// X returns the column index.
func (c Cell) X() int { return c.x }

// Y returns the row index.
func (c Cell) Y() int { return c.y }

// Alive reports the committed state of the cell.
func (c Cell) Alive() bool { return c.alive }

// Grid is a width x height board whose edges wrap on both axes.
type Grid struct {
	w, h  int
	cells []Cell
	gen   int
	buf   []uint8
}

// New returns an all-dead grid with the provided cell dimensions.
func New(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("grid dimensions must be positive, got %dx%d", w, h)}
	}
	cells := make([]Cell, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cells[y*w+x] = Cell{x: x, y: y}
		}
	}
	return &Grid{w: w, h: h, cells: cells, buf: make([]uint8, len(cells))}, nil
}

// Build sizes a grid to cover an area of areaW x areaH units with square cells
// of unit units each. Both sides must be evenly divisible by unit.
func Build(areaW, areaH, unit int) (*Grid, error) {
	if unit <= 0 || areaW <= 0 || areaH <= 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("area %dx%d and unit size %d must be positive", areaW, areaH, unit)}
	}
	if areaW%unit != 0 || areaH%unit != 0 {
		return nil, &ConfigurationError{Msg: "scale is not compatible with window width or window height"}
	}
	return New(areaW/unit, areaH/unit)
}

// Width returns the number of cells per row.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Generation returns the number of steps since the board was last reset.
func (g *Grid) Generation() int { return g.gen }

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].alive {
			n++
		}
	}
	return n
}

// Cell returns a copy of the cell at (x, y).
func (g *Grid) Cell(x, y int) (Cell, error) {
	if err := g.check(x, y); err != nil {
		return Cell{}, err
	}
	return g.cells[y*g.w+x], nil
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) ([]Cell, error) {
	if err := g.check(0, y); err != nil {
		return nil, err
	}
	return append([]Cell(nil), g.cells[y*g.w:(y+1)*g.w]...), nil
}

// ToggleOn marks the cell at (x, y) alive. Toggling a live cell is a no-op.
func (g *Grid) ToggleOn(x, y int) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	g.cells[y*g.w+x].alive = true
	return nil
}

// Clear kills every cell and resets the generation counter.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].alive = false
	}
	g.gen = 0
}

// Step advances the board by one generation.
func (g *Grid) Step() {
	w, h := g.w, g.h
	// Only alive is read and only nextAlive is written until the commit below.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := &g.cells[y*w+x]
			c.nextAlive = rule(c.alive, g.neighbors(x, y))
		}
	}
	for i := range g.cells {
		g.cells[i].alive = g.cells[i].nextAlive
	}
	g.gen++
}

// Cells exposes the committed state as 0/1 bytes in row-major order. The
// slice is reused between calls.
func (g *Grid) Cells() []uint8 {
	for i := range g.cells {
		if g.cells[i].alive {
			g.buf[i] = 1
			continue
		}
		g.buf[i] = 0
	}
	return g.buf
}

func (g *Grid) neighbors(x, y int) int {
	w, h := g.w, g.h
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + w) % w
			ny := (y + dy + h) % h
			if g.cells[ny*w+nx].alive {
				n++
			}
		}
	}
	return n
}

func (g *Grid) check(x, y int) error {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return &OutOfBoundsError{X: x, Y: y, Width: g.w, Height: g.h}
	}
	return nil
}

// rule is B3/S23.
func rule(alive bool, neighbors int) bool {
	return (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3)
}
