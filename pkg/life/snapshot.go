package life

import "strings"

// Snapshot is a read-only copy of the board at one generation.
type Snapshot struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Generation int    `json:"generation"`
	Population int    `json:"population"`
	Cells      []bool `json:"cells"`
}

// Snapshot copies the committed state of every cell in row-major order.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Width:      g.w,
		Height:     g.h,
		Generation: g.gen,
		Cells:      make([]bool, len(g.cells)),
	}
	for i := range g.cells {
		if g.cells[i].alive {
			s.Cells[i] = true
			s.Population++
		}
	}
	return s
}

// Alive reports whether (x, y) is alive. Coordinates outside the board are dead.
func (s Snapshot) Alive(x, y int) bool {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return false
	}
	return s.Cells[y*s.Width+x]
}

// Live lists the live cells in row-major order.
func (s Snapshot) Live() []Point {
	var pts []Point
	for i, alive := range s.Cells {
		if alive {
			pts = append(pts, Point{X: i % s.Width, Y: i / s.Width})
		}
	}
	return pts
}

// String renders the board with '#' for live and '.' for dead cells, one
// newline-terminated line per row.
func (s Snapshot) String() string {
	var b strings.Builder
	b.Grow((s.Width + 1) * s.Height)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Cells[y*s.Width+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
