// Package core holds the small contracts shared by the control loop and its
// front ends: grid sizes, generation pacing and HUD parameters.
package core

// Size describes the dimensions of a grid in cells.
type Size struct {
	W int
	H int
}

// Pixels returns the on-screen size of the grid at the given scale.
func (s Size) Pixels(scale int) (int, int) {
	return s.W * scale, s.H * scale
}
