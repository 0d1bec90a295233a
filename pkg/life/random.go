package life

import "math/rand/v2"

// Randomize clears the board and turns each cell on with probability density,
// drawn from a PCG source seeded with seed. The same seed yields the same board.
func (g *Grid) Randomize(seed int64, density float64) {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	g.Clear()
	for i := range g.cells {
		g.cells[i].alive = rng.Float64() < density
	}
}
