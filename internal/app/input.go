package app

// CellAt maps a pixel position on the board to cell coordinates. Positions
// left of or above the board map to negative coordinates.
func CellAt(px, py, scale int) (x, y int) {
	if scale <= 0 {
		scale = 1
	}
	return floorDiv(px, scale), floorDiv(py, scale)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
