package app

import "testing"

func TestCellAt(t *testing.T) {
	cases := []struct {
		px, py, scale int
		x, y          int
	}{
		{0, 0, 10, 0, 0},
		{9, 9, 10, 0, 0},
		{10, 25, 10, 1, 2},
		{799, 599, 10, 79, 59},
		{800, 0, 10, 80, 0},
		{-1, 5, 10, -1, 0},
		{-10, -11, 10, -1, -2},
		{3, 4, 0, 3, 4},
	}
	for _, tc := range cases {
		x, y := CellAt(tc.px, tc.py, tc.scale)
		if x != tc.x || y != tc.y {
			t.Fatalf("CellAt(%d, %d, %d) = (%d, %d), expected (%d, %d)", tc.px, tc.py, tc.scale, x, y, tc.x, tc.y)
		}
	}
}
