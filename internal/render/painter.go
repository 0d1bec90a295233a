//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// GridPainter updates a single RGBA image based on binary cell data.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit uploads the provided cells into the painter image, draws it scaled up
// and overlays the grid lines.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, p Palette, scale int) {
	if len(cells) != gp.w*gp.h {
		return
	}
	p.FillRGBA(gp.buf, cells)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)

	gp.drawLines(dst, scale)
}

func (gp *GridPainter) drawLines(dst *ebiten.Image, scale int) {
	if scale < 2 {
		return
	}
	width := float32(gp.w * scale)
	height := float32(gp.h * scale)
	for x := 0; x <= gp.w; x++ {
		px := float32(x * scale)
		vector.StrokeLine(dst, px, 0, px, height, 1, GridLine, false)
	}
	for y := 0; y <= gp.h; y++ {
		py := float32(y * scale)
		vector.StrokeLine(dst, 0, py, width, py, 1, GridLine, false)
	}
}
