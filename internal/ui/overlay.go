//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const pausedLabel = "Paused"

// Overlay draws the pause banner over the board.
type Overlay struct {
	banner *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay() *Overlay {
	face := basicfont.Face7x13
	bounds := text.BoundString(face, pausedLabel)
	w := bounds.Dx() + 2*bannerPadding
	h := bounds.Dy() + 2*bannerPadding

	banner := ebiten.NewImage(w, h)
	banner.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 200})
	text.Draw(banner, pausedLabel, face, bannerPadding-bounds.Min.X, bannerPadding-bounds.Min.Y, color.White)
	return &Overlay{banner: banner}
}

// Draw centers the banner over a board of boardW x boardH pixels when
// paused is set.
func (o *Overlay) Draw(screen *ebiten.Image, boardW, boardH int, paused bool) {
	if o == nil || !paused {
		return
	}
	b := o.banner.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(bannerScale, bannerScale)
	x := (float64(boardW) - float64(b.Dx())*bannerScale) / 2
	y := (float64(boardH) - float64(b.Dy())*bannerScale) / 2
	op.GeoM.Translate(x, y)
	screen.DrawImage(o.banner, op)
}

const (
	bannerPadding = 6
	bannerScale   = 2
)
