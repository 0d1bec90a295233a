package render

import "image/color"

// Palette pairs the colors used for live and dead cells.
type Palette struct {
	On  color.Color
	Off color.Color
}

var (
	running = Palette{On: color.White, Off: color.Black}
	paused  = Palette{On: color.RGBA{R: 255, A: 255}, Off: color.Black}

	// GridLine is the color of the cell separators.
	GridLine = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// PaletteFor returns the cell colors for the given pause state. Live cells
// turn red while the board is paused.
func PaletteFor(isPaused bool) Palette {
	if isPaused {
		return paused
	}
	return running
}

// FillRGBA converts binary cell data (0/1) into RGBA pixels in buf. buf must
// hold at least 4*len(cells) bytes.
func (p Palette) FillRGBA(buf []byte, cells []uint8) {
	fillBinaryRGBA(buf, cells, p.On, p.Off)
}

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}
