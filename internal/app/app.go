//go:build ebiten

package app

import (
	"errors"
	"log/slog"
	"time"

	"gridlife/internal/control"
	"gridlife/internal/render"
	"gridlife/internal/ui"
	"gridlife/pkg/life"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var presetKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game adapts a control.Controller to the ebiten.Game interface.
type Game struct {
	ctrl    *control.Controller
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	log     *slog.Logger

	scale   int
	presets []string
}

// New constructs a Game for the provided controller. A HUD panel is drawn to
// the right of the board when showHUD is set.
func New(ctrl *control.Controller, scale int, showHUD bool, logger *slog.Logger) *Game {
	size := ctrl.Size()
	g := &Game{
		ctrl:    ctrl,
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(),
		log:     logger,
		scale:   scale,
		presets: ctrl.PresetNames(),
	}
	if showHUD {
		g.hud = ui.NewHUD(ctrl, PanelWidth)
	}
	return g
}

// Update handles per-frame input and advances the board when a generation
// is due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.ctrl.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.ctrl.SetPaused(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.ctrl.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.ctrl.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.ctrl.Reset(); err != nil {
			g.log.Warn("reset failed", "error", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.ctrl.Randomize(time.Now().UnixNano())
	}
	for i, key := range presetKeys {
		if i >= len(g.presets) || !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if err := g.ctrl.LoadPreset(g.presets[i]); err != nil {
			g.log.Warn("preset not loaded", "preset", g.presets[i], "error", err)
		}
	}

	boardW, _ := g.ctrl.Size().Pixels(g.scale)
	g.hud.Update(boardW)
	g.handlePointer()

	g.ctrl.Tick(time.Now())
	return nil
}

// handlePointer turns on the cell under the cursor while the left button is
// held.
func (g *Game) handlePointer() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	px, py := ebiten.CursorPosition()
	if g.hud.Contains(px) {
		return
	}
	x, y := CellAt(px, py, g.scale)
	if err := g.ctrl.ToggleOn(x, y); err != nil {
		if !errors.Is(err, life.ErrOutOfBounds) {
			g.log.Warn("toggle failed", "error", err)
			return
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.log.Debug("click outside the board", "error", err)
		}
	}
}

// Draw renders the board, the pause banner and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	paused := g.ctrl.Paused()
	boardW, boardH := g.ctrl.Size().Pixels(g.scale)
	g.painter.Blit(screen, g.ctrl.Cells(), render.PaletteFor(paused), g.scale)
	g.overlay.Draw(screen, boardW, boardH, paused)
	g.hud.Draw(screen, boardW, boardH)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.ctrl.Size().Pixels(g.scale)
	if g.hud != nil {
		w += PanelWidth
	}
	return w, h
}
