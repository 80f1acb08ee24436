// Package display presents a [tailor.Painter] in a desktop window using
// ebiten. The window's game loop drives the painter with one Tick per
// ebiten update, so the painter must not also be started with
// [tailor.Painter.Start].
//
//	p, _ := tailor.NewPainter(800, 1000)
//	display.Run(p, display.RunConfig{Title: "Outfit", ShowFPS: true})
package display

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/tailor"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title string

	// Width and Height set the initial window size. Zero uses the
	// painter's size.
	Width, Height int

	// ShowFPS draws the measured FPS and TPS in the top-left corner.
	ShowFPS bool

	// Resizable lets the user resize the window. The surface is letterboxed
	// to keep its aspect ratio.
	Resizable bool

	// Background fills the letterbox bars. Nil means black.
	Background color.Color

	// Update, if set, runs before every tick. Returning an error stops the
	// loop; returning ebiten.Termination stops it cleanly.
	Update func() error
}

// fpsRefresh is how often the FPS overlay is redrawn.
const fpsRefresh = 500 * time.Millisecond

type game struct {
	source func() *tailor.Painter
	cfg    RunConfig

	painter *tailor.Painter // as of the last Update
	surface *ebiten.Image
	pixels  []byte

	fps        *ebiten.Image
	fpsUpdated time.Time
}

// Run opens a window and drives p until the window closes, p is destroyed
// or cfg.Update fails. It blocks and must be called from the main
// goroutine.
func Run(p *tailor.Painter, cfg RunConfig) error {
	if p == nil {
		return errors.New("display: nil painter")
	}
	return RunFunc(func() *tailor.Painter {
		if p.Destroyed() {
			return nil
		}
		return p
	}, cfg)
}

// RunFunc is like Run but asks source for the painter on every update, so
// the painter may be replaced while the window is open. The loop ends when
// source returns nil.
func RunFunc(source func() *tailor.Painter, cfg RunConfig) error {
	p := source()
	if p == nil {
		return errors.New("display: no painter")
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = p.Width(), p.Height()
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	tailor.Logger().Info("display: window opened",
		slog.String("title", cfg.Title), slog.Int("width", w), slog.Int("height", h))
	err := ebiten.RunGame(newGame(source, cfg))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func newGame(source func() *tailor.Painter, cfg RunConfig) *game {
	return &game{source: source, cfg: cfg}
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	p := g.source()
	if p == nil {
		return ebiten.Termination
	}
	if p != g.painter {
		g.attach(p)
	}
	p.Tick()
	return nil
}

// attach switches to p, reallocating the surface when its size changed.
func (g *game) attach(p *tailor.Painter) {
	if n := 4 * p.Width() * p.Height(); len(g.pixels) != n {
		g.pixels = make([]byte, n)
		if g.surface != nil {
			g.surface.Deallocate()
			g.surface = nil
		}
	}
	g.painter = p
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	bg := g.cfg.Background
	if bg == nil {
		bg = color.Black
	}
	screen.Fill(bg)
	if g.painter == nil {
		return
	}

	pw, ph := g.painter.Width(), g.painter.Height()
	if g.surface == nil {
		g.surface = ebiten.NewImage(pw, ph)
	}
	g.painter.ReadPixels(g.pixels)
	g.surface.WritePixels(g.pixels)

	b := screen.Bounds()
	scale, x, y := letterbox(pw, ph, b.Dx(), b.Dy())
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	screen.DrawImage(g.surface, op)

	if g.cfg.ShowFPS {
		g.drawFPS(screen)
	}
}

func (g *game) drawFPS(screen *ebiten.Image) {
	if g.fps == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		g.fps = ebiten.NewImage(100, 32)
	}
	if now := time.Now(); now.Sub(g.fpsUpdated) >= fpsRefresh {
		g.fpsUpdated = now
		g.fps.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(g.fps, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	screen.DrawImage(g.fps, nil)
}

// Layout implements ebiten.Game. The screen matches the window; Draw
// letterboxes the surface into it.
func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return outsideW, outsideH
}

// letterbox returns the scale and offset that fit a srcW x srcH surface
// centered within dstW x dstH without changing its aspect ratio.
func letterbox(srcW, srcH, dstW, dstH int) (scale, x, y float64) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 0, 0
	}
	w, h := tailor.FitWithin(float64(srcW), float64(srcH), float64(dstW), float64(dstH))
	scale = w / float64(srcW)
	return scale, (float64(dstW) - w) / 2, (float64(dstH) - h) / 2
}
