package worker

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/tailor"
	"github.com/phanxgames/tailor/canvas"
)

// BaseConfig is the base photo shared by every layer of an outfit.
// Enhanced is the variant textures are multiplied onto; when nil, Image is
// used.
type BaseConfig struct {
	Width, Height int
	Image         image.Image
	Enhanced      image.Image
}

func (b BaseConfig) enhanced() image.Image {
	if b.Enhanced != nil {
		return b.Enhanced
	}
	return b.Image
}

// LayerConfig is one masked region of a group, ready for composition.
type LayerConfig struct {
	Mask *image.Alpha

	// Bounds is the bounding box of Mask's non-zero pixels, in mask
	// coordinates. Nil means unknown: the texture is tiled over the whole
	// canvas with overhang.
	Bounds *image.Rectangle

	Tiling TilingOptions
}

// TextureConfig is a texture to compose into a group.
type TextureConfig struct {
	Image image.Image
	Scale float64 // multiplies every layer's tiling scale
}

// composeRequest either installs a session or asks for a composition.
type composeRequest struct {
	transfer *transfer
	texture  *TextureConfig
}

type transfer struct {
	base   BaseConfig
	layers []LayerConfig
}

// session is the per-group state a composer keeps between requests.
// It is only touched on the unit goroutine.
type session struct {
	w, h   int
	base   image.Image
	layers []sessionLayer
}

type sessionLayer struct {
	mask   *image.RGBA
	bounds *image.Rectangle // in base coordinates
	tiling TilingOptions
}

// GroupComposer composes textured images for one garment group on its own
// unit. Layers are transferred once; each Create then multiplies a texture
// onto the base inside every layer mask.
type GroupComposer struct {
	exec *Executor[composeRequest, *image.RGBA]
}

// NewGroupComposer starts a composer unit called name.
func NewGroupComposer(name string) *GroupComposer {
	var s *session
	handler := func(ctx context.Context, req composeRequest) (*image.RGBA, error) {
		if req.transfer != nil {
			s = newSession(req.transfer)
			return nil, nil
		}
		if s == nil {
			return nil, ErrNoSession
		}
		return s.compose(ctx, *req.texture)
	}
	return &GroupComposer{exec: NewExecutor(name, handler)}
}

// Name returns the unit name.
func (g *GroupComposer) Name() string { return g.exec.Name() }

// Busy reports whether a Transfer or Create is outstanding.
func (g *GroupComposer) Busy() bool { return g.exec.Busy() }

// Transfer hands the base and layers to the unit, replacing any earlier
// session. The images belong to the composer afterwards.
func (g *GroupComposer) Transfer(ctx context.Context, base BaseConfig, layers []LayerConfig) error {
	const op = "GroupComposer.Transfer"
	if base.Width <= 0 || base.Height <= 0 {
		return tailor.Fail(op, fmt.Errorf("worker %q: base size %dx%d must be positive", g.Name(), base.Width, base.Height))
	}
	if base.Image == nil {
		return tailor.Fail(op, fmt.Errorf("worker %q: base image is required", g.Name()))
	}
	if len(layers) == 0 {
		return tailor.Fail(op, fmt.Errorf("worker %q: at least one layer is required", g.Name()))
	}
	for i, l := range layers {
		if l.Mask == nil {
			return tailor.Fail(op, fmt.Errorf("worker %q: layer %d has no mask", g.Name(), i))
		}
	}
	_, err := g.exec.Do(ctx, composeRequest{transfer: &transfer{base: base, layers: layers}})
	return tailor.Fail(op, err)
}

// Create composes tex into a base-sized group image. It fails with a fault
// wrapping ErrNoSession when no layers were transferred.
func (g *GroupComposer) Create(ctx context.Context, tex TextureConfig) (*image.RGBA, error) {
	const op = "GroupComposer.Create"
	if tex.Image == nil {
		return nil, tailor.Fail(op, fmt.Errorf("worker %q: texture image is required", g.Name()))
	}
	img, err := g.exec.Do(ctx, composeRequest{texture: &tex})
	if err != nil {
		return nil, tailor.Fail(op, err)
	}
	return img, nil
}

// Destroy stops the unit and drops its session.
func (g *GroupComposer) Destroy() { g.exec.Destroy() }

func newSession(t *transfer) *session {
	s := &session{
		w:      t.base.Width,
		h:      t.base.Height,
		base:   t.base.enhanced(),
		layers: make([]sessionLayer, len(t.layers)),
	}
	for i, l := range t.layers {
		sl := sessionLayer{mask: maskSource(l.Mask), tiling: l.Tiling}
		if l.Bounds != nil {
			r := scaleBounds(*l.Bounds, l.Mask.Rect.Size(), image.Pt(s.w, s.h))
			sl.bounds = &r
		}
		s.layers[i] = sl
	}
	return s
}

// scaleBounds maps r from a from-sized image onto a to-sized one, rounding
// outwards.
func scaleBounds(r image.Rectangle, from, to image.Point) image.Rectangle {
	if from == to || from.X == 0 || from.Y == 0 {
		return r
	}
	sx := func(v int, up bool) int { return scaleCoord(v, from.X, to.X, up) }
	sy := func(v int, up bool) int { return scaleCoord(v, from.Y, to.Y, up) }
	return image.Rect(sx(r.Min.X, false), sy(r.Min.Y, false), sx(r.Max.X, true), sy(r.Max.Y, true))
}

func scaleCoord(v, from, to int, up bool) int {
	n := v * to
	if up {
		return (n + from - 1) / from
	}
	return n / from
}

// compose builds each layer on its own canvas, then overdraws them in
// order.
func (s *session) compose(ctx context.Context, tex TextureConfig) (*image.RGBA, error) {
	w, h := float64(s.w), float64(s.h)
	parts := make([]*image.RGBA, len(s.layers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, l := range s.layers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := canvas.New(s.w, s.h)
			c.DrawImage(s.base, 0, 0, w, h)
			c.SetCompositeOp(canvas.Multiply)
			if _, err := TileTexture(c, tex.Image, l.bounds, l.tiling, tex.Scale); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			c.Save()
			c.SetCompositeOp(canvas.DestinationAtop)
			c.DrawImage(l.mask, 0, 0, w, h)
			c.Restore()
			parts[i] = c.Image()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := canvas.New(s.w, s.h)
	for _, p := range parts {
		out.DrawImage(p, 0, 0, w, h)
	}
	return out.Image(), nil
}
