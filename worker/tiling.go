package worker

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/phanxgames/tailor/canvas"
	"github.com/phanxgames/tailor/config"
)

// TilingOptions controls how a texture repeats across a layer.
type TilingOptions struct {
	Scale float64 // size of one tile relative to the texture's natural size
	Angle float64 // rotation in degrees, clockwise
}

// DefaultTilingOptions returns the options used for layers without
// explicit tiling, as defined by the config package.
func DefaultTilingOptions() TilingOptions {
	var unset *config.Tiling
	scale, angle := unset.Resolve()
	return TilingOptions{Scale: scale, Angle: angle}
}

// tilingOverhang is the fraction of the canvas added on every side when no
// bounding box limits the tiled region.
const tilingOverhang = 0.25

// spanEpsilon keeps float noise in region/tile from adding a column.
const spanEpsilon = 1e-9

// TilePlan is a grid of texture draws in the scaled, rotated frame. All
// coordinates are in texture units, i.e. device pixels divided by Scale.
type TilePlan struct {
	Scale          float64 // effective scale
	Angle          float64 // radians
	PivotX, PivotY float64 // rotation pivot
	X0, Y0         float64 // origin of the first tile
	X1, Y1         float64 // end of the covered region
	TileW, TileH   float64
	Cols, Rows     int
}

// Count returns the number of tiles drawn by the plan.
func (p TilePlan) Count() int { return p.Cols * p.Rows }

func effectiveScale(opts TilingOptions, textureScale float64) (float64, error) {
	s := opts.Scale * textureScale
	if !(s > 0) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%w: %v x %v", ErrInvalidScale, opts.Scale, textureScale)
	}
	return s, nil
}

// PlanTiles plans a tw x th texture grid covering the device rectangle
// region. With a non-zero angle the region grows about its midpoint just
// enough for the rotated grid to leave no uncovered corner.
func PlanTiles(tw, th int, region image.Rectangle, opts TilingOptions, textureScale float64) (TilePlan, error) {
	s, err := effectiveScale(opts, textureScale)
	if err != nil {
		return TilePlan{}, err
	}
	if tw <= 0 || th <= 0 {
		return TilePlan{}, errors.New("worker: texture has no pixels")
	}
	a := math.Pi * opts.Angle / 180

	x0, x1 := float64(region.Min.X)/s, float64(region.Max.X)/s
	y0, y1 := float64(region.Min.Y)/s, float64(region.Max.Y)/s
	mx, my := (x0+x1)/2, (y0+y1)/2
	if a != 0 {
		hx, hy := (x1-x0)/2, (y1-y0)/2
		sin, cos := math.Sincos(a)
		sin, cos = math.Abs(sin), math.Abs(cos)
		ex, ey := hx*cos+hy*sin, hx*sin+hy*cos
		x0, x1, y0, y1 = mx-ex, mx+ex, my-ey, my+ey
	}
	return newPlan(s, a, mx, my, x0, y0, x1, y1, tw, th), nil
}

// PlanTilesOverhang plans a grid over the whole w x h canvas plus a 25%
// margin on every side, rotating about the canvas center. It is used for
// layers whose mask bounds are unknown.
func PlanTilesOverhang(tw, th, w, h int, opts TilingOptions, textureScale float64) (TilePlan, error) {
	s, err := effectiveScale(opts, textureScale)
	if err != nil {
		return TilePlan{}, err
	}
	if tw <= 0 || th <= 0 {
		return TilePlan{}, errors.New("worker: texture has no pixels")
	}
	fw, fh := float64(w)/s, float64(h)/s
	return newPlan(s, math.Pi*opts.Angle/180, fw/2, fh/2,
		-tilingOverhang*fw, -tilingOverhang*fh,
		(1+tilingOverhang)*fw, (1+tilingOverhang)*fh, tw, th), nil
}

func newPlan(s, a, px, py, x0, y0, x1, y1 float64, tw, th int) TilePlan {
	p := TilePlan{
		Scale: s, Angle: a,
		PivotX: px, PivotY: py,
		X0: x0, Y0: y0, X1: x1, Y1: y1,
		TileW: float64(tw), TileH: float64(th),
	}
	p.Cols = max(0, int(math.Ceil((x1-x0)/p.TileW-spanEpsilon)))
	p.Rows = max(0, int(math.Ceil((y1-y0)/p.TileH-spanEpsilon)))
	return p
}

// Draw paints the grid into ctx as one repeating fill, so neighbouring
// tiles share their edges exactly. The context's transform is restored
// afterwards; its composite op and alpha apply to the whole grid.
func (p TilePlan) Draw(ctx *canvas.Context, tex image.Image) {
	if p.Count() == 0 {
		return
	}
	ctx.Save()
	defer ctx.Restore()
	ctx.Scale(p.Scale, p.Scale)
	ctx.Translate(p.PivotX, p.PivotY)
	ctx.Rotate(p.Angle)
	ctx.Translate(-p.PivotX, -p.PivotY)
	ctx.FillPattern(tex, p.X0, p.Y0, float64(p.Cols)*p.TileW, float64(p.Rows)*p.TileH)
}

// TileTexture repeats tex over ctx. A non-nil bounds limits the work to
// that device rectangle; nil tiles the whole canvas with overhang.
func TileTexture(ctx *canvas.Context, tex image.Image, bounds *image.Rectangle, opts TilingOptions, textureScale float64) (TilePlan, error) {
	tb := tex.Bounds()
	var (
		plan TilePlan
		err  error
	)
	if bounds != nil {
		plan, err = PlanTiles(tb.Dx(), tb.Dy(), *bounds, opts, textureScale)
	} else {
		plan, err = PlanTilesOverhang(tb.Dx(), tb.Dy(), ctx.Width(), ctx.Height(), opts, textureScale)
	}
	if err != nil {
		return TilePlan{}, err
	}
	plan.Draw(ctx, tex)
	return plan, nil
}
