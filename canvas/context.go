package canvas

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Interpolation selects how images are sampled when drawn with a transform.
type Interpolation uint8

const (
	Bilinear Interpolation = iota // approximate bilinear (default)
	Nearest                       // nearest neighbor
)

func (i Interpolation) interpolator() draw.Interpolator {
	if i == Nearest {
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}

// state is the part of a Context saved and restored by Save/Restore.
type state struct {
	m      Matrix
	alpha  float64
	op     CompositeOp
	interp Interpolation

	// clip holds per-pixel coverage of the current clip region, or nil when
	// nothing is clipped. Clip masks are never mutated once installed, so
	// saved states may share them.
	clip       *image.Alpha
	clipBounds image.Rectangle
}

type pathVerb uint8

const (
	verbMove pathVerb = iota
	verbLine
	verbClose
)

type pathCmd struct {
	verb pathVerb
	x, y float64 // device space
}

// Context is an immediate-mode 2D drawing context over an RGBA surface,
// modeled on the HTML canvas 2D API. Pixels are premultiplied RGBA.
//
// A Context is not safe for concurrent use.
type Context struct {
	dst     *image.RGBA
	scratch *image.RGBA

	st    state
	stack []state
	path  []pathCmd

	drawCalls int
}

// New creates a transparent w x h surface and a context drawing into it.
func New(w, h int) *Context {
	return &Context{
		dst: image.NewRGBA(image.Rect(0, 0, w, h)),
		st:  state{m: Identity, alpha: 1},
	}
}

// Width returns the surface width in pixels.
func (c *Context) Width() int { return c.dst.Rect.Dx() }

// Height returns the surface height in pixels.
func (c *Context) Height() int { return c.dst.Rect.Dy() }

// Image returns the backing surface. The returned image aliases the
// context's pixels.
func (c *Context) Image() *image.RGBA { return c.dst }

// DrawCalls returns the number of DrawImage and FillPattern calls made on
// this context.
func (c *Context) DrawCalls() int { return c.drawCalls }

// Save pushes the current transform, alpha, composite op, interpolation and
// clip onto the state stack.
func (c *Context) Save() {
	c.stack = append(c.stack, c.st)
}

// Restore pops the state saved by the matching Save. It is a no-op when the
// stack is empty.
func (c *Context) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// SetGlobalAlpha sets the opacity applied to subsequent draws, clamped to [0, 1].
func (c *Context) SetGlobalAlpha(a float64) {
	c.st.alpha = math.Max(0, math.Min(1, a))
}

// GlobalAlpha returns the current global alpha.
func (c *Context) GlobalAlpha() float64 { return c.st.alpha }

// SetCompositeOp sets the composite operation for subsequent draws.
func (c *Context) SetCompositeOp(op CompositeOp) { c.st.op = op }

// CompositeOp returns the current composite operation.
func (c *Context) CompositeOp() CompositeOp { return c.st.op }

// SetInterpolation sets the sampling mode for subsequent image draws.
func (c *Context) SetInterpolation(i Interpolation) { c.st.interp = i }

// --- Transforms ---

// Transform multiplies the current transform by m.
func (c *Context) Transform(m Matrix) { c.st.m = c.st.m.Mul(m) }

// SetTransform replaces the current transform.
func (c *Context) SetTransform(m Matrix) { c.st.m = m }

// ResetTransform restores the identity transform.
func (c *Context) ResetTransform() { c.st.m = Identity }

// GetTransform returns the current transform.
func (c *Context) GetTransform() Matrix { return c.st.m }

// Translate moves the origin by (x, y).
func (c *Context) Translate(x, y float64) { c.Transform(Translation(x, y)) }

// Scale scales subsequent drawing by (sx, sy).
func (c *Context) Scale(sx, sy float64) { c.Transform(Scaling(sx, sy)) }

// Rotate rotates subsequent drawing by angle radians (clockwise on screen).
func (c *Context) Rotate(angle float64) { c.Transform(Rotation(angle)) }

// --- Paths and clipping ---

// BeginPath discards the current path.
func (c *Context) BeginPath() { c.path = c.path[:0] }

// MoveTo starts a new subpath at (x, y) in user space.
func (c *Context) MoveTo(x, y float64) {
	dx, dy := c.st.m.Apply(x, y)
	c.path = append(c.path, pathCmd{verb: verbMove, x: dx, y: dy})
}

// LineTo adds a line to (x, y) in user space.
func (c *Context) LineTo(x, y float64) {
	dx, dy := c.st.m.Apply(x, y)
	c.path = append(c.path, pathCmd{verb: verbLine, x: dx, y: dy})
}

// ClosePath closes the current subpath.
func (c *Context) ClosePath() {
	c.path = append(c.path, pathCmd{verb: verbClose})
}

// Clip intersects the clip region with the current path (nonzero winding).
// The clip is part of the saved state, so Restore undoes it.
func (c *Context) Clip() {
	w, h := c.Width(), c.Height()
	z := vector.NewRasterizer(w, h)
	open := false
	for _, cmd := range c.path {
		switch cmd.verb {
		case verbMove:
			if open {
				z.ClosePath()
			}
			z.MoveTo(float32(cmd.x), float32(cmd.y))
			open = true
		case verbLine:
			if !open {
				z.MoveTo(float32(cmd.x), float32(cmd.y))
				open = true
				continue
			}
			z.LineTo(float32(cmd.x), float32(cmd.y))
		case verbClose:
			if open {
				z.ClosePath()
				open = false
			}
		}
	}
	if open {
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	if prev := c.st.clip; prev != nil {
		for i, v := range mask.Pix {
			mask.Pix[i] = uint8(div255(uint32(v) * uint32(prev.Pix[i])))
		}
	}
	c.st.clip = mask
	c.st.clipBounds = alphaBounds(mask)
}

// alphaBounds returns the smallest rectangle holding every non-zero pixel.
func alphaBounds(m *image.Alpha) image.Rectangle {
	w := m.Rect.Dx()
	minX, minY, maxX, maxY := w, m.Rect.Dy(), -1, -1
	for i, v := range m.Pix {
		if v == 0 {
			continue
		}
		x, y := i%w, i/w
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// drawArea returns the device pixels a draw may touch.
func (c *Context) drawArea(r image.Rectangle) image.Rectangle {
	r = r.Intersect(c.dst.Rect)
	if c.st.clip != nil {
		r = r.Intersect(c.st.clipBounds)
	}
	return r
}

// --- Drawing ---

// Clear makes the whole surface transparent, ignoring transform and clip.
func (c *Context) Clear() {
	clear(c.dst.Pix)
}

// ClearRect makes the given user-space rectangle transparent, honoring the
// clip region.
func (c *Context) ClearRect(x, y, w, h float64) {
	r := c.drawArea(quadBounds(c.st.m, x, y, x+w, y+h))
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			i := c.dst.PixOffset(px, py)
			if c.st.clip == nil {
				clear(c.dst.Pix[i : i+4])
				continue
			}
			keep := 255 - uint32(c.st.clip.Pix[c.st.clip.PixOffset(px, py)])
			for k := i; k < i+4; k++ {
				c.dst.Pix[k] = uint8(div255(uint32(c.dst.Pix[k]) * keep))
			}
		}
	}
}

// DrawImage draws img scaled into the user-space rectangle (x, y, w, h)
// using the current transform, global alpha, composite op and clip.
func (c *Context) DrawImage(img image.Image, x, y, w, h float64) {
	c.drawCalls++
	if img == nil {
		return
	}
	sb := img.Bounds()
	if sb.Empty() || w == 0 || h == 0 {
		return
	}
	alpha := uint32(math.Round(c.st.alpha * 255))
	if alpha == 0 && !c.st.op.unbounded() {
		return
	}

	m := c.st.m.
		Mul(Translation(x, y)).
		Mul(Scaling(w/float64(sb.Dx()), h/float64(sb.Dy()))).
		Mul(Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))

	sr := quadBounds(m, float64(sb.Min.X), float64(sb.Min.Y), float64(sb.Max.X), float64(sb.Max.Y)).
		Intersect(c.dst.Rect)
	scratch := c.scratchBuffer()
	if !sr.Empty() {
		sub := scratch.SubImage(sr).(*image.RGBA)
		for y := sr.Min.Y; y < sr.Max.Y; y++ {
			i := scratch.PixOffset(sr.Min.X, y)
			clear(scratch.Pix[i : i+4*sr.Dx()])
		}
		c.st.interp.interpolator().Transform(sub, m.aff3(), img, sb, draw.Src, nil)
	}

	area := sr
	if c.st.op.unbounded() {
		area = c.dst.Rect
	}
	area = c.drawArea(area)
	if area.Empty() {
		return
	}
	composite(c.dst, scratch, sr, area, alpha, c.st.op, c.st.clip)
}

func (c *Context) scratchBuffer() *image.RGBA {
	if c.scratch == nil || c.scratch.Rect != c.dst.Rect {
		c.scratch = image.NewRGBA(c.dst.Rect)
	}
	return c.scratch
}

// quadBounds returns the integer device bounds of the user-space rectangle
// (x0, y0)-(x1, y1) transformed by m.
func quadBounds(m Matrix, x0, y0, x1, y1 float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		dx, dy := m.Apply(p[0], p[1])
		minX, maxX = math.Min(minX, dx), math.Max(maxX, dx)
		minY, maxY = math.Min(minY, dy), math.Max(maxY, dy)
	}
	const limit = 1 << 24
	clamp := func(v float64) int { return int(math.Max(-limit, math.Min(limit, v))) }
	return image.Rect(
		clamp(math.Floor(minX)), clamp(math.Floor(minY)),
		clamp(math.Ceil(maxX)), clamp(math.Ceil(maxY)),
	)
}

// --- Pixel access ---

// GetImageData returns a copy of the surface pixels inside r.
func (c *Context) GetImageData(r image.Rectangle) *image.RGBA {
	r = r.Intersect(c.dst.Rect)
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := c.dst.PixOffset(r.Min.X, y)
		copy(out.Pix[(y-r.Min.Y)*out.Stride:], c.dst.Pix[i:i+4*r.Dx()])
	}
	return out
}

// PutImageData writes img's pixels verbatim with its origin at (x, y),
// ignoring transform, alpha, composite op and clip.
func (c *Context) PutImageData(img *image.RGBA, x, y int) {
	sb := img.Bounds()
	r := sb.Sub(sb.Min).Add(image.Pt(x, y)).Intersect(c.dst.Rect)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		si := img.PixOffset(sb.Min.X+r.Min.X-x, sb.Min.Y+py-y)
		di := c.dst.PixOffset(r.Min.X, py)
		copy(c.dst.Pix[di:di+4*r.Dx()], img.Pix[si:si+4*r.Dx()])
	}
}
