package canvas

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
)

// FillPattern fills the user-space rectangle (x, y, w, h) with img repeated
// at its natural size, the first copy anchored at (x, y). It honors the
// current transform, global alpha, composite op and clip.
//
// Every device pixel whose center maps into the rectangle samples the
// pattern directly, so repetitions meet without seams at any scale or
// angle. Bilinear sampling wraps across repetition edges.
func (c *Context) FillPattern(img image.Image, x, y, w, h float64) {
	c.drawCalls++
	if img == nil || img.Bounds().Empty() || !(w > 0) || !(h > 0) {
		return
	}
	alpha := uint32(math.Round(c.st.alpha * 255))
	if alpha == 0 && !c.st.op.unbounded() {
		return
	}
	inv, ok := c.st.m.inverse()
	if !ok {
		return
	}

	sr := quadBounds(c.st.m, x, y, x+w, y+h).Intersect(c.dst.Rect)
	scratch := c.scratchBuffer()
	if !sr.Empty() {
		p := pattern{
			img:     clone.AsShallowRGBA(img),
			inv:     inv,
			x0:      x,
			y0:      y,
			x1:      x + w,
			y1:      y + h,
			nearest: c.st.interp == Nearest,
		}
		p.fill(scratch, sr)
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

type pattern struct {
	img            *image.RGBA
	inv            Matrix // device to user space
	x0, y0, x1, y1 float64
	nearest        bool
}

// fill writes the pattern into dst over r. Pixels of r outside the pattern
// rectangle are cleared.
func (p pattern) fill(dst *image.RGBA, r image.Rectangle) {
	rows := func(start, end int) {
		for py := r.Min.Y + start; py < r.Min.Y+end; py++ {
			i := dst.PixOffset(r.Min.X, py)
			row := dst.Pix[i : i+4*r.Dx()]
			clear(row)
			for px := r.Min.X; px < r.Max.X; px++ {
				u, v := p.inv.Apply(float64(px)+0.5, float64(py)+0.5)
				if u < p.x0 || u >= p.x1 || v < p.y0 || v >= p.y1 {
					continue
				}
				o := row[4*(px-r.Min.X) : 4*(px-r.Min.X)+4 : 4*(px-r.Min.X)+4]
				p.sample(o, u-p.x0, v-p.y0)
			}
		}
	}
	h := r.Dy()
	if r.Dx()*h < parallelThreshold {
		rows(0, h)
		return
	}
	parallel.Line(h, rows)
}

// sample writes the pattern color at offset (u, v) from the anchor into o.
func (p pattern) sample(o []uint8, u, v float64) {
	b := p.img.Rect
	w, h := b.Dx(), b.Dy()
	if p.nearest {
		tx := wrapIndex(int(math.Floor(u)), w)
		ty := wrapIndex(int(math.Floor(v)), h)
		copy(o, p.img.Pix[p.img.PixOffset(b.Min.X+tx, b.Min.Y+ty):])
		return
	}

	// Texel centers sit at half-integer offsets.
	fx, fy := u-0.5, v-0.5
	ix, iy := math.Floor(fx), math.Floor(fy)
	ax, ay := fx-ix, fy-iy
	x0, y0 := wrapIndex(int(ix), w), wrapIndex(int(iy), h)
	x1, y1 := wrapIndex(x0+1, w), wrapIndex(y0+1, h)

	c00 := p.img.PixOffset(b.Min.X+x0, b.Min.Y+y0)
	c10 := p.img.PixOffset(b.Min.X+x1, b.Min.Y+y0)
	c01 := p.img.PixOffset(b.Min.X+x0, b.Min.Y+y1)
	c11 := p.img.PixOffset(b.Min.X+x1, b.Min.Y+y1)
	w00, w10 := (1-ax)*(1-ay), ax*(1-ay)
	w01, w11 := (1-ax)*ay, ax*ay
	for k := range 4 {
		s := w00*float64(p.img.Pix[c00+k]) + w10*float64(p.img.Pix[c10+k]) +
			w01*float64(p.img.Pix[c01+k]) + w11*float64(p.img.Pix[c11+k])
		o[k] = uint8(math.Min(255, math.Round(s)))
	}
}

// wrapIndex maps i into [0, n).
func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
