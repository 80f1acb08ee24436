package worker

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// ReduceLuminance converts src into a single-channel mask whose value is
// the mean of the premultiplied red, green and blue channels. Transparent
// pixels therefore produce zero coverage. Reducing a mask again returns
// the same mask.
func ReduceLuminance(src image.Image) *image.Alpha {
	m, _ := ProcessMask(src)
	return m
}

// BoundingBox returns the smallest rectangle (exclusive max) enclosing the
// non-zero pixels of m, or the zero Rectangle when every pixel is zero.
func BoundingBox(m *image.Alpha) image.Rectangle {
	b := m.Rect
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):][:b.Dx()]
		for i, v := range row {
			if v == 0 {
				continue
			}
			x := b.Min.X + i
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// ProcessMask reduces src to a luminance mask and computes its bounding box
// in the same pass over the pixels.
func ProcessMask(src image.Image) (*image.Alpha, image.Rectangle) {
	b := src.Bounds()
	rgba := clone.AsShallowRGBA(src)

	mask := image.NewAlpha(b)
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := rgba.PixOffset(b.Min.X, y)
		di := mask.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, si, di = x+1, si+4, di+1 {
			p := rgba.Pix[si : si+3 : si+3]
			v := uint8((uint32(p[0]) + uint32(p[1]) + uint32(p[2])) / 3)
			mask.Pix[di] = v
			if v == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return mask, image.Rectangle{}
	}
	return mask, image.Rect(minX, minY, maxX+1, maxY+1)
}

// maskSource returns an image that draws as black with the mask's
// coverage as alpha, ready for destination-atop compositing.
func maskSource(m *image.Alpha) *image.RGBA {
	b := m.Rect
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):][:b.Dx()]
		di := out.PixOffset(b.Min.X, y)
		for i, v := range row {
			out.Pix[di+4*i+3] = v
		}
	}
	return out
}
