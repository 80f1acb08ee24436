package canvas

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// CompositeOp selects how drawn pixels combine with the surface. Each value
// mirrors an HTML canvas globalCompositeOperation.
type CompositeOp uint8

const (
	SourceOver      CompositeOp = iota // standard alpha blending (default)
	Multiply                           // multiply blend, composited source-over
	DestinationAtop                    // keep destination where source is opaque; clears elsewhere
)

var compositeOpNames = [...]string{
	SourceOver:      "source-over",
	Multiply:        "multiply",
	DestinationAtop: "destination-atop",
}

func (op CompositeOp) String() string {
	if int(op) < len(compositeOpNames) {
		return compositeOpNames[op]
	}
	return fmt.Sprintf("CompositeOp(%d)", op)
}

// ParseCompositeOp returns the CompositeOp with the given canvas name.
func ParseCompositeOp(name string) (CompositeOp, error) {
	for i, n := range compositeOpNames {
		if n == name {
			return CompositeOp(i), nil
		}
	}
	return SourceOver, fmt.Errorf("canvas: unknown composite operation %q", name)
}

// unbounded reports whether op changes destination pixels the source does
// not cover.
func (op CompositeOp) unbounded() bool {
	return op == DestinationAtop
}

// parallelThreshold is the pixel count above which compositing is split
// across goroutines.
const parallelThreshold = 1 << 15

func div255(x uint32) uint32 {
	return (x + 127) / 255
}

// composite blends src (premultiplied, valid inside sr) onto dst over area,
// scaling the source by alpha (0-255) and weighting the result by clip
// coverage when clip is non-nil.
func composite(dst, src *image.RGBA, sr, area image.Rectangle, alpha uint32, op CompositeOp, clip *image.Alpha) {
	rows := func(start, end int) {
		for y := area.Min.Y + start; y < area.Min.Y+end; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				var cov uint32 = 255
				if clip != nil {
					cov = uint32(clip.Pix[clip.PixOffset(x, y)])
					if cov == 0 {
						continue
					}
				}
				var sR, sG, sB, sA uint32
				if (image.Point{X: x, Y: y}).In(sr) {
					i := src.PixOffset(x, y)
					s := src.Pix[i : i+4 : i+4]
					sR = div255(uint32(s[0]) * alpha)
					sG = div255(uint32(s[1]) * alpha)
					sB = div255(uint32(s[2]) * alpha)
					sA = div255(uint32(s[3]) * alpha)
				}
				if sA == 0 && !op.unbounded() {
					continue
				}
				j := dst.PixOffset(x, y)
				d := dst.Pix[j : j+4 : j+4]
				dR, dG, dB, dA := uint32(d[0]), uint32(d[1]), uint32(d[2]), uint32(d[3])

				var oR, oG, oB, oA uint32
				switch op {
				case Multiply:
					isa, ida := 255-sA, 255-dA
					oR = div255(sR*dR) + div255(sR*ida) + div255(dR*isa)
					oG = div255(sG*dG) + div255(sG*ida) + div255(dG*isa)
					oB = div255(sB*dB) + div255(sB*ida) + div255(dB*isa)
					oA = sA + div255(dA*isa)
				case DestinationAtop:
					ida := 255 - dA
					oR = div255(dR*sA) + div255(sR*ida)
					oG = div255(dG*sA) + div255(sG*ida)
					oB = div255(dB*sA) + div255(sB*ida)
					oA = sA
				default:
					isa := 255 - sA
					oR = sR + div255(dR*isa)
					oG = sG + div255(dG*isa)
					oB = sB + div255(dB*isa)
					oA = sA + div255(dA*isa)
				}

				if cov < 255 {
					icov := 255 - cov
					oR = div255(oR*cov + dR*icov)
					oG = div255(oG*cov + dG*icov)
					oB = div255(oB*cov + dB*icov)
					oA = div255(oA*cov + dA*icov)
				}
				oA = min(oA, 255)
				d[0] = uint8(min(oR, oA))
				d[1] = uint8(min(oG, oA))
				d[2] = uint8(min(oB, oA))
				d[3] = uint8(oA)
			}
		}
	}

	h := area.Dy()
	if area.Dx()*h < parallelThreshold {
		rows(0, h)
		return
	}
	parallel.Line(h, rows)
}
