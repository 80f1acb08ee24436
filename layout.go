package tailor

import "math"

// FitWithin returns the largest size with the aspect ratio of srcW x srcH
// that fits inside maxW x maxH. It is used to letterbox the fixed-size
// surface into a host area of any size.
func FitWithin(srcW, srcH, maxW, maxH float64) (w, h float64) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	scale := math.Min(maxW/srcW, maxH/srcH)
	return srcW * scale, srcH * scale
}
