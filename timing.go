package tailor

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// TimingFunc remaps linear transition progress in [0, 1] before it reaches
// the transition paint functions. Every TimingFunc maps 0 to 0 and 1 to 1.
type TimingFunc func(progress float64) float64

// fromEase adapts a gween easing curve to a TimingFunc over a unit range.
// gween evaluates in float32, so eased values carry float32 precision.
func fromEase(fn ease.TweenFunc) TimingFunc {
	return func(x float64) float64 {
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		}
		return float64(fn(float32(x), 0, 1, 1))
	}
}

// Linear is the identity on [0, 1], exact at float64 precision.
func Linear(x float64) float64 {
	return min(max(x, 0), 1)
}

var (
	EaseInQuad   = fromEase(ease.InQuad)   // x^2
	EaseOutQuad  = fromEase(ease.OutQuad)  // 1-(1-x)^2
	EaseInCubic  = fromEase(ease.InCubic)  // x^3
	EaseOutCubic = fromEase(ease.OutCubic) // 1-(1-x)^3
)

var timingFuncs = map[string]TimingFunc{
	"Linear":       Linear,
	"EaseInQuad":   EaseInQuad,
	"EaseOutQuad":  EaseOutQuad,
	"EaseInCubic":  EaseInCubic,
	"EaseOutCubic": EaseOutCubic,
}

// TimingByName returns the built-in timing function with the given name.
func TimingByName(name string) (TimingFunc, bool) {
	fn, ok := timingFuncs[name]
	return fn, ok
}

// TimingNames returns the names accepted by TimingByName, sorted.
func TimingNames() []string {
	return sortedKeys(timingFuncs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
