package tailor

import (
	"fmt"
	"image"

	"github.com/phanxgames/tailor/canvas"
)

// TransitionFunc paints one side of a transition: img drawn into the w x h
// surface at the given (already timed) progress. A nil img draws nothing.
// Transition functions may change the context's alpha, clip and transform;
// callers isolate them with Save/Restore.
type TransitionFunc func(ctx *canvas.Context, w, h float64, img image.Image, progress float64)

// FadeIn draws img with opacity equal to progress.
func FadeIn(ctx *canvas.Context, w, h float64, img image.Image, progress float64) {
	if img == nil {
		return
	}
	ctx.SetGlobalAlpha(progress)
	ctx.DrawImage(img, 0, 0, w, h)
}

// FadeOut draws img with opacity 1-progress.
func FadeOut(ctx *canvas.Context, w, h float64, img image.Image, progress float64) {
	if img == nil {
		return
	}
	ctx.SetGlobalAlpha(1 - progress)
	ctx.DrawImage(img, 0, 0, w, h)
}

// WipeIn reveals img behind a diagonal edge sweeping from the top-left corner.
// The edge cuts the axes at twice the surface size times progress, so it
// passes the bottom-right corner exactly at progress 1.
func WipeIn(ctx *canvas.Context, w, h float64, img image.Image, progress float64) {
	if img == nil {
		return
	}
	xi := 2 * w * progress
	yi := 2 * h * progress

	ctx.BeginPath()
	ctx.MoveTo(0, 0)
	ctx.LineTo(0, yi)
	ctx.LineTo(xi, 0)
	ctx.ClosePath()
	ctx.Clip()
	ctx.DrawImage(img, 0, 0, w, h)
}

// WipeOut hides img behind a diagonal edge retreating toward the
// bottom-right corner.
func WipeOut(ctx *canvas.Context, w, h float64, img image.Image, progress float64) {
	if img == nil {
		return
	}
	xi := 2 * w * (1 - progress)
	yi := 2 * h * (1 - progress)

	ctx.BeginPath()
	ctx.MoveTo(w, h)
	ctx.LineTo(w, h-yi)
	ctx.LineTo(w-xi, h)
	ctx.ClosePath()
	ctx.Clip()
	ctx.DrawImage(img, 0, 0, w, h)
}

var transitionFuncs = map[string]TransitionFunc{
	"FadeIn":  FadeIn,
	"FadeOut": FadeOut,
	"WipeIn":  WipeIn,
	"WipeOut": WipeOut,
}

// TransitionByName returns the built-in transition with the given name.
func TransitionByName(name string) (TransitionFunc, bool) {
	fn, ok := transitionFuncs[name]
	return fn, ok
}

// TransitionNames returns the names accepted by TransitionByName, sorted.
func TransitionNames() []string {
	return sortedKeys(transitionFuncs)
}

// TransitionSpec parameterizes one transition. It is fixed for the life of
// that transition; a new one is supplied with every Show.
type TransitionSpec struct {
	Entry  TransitionFunc // paints the incoming image
	Exit   TransitionFunc // paints the outgoing image
	Timing TimingFunc
	Speed  float64 // progress added per tick, in (0, 1]
}

// DefaultTransitionSpec returns a fade in/out with cubic ease-out that
// completes in 20 ticks.
func DefaultTransitionSpec() TransitionSpec {
	return TransitionSpec{
		Entry:  FadeIn,
		Exit:   FadeOut,
		Timing: EaseOutCubic,
		Speed:  0.05,
	}
}

// Validate reports whether s can drive a transition.
func (s TransitionSpec) Validate() error {
	switch {
	case s.Entry == nil:
		return fmt.Errorf("%w: missing entry function", ErrInvalidTransition)
	case s.Exit == nil:
		return fmt.Errorf("%w: missing exit function", ErrInvalidTransition)
	case s.Timing == nil:
		return fmt.Errorf("%w: missing timing function", ErrInvalidTransition)
	case !(s.Speed > 0 && s.Speed <= 1):
		return fmt.Errorf("%w: speed %v outside (0, 1]", ErrInvalidTransition, s.Speed)
	}
	return nil
}
