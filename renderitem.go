package tailor

import (
	"image"

	"github.com/phanxgames/tailor/canvas"
)

// RenderItem is the transition state machine for one layer. It is not safe
// for concurrent use; the Painter serializes access.
type RenderItem struct {
	current  image.Image
	previous image.Image
	progress float64
	spec     TransitionSpec

	// settled is set once the terminal frame has been drawn and the
	// completion reported.
	settled bool
}

// NewRenderItem returns an item that transitions img in from nothing.
func NewRenderItem(img image.Image, spec TransitionSpec) *RenderItem {
	return &RenderItem{current: img, spec: spec}
}

// TriggerImageChange starts a transition from the current image to img.
// It may be called mid-transition; the new transition restarts from zero.
func (r *RenderItem) TriggerImageChange(img image.Image, spec TransitionSpec) {
	r.previous = r.current
	r.current = img
	r.progress = 0
	r.settled = false
	r.spec = spec
}

// TriggerExit starts a transition from the current image to nothing.
func (r *RenderItem) TriggerExit() {
	r.previous = r.current
	r.current = nil
	r.progress = 0
	r.settled = false
}

// progressEpsilon absorbs float drift so that ceil(1/speed) steps always
// land on exactly 1.
const progressEpsilon = 1e-9

// Step advances progress by the spec's speed, clamped to exactly 1.
func (r *RenderItem) Step() {
	if r.progress < 1 {
		r.progress += r.spec.Speed
	}
	if r.progress > 1-progressEpsilon {
		r.progress = 1
	}
}

// Progress returns the untimed transition progress in [0, 1].
func (r *RenderItem) Progress() float64 { return r.progress }

// Complete reports whether the transition has finished.
func (r *RenderItem) Complete() bool { return r.progress >= 1 }

// Settled reports whether completion has already been reported.
func (r *RenderItem) Settled() bool { return r.settled }

// Current returns the entering (or shown) image, nil once fully exited.
func (r *RenderItem) Current() image.Image { return r.current }

// Previous returns the exiting image, nil when no transition is pending.
func (r *RenderItem) Previous() image.Image { return r.previous }

// Advance steps the transition and draws one frame of it into ctx. It
// returns true exactly once per transition, on the first frame drawn in
// the completed state; that is the frame on which progress reaches 1.
func (r *RenderItem) Advance(ctx *canvas.Context, w, h float64) bool {
	if !r.Complete() {
		r.Step()
		if !r.Complete() {
			t := r.spec.Timing(r.progress)
			ctx.Save()
			r.spec.Entry(ctx, w, h, r.current, t)
			ctx.Restore()
			ctx.Save()
			r.spec.Exit(ctx, w, h, r.previous, t)
			ctx.Restore()
			return false
		}
	}

	if r.current != nil {
		ctx.DrawImage(r.current, 0, 0, w, h)
	}
	if r.settled {
		return false
	}
	r.settled = true
	r.previous = nil
	return true
}
