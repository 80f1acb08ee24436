package tailor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/phanxgames/tailor/canvas"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var (
	opaqueRed  = color.RGBA{R: 255, A: 255}
	opaqueBlue = color.RGBA{B: 255, A: 255}
)

func linearFade(speed float64) TransitionSpec {
	return TransitionSpec{Entry: FadeIn, Exit: FadeOut, Timing: Linear, Speed: speed}
}

func TestStepReachesExactlyOne(t *testing.T) {
	speeds := []float64{1, 0.7, 0.5, 1.0 / 3, 0.3, 0.25, 0.1, 0.05, 0.01, 0.003}
	for _, s := range speeds {
		item := NewRenderItem(nil, linearFade(s))
		n := int(math.Ceil(1 / s))
		for i := 0; i < n; i++ {
			if item.Complete() {
				t.Fatalf("speed %v: complete after %d steps, want %d", s, i, n)
			}
			item.Step()
			if p := item.Progress(); p > 1 {
				t.Fatalf("speed %v: progress %v overshoots", s, p)
			}
		}
		if item.Progress() != 1 {
			t.Errorf("speed %v: progress after %d steps = %v, want 1", s, n, item.Progress())
		}
		item.Step()
		if item.Progress() != 1 {
			t.Errorf("speed %v: extra step moved progress to %v", s, item.Progress())
		}
	}
}

func TestTriggerImageChange(t *testing.T) {
	a := solidImage(1, 1, opaqueRed)
	b := solidImage(1, 1, opaqueBlue)
	item := NewRenderItem(a, linearFade(1))
	item.Step()

	spec := linearFade(0.25)
	item.TriggerImageChange(b, spec)
	if item.Current() != image.Image(b) || item.Previous() != image.Image(a) {
		t.Error("images not rotated")
	}
	if item.Progress() != 0 || item.Settled() {
		t.Errorf("progress = %v settled = %v, want reset", item.Progress(), item.Settled())
	}
	item.Step()
	if item.Progress() != 0.25 {
		t.Errorf("new speed not applied, progress = %v", item.Progress())
	}
}

func TestTriggerExit(t *testing.T) {
	a := solidImage(1, 1, opaqueRed)
	item := NewRenderItem(a, linearFade(1))
	item.TriggerExit()
	if item.Current() != nil || item.Previous() != image.Image(a) {
		t.Error("exit should move current to previous")
	}
}

func TestAdvanceCompletesOnce(t *testing.T) {
	ctx := canvas.New(4, 4)
	item := NewRenderItem(solidImage(4, 4, opaqueRed), linearFade(0.5))

	if item.Advance(ctx, 4, 4) {
		t.Fatal("completed after first of two ticks")
	}
	if !item.Advance(ctx, 4, 4) {
		t.Fatal("not completed on the tick that reached 1")
	}
	for i := 0; i < 3; i++ {
		if item.Advance(ctx, 4, 4) {
			t.Fatalf("completion reported again on frame %d", i)
		}
	}
	if !item.Settled() {
		t.Error("expected settled")
	}
}

func TestAdvanceDropsPreviousOnCompletion(t *testing.T) {
	ctx := canvas.New(2, 2)
	item := NewRenderItem(solidImage(2, 2, opaqueRed), linearFade(1))
	item.Advance(ctx, 2, 2)
	item.TriggerImageChange(solidImage(2, 2, opaqueBlue), linearFade(1))
	if item.Previous() == nil {
		t.Fatal("previous should be held during the transition")
	}
	item.Advance(ctx, 2, 2)
	if item.Previous() != nil {
		t.Error("previous should be released once complete")
	}
}

func TestAdvanceIsolatesTransitionState(t *testing.T) {
	var sawAlpha float64 = -1
	var sawTransform canvas.Matrix
	leaky := func(ctx *canvas.Context, w, h float64, img image.Image, p float64) {
		ctx.SetGlobalAlpha(0.1)
		ctx.Translate(5, 5)
	}
	observe := func(ctx *canvas.Context, w, h float64, img image.Image, p float64) {
		sawAlpha = ctx.GlobalAlpha()
		sawTransform = ctx.GetTransform()
	}
	ctx := canvas.New(2, 2)
	item := NewRenderItem(nil, TransitionSpec{Entry: leaky, Exit: observe, Timing: Linear, Speed: 0.5})
	item.Advance(ctx, 2, 2)

	if sawAlpha != 1 {
		t.Errorf("exit saw alpha %v, want 1", sawAlpha)
	}
	if sawTransform != canvas.Identity {
		t.Errorf("exit saw transform %v, want identity", sawTransform)
	}
	if ctx.GlobalAlpha() != 1 {
		t.Errorf("context alpha leaked: %v", ctx.GlobalAlpha())
	}
}

func TestAdvancePassesTimedProgress(t *testing.T) {
	var got []float64
	record := func(ctx *canvas.Context, w, h float64, img image.Image, p float64) {
		got = append(got, p)
	}
	spec := TransitionSpec{Entry: record, Exit: record, Timing: EaseInQuad, Speed: 0.5}
	item := NewRenderItem(nil, spec)
	item.Advance(canvas.New(1, 1), 1, 1)

	if len(got) != 2 {
		t.Fatalf("calls = %d, want entry and exit", len(got))
	}
	for _, p := range got {
		if math.Abs(p-0.25) > 1e-6 {
			t.Errorf("progress = %v, want 0.25", p)
		}
	}
}
