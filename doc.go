// Package tailor renders a base image overlaid by swappable texture layers
// onto a fixed-size surface and animates every change between them.
//
// # Quick start
//
// The simplest way to preview an outfit is the [preview] package together
// with a window from [display]:
//
//	cfg, _ := config.Load("outfit.yaml")
//	pv := preview.New(nil)
//	pv.Init(ctx, cfg)
//	go pv.DrawGroup(ctx, "shirt", "denim", config.TransitionOptions{})
//	display.RunFunc(pv.Painter, display.RunConfig{Title: "Outfit"})
//
// For full control, drive a [Painter] yourself:
//
//	p, _ := tailor.NewPainter(800, 1000)
//	p.Start(16 * time.Millisecond)
//	pd, _ := p.Show("base", img, tailor.DefaultTransitionSpec())
//	pd.Wait(ctx)
//
// # Layers
//
// A [Painter] holds one [RenderItem] per layer key. Layers are drawn in the
// order they were first shown, so a newly shown key lands on top. Showing
// an existing key transitions it from its current image; hiding a key
// plays its exit transition and then removes it.
//
// A key accepts a new Show or Hide only after its previous transition has
// finished. Calls made mid-transition fail with [ErrTransitioning]; they are
// never queued.
//
// # Transitions
//
// A [TransitionSpec] pairs an entry and an exit [TransitionFunc] with a
// [TimingFunc] and a per-frame progress increment. Built-ins are [FadeIn],
// [FadeOut], [WipeIn] and [WipeOut], timed by [Linear] or one of the
// gween-backed easing curves such as [EaseOutCubic]. Look them up by name
// with [TransitionByName] and [TimingByName].
//
// # Composition
//
// Texture composition runs off the redraw loop in the [worker] package:
// one unit per garment group multiplies the texture onto the base inside
// the group's luminance masks. Each unit handles one request at a time and
// rejects a second with [worker.ErrBusy].
//
// # Logging
//
// Every package logs through [Logger], which is silent until [SetLogger]
// installs a *slog.Logger. Failures returned by public operations are
// logged once, with their whole cause chain, by [Fail].
//
// # Debug mode
//
// [Painter.SetDebugMode] logs per-tick statistics at debug level: tick
// time, layer count, completed transitions and draw calls. Snapshots of
// the surface are written with [Painter.SavePNG] and [Painter.Screenshot].
package tailor
