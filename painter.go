package tailor

import (
	"errors"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/phanxgames/tailor/canvas"
)

// layer is a registered RenderItem plus the callers waiting on it.
type layer struct {
	item    *RenderItem
	waiters []*Pending
	exiting bool
}

// Painter owns a fixed-size surface and a registry of layers, and redraws
// them once per tick. Layers are drawn in the order they were first shown,
// so the most recently added layer is on top.
//
// All methods are safe for concurrent use. A registry change never lands
// in the middle of a tick.
type Painter struct {
	mu    sync.Mutex
	ctx   *canvas.Context
	w, h  int
	items map[string]*layer
	order []string

	timer     *time.Timer
	running   bool
	destroyed bool

	debug bool
	ticks uint64
}

// NewPainter creates a painter with a transparent w x h surface.
func NewPainter(w, h int) (*Painter, error) {
	if w <= 0 || h <= 0 {
		return nil, Fail("NewPainter", errors.New("surface size must be positive"))
	}
	return &Painter{
		ctx:   canvas.New(w, h),
		w:     w,
		h:     h,
		items: make(map[string]*layer),
	}, nil
}

// Width returns the surface width in pixels.
func (p *Painter) Width() int { return p.w }

// Height returns the surface height in pixels.
func (p *Painter) Height() int { return p.h }

// Show transitions the layer key to img. A new key is added on top of the
// existing layers; an existing key whose previous transition has completed
// transitions from its current image. The returned Pending resolves when
// the entry transition completes.
//
// Show fails with ErrTransitioning if key is mid-transition, with
// ErrInvalidTransition for a bad spec and with ErrDestroyed after Destroy.
func (p *Painter) Show(key string, img image.Image, spec TransitionSpec) (*Pending, error) {
	const op = "Painter.Show"
	if err := spec.Validate(); err != nil {
		return nil, Fail(op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return nil, Fail(op, ErrDestroyed)
	}

	pd := newPending()
	if l, ok := p.items[key]; ok {
		if !l.item.Complete() {
			return nil, Fail(op, &KeyError{Key: key, Err: ErrTransitioning})
		}
		l.item.TriggerImageChange(img, spec)
		l.waiters = append(l.waiters, pd)
		return pd, nil
	}

	p.items[key] = &layer{item: NewRenderItem(img, spec), waiters: []*Pending{pd}}
	p.order = append(p.order, key)
	return pd, nil
}

// Hide transitions the layer key out using its exit function. The key is
// removed from the registry when the exit completes, before the returned
// Pending resolves.
//
// Hide fails with ErrNotFound for an unknown key and ErrTransitioning if the
// key is mid-transition.
func (p *Painter) Hide(key string) (*Pending, error) {
	const op = "Painter.Hide"
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return nil, Fail(op, ErrDestroyed)
	}

	l, ok := p.items[key]
	if !ok {
		return nil, Fail(op, &KeyError{Key: key, Err: ErrNotFound})
	}
	if !l.item.Complete() {
		return nil, Fail(op, &KeyError{Key: key, Err: ErrTransitioning})
	}
	pd := newPending()
	l.item.TriggerExit()
	l.exiting = true
	l.waiters = append(l.waiters, pd)
	return pd, nil
}

// Has reports whether key is registered, i.e. visible or exiting.
func (p *Painter) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.items[key]
	return ok
}

// Keys returns the registered keys in draw order.
func (p *Painter) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// Tick redraws the surface once: clear, then advance every layer in
// registry order. Completed transitions resolve their Pending results and
// fully exited layers are removed. Tick does nothing after Destroy.
func (p *Painter) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}

	var stats debugStats
	start := time.Now()
	calls := p.ctx.DrawCalls()

	p.ctx.Clear()
	w, h := float64(p.w), float64(p.h)
	var finished []*layer
	for _, key := range p.order {
		l := p.items[key]
		if l.item.Advance(p.ctx, w, h) {
			finished = append(finished, l)
		}
	}

	if len(finished) > 0 {
		p.order = slices.DeleteFunc(p.order, func(key string) bool {
			if l := p.items[key]; l.exiting && l.item.Complete() {
				delete(p.items, key)
				stats.removed++
				return true
			}
			return false
		})
		for _, l := range finished {
			for _, pd := range l.waiters {
				pd.resolve(nil)
			}
			l.waiters = nil
			l.exiting = false
		}
	}

	p.ticks++
	if p.debug {
		stats.layers = len(p.order)
		stats.completed = len(finished)
		stats.drawCalls = p.ctx.DrawCalls() - calls
		stats.tickTime = time.Since(start)
		p.debugLog(stats)
	}
}

// Start runs Tick every interval on a timer goroutine until Destroy. Each
// tick schedules the next one. Calling Start again has no effect.
func (p *Painter) Start(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed || p.running {
		return
	}
	p.running = true
	p.schedule(interval)
}

// schedule arms the next tick. p.mu must be held.
func (p *Painter) schedule(interval time.Duration) {
	p.timer = time.AfterFunc(interval, func() {
		p.Tick()
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.destroyed {
			p.schedule(interval)
		}
	})
}

// Destroy stops the painter permanently. Outstanding Pending results fail
// with ErrDestroyed and later Show and Hide calls fail. Destroy is
// idempotent.
func (p *Painter) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	for _, key := range p.order {
		for _, pd := range p.items[key].waiters {
			pd.resolve(&KeyError{Key: key, Err: ErrDestroyed})
		}
	}
	p.items = make(map[string]*layer)
	p.order = nil
}

// Destroyed reports whether Destroy has been called.
func (p *Painter) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// ReadPixels copies the surface's premultiplied RGBA pixels into dst, which
// must hold at least 4*Width*Height bytes.
func (p *Painter) ReadPixels(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(dst, p.ctx.Image().Pix)
}

// Snapshot returns a copy of the surface.
func (p *Painter) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx.GetImageData(p.ctx.Image().Bounds())
}
