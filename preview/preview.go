// Package preview sequences outfit loading, texture composition and
// painting behind a small API: Init once with an outfit, then draw or erase
// garment groups by name.
//
// The Painter returned by [Preview.Painter] must be driven, by
// [tailor.Painter.Start] or a display host, for the Draw and Erase calls to
// complete.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/tailor"
	"github.com/phanxgames/tailor/asset"
	"github.com/phanxgames/tailor/config"
	"github.com/phanxgames/tailor/worker"
)

var (
	// ErrNotInitialized is returned by every operation before Init succeeds
	// and after Destroy.
	ErrNotInitialized = errors.New("preview: not initialized")

	// ErrUnknownGroup is returned for a group the outfit does not define.
	ErrUnknownGroup = errors.New("preview: unknown group")
)

// Preview renders one outfit.
type Preview struct {
	loader asset.Loader

	mu sync.Mutex
	st *state
}

// state is everything Init builds. It is replaced as a whole.
type state struct {
	cfg       *config.Outfit
	loader    *asset.Loader
	painter   *tailor.Painter
	base      image.Image
	composers map[string]*worker.GroupComposer
}

func (s *state) destroy() {
	s.painter.Destroy()
	for _, c := range s.composers {
		c.Destroy()
	}
}

// New returns an uninitialized preview loading images through loader. A
// nil loader uses the zero Loader.
func New(loader *asset.Loader) *Preview {
	p := &Preview{}
	if loader != nil {
		p.loader = *loader
	}
	return p
}

// Init loads cfg, starts one composition unit per group and shows the base
// image. It does not wait for the base transition. Calling Init again
// replaces the previous outfit once the new one is ready.
func (p *Preview) Init(ctx context.Context, cfg *config.Outfit) error {
	const op = "Preview.Init"
	if cfg == nil {
		return tailor.Fail(op, errors.New("nil outfit"))
	}
	spec, err := cfg.Preview.Transition.Resolve()
	if err != nil {
		return tailor.Fail(op, err)
	}

	loader := p.loader
	if loader.Dir == "" {
		loader.Dir = cfg.Dir
	}
	processor := worker.NewConfigProcessor(&loader)
	defer processor.Destroy()
	processed, err := processor.Process(ctx, cfg)
	if err != nil {
		return tailor.Fail(op, err)
	}

	painter, err := tailor.NewPainter(cfg.Base.Width, cfg.Base.Height)
	if err != nil {
		return tailor.Fail(op, err)
	}
	st := &state{
		cfg:       cfg,
		loader:    &loader,
		painter:   painter,
		base:      processed.Base.Image,
		composers: make(map[string]*worker.GroupComposer, len(processed.Groups)),
	}
	for name := range processed.Groups {
		st.composers[name] = worker.NewGroupComposer(name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, layers := range processed.Groups {
		c := st.composers[name]
		g.Go(func() error { return c.Transfer(gctx, processed.Base, layers) })
	}
	if err := g.Wait(); err != nil {
		st.destroy()
		return tailor.Fail(op, err)
	}

	if _, err := painter.Show(config.BaseKey, st.base, spec); err != nil {
		st.destroy()
		return tailor.Fail(op, err)
	}

	p.mu.Lock()
	prev := p.st
	p.st = st
	p.mu.Unlock()
	if prev != nil {
		prev.destroy()
	}
	return nil
}

func (p *Preview) current() (*state, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st == nil {
		return nil, ErrNotInitialized
	}
	return p.st, nil
}

// Painter returns the painter of the current outfit, or nil before Init.
func (p *Preview) Painter() *tailor.Painter {
	st, err := p.current()
	if err != nil {
		return nil
	}
	return st.painter
}

// Outfit returns the current outfit, or nil before Init.
func (p *Preview) Outfit() *config.Outfit {
	st, err := p.current()
	if err != nil {
		return nil
	}
	return st.cfg
}

// DrawBase transitions the base layer to the base image again and waits for
// the transition to finish.
func (p *Preview) DrawBase(ctx context.Context, opts config.TransitionOptions) error {
	const op = "Preview.DrawBase"
	st, err := p.current()
	if err != nil {
		return tailor.Fail(op, err)
	}
	spec, err := st.cfg.Preview.Transition.Merge(opts).Resolve()
	if err != nil {
		return tailor.Fail(op, err)
	}
	return p.show(ctx, op, st, config.BaseKey, st.base, spec)
}

// DrawGroup re-skins group with texture and waits for the transition to
// finish. texture names an entry of the group's catalog; any other value is
// loaded as an image source at scale 1. opts override the outfit's
// transition defaults.
//
// A second DrawGroup for the same group fails with worker.ErrBusy while the
// first is composing, and with tailor.ErrTransitioning while it animates.
func (p *Preview) DrawGroup(ctx context.Context, group, texture string, opts config.TransitionOptions) error {
	const op = "Preview.DrawGroup"
	st, err := p.current()
	if err != nil {
		return tailor.Fail(op, err)
	}
	composer, ok := st.composers[group]
	if !ok {
		return tailor.Fail(op, fmt.Errorf("%w %q", ErrUnknownGroup, group))
	}
	spec, err := st.cfg.Preview.Transition.Merge(opts).Resolve()
	if err != nil {
		return tailor.Fail(op, err)
	}

	src, scale := texture, config.DefaultTextureScale
	if entry, ok := st.cfg.Groups[group].Texture(texture); ok {
		src, scale = entry.Image, entry.ResolveScale()
	}
	scale *= st.cfg.Preview.ResolveTextureScale()

	tex, err := st.loader.LoadImage(ctx, src)
	if err != nil {
		return tailor.Fail(op, err)
	}
	img, err := composer.Create(ctx, worker.TextureConfig{Image: tex, Scale: scale})
	if err != nil {
		return tailor.Fail(op, err)
	}
	return p.show(ctx, op, st, group, img, spec)
}

// EraseGroup transitions group out, revealing the base beneath, and waits
// for the exit to finish. It fails with tailor.ErrNotFound when the group
// is not shown.
func (p *Preview) EraseGroup(ctx context.Context, group string) error {
	const op = "Preview.EraseGroup"
	st, err := p.current()
	if err != nil {
		return tailor.Fail(op, err)
	}
	if _, ok := st.composers[group]; !ok {
		return tailor.Fail(op, fmt.Errorf("%w %q", ErrUnknownGroup, group))
	}
	pd, err := st.painter.Hide(group)
	if err != nil {
		return tailor.Fail(op, err)
	}
	if err := pd.Wait(ctx); err != nil {
		return tailor.Fail(op, err)
	}
	return nil
}

func (p *Preview) show(ctx context.Context, op string, st *state, key string, img image.Image, spec tailor.TransitionSpec) error {
	pd, err := st.painter.Show(key, img, spec)
	if err != nil {
		return tailor.Fail(op, err)
	}
	if err := pd.Wait(ctx); err != nil {
		return tailor.Fail(op, err)
	}
	return nil
}

// Destroy stops the painter and every unit. The preview can be initialized
// again afterwards.
func (p *Preview) Destroy() {
	p.mu.Lock()
	st := p.st
	p.st = nil
	p.mu.Unlock()
	if st != nil {
		st.destroy()
	}
}
