package worker

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/tailor"
	"github.com/phanxgames/tailor/asset"
	"github.com/phanxgames/tailor/config"
)

// ProcessorName is the unit name of every ConfigProcessor.
const ProcessorName = "ConfigProcessor"

// maxConcurrentLoads bounds the images a processor fetches at once.
const maxConcurrentLoads = 8

// ProcessedOutfit is an outfit with every image loaded and every mask
// reduced. Groups maps group names to their layers in config order.
type ProcessedOutfit struct {
	Base   BaseConfig
	Groups map[string][]LayerConfig
}

// ConfigProcessor loads an outfit's base images and masks on its own unit.
type ConfigProcessor struct {
	exec   *Executor[*config.Outfit, *ProcessedOutfit]
	loader asset.Loader
}

// NewConfigProcessor starts a processor loading through loader. A nil
// loader uses the zero Loader. Relative paths resolve against the outfit's
// Dir unless the loader sets its own.
func NewConfigProcessor(loader *asset.Loader) *ConfigProcessor {
	p := &ConfigProcessor{}
	if loader != nil {
		p.loader = *loader
	}
	p.exec = NewExecutor(ProcessorName, p.process)
	return p
}

// Process loads and reduces everything cfg references. The returned images
// belong to the caller.
func (p *ConfigProcessor) Process(ctx context.Context, cfg *config.Outfit) (*ProcessedOutfit, error) {
	const op = "ConfigProcessor.Process"
	if cfg == nil {
		return nil, tailor.Fail(op, fmt.Errorf("worker %q: nil outfit", ProcessorName))
	}
	out, err := p.exec.Do(ctx, cfg)
	if err != nil {
		return nil, tailor.Fail(op, err)
	}
	return out, nil
}

// Busy reports whether a Process call is outstanding.
func (p *ConfigProcessor) Busy() bool { return p.exec.Busy() }

// Destroy stops the unit.
func (p *ConfigProcessor) Destroy() { p.exec.Destroy() }

func (p *ConfigProcessor) process(ctx context.Context, cfg *config.Outfit) (*ProcessedOutfit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	loader := p.loader
	if loader.Dir == "" {
		loader.Dir = cfg.Dir
	}

	out := &ProcessedOutfit{
		Base:   BaseConfig{Width: cfg.Base.Width, Height: cfg.Base.Height},
		Groups: make(map[string][]LayerConfig, len(cfg.Groups)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	load := func(src string, dst *image.Image) {
		g.Go(func() error {
			img, err := loader.LoadImage(gctx, src)
			if err != nil {
				return err
			}
			*dst = img
			return nil
		})
	}

	load(cfg.Base.Image, &out.Base.Image)
	if enhanced := cfg.Base.Enhanced(); enhanced != cfg.Base.Image {
		load(enhanced, &out.Base.Enhanced)
	}

	for _, name := range cfg.GroupNames() {
		group := cfg.Groups[name]
		layers := make([]LayerConfig, len(group.Layers))
		out.Groups[name] = layers
		for i, l := range group.Layers {
			scale, angle := l.Tiling.Resolve()
			layers[i].Tiling = TilingOptions{Scale: scale, Angle: angle}
			g.Go(func() error {
				img, err := loader.LoadImage(gctx, l.Mask)
				if err != nil {
					return fmt.Errorf("group %q layer %d: %w", name, i, err)
				}
				mask, bounds := ProcessMask(img)
				layers[i].Mask, layers[i].Bounds = mask, &bounds
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	tailor.Logger().Debug("worker: outfit processed",
		slog.Int("groups", len(out.Groups)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}
