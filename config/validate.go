package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks o and returns every problem found, joined and wrapped in
// ErrInvalid.
func (o *Outfit) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if o.Base.Width <= 0 || o.Base.Height <= 0 {
		add("base: size %dx%d must be positive", o.Base.Width, o.Base.Height)
	}
	if o.Base.Image == "" {
		add("base: image is required")
	}
	if len(o.Groups) == 0 {
		add("groups: at least one group is required")
	}

	for _, name := range o.GroupNames() {
		g := o.Groups[name]
		if name == "" || name == BaseKey {
			add("groups: %q is not a valid group name", name)
		}
		if len(g.Layers) == 0 {
			add("groups.%s: at least one layer is required", name)
		}
		for i, l := range g.Layers {
			if l.Mask == "" {
				add("groups.%s.layers[%d]: mask is required", name, i)
			}
			if scale, angle := l.Tiling.Resolve(); !positive(scale) || !finite(angle) {
				add("groups.%s.layers[%d]: tiling scale %v / angle %v", name, i, scale, angle)
			}
		}
		seen := make(map[string]bool, len(g.Textures))
		for i, t := range g.Textures {
			switch {
			case t.Name == "":
				add("groups.%s.textures[%d]: name is required", name, i)
			case seen[t.Name]:
				add("groups.%s.textures[%d]: duplicate name %q", name, i, t.Name)
			}
			seen[t.Name] = true
			if t.Image == "" {
				add("groups.%s.textures[%d]: image is required", name, i)
			}
			if !positive(t.ResolveScale()) {
				add("groups.%s.textures[%d]: scale %v must be positive", name, i, t.ResolveScale())
			}
		}
	}

	if !positive(o.Preview.ResolveTextureScale()) {
		add("preview: textureScale %v must be positive", o.Preview.ResolveTextureScale())
	}
	if _, err := o.Preview.Transition.Resolve(); err != nil {
		errs = append(errs, fmt.Errorf("preview.transition: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// BaseKey is the layer key the base image is shown under; groups may not
// use it.
const BaseKey = "base"

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
