// Package config describes an outfit preview: the base images, the garment
// groups with their layer masks and texture catalogs, and the transition
// used when swapping textures. Files are YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/phanxgames/tailor"
)

// ErrInvalid is wrapped by every validation and resolution error.
var ErrInvalid = errors.New("config: invalid")

// Texture scale applied when neither the texture nor the preview sets one.
const DefaultTextureScale = 1.0

// Tiling defaults for layers without explicit tiling.
const (
	DefaultTilingScale = 0.2
	DefaultTilingAngle = 0.0
)

// Outfit is the root of an outfit configuration.
type Outfit struct {
	Base    Base             `yaml:"base" toml:"base"`
	Groups  map[string]Group `yaml:"groups" toml:"groups"`
	Preview PreviewOptions   `yaml:"preview,omitempty" toml:"preview,omitempty"`

	// Dir is the directory relative asset paths resolve against. Load sets
	// it to the config file's directory.
	Dir string `yaml:"-" toml:"-"`
}

// Base holds the base photo and its enhanced variant, which is the one
// textures are multiplied onto.
type Base struct {
	Width         int    `yaml:"width" toml:"width"`
	Height        int    `yaml:"height" toml:"height"`
	Image         string `yaml:"image" toml:"image"`
	EnhancedImage string `yaml:"enhancedImage,omitempty" toml:"enhancedImage,omitempty"`
}

// Group is one re-skinnable garment region made of one or more layers.
type Group struct {
	Layers   []Layer   `yaml:"layers" toml:"layers"`
	Textures []Texture `yaml:"textures,omitempty" toml:"textures,omitempty"`
}

// Layer is one masked region of a group.
type Layer struct {
	Mask   string  `yaml:"mask" toml:"mask"`
	Tiling *Tiling `yaml:"tiling,omitempty" toml:"tiling,omitempty"`
}

// Tiling overrides how textures repeat over a layer. Unset fields take the
// defaults.
type Tiling struct {
	Scale *float64 `yaml:"scale,omitempty" toml:"scale,omitempty"`
	Angle *float64 `yaml:"angle,omitempty" toml:"angle,omitempty"`
}

// Texture is one catalog entry of a group.
type Texture struct {
	Name  string   `yaml:"name" toml:"name"`
	Image string   `yaml:"image" toml:"image"`
	Scale *float64 `yaml:"scale,omitempty" toml:"scale,omitempty"`
}

// PreviewOptions are the defaults for every texture swap.
type PreviewOptions struct {
	TextureScale *float64          `yaml:"textureScale,omitempty" toml:"textureScale,omitempty"`
	Transition   TransitionOptions `yaml:"transition,omitempty" toml:"transition,omitempty"`
}

// TransitionOptions name a transition. Empty fields fall back to
// [tailor.DefaultTransitionSpec].
type TransitionOptions struct {
	Entry  string   `yaml:"entry,omitempty" toml:"entry,omitempty"`
	Exit   string   `yaml:"exit,omitempty" toml:"exit,omitempty"`
	Timing string   `yaml:"timing,omitempty" toml:"timing,omitempty"`
	Speed  *float64 `yaml:"speed,omitempty" toml:"speed,omitempty"`
}

// Float returns a pointer to v, for building options in code.
func Float(v float64) *float64 { return &v }

// Merge returns t with every field set in override replacing its own.
func (t TransitionOptions) Merge(override TransitionOptions) TransitionOptions {
	if override.Entry != "" {
		t.Entry = override.Entry
	}
	if override.Exit != "" {
		t.Exit = override.Exit
	}
	if override.Timing != "" {
		t.Timing = override.Timing
	}
	if override.Speed != nil {
		t.Speed = override.Speed
	}
	return t
}

// Resolve converts t to an engine transition, rejecting unknown names and
// speeds outside (0, 1].
func (t TransitionOptions) Resolve() (tailor.TransitionSpec, error) {
	spec := tailor.DefaultTransitionSpec()
	if t.Entry != "" {
		fn, ok := tailor.TransitionByName(t.Entry)
		if !ok {
			return spec, unknownName("entry transition", t.Entry, tailor.TransitionNames())
		}
		spec.Entry = fn
	}
	if t.Exit != "" {
		fn, ok := tailor.TransitionByName(t.Exit)
		if !ok {
			return spec, unknownName("exit transition", t.Exit, tailor.TransitionNames())
		}
		spec.Exit = fn
	}
	if t.Timing != "" {
		fn, ok := tailor.TimingByName(t.Timing)
		if !ok {
			return spec, unknownName("timing function", t.Timing, tailor.TimingNames())
		}
		spec.Timing = fn
	}
	if t.Speed != nil {
		spec.Speed = *t.Speed
	}
	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return spec, nil
}

func unknownName(what, name string, valid []string) error {
	return fmt.Errorf("%w: unknown %s %q (valid: %v)", ErrInvalid, what, name, valid)
}

// Resolve returns the tiling scale and angle in degrees, defaulting unset
// fields. A nil Tiling yields the defaults.
func (t *Tiling) Resolve() (scale, angle float64) {
	scale, angle = DefaultTilingScale, DefaultTilingAngle
	if t == nil {
		return scale, angle
	}
	if t.Scale != nil {
		scale = *t.Scale
	}
	if t.Angle != nil {
		angle = *t.Angle
	}
	return scale, angle
}

// ResolveScale returns the texture's scale, defaulting to 1.
func (t Texture) ResolveScale() float64 {
	if t.Scale == nil {
		return DefaultTextureScale
	}
	return *t.Scale
}

// ResolveTextureScale returns the preview-wide texture scale, defaulting to 1.
func (p PreviewOptions) ResolveTextureScale() float64 {
	if p.TextureScale == nil {
		return DefaultTextureScale
	}
	return *p.TextureScale
}

// Texture returns the catalog entry called name.
func (g Group) Texture(name string) (Texture, bool) {
	i := slices.IndexFunc(g.Textures, func(t Texture) bool { return t.Name == name })
	if i < 0 {
		return Texture{}, false
	}
	return g.Textures[i], true
}

// GroupNames returns the group keys, sorted.
func (o *Outfit) GroupNames() []string {
	names := make([]string, 0, len(o.Groups))
	for name := range o.Groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Enhanced returns the enhanced base source, falling back to the
// plain base image.
func (b Base) Enhanced() string {
	if b.EnhancedImage != "" {
		return b.EnhancedImage
	}
	return b.Image
}
