package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
base: {width: 800, height: 1000, image: base.png, enhancedImage: base_enhanced.png}
groups:
  shirt:
    layers:
      - mask: shirt_mask.png
        tiling: {scale: 0.3, angle: 15}
      - mask: collar_mask.png
    textures:
      - {name: denim, image: denim.jpg, scale: 1.5}
      - {name: linen, image: linen.jpg}
preview:
  textureScale: 2
  transition: {entry: WipeIn, exit: FadeOut, timing: EaseOutCubic, speed: 0.1}
`

const sampleTOML = `
[base]
width = 800
height = 1000
image = "base.png"

[groups.shirt]
[[groups.shirt.layers]]
mask = "shirt_mask.png"
[groups.shirt.layers.tiling]
angle = 45.0

[[groups.shirt.textures]]
name = "denim"
image = "denim.jpg"

[preview.transition]
timing = "Linear"
`

func TestParseYAML(t *testing.T) {
	o, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)

	assert.Equal(t, 800, o.Base.Width)
	assert.Equal(t, "base_enhanced.png", o.Base.Enhanced())
	require.Contains(t, o.Groups, "shirt")
	shirt := o.Groups["shirt"]
	require.Len(t, shirt.Layers, 2)

	scale, angle := shirt.Layers[0].Tiling.Resolve()
	assert.Equal(t, 0.3, scale)
	assert.Equal(t, 15.0, angle)
	scale, angle = shirt.Layers[1].Tiling.Resolve()
	assert.Equal(t, DefaultTilingScale, scale)
	assert.Equal(t, DefaultTilingAngle, angle)

	denim, ok := shirt.Texture("denim")
	require.True(t, ok)
	assert.Equal(t, 1.5, denim.ResolveScale())
	linen, _ := shirt.Texture("linen")
	assert.Equal(t, 1.0, linen.ResolveScale())
	_, ok = shirt.Texture("silk")
	assert.False(t, ok)

	assert.Equal(t, 2.0, o.Preview.ResolveTextureScale())
	spec, err := o.Preview.Transition.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.1, spec.Speed)
}

func TestParseTOML(t *testing.T) {
	o, err := Parse([]byte(sampleTOML), TOML)
	require.NoError(t, err)

	assert.Equal(t, "base.png", o.Base.Enhanced(), "enhanced falls back to the base image")
	scale, angle := o.Groups["shirt"].Layers[0].Tiling.Resolve()
	assert.Equal(t, DefaultTilingScale, scale)
	assert.Equal(t, 45.0, angle)
	assert.Equal(t, 1.0, o.Preview.ResolveTextureScale())

	spec, err := o.Preview.Transition.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.05, spec.Speed, "default speed")
	assert.InDelta(t, 0.5, spec.Timing(0.5), 1e-6, "Linear timing")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("base: {width: 1, height: 1, image: a.png, colour: red}\ngroups: {}\n"), YAML)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Parse([]byte("[base]\nwidth = 1\nbogus = 2\n"), TOML)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil, YAML)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Parse([]byte(sampleYAML), Format("json"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateCollectsProblems(t *testing.T) {
	o := &Outfit{
		Base: Base{Width: 0, Height: 10},
		Groups: map[string]Group{
			"base": {Layers: []Layer{{Mask: "m.png"}}},
			"shirt": {
				Layers: []Layer{{Mask: "", Tiling: &Tiling{Scale: Float(0)}}},
				Textures: []Texture{
					{Name: "a", Image: "a.png"},
					{Name: "a", Image: ""},
					{Name: "b", Image: "b.png", Scale: Float(-1)},
				},
			},
		},
		Preview: PreviewOptions{
			TextureScale: Float(0),
			Transition:   TransitionOptions{Entry: "Dissolve"},
		},
	}
	err := o.Validate()
	require.ErrorIs(t, err, ErrInvalid)

	msg := err.Error()
	for _, want := range []string{
		"base: size 0x10",
		"base: image is required",
		`"base" is not a valid group name`,
		"groups.shirt.layers[0]: mask is required",
		"groups.shirt.layers[0]: tiling scale 0",
		`duplicate name "a"`,
		"groups.shirt.textures[1]: image is required",
		"groups.shirt.textures[2]: scale -1",
		"preview: textureScale 0",
		`unknown entry transition "Dissolve"`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestTransitionResolve(t *testing.T) {
	tests := []struct {
		name    string
		opts    TransitionOptions
		wantErr bool
	}{
		{"defaults", TransitionOptions{}, false},
		{"all named", TransitionOptions{Entry: "WipeIn", Exit: "WipeOut", Timing: "EaseInQuad", Speed: Float(1)}, false},
		{"unknown exit", TransitionOptions{Exit: "Spin"}, true},
		{"unknown timing", TransitionOptions{Timing: "Bounce"}, true},
		{"zero speed", TransitionOptions{Speed: Float(0)}, true},
		{"speed above one", TransitionOptions{Speed: Float(1.01)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tt.opts.Resolve()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, spec.Validate())
		})
	}
}

func TestTransitionMerge(t *testing.T) {
	base := TransitionOptions{Entry: "FadeIn", Exit: "FadeOut", Speed: Float(0.1)}
	got := base.Merge(TransitionOptions{Entry: "WipeIn", Speed: Float(0.5)})

	assert.Equal(t, "WipeIn", got.Entry)
	assert.Equal(t, "FadeOut", got.Exit)
	assert.Equal(t, 0.5, *got.Speed)
	assert.Equal(t, 0.1, *base.Speed, "merge does not modify the receiver's speed")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outfit.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, o.Dir)
	assert.Equal(t, []string{"shirt"}, o.GroupNames())

	_, err = Load(filepath.Join(dir, "outfit.json"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	o, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)

	for _, format := range []Format{YAML, TOML} {
		data, err := Marshal(o, format)
		require.NoError(t, err)
		again, err := Parse(data, format)
		require.NoError(t, err, "format %s:\n%s", format, data)
		assert.Equal(t, o.Groups, again.Groups)
	}
}
