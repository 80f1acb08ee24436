package worker

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/tailor/canvas"
	"github.com/phanxgames/tailor/config"
)

func TestPlanTilesCounts(t *testing.T) {
	box := image.Rect(0, 0, 100, 100)
	tests := []struct {
		name       string
		opts       TilingOptions
		texScale   float64
		cols, rows int
	}{
		{"unit scale", TilingOptions{Scale: 1}, 1, 10, 10},
		{"default scale", DefaultTilingOptions(), 1, 50, 50},
		{"texture scale multiplies", TilingOptions{Scale: 0.5}, 2, 10, 10},
		{"partial tile rounds up", TilingOptions{Scale: 1.5}, 1, 7, 7},
		{"rotated grows", TilingOptions{Scale: 1, Angle: 45}, 1, 15, 15},
		{"half turn does not grow", TilingOptions{Scale: 1, Angle: 180}, 1, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PlanTiles(10, 10, box, tt.opts, tt.texScale)
			require.NoError(t, err)
			assert.Equal(t, tt.cols, p.Cols)
			assert.Equal(t, tt.rows, p.Rows)
			assert.Equal(t, tt.cols*tt.rows, p.Count())
		})
	}
}

func TestDefaultTilingOptionsFollowConfig(t *testing.T) {
	assert.Equal(t, TilingOptions{Scale: config.DefaultTilingScale, Angle: config.DefaultTilingAngle}, DefaultTilingOptions())
}

func TestPlanTilesRegion(t *testing.T) {
	p, err := PlanTiles(10, 10, image.Rect(20, 40, 60, 80), TilingOptions{Scale: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.X0)
	assert.Equal(t, 20.0, p.Y0)
	assert.Equal(t, 20.0, p.PivotX)
	assert.Equal(t, 30.0, p.PivotY)
	assert.Equal(t, 2, p.Cols)

	p, err = PlanTiles(10, 10, image.Rect(0, 0, 100, 100), TilingOptions{Scale: 1, Angle: 90}, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, p.Angle, 1e-12)
	assert.InDelta(t, 0, p.X0, 1e-9)
}

func TestPlanTilesInvalid(t *testing.T) {
	for _, tt := range []struct {
		opts     TilingOptions
		texScale float64
	}{
		{TilingOptions{Scale: 0}, 1},
		{TilingOptions{Scale: -1}, 1},
		{TilingOptions{Scale: 1}, -2},
		{TilingOptions{Scale: math.NaN()}, 1},
	} {
		_, err := PlanTiles(10, 10, image.Rect(0, 0, 10, 10), tt.opts, tt.texScale)
		assert.ErrorIs(t, err, ErrInvalidScale)
		_, err = PlanTilesOverhang(10, 10, 10, 10, tt.opts, tt.texScale)
		assert.ErrorIs(t, err, ErrInvalidScale)
	}
	_, err := PlanTiles(0, 10, image.Rect(0, 0, 10, 10), TilingOptions{Scale: 1}, 1)
	assert.Error(t, err)
}

func TestPlanTilesOverhang(t *testing.T) {
	p, err := PlanTilesOverhang(10, 10, 100, 60, TilingOptions{Scale: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, -25.0, p.X0)
	assert.Equal(t, -15.0, p.Y0)
	assert.Equal(t, 50.0, p.PivotX)
	assert.Equal(t, 30.0, p.PivotY)
	assert.Equal(t, 15, p.Cols)
	assert.Equal(t, 9, p.Rows)
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestTileTextureOverhangCoversCanvas(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	ctx := canvas.New(20, 20)
	p, err := TileTexture(ctx, solid(10, 10, red), nil, TilingOptions{Scale: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Count())
	assert.Equal(t, 1, ctx.DrawCalls(), "grid drawn as one fill")

	img := ctx.Image()
	for _, pt := range []image.Point{{0, 0}, {19, 0}, {0, 19}, {19, 19}, {10, 10}} {
		assert.Equal(t, red, img.RGBAAt(pt.X, pt.Y), "pixel %v", pt)
	}
	assert.Equal(t, canvas.Identity, ctx.GetTransform(), "transform restored")
}

func TestTileTextureBounded(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	ctx := canvas.New(10, 10)
	bounds := image.Rect(0, 0, 5, 5)
	p, err := TileTexture(ctx, solid(2, 2, red), &bounds, TilingOptions{Scale: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Cols)

	img := ctx.Image()
	assert.Equal(t, red, img.RGBAAt(0, 0))
	assert.Equal(t, red, img.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(8, 8))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 7))
}

func TestTileTextureFractionalTilesLeaveNoGaps(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	bounds := image.Rect(13, 7, 101, 83)
	for _, tt := range []struct {
		name string
		opts TilingOptions
	}{
		{"scale 1.7", TilingOptions{Scale: 1.7}},
		{"scale 0.3", TilingOptions{Scale: 0.3}},
		{"scale 1.7 rotated", TilingOptions{Scale: 1.7, Angle: 30}},
		{"scale 0.2 rotated", TilingOptions{Scale: 0.2, Angle: 77}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx := canvas.New(120, 90)
			_, err := TileTexture(ctx, solid(7, 5, red), &bounds, tt.opts, 1)
			require.NoError(t, err)

			img := ctx.Image()
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				uncovered := 0
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					if img.RGBAAt(x, y) != red {
						uncovered++
					}
				}
				assert.Zero(t, uncovered, "row %d", y)
			}
		})
	}
}

func TestTileTextureMultiplyHasNoBareStripes(t *testing.T) {
	base := color.RGBA{200, 200, 200, 255}
	bounds := image.Rect(13, 7, 101, 83)
	ctx := canvas.New(120, 90)
	ctx.DrawImage(solid(120, 90, base), 0, 0, 120, 90)
	ctx.SetCompositeOp(canvas.Multiply)
	_, err := TileTexture(ctx, solid(7, 5, color.RGBA{255, 0, 0, 255}), &bounds, TilingOptions{Scale: 1.7}, 1)
	require.NoError(t, err)

	img := ctx.Image()
	want := color.RGBA{200, 0, 0, 255}
	for _, y := range []int{7, 40, 66, 82} {
		for _, x := range []int{13, 50, 100} {
			assert.Equal(t, want, img.RGBAAt(x, y), "pixel (%d, %d)", x, y)
		}
	}
	assert.Equal(t, base, img.RGBAAt(5, 5), "outside the box untouched")
}
