package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createPageWithBlock(width, height int, block image.Rectangle) *image.RGBA {
	img := createInMemoryImage(width, height, white)
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestContentBounds(t *testing.T) {
	img := createPageWithBlock(1000, 1000, image.Rect(200, 300, 400, 500))

	r, ok := ContentBounds(img)
	assert.True(t, ok)
	assert.InDelta(t, 200, r.Min.X, 2)
	assert.InDelta(t, 300, r.Min.Y, 2)
	assert.InDelta(t, 400, r.Max.X, 2)
	assert.InDelta(t, 500, r.Max.Y, 2)
}

func TestContentBounds_Blank(t *testing.T) {
	_, ok := ContentBounds(createInMemoryImage(50, 50, white))
	assert.False(t, ok)
}

func TestSuggestCropRect(t *testing.T) {
	tests := []struct {
		name  string
		img   image.Image
		check func(t *testing.T, r CropRect)
	}{
		{
			"blank page falls back to default",
			createInMemoryImage(100, 100, white),
			func(t *testing.T, r CropRect) { assert.Equal(t, DefaultCropRect(), r) },
		},
		{
			"block is enclosed",
			createPageWithBlock(1000, 1000, image.Rect(200, 300, 400, 500)),
			func(t *testing.T, r CropRect) {
				assert.LessOrEqual(t, r.X, 20.0)
				assert.LessOrEqual(t, r.Y, 30.0)
				assert.GreaterOrEqual(t, r.X+r.W, 40.0)
				assert.GreaterOrEqual(t, r.Y+r.H, 50.0)
			},
		},
		{
			"tiny speck is widened to the minimum size",
			createPageWithBlock(1000, 1000, image.Rect(995, 995, 998, 998)),
			func(t *testing.T, r CropRect) {
				assert.GreaterOrEqual(t, r.W, float64(MinCropPercent))
				assert.GreaterOrEqual(t, r.H, float64(MinCropPercent))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SuggestCropRect(tt.img, 2)
			assert.NoError(t, r.Validate())
			tt.check(t, r)
		})
	}
}
