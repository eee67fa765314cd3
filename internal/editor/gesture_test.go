package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

func TestGesture_Move(t *testing.T) {
	vp := Viewport{Width: 500, Height: 400}
	start := Point{X: 100, Y: 100}

	tests := []struct {
		name string
		to   Point
		want imaging.CropRect
	}{
		{"no motion", Point{100, 100}, imaging.CropRect{X: 10, Y: 10, W: 80, H: 80}},
		{"right and down", Point{125, 120}, imaging.CropRect{X: 15, Y: 15, W: 80, H: 80}},
		{"clamped at far edge", Point{1000, 1000}, imaging.CropRect{X: 20, Y: 20, W: 80, H: 80}},
		{"clamped at origin", Point{-1000, -1000}, imaging.CropRect{X: 0, Y: 0, W: 80, H: 80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BeginGesture(DragMove, start, imaging.DefaultCropRect(), vp)
			got := g.Update(tt.to)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.Equal(t, tt.want.W, got.W)
			assert.Equal(t, tt.want.H, got.H)
		})
	}
}

func TestGesture_ResizeSE(t *testing.T) {
	vp := Viewport{Width: 200, Height: 200}
	start := Point{X: 180, Y: 180}

	tests := []struct {
		name string
		to   Point
		want imaging.CropRect
	}{
		{"shrink", Point{80, 130}, imaging.CropRect{X: 10, Y: 10, W: 30, H: 55}},
		{"never below minimum", Point{-5000, -5000}, imaging.CropRect{X: 10, Y: 10, W: 10, H: 10}},
		{"never past the image", Point{5000, 5000}, imaging.CropRect{X: 10, Y: 10, W: 90, H: 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BeginGesture(DragResizeSE, start, imaging.DefaultCropRect(), vp)
			got := g.Update(tt.to)
			assert.InDelta(t, tt.want.W, got.W, 1e-9)
			assert.InDelta(t, tt.want.H, got.H, 1e-9)
			assert.Equal(t, tt.want.X, got.X)
			assert.Equal(t, tt.want.Y, got.Y)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestGesture_UpdatesFromSnapshot(t *testing.T) {
	g := BeginGesture(DragMove, Point{0, 0}, imaging.DefaultCropRect(), Viewport{100, 100})

	g.Update(Point{5, 5})
	got := g.Update(Point{2, 0})
	assert.InDelta(t, 12.0, got.X, 1e-9)
	assert.InDelta(t, 10.0, got.Y, 1e-9)
}

func TestGesture_AlwaysValid(t *testing.T) {
	vp := Viewport{Width: 317, Height: 241}
	origins := []imaging.CropRect{
		imaging.DefaultCropRect(),
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 90, Y: 90, W: 10, H: 10},
		{X: 0, Y: 0, W: 100, H: 100},
	}

	for _, origin := range origins {
		for _, kind := range []DragKind{DragMove, DragResizeSE} {
			g := BeginGesture(kind, Point{150, 120}, origin, vp)
			for dx := -600.0; dx <= 600; dx += 37 {
				for dy := -600.0; dy <= 600; dy += 41 {
					r := g.Update(Point{150 + dx, 120 + dy})
					assert.NoError(t, r.Validate(), "kind=%s origin=%+v dx=%v dy=%v", kind, origin, dx, dy)
				}
			}
		}
	}
}
