package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MinCropPercent is the smallest width or height a crop rectangle may have.
const MinCropPercent = 10

// CropRect is a rectangle in percentages (0-100) of the displayed,
// unrotated image.
type CropRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultCropRect is the rectangle a fresh or reset editor starts with.
func DefaultCropRect() CropRect {
	return CropRect{X: 10, Y: 10, W: 80, H: 80}
}

// Validate checks the rectangle lies inside the image and is at least
// MinCropPercent in each dimension.
func (r CropRect) Validate() error {
	switch {
	case r.X < 0 || r.Y < 0:
		return fmt.Errorf("%w: crop origin (%.2f,%.2f) is negative", ErrInvalidEdit, r.X, r.Y)
	case r.W < MinCropPercent || r.H < MinCropPercent:
		return fmt.Errorf("%w: crop size %.2fx%.2f below minimum %d%%", ErrInvalidEdit, r.W, r.H, MinCropPercent)
	case r.X+r.W > 100 || r.Y+r.H > 100:
		return fmt.Errorf("%w: crop rect (%.2f,%.2f %.2fx%.2f) extends past the image", ErrInvalidEdit, r.X, r.Y, r.W, r.H)
	}
	return nil
}

// Pixels converts the rectangle to absolute pixel coordinates against a
// surface of the given size, clamped to the surface.
func (r CropRect) Pixels(width, height int) image.Rectangle {
	x0 := int(math.Round(r.X * float64(width) / 100))
	y0 := int(math.Round(r.Y * float64(height) / 100))
	cw := int(math.Round(r.W * float64(width) / 100))
	ch := int(math.Round(r.H * float64(height) / 100))
	return image.Rect(x0, y0, x0+cw, y0+ch).Intersect(image.Rect(0, 0, width, height))
}

// Crop copies the region described by rect out of img into a new surface of
// exactly that size. No scaling is applied.
func Crop(img image.Image, rect CropRect) (*image.NRGBA, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	px := rect.Pixels(b.Dx(), b.Dy())
	if px.Empty() {
		return nil, fmt.Errorf("%w: crop region is empty on a %dx%d surface", ErrInvalidEdit, b.Dx(), b.Dy())
	}

	return imaging.Crop(img, px.Add(b.Min)), nil
}
