package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// NormalizeRotation maps any number of degrees into [0, 360).
func NormalizeRotation(degrees int) int {
	d := degrees % 360
	if d < 0 {
		d += 360
	}
	return d
}

// rotationTrig returns cos and sin of the rotation, exact for right angles.
func rotationTrig(degrees int) (cos, sin float64) {
	switch NormalizeRotation(degrees) {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	theta := float64(degrees) * math.Pi / 180
	return math.Cos(theta), math.Sin(theta)
}

// RotatedSize returns the bounding box of a width×height image rotated by
// degrees. Fractional sizes are rounded up so the rotated image always fits.
func RotatedSize(width, height, degrees int) (int, int) {
	cos, sin := rotationTrig(degrees)
	cos, sin = math.Abs(cos), math.Abs(sin)
	w := float64(width)*cos + float64(height)*sin
	h := float64(width)*sin + float64(height)*cos
	return ceilSize(w), ceilSize(h)
}

// ceilSize rounds up, ignoring floating point noise just above an integer.
func ceilSize(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

// Transform rotates src clockwise by degrees and applies the colour
// adjustment, returning a new surface sized to contain the whole rotated
// image. The rotated image is centred; the background is transparent.
func Transform(src image.Image, degrees int, adj ColorAdjustment) *image.NRGBA {
	filtered := ApplyAdjustment(src, adj)

	w, h := filtered.Bounds().Dx(), filtered.Bounds().Dy()
	newW, newH := RotatedSize(w, h, degrees)
	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))

	if NormalizeRotation(degrees) == 0 && newW == w && newH == h {
		draw.Copy(dst, image.Point{}, filtered, filtered.Bounds(), draw.Src, nil)
		return dst
	}

	cos, sin := rotationTrig(degrees)
	// translate(newW/2, newH/2) · rotate(θ) · translate(-w/2, -h/2)
	hw, hh := float64(w)/2, float64(h)/2
	s2d := f64.Aff3{
		cos, -sin, float64(newW)/2 - (cos*hw - sin*hh),
		sin, cos, float64(newH)/2 - (sin*hw + cos*hh),
	}

	var interp draw.Transformer = draw.ApproxBiLinear
	if NormalizeRotation(degrees)%90 == 0 {
		interp = draw.NearestNeighbor
	}
	interp.Transform(dst, s2d, filtered, filtered.Bounds(), draw.Over, nil)
	return dst
}
