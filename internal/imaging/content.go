package imaging

import (
	"image"
	"math"
)

// edgeThreshold is the grayscale step between neighbours that counts as an edge.
const edgeThreshold = 30.0

// ContentBounds returns the bounding box of edge pixels in img, relative to
// img.Bounds().Min. ok is false for featureless images.
//
// A pixel is an edge when its BT.601 luminance differs from its right or
// lower neighbour by more than edgeThreshold. Border pixels are ignored.
func ContentBounds(img image.Image) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	minX, minY := width, height
	maxX, maxY := -1, -1

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			c := grayValue(img, x+b.Min.X, y+b.Min.Y)
			cx := grayValue(img, x+1+b.Min.X, y+b.Min.Y)
			cy := grayValue(img, x+b.Min.X, y+1+b.Min.Y)

			dx := math.Abs(c - cx)
			dy := math.Abs(c - cy)
			if dx <= edgeThreshold && dy <= edgeThreshold {
				continue
			}

			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			// the edge sits between x and x+1 (or y and y+1)
			if x+1 > maxX {
				maxX = x + 1
			}
			if y+1 > maxY {
				maxY = y + 1
			}
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// SuggestCropRect proposes a crop rectangle around the detected content,
// padded by paddingPercent on each side. The result always satisfies
// CropRect.Validate. Featureless images get DefaultCropRect.
func SuggestCropRect(img image.Image, paddingPercent float64) CropRect {
	bounds, ok := ContentBounds(img)
	if !ok {
		return DefaultCropRect()
	}

	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	x0 := float64(bounds.Min.X)/w*100 - paddingPercent
	y0 := float64(bounds.Min.Y)/h*100 - paddingPercent
	x1 := float64(bounds.Max.X)/w*100 + paddingPercent
	y1 := float64(bounds.Max.Y)/h*100 + paddingPercent

	x, cw := fitSpan(x0, x1)
	y, ch := fitSpan(y0, y1)
	return CropRect{X: x, Y: y, W: cw, H: ch}
}

// fitSpan clamps [lo, hi] into [0, 100], widens it to MinCropPercent while
// keeping it centred where possible, and returns it as origin and size
// rounded down to two decimals.
func fitSpan(lo, hi float64) (pos, size float64) {
	lo = math.Max(lo, 0)
	hi = math.Min(hi, 100)
	if hi-lo < MinCropPercent {
		mid := (lo + hi) / 2
		lo = mid - MinCropPercent/2.0
		hi = mid + MinCropPercent/2.0
		if lo < 0 {
			lo, hi = 0, MinCropPercent
		}
		if hi > 100 {
			lo, hi = 100-MinCropPercent, 100
		}
	}

	pos = math.Floor(lo*100) / 100
	size = math.Floor((hi-pos)*100) / 100
	if size < MinCropPercent {
		size = MinCropPercent
	}
	if pos+size > 100 {
		size = 100 - pos
	}
	return pos, size
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 luminance weights.
func grayValue(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114
}
