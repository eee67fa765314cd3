package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// createInMemoryImage creates a solid-colour image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = red
			} else if x >= width/2 && y < height/2 {
				c = green
			} else if x < width/2 && y >= height/2 {
				c = blue
			} else {
				c = white
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createCoordinateImage encodes each pixel's position in its colour so
// copied regions can be traced back to their source offset.
func createCoordinateImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, coordinateColor(x, y))
		}
	}
	return img
}

func coordinateColor(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x % 251), G: uint8(y % 241), B: uint8((x + 2*y) % 239), A: 255}
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// pixel returns the 8-bit non-premultiplied colour at (x, y).
func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writeTempPNG writes img to a temporary PNG file and registers its removal.
func writeTempPNG(t *testing.T, img image.Image) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test-image-*.png")
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return f.Name()
}
