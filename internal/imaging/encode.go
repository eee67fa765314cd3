package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the lossy compression quality used when none is set.
const DefaultQuality = 90

// EditResult is the encoded output of an edit, ready to replace the
// caller's original file reference.
type EditResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64"`
	Data        []byte `json:"-"`
}

// Encoder serialises surfaces to compressed bytes.
type Encoder struct {
	// Quality is the JPEG quality (1-100). Zero means DefaultQuality.
	Quality int
}

var encodeFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	"image/bmp":  imaging.BMP,
	"image/tiff": imaging.TIFF,
}

// OutputMimeType returns the media type Encode produces for a requested type.
// Types the encoder cannot write fall back to JPEG.
func OutputMimeType(mimeType string) string {
	mimeType = normalizeMimeType(mimeType)
	if _, ok := encodeFormats[mimeType]; ok {
		return mimeType
	}
	return "image/jpeg"
}

// Encode writes img in the format matching mimeType.
func (e Encoder) Encode(img image.Image, mimeType string) (*EditResult, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptySurface
	}

	out := OutputMimeType(mimeType)
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, encodeFormats[out], imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", out, err)
	}

	return &EditResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		MimeType:    out,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Data:        buf.Bytes(),
	}, nil
}
