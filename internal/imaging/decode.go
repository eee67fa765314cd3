package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decode loads an ImageSource into a fresh pixel surface with the image's
// natural dimensions. EXIF orientation is applied the way browsers display
// the image.
func Decode(ctx context.Context, src *ImageSource) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, &DecodeError{Err: fmt.Errorf("no image source")}
	}
	return decodeSource(src)
}

func decodeSource(src *ImageSource) (*image.NRGBA, error) {
	if src.Size() == 0 {
		return nil, &DecodeError{MimeType: src.MimeType(), Err: fmt.Errorf("empty payload")}
	}

	img, err := imaging.Decode(bytes.NewReader(src.Bytes()), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{MimeType: src.MimeType(), Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &DecodeError{MimeType: src.MimeType(), Err: fmt.Errorf("image has zero area")}
	}

	return imaging.Clone(img), nil
}
