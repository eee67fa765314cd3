package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEdit is wrapped by every validation failure of edit parameters.
	ErrInvalidEdit = errors.New("invalid edit parameters")

	// ErrCropRequiresUpright is returned when a crop is requested while the
	// image is rotated.
	ErrCropRequiresUpright = errors.New("cropping is only available when the image is not rotated")

	// ErrEmptySurface is returned when encoding a zero-area surface.
	ErrEmptySurface = errors.New("surface has no pixels")
)

// DecodeError reports an image source that could not be decoded.
type DecodeError struct {
	MimeType string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.MimeType == "" {
		return fmt.Sprintf("failed to decode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode %s image: %v", e.MimeType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
