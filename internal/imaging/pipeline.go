package imaging

import (
	"context"
	"image"
)

// Edit describes one pass of the pipeline. Crop is nil when cropping is off.
type Edit struct {
	Rotation int
	Adjust   ColorAdjustment
	Crop     *CropRect
}

// Validate checks the edit before any pixel work is done.
func (e Edit) Validate() error {
	if err := e.Adjust.Validate(); err != nil {
		return err
	}
	if e.Crop != nil {
		if NormalizeRotation(e.Rotation) != 0 {
			return ErrCropRequiresUpright
		}
		if err := e.Crop.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline runs decode -> transform -> crop -> encode.
type Pipeline struct {
	Encoder Encoder
}

// NewPipeline creates a pipeline encoding lossy output at quality.
func NewPipeline(quality int) *Pipeline {
	return &Pipeline{Encoder: Encoder{Quality: quality}}
}

// Run decodes src and applies the edit. The output keeps the source's media
// type when the encoder supports it.
func (p *Pipeline) Run(ctx context.Context, src *ImageSource, edit Edit) (*EditResult, error) {
	if err := edit.Validate(); err != nil {
		return nil, err
	}
	img, err := Decode(ctx, src)
	if err != nil {
		return nil, err
	}
	return p.RunDecoded(img, src.MimeType(), edit)
}

// RunDecoded applies the edit to an already decoded surface.
func (p *Pipeline) RunDecoded(img image.Image, mimeType string, edit Edit) (*EditResult, error) {
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	out := Transform(img, edit.Rotation, edit.Adjust)
	if edit.Crop != nil {
		cropped, err := Crop(out, *edit.Crop)
		if err != nil {
			return nil, err
		}
		out = cropped
	}

	return p.Encoder.Encode(out, mimeType)
}
