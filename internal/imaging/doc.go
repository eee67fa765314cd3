// Package imaging implements the image editing pipeline used by the document
// editor: decode, transform (rotate + colour adjust), crop and encode.
//
// Every stage allocates a fresh *image.NRGBA surface; no stage mutates its
// input, so a surface is owned exclusively by the edit that produced it.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y growing downward. Crop rectangles are expressed in
// percentages (0-100) of the displayed, unrotated image.
//
// # Rotation
//
// Rotation is measured in degrees, clockwise on screen, and is normalised
// into [0, 360). The transformed surface is sized to the axis-aligned
// bounding box of the rotated source:
//
//	newWidth  = width·|cos θ| + height·|sin θ|
//	newHeight = width·|sin θ| + height·|cos θ|
//
// so no corner of the source is ever clipped. Pixels outside the rotated
// source are fully transparent.
//
// # Colour Adjustment
//
// Brightness, contrast and saturation are percentages in [0, 200] where 100
// is the identity. They behave like the CSS filter chain
// "brightness() contrast() saturate()".
//
// # Cropping
//
// A crop rectangle is only meaningful at rotation 0 because it is defined
// against the pre-rotation frame. Pipeline.Run refuses to crop a rotated
// image and returns ErrCropRequiresUpright.
//
// # Error Handling
//
// Decoding failures are reported as *DecodeError. Invalid adjustments and
// crop rectangles are reported as plain errors wrapping ErrInvalidEdit.
package imaging
