// Package editor implements interactive image editing sessions: rotation,
// colour adjustment and a draggable crop rectangle, committed through the
// imaging pipeline on Save.
//
// # States
//
// A session is in one of three modes:
//   - idle: crop mode off
//   - cropping: crop mode on, no pointer gesture active
//   - dragging: a move or resize-se gesture is active
//
// Pointer events drive the transitions. A press on the rectangle body starts
// a move, a press on the south-east handle starts a resize, and a release
// anywhere ends whichever gesture is active. Only those two gestures exist;
// the other three corners have no handles.
//
// # Drag Math
//
// Pointer deltas are converted to percentages of the rendered container
// (the Viewport) and applied to a snapshot of the rectangle taken when the
// gesture started, then clamped so the rectangle stays inside the image and
// never shrinks below imaging.MinCropPercent.
//
// # Rotation and Cropping
//
// Crop rectangles live in the unrotated frame, so crop mode is only
// available at rotation 0. Rotating a cropping session leaves crop mode and
// the session State carries a notice explaining why.
package editor
