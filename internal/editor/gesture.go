package editor

import (
	"math"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// DragKind identifies which part of the crop rectangle a gesture moves.
type DragKind string

const (
	DragMove     DragKind = "move"
	DragResizeSE DragKind = "resize-se"
)

// Point is a pointer position in container pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the rendered size of the container the crop rectangle is drawn in.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Gesture is the snapshot taken when a drag starts. Every update is computed
// from this snapshot rather than from the previous frame.
type Gesture struct {
	Kind     DragKind
	Start    Point
	Origin   imaging.CropRect
	Viewport Viewport
}

// BeginGesture snapshots rect at the pointer position start.
func BeginGesture(kind DragKind, start Point, rect imaging.CropRect, vp Viewport) Gesture {
	return Gesture{Kind: kind, Start: start, Origin: rect, Viewport: vp}
}

// Update returns the rectangle for the pointer at p.
func (g Gesture) Update(p Point) imaging.CropRect {
	dx := (p.X - g.Start.X) / g.Viewport.Width * 100
	dy := (p.Y - g.Start.Y) / g.Viewport.Height * 100

	r := g.Origin
	switch g.Kind {
	case DragMove:
		r.X = clamp(g.Origin.X+dx, 0, 100-g.Origin.W)
		r.Y = clamp(g.Origin.Y+dy, 0, 100-g.Origin.H)
	case DragResizeSE:
		r.W = clamp(g.Origin.W+dx, imaging.MinCropPercent, 100-g.Origin.X)
		r.H = clamp(g.Origin.H+dy, imaging.MinCropPercent, 100-g.Origin.Y)
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
