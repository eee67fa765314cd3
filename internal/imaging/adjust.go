package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Percentage bounds for every ColorAdjustment component.
const (
	MinAdjustPercent      = 0
	MaxAdjustPercent      = 200
	IdentityAdjustPercent = 100
)

// ColorAdjustment holds brightness, contrast and saturation as percentages.
// 100 is the identity for each component.
type ColorAdjustment struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
}

// IdentityAdjustment returns the no-op adjustment.
func IdentityAdjustment() ColorAdjustment {
	return ColorAdjustment{
		Brightness: IdentityAdjustPercent,
		Contrast:   IdentityAdjustPercent,
		Saturation: IdentityAdjustPercent,
	}
}

// IsIdentity reports whether applying the adjustment would change nothing.
func (a ColorAdjustment) IsIdentity() bool {
	return a == IdentityAdjustment()
}

// Validate checks every component is within [0, 200].
func (a ColorAdjustment) Validate() error {
	for _, c := range []struct {
		name  string
		value int
	}{
		{"brightness", a.Brightness},
		{"contrast", a.Contrast},
		{"saturation", a.Saturation},
	} {
		if c.value < MinAdjustPercent || c.value > MaxAdjustPercent {
			return fmt.Errorf("%w: %s %d%% outside %d-%d", ErrInvalidEdit, c.name, c.value, MinAdjustPercent, MaxAdjustPercent)
		}
	}
	return nil
}

// ApplyAdjustment returns a new surface with the colour filter applied in
// the order brightness, contrast, saturation.
//
// Every step works on straight (non-premultiplied) channels in 0..1 and
// clamps its result. Brightness scales each channel by b/100. Contrast maps
// v -> (v - 0.5)·c/100 + 0.5. Saturation scales the HSL saturation by
// s/100. Alpha is never changed.
func ApplyAdjustment(img image.Image, a ColorAdjustment) *image.NRGBA {
	if a.IsIdentity() {
		return imaging.Clone(img)
	}
	out := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return adjustPixel(c, a)
	})
	return imaging.Clone(out)
}

// adjustPixel applies a to one premultiplied pixel.
func adjustPixel(c color.RGBA, a ColorAdjustment) color.RGBA {
	if c.A == 0 {
		return c
	}
	alpha := float64(c.A) / 255
	brightness := float64(a.Brightness) / 100
	contrast := float64(a.Contrast) / 100

	ch := [3]float64{
		float64(c.R) / 255 / alpha,
		float64(c.G) / 255 / alpha,
		float64(c.B) / 255 / alpha,
	}
	for i, v := range ch {
		v = clamp01(v * brightness)
		ch[i] = clamp01((v-0.5)*contrast + 0.5)
	}

	if a.Saturation != IdentityAdjustPercent {
		h, s, l := colorful.Color{R: ch[0], G: ch[1], B: ch[2]}.Hsl()
		s = clamp01(s * float64(a.Saturation) / 100)
		sat := colorful.Hsl(h, s, l).Clamped()
		ch = [3]float64{sat.R, sat.G, sat.B}
	}

	return color.RGBA{
		R: premultiply(ch[0], alpha, c.A),
		G: premultiply(ch[1], alpha, c.A),
		B: premultiply(ch[2], alpha, c.A),
		A: c.A,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// premultiply scales a straight channel by alpha, never exceeding a.
func premultiply(v, alpha float64, a uint8) uint8 {
	p := v*alpha*255 + 0.5
	if p > float64(a) {
		return a
	}
	return uint8(p)
}
