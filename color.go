package quill

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a packed 0xRRGGBB colour. Opacity is carried separately by the
// draw blueprints so one palette value can be drawn at any alpha.
type Color uint32

// RGB packs 8-bit components into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// FromColor packs a standard library colour, dropping its alpha.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB(n.R, n.G, n.B)
}

// Components returns the 8-bit red, green and blue components.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// RGBA returns straight (non-premultiplied) float components in [0, 1].
// alpha is clamped to [0, 1].
func (c Color) RGBA(alpha float32) [4]float32 {
	r, g, b := c.Components()
	return [4]float32{
		float32(r) / 255,
		float32(g) / 255,
		float32(b) / 255,
		clamp01(alpha),
	}
}

// Premultiplied returns float components with the colour channels
// multiplied by alpha, the form the GPU blend state expects.
func (c Color) Premultiplied(alpha float32) [4]float32 {
	v := c.RGBA(alpha)
	v[0] *= v[3]
	v[1] *= v[3]
	v[2] *= v[3]
	return v
}

// NRGBA converts c to a standard library colour with the given alpha.
func (c Color) NRGBA(alpha float32) color.NRGBA {
	r, g, b := c.Components()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math32.Round(clamp01(alpha) * 255))}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
