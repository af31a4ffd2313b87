package gfx

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight-alpha color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGBA8 returns the color as 8-bit non-premultiplied components.
func (c Color) RGBA8() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.RGBA8().RGBA()
}

// Opaque returns c with full alpha.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// ParseColor parses a "#rrggbb" or "#rgb" hex color into an opaque Color.
func ParseColor(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("gfx: parse color %q: %w", s, err)
	}
	cf = cf.Clamped()
	return Color{R: float32(cf.R), G: float32(cf.G), B: float32(cf.B), A: 1}, nil
}

// MustParseColor is like ParseColor but panics on error.
// Use this for compile-time constant colors.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
