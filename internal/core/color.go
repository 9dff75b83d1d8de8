package core

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is a straight-alpha RGBA color, used for tint masks on tiles, layers
// and persons and for the map's global color mask.
type Color struct {
	R, G, B, A uint8
}

// Predefined colors.
var (
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA creates a color from its components.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Mix blends two colors with the given weights. With weights (p, n-p) this is
// a linear interpolation from b to a over n steps.
func Mix(a, b Color, wa, wb float64) Color {
	total := wa + wb
	if total <= 0 {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8((float64(x)*wa + float64(y)*wb) / total)
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Modulate multiplies every channel of c by the matching channel of tint.
func (c Color) Modulate(tint Color) Color {
	mul := func(x, y uint8) uint8 {
		return uint8(uint16(x) * uint16(y) / 255)
	}
	return Color{R: mul(c.R, tint.R), G: mul(c.G, tint.G), B: mul(c.B, tint.B), A: mul(c.A, tint.A)}
}

// NRGBA converts to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts any standard library color to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Hex returns the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns a readable representation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

// ParseColor converts "#rrggbb", "#rrggbbaa" or a basic color name to a Color.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white":
		return White, true
	case "black":
		return Black, true
	case "transparent", "none":
		return Transparent, true
	}

	var r, g, b, a uint8 = 0, 0, 0, 255
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return Transparent, false
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return Transparent, false
		}
	default:
		return Transparent, false
	}
	return Color{R: r, G: g, B: b, A: a}, true
}
