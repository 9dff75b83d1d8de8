// Package gfx is the drawing service consumed by the map engine: tile and
// sprite images are blitted with a tint, optional vertical flip for
// reflections, scaling and rotation, and color masks are filled over the
// whole view.
package gfx

import (
	"image"

	"github.com/vovakirdan/minisphere/internal/core"
)

// DrawOptions modify a single blit.
type DrawOptions struct {
	Tint   core.Color // Multiplied into every source pixel; zero value means white
	FlipV  bool       // Mirror vertically (reflective layers)
	ScaleX float64    // Horizontal scale; 0 means 1
	ScaleY float64    // Vertical scale; 0 means 1
	Angle  float64    // Rotation in radians about the image center
}

// Scale returns the effective scale factors.
func (o DrawOptions) Scale() (float64, float64) {
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// EffectiveTint returns the tint, treating the zero value as white.
func (o DrawOptions) EffectiveTint() core.Color {
	if o.Tint == (core.Color{}) {
		return core.White
	}
	return o.Tint
}

// Renderer is the target the engine draws a frame onto.
type Renderer interface {
	// Size returns the resolution in pixels.
	Size() (w, h int)

	// Blit draws img with its top-left corner at (x, y).
	Blit(img image.Image, x, y int, opts DrawOptions)

	// FillRect blends a solid color over r.
	FillRect(r core.Rect, c core.Color)
}
