package gfx

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/vovakirdan/minisphere/internal/core"
)

// Canvas is an in-memory Renderer backed by an RGBA image.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a canvas of the given resolution cleared to black.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	c.Clear(core.Black)
	return c
}

// Size returns the resolution in pixels.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// At returns the color of one pixel.
func (c *Canvas) At(x, y int) core.Color {
	return core.FromColor(c.img.At(x, y))
}

// Clear fills the canvas with an opaque color.
func (c *Canvas) Clear(col core.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col.NRGBA()), image.Point{}, draw.Src)
}

// FillRect blends a solid color over r.
func (c *Canvas) FillRect(r core.Rect, col core.Color) {
	if col.A == 0 {
		return
	}
	r = r.Normalize()
	dst := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Intersect(c.img.Bounds())
	draw.Draw(c.img, dst, image.NewUniform(col.NRGBA()), image.Point{}, draw.Over)
}

// Blit draws img with its top-left corner at (x, y) using nearest-neighbor
// sampling. Scaling grows the image away from (x, y); rotation turns the
// scaled image about its center.
func (c *Canvas) Blit(img image.Image, x, y int, opts DrawOptions) {
	if img == nil {
		return
	}
	src := img.Bounds()
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return
	}

	scaleX, scaleY := opts.Scale()
	tint := opts.EffectiveTint()
	dw := float64(sw) * math.Abs(scaleX)
	dh := float64(sh) * math.Abs(scaleY)
	cx := float64(x) + dw/2
	cy := float64(y) + dh/2

	// Bounding box of the rotated destination rectangle.
	sin, cos := math.Sincos(opts.Angle)
	halfW := (math.Abs(dw*cos) + math.Abs(dh*sin)) / 2
	halfH := (math.Abs(dw*sin) + math.Abs(dh*cos)) / 2
	box := image.Rect(
		int(math.Floor(cx-halfW)), int(math.Floor(cy-halfH)),
		int(math.Ceil(cx+halfW)), int(math.Ceil(cy+halfH)),
	).Intersect(c.img.Bounds())

	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			// Inverse-rotate the pixel center back into the unrotated rect.
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			ux := dx*cos + dy*sin + dw/2
			uy := -dx*sin + dy*cos + dh/2
			if ux < 0 || uy < 0 || ux >= dw || uy >= dh {
				continue
			}
			sx := int(ux / math.Abs(scaleX))
			sy := int(uy / math.Abs(scaleY))
			if opts.FlipV {
				sy = sh - 1 - sy
			}
			pixel := core.FromColor(img.At(src.Min.X+sx, src.Min.Y+sy)).Modulate(tint)
			if pixel.A == 0 {
				continue
			}
			c.blend(px, py, pixel)
		}
	}
}

// blend composites a straight-alpha color over one destination pixel.
func (c *Canvas) blend(x, y int, src core.Color) {
	if src.A == 255 {
		c.img.SetRGBA(x, y, color.RGBA{R: src.R, G: src.G, B: src.B, A: 255})
		return
	}
	dst := c.img.RGBAAt(x, y)
	a := uint32(src.A)
	inv := 255 - a
	c.img.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: uint8(a + uint32(dst.A)*inv/255),
	})
}
