package gfx

import (
	"image"

	"github.com/vovakirdan/minisphere/internal/core"
)

// OpKind distinguishes recorded draw calls.
type OpKind int

const (
	OpBlit OpKind = iota
	OpFill
)

// Op is one recorded draw call.
type Op struct {
	Kind  OpKind
	Image image.Image
	X, Y  int
	Opts  DrawOptions
	Rect  core.Rect
	Color core.Color
}

// Recorder is a Renderer that remembers every call instead of drawing.
// Headless runs and tests use it to observe what a frame would draw.
type Recorder struct {
	W, H int
	Ops  []Op
}

// NewRecorder creates a recorder with the given resolution.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

// Size returns the resolution in pixels.
func (r *Recorder) Size() (int, int) {
	return r.W, r.H
}

// Blit records a blit.
func (r *Recorder) Blit(img image.Image, x, y int, opts DrawOptions) {
	r.Ops = append(r.Ops, Op{Kind: OpBlit, Image: img, X: x, Y: y, Opts: opts})
}

// FillRect records a fill.
func (r *Recorder) FillRect(rect core.Rect, c core.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Color: c})
}

// Blits returns only the recorded blits.
func (r *Recorder) Blits() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpBlit {
			out = append(out, op)
		}
	}
	return out
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}
