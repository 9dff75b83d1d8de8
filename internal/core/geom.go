// Package core provides fundamental types and utilities for the engine.
// It contains no external dependencies (especially no Bubble Tea) to keep
// map and person logic pure and testable.
package core

// Rect is an axis-aligned box stored as two corners.
// A degenerate rect (zero width or height) doubles as a line segment, which is
// how obstruction maps store their lines.
type Rect struct {
	X1, Y1 int
	X2, Y2 int
}

// NewRect creates a rectangle from a position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Line creates a segment from (x1, y1) to (x2, y2).
func Line(x1, y1, x2, y2 int) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int {
	return r.Y2 - r.Y1
}

// Normalize returns r with its corners swapped as needed so that X1 <= X2
// and Y1 <= Y2.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Translate returns r offset by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Zoom scales all four coordinates, truncating toward zero.
func (r Rect) Zoom(scaleX, scaleY float64) Rect {
	return Rect{
		X1: int(float64(r.X1) * scaleX),
		Y1: int(float64(r.Y1) * scaleY),
		X2: int(float64(r.X2) * scaleX),
		Y2: int(float64(r.Y2) * scaleY),
	}
}

// Intersects returns true if this rectangle overlaps with another.
// Edges that merely touch do not count as overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X1 < other.X2 && r.X2 > other.X1 && r.Y1 < other.Y2 && r.Y2 > other.Y1
}

// Contains returns true if the point (x, y) is inside this rectangle.
// The right and bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X1 + r.Width()/2, r.Y1 + r.Height()/2
}

// Edges returns the four boundary segments of r: top, right, bottom, left.
func (r Rect) Edges() [4]Rect {
	return [4]Rect{
		Line(r.X1, r.Y1, r.X2, r.Y1),
		Line(r.X2, r.Y1, r.X2, r.Y2),
		Line(r.X2, r.Y2, r.X1, r.Y2),
		Line(r.X1, r.Y2, r.X1, r.Y1),
	}
}

// LinesIntersect reports whether segments a and b share at least one point.
// Collinear overlap and touching endpoints both count.
func LinesIntersect(a, b Rect) bool {
	o1 := orientation(a.X1, a.Y1, a.X2, a.Y2, b.X1, b.Y1)
	o2 := orientation(a.X1, a.Y1, a.X2, a.Y2, b.X2, b.Y2)
	o3 := orientation(b.X1, b.Y1, b.X2, b.Y2, a.X1, a.Y1)
	o4 := orientation(b.X1, b.Y1, b.X2, b.Y2, a.X2, a.Y2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	switch {
	case o1 == 0 && onSegment(a, b.X1, b.Y1):
		return true
	case o2 == 0 && onSegment(a, b.X2, b.Y2):
		return true
	case o3 == 0 && onSegment(b, a.X1, a.Y1):
		return true
	case o4 == 0 && onSegment(b, a.X2, a.Y2):
		return true
	}
	return false
}

// orientation returns 0 for collinear points, 1 for clockwise and 2 for
// counterclockwise.
func orientation(px, py, qx, qy, rx, ry int) int {
	v := (qy-py)*(rx-qx) - (qx-px)*(ry-qy)
	switch {
	case v == 0:
		return 0
	case v > 0:
		return 1
	default:
		return 2
	}
}

// onSegment assumes (x, y) is collinear with seg.
func onSegment(seg Rect, x, y int) bool {
	return x >= Min(seg.X1, seg.X2) && x <= Max(seg.X1, seg.X2) &&
		y >= Min(seg.Y1, seg.Y2) && y <= Max(seg.Y1, seg.Y2)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Wrap maps val into [0, n) the way a repeating map does, including for
// negative values. n must be positive.
func Wrap(val, n int) int {
	return (val%n + n) % n
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
