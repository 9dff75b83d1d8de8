// Package obsmap implements obstruction maps: flat lists of line segments
// that block person movement, owned by a map layer or by a single tile.
package obsmap

import "github.com/vovakirdan/minisphere/internal/core"

// ObsMap is an unordered set of obstruction segments.
// A nil *ObsMap is valid and obstructs nothing.
type ObsMap struct {
	lines []core.Rect
}

// New creates an empty obstruction map.
func New() *ObsMap {
	return &ObsMap{}
}

// AddLine appends a segment. Degenerate rects are how segments are stored,
// so the argument is kept exactly as given.
func (m *ObsMap) AddLine(line core.Rect) {
	m.lines = append(m.lines, line)
}

// Len returns the number of stored segments.
func (m *ObsMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.lines)
}

// Lines returns a copy of the stored segments.
func (m *ObsMap) Lines() []core.Rect {
	if m == nil {
		return nil
	}
	out := make([]core.Rect, len(m.lines))
	copy(out, m.lines)
	return out
}

// TestLine reports whether line crosses or touches any stored segment.
func (m *ObsMap) TestLine(line core.Rect) bool {
	if m == nil {
		return false
	}
	for _, seg := range m.lines {
		if core.LinesIntersect(line, seg) {
			return true
		}
	}
	return false
}

// TestRect reports whether any of the four edges of rect crosses a stored
// segment. A rect lying entirely inside a closed obstruction shape, without
// touching its outline, is not obstructed; existing game content relies on
// actors being able to stand inside decorative outlines.
func (m *ObsMap) TestRect(rect core.Rect) bool {
	if m == nil {
		return false
	}
	for _, edge := range rect.Edges() {
		if m.TestLine(edge) {
			return true
		}
	}
	return false
}
