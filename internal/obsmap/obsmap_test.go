package obsmap

import (
	"testing"

	"github.com/vovakirdan/minisphere/internal/core"
)

func TestTestRectEdgeCoincides(t *testing.T) {
	m := New()
	m.AddLine(core.Line(0, 0, 8, 0))

	if !m.TestRect(core.Rect{X1: 0, Y1: 0, X2: 8, Y2: 8}) {
		t.Error("TestRect() = false, expected true for a rect whose top edge lies on the segment")
	}
	if m.TestRect(core.Rect{X1: 0, Y1: 1, X2: 8, Y2: 8}) {
		t.Error("TestRect() = true, expected false for a rect below the segment")
	}
}

func TestTestRectInsideClosedPolygon(t *testing.T) {
	m := New()
	// A closed square outline from (0,0) to (32,32).
	m.AddLine(core.Line(0, 0, 32, 0))
	m.AddLine(core.Line(32, 0, 32, 32))
	m.AddLine(core.Line(32, 32, 0, 32))
	m.AddLine(core.Line(0, 32, 0, 0))

	if m.TestRect(core.Rect{X1: 8, Y1: 8, X2: 16, Y2: 16}) {
		t.Error("TestRect() = true, expected false for a rect enclosed without crossing any edge")
	}
	if !m.TestRect(core.Rect{X1: 28, Y1: 8, X2: 36, Y2: 16}) {
		t.Error("TestRect() = false, expected true for a rect straddling the right edge")
	}
}

func TestTestLine(t *testing.T) {
	m := New()
	m.AddLine(core.Line(10, 0, 10, 20))

	tests := []struct {
		name     string
		line     core.Rect
		expected bool
	}{
		{"crosses", core.Line(0, 10, 20, 10), true},
		{"stops short", core.Line(0, 10, 9, 10), false},
		{"touches", core.Line(0, 10, 10, 10), true},
		{"past the end", core.Line(0, 25, 20, 25), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.TestLine(tc.line); got != tc.expected {
				t.Errorf("TestLine() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestNilObsMap(t *testing.T) {
	var m *ObsMap
	if m.TestRect(core.NewRect(0, 0, 10, 10)) || m.TestLine(core.Line(0, 0, 1, 1)) {
		t.Error("nil obstruction map should never obstruct")
	}
	if m.Len() != 0 || m.Lines() != nil {
		t.Error("nil obstruction map should be empty")
	}
}
