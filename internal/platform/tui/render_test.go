package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
)

var (
	red  = core.RGBA(255, 0, 0, 255)
	blue = core.RGBA(0, 0, 255, 255)
)

func TestPresentHalfBlocks(t *testing.T) {
	c := gfx.NewCanvas(4, 4)
	c.Clear(blue)
	c.FillRect(core.NewRect(0, 0, 4, 2), red)

	p := NewPresenter(nil, 4, 2)
	p.Present(c)
	scr := p.Screen()

	tests := []struct {
		x, y   int
		fg, bg core.Color
	}{
		{0, 0, red, red},
		{3, 0, red, red},
		{0, 1, blue, blue},
		{3, 1, blue, blue},
	}
	for _, tt := range tests {
		cell := scr.GetCell(tt.x, tt.y)
		if cell.Rune != halfBlock || cell.Fg != tt.fg || cell.Bg != tt.bg {
			t.Errorf("cell(%d,%d) = %+v, expected %v over %v", tt.x, tt.y, cell, tt.fg, tt.bg)
		}
	}
}

func TestPresentSplitsCellRows(t *testing.T) {
	c := gfx.NewCanvas(2, 2)
	c.Clear(blue)
	c.FillRect(core.NewRect(0, 0, 2, 1), red)

	p := NewPresenter(nil, 2, 1)
	p.Present(c)
	cell := p.Screen().GetCell(1, 0)
	if cell.Fg != red || cell.Bg != blue {
		t.Errorf("cell = %+v, expected red over blue", cell)
	}
}

func TestPresentKeepsAspect(t *testing.T) {
	c := gfx.NewCanvas(2, 2)
	c.Clear(red)

	// 8x2 cells hold 8x4 pixels: the square canvas becomes 4x4 pixels,
	// centered with two blank columns each side.
	p := NewPresenter(nil, 8, 2)
	p.Present(c)
	scr := p.Screen()
	for x := range 8 {
		cell := scr.GetCell(x, 0)
		inside := x >= 2 && x < 6
		if inside && cell.Fg != red {
			t.Errorf("cell(%d,0) = %+v, expected the canvas", x, cell)
		}
		if !inside && cell.Rune != ' ' {
			t.Errorf("cell(%d,0) = %+v, expected a blank border", x, cell)
		}
	}
}

func TestPresentTinyArea(t *testing.T) {
	c := gfx.NewCanvas(320, 240)
	p := NewPresenter(nil, 0, 0)
	p.Present(c) // must not panic
	p.Resize(2, 1)
	p.Present(c)
	if cell := p.Screen().GetCell(0, 0); cell.Rune != halfBlock || cell.Bg != core.Black {
		t.Errorf("cell = %+v, expected a half block over black", cell)
	}
}

func TestRenderGroupsRuns(t *testing.T) {
	c := gfx.NewCanvas(4, 4)
	c.Clear(blue)
	c.FillRect(core.NewRect(0, 0, 2, 4), red)

	p := NewPresenter(nil, 4, 2)
	p.Present(c)
	out := p.Render()

	if n := strings.Count(out, string(halfBlock)); n != 8 {
		t.Errorf("Render() has %d half blocks, expected 8", n)
	}
	if lines := strings.Count(out, "\n") + 1; lines != 2 {
		t.Errorf("Render() has %d lines, expected 2", lines)
	}
	if len(p.styles) != 2 {
		t.Errorf("Render() built %d styles, expected one per color pair (2)", len(p.styles))
	}
}

func TestStatusBarWidth(t *testing.T) {
	p := NewPresenter(nil, 40, 10)
	bar := p.StatusBar(40, "Quest  town.rmp", "frame 12")
	if w := lipgloss.Width(bar); w != 40 {
		t.Errorf("StatusBar() width = %d, expected 40", w)
	}
	if !strings.Contains(bar, "town.rmp") || !strings.Contains(bar, "frame 12") {
		t.Errorf("StatusBar() = %q, expected both sides", bar)
	}
}
