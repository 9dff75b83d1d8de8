package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
)

// halfBlock shows the upper pixel of a cell as foreground and the lower one
// as background.
const halfBlock = '▀'

type cellColors struct {
	fg, bg core.Color
}

// Presenter turns the engine's canvas into styled terminal text. Each
// terminal cell shows two vertically stacked pixels, which makes pixels
// roughly square.
type Presenter struct {
	renderer *lipgloss.Renderer
	screen   *core.Screen
	styles   map[cellColors]lipgloss.Style
	status   lipgloss.Style
}

// NewPresenter creates a presenter for a cols x rows cell area. A nil
// renderer uses lipgloss' default one.
func NewPresenter(r *lipgloss.Renderer, cols, rows int) *Presenter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Presenter{
		renderer: r,
		screen:   core.NewScreen(cols, rows),
		styles:   make(map[cellColors]lipgloss.Style),
		status: r.NewStyle().
			Foreground(lipgloss.Color("#1a1a1a")).
			Background(lipgloss.Color("#b8b8b8")),
	}
}

// Screen returns the cell buffer of the last Present.
func (p *Presenter) Screen() *core.Screen {
	return p.screen
}

// Resize changes the cell area.
func (p *Presenter) Resize(cols, rows int) {
	p.screen.Resize(max(cols, 0), max(rows, 0))
}

// Present scales the canvas to fit the cell area, keeping its aspect ratio,
// and centers it. Nearest-neighbour sampling.
func (p *Presenter) Present(c *gfx.Canvas) {
	scr := p.screen
	blank := core.Cell{Rune: ' ', Fg: core.Black, Bg: core.Black}
	for y := range scr.Height() {
		for x := range scr.Width() {
			scr.SetCell(x, y, blank)
		}
	}

	cw, ch := c.Size()
	availW, availH := scr.Width(), scr.Height()*2
	if cw <= 0 || ch <= 0 || availW <= 0 || availH <= 0 {
		return
	}

	var outW, outH int
	if availW*ch <= availH*cw {
		outW, outH = availW, ch*availW/cw
	} else {
		outW, outH = cw*availH/ch, availH
	}
	if outW <= 0 || outH <= 0 {
		return
	}

	rows := (outH + 1) / 2
	ox := (scr.Width() - outW) / 2
	oy := (scr.Height() - rows) / 2
	for cy := range rows {
		top := 2 * cy * ch / outH
		bottom := -1
		if 2*cy+1 < outH {
			bottom = (2*cy + 1) * ch / outH
		}
		for cx := range outW {
			sx := cx * cw / outW
			cell := core.Cell{Rune: halfBlock, Fg: opaque(c.At(sx, top)), Bg: core.Black}
			if bottom >= 0 {
				cell.Bg = opaque(c.At(sx, bottom))
			}
			scr.SetCell(ox+cx, oy+cy, cell)
		}
	}
}

func opaque(c core.Color) core.Color {
	c.A = 255
	return c
}

func (p *Presenter) style(fg, bg core.Color) lipgloss.Style {
	key := cellColors{fg, bg}
	if s, ok := p.styles[key]; ok {
		return s
	}
	s := p.renderer.NewStyle().
		Foreground(lipgloss.Color(fg.Hex())).
		Background(lipgloss.Color(bg.Hex()))
	p.styles[key] = s
	return s
}

// Render converts the screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func (p *Presenter) Render() string {
	s := p.screen
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Fg != start.Fg || cell.Bg != start.Bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(p.style(start.Fg, start.Bg).Render(run.String()))
		}
	}
	return sb.String()
}

// StatusBar renders one line with left and right aligned text.
func (p *Presenter) StatusBar(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return p.status.Width(max(width, 0)).MaxWidth(max(width, 0)).
		Render(left + strings.Repeat(" ", gap) + right)
}
