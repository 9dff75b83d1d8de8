package engine

import (
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/spriteset"
)

// render draws every visible layer bottom to top, each followed by its
// persons and its render script, then the color mask and the render script.
func (e *Engine) render() error {
	m := e.mp
	screenW, screenH := e.renderer.Size()
	tileW, tileH := m.tileset.TileSize()

	for i, l := range m.layers {
		if !l.visible {
			continue
		}
		offX, offY := e.layerOffset(i)
		layerW, layerH := l.width*tileW, l.height*tileH

		if l.reflective {
			e.renderPersonsTiled(i, true, offX, offY, layerW, layerH, screenW, screenH)
		}
		e.renderTiles(i, offX, offY, screenW, screenH)
		e.renderPersonsTiled(i, false, offX, offY, layerW, layerH, screenW, screenH)

		if err := l.renderScript.Run(false); err != nil || e.mp != m {
			return err
		}
	}

	if e.colorMask.A > 0 {
		e.renderer.FillRect(core.NewRect(0, 0, screenW, screenH), e.colorMask)
	}
	return e.renderScript.Run(false)
}

// renderTiles draws the cells of a layer that fall on screen. offX, offY is
// the layer pixel shown at the screen's top left.
func (e *Engine) renderTiles(layerIndex, offX, offY, screenW, screenH int) {
	m := e.mp
	l := m.layers[layerIndex]
	tileW, tileH := m.tileset.TileSize()
	firstX := core.FloorDiv(offX, tileW)
	firstY := core.FloorDiv(offY, tileH)
	shiftX := offX - firstX*tileW
	shiftY := offY - firstY*tileH

	for y := 0; y < screenH/tileH+2; y++ {
		for x := 0; x < screenW/tileW+2; x++ {
			index := m.tileAt(firstX+x, firstY+y, layerIndex)
			m.tileset.Draw(e.renderer, l.mask, x*tileW-shiftX, y*tileH-shiftY, index)
		}
	}
}

// renderPersonsTiled draws a layer's persons, repeated across the screen on
// repeating maps so that small maps tile their actors along with their
// tiles.
func (e *Engine) renderPersonsTiled(layerIndex int, flipped bool, offX, offY, layerW, layerH, screenW, screenH int) {
	if !e.mp.repeating || layerW <= 0 || layerH <= 0 {
		e.renderPersons(layerIndex, flipped, offX, offY)
		return
	}
	for y := 0; y < screenH/layerH+2; y++ {
		for x := 0; x < screenW/layerW+2; x++ {
			e.renderPersons(layerIndex, flipped, offX-x*layerW, offY-y*layerH)
		}
	}
}

// renderPersons draws the visible persons on a layer in sort order. A
// person's base center lands on its map position; flipped persons are
// mirrored about that line for reflections.
func (e *Engine) renderPersons(layerIndex int, flipped bool, offX, offY int) {
	for _, p := range e.persons {
		if !p.visible || p.layer != layerIndex {
			continue
		}
		x, y := e.normalizedXY(p)
		x += p.xOffset - offX
		y += p.yOffset - offY

		base := p.sprite.Base().Zoom(p.scaleX, p.scaleY)
		baseCX, baseCY := base.Center()
		h := int(float64(p.sprite.Height()) * p.scaleY)

		top := y - baseCY
		if flipped {
			top = y + baseCY - h
		}
		p.sprite.Draw(e.renderer, p.direction, p.frame, x-baseCX, top, spriteset.DrawOptions{
			Mask:    p.mask,
			Flipped: flipped,
			Theta:   p.theta,
			ScaleX:  p.scaleX,
			ScaleY:  p.scaleY,
		})
	}
}
