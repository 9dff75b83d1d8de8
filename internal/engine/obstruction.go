package engine

import (
	"github.com/vovakirdan/minisphere/internal/core"
)

// obstruction is the result of a collision query.
type obstruction struct {
	obstructed bool
	person     *Person // Person in the way, if any
	tile       int     // Tile in the way, or -1
}

// obstructionAt tests p's footprint placed at (x, y) against other persons
// on its layer, the layer's obstruction map and the obstruction maps of the
// tiles under it. On repeating maps all positions are wrapped into the map
// first. It has no side effects.
func (e *Engine) obstructionAt(p *Person, x, y float64) obstruction {
	res := obstruction{tile: -1}
	myBase := p.baseAt(e.wrapXY(x, y))

	if !p.ignoreAllPersons {
		for _, other := range e.persons {
			if other == p || other.layer != p.layer {
				continue
			}
			if e.isFollowing(other, p) || isIgnored(p, other) {
				continue
			}
			if myBase.Intersects(other.baseAt(e.wrapXY(other.x, other.y))) {
				res.obstructed = true
				res.person = other
				return res
			}
		}
	}

	m := e.mp
	if m == nil || p.layer < 0 || p.layer >= len(m.layers) {
		return res
	}
	if m.layers[p.layer].obsmap.TestRect(myBase) {
		res.obstructed = true
	}

	if p.ignoreAllTiles {
		return res
	}
	tileW, tileH := m.tileset.TileSize()
	x1 := core.FloorDiv(myBase.X1, tileW)
	y1 := core.FloorDiv(myBase.Y1, tileH)
	x2 := x1 + myBase.Width()/tileW + 2
	y2 := y1 + myBase.Height()/tileH + 2
	for tx := x1; tx < x2; tx++ {
		for ty := y1; ty < y2; ty++ {
			index := m.tileAt(tx, ty, p.layer)
			local := myBase.Translate(-tx*tileW, -ty*tileH)
			if obs := m.tileset.Obsmap(index); obs != nil && obs.TestRect(local) {
				res.obstructed = true
				res.tile = index
				return res
			}
		}
	}
	return res
}
