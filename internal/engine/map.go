package engine

import (
	"fmt"
	"math"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/obsmap"
	"github.com/vovakirdan/minisphere/internal/rmp"
	"github.com/vovakirdan/minisphere/internal/script"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

// Map script slots.
const (
	OnEnter      = rmp.ScriptOnEnter
	OnLeave      = rmp.ScriptOnLeave
	OnLeaveNorth = rmp.ScriptOnLeaveNorth
	OnLeaveEast  = rmp.ScriptOnLeaveEast
	OnLeaveSouth = rmp.ScriptOnLeaveSouth
	OnLeaveWest  = rmp.ScriptOnLeaveWest

	numMapScripts = rmp.NumScripts
)

// layer is a loaded tile plane.
type layer struct {
	name         string
	width        int
	height       int
	tiles        []int
	visible      bool
	reflective   bool
	parallax     bool
	parallaxX    float64
	parallaxY    float64
	autoscrollX  float64
	autoscrollY  float64
	mask         core.Color
	obsmap       *obsmap.ObsMap
	renderScript *script.Script
}

// trigger fires its script when an input person steps onto it.
type trigger struct {
	x, y   int
	layer  int
	script *script.Script
}

// zone fires its script every interval pixels an input person walks in it.
type zone struct {
	bounds    core.Rect
	layer     int
	interval  int
	stepsLeft int
	script    *script.Script
}

// gameMap is the currently loaded map. It is rebuilt wholesale on every
// map change.
type gameMap struct {
	name      string
	width     int // In tiles
	height    int
	repeating bool
	originX   int
	originY   int
	origin    int // Layer
	tileset   *tileset.Tileset
	layers    []*layer
	persons   []rmp.Person
	triggers  []*trigger
	zones     []*zone
	scripts   [numMapScripts]*script.Script
	music     string
}

// loadMap reads and compiles a map without touching engine state.
func (e *Engine) loadMap(name string) (*gameMap, error) {
	file, err := e.assets.Map(name)
	if err != nil {
		return nil, err
	}
	ts := file.Tileset
	if ts == nil {
		if ts, err = e.assets.Tileset(name, file.TilesetFile); err != nil {
			return nil, err
		}
	}
	if ts.Len() == 0 {
		return nil, fmt.Errorf("map %s: tileset has no tiles", name)
	}

	m := &gameMap{
		name:      name,
		repeating: file.Repeating,
		originX:   file.StartX,
		originY:   file.StartY,
		origin:    file.StartLayer,
		tileset:   ts,
		persons:   file.Persons,
		music:     file.Music,
	}
	fail := func(err error) (*gameMap, error) {
		m.free()
		return nil, fmt.Errorf("map %s: %w", name, err)
	}

	for i, src := range file.Scripts {
		s, err := e.compile(fmt.Sprintf("%s:%s", name, mapScriptNames[i]), src)
		if err != nil {
			return fail(err)
		}
		m.scripts[i] = s
	}

	for i, fl := range file.Layers {
		for _, t := range fl.Tiles {
			if t >= ts.Len() {
				return fail(fmt.Errorf("layer %d references tile %d of %d", i, t, ts.Len()))
			}
		}
		m.layers = append(m.layers, &layer{
			name:        fl.Name,
			width:       fl.Width,
			height:      fl.Height,
			tiles:       append([]int(nil), fl.Tiles...),
			visible:     fl.Visible,
			reflective:  fl.Reflective,
			parallax:    fl.Parallax,
			parallaxX:   fl.ParallaxX,
			parallaxY:   fl.ParallaxY,
			autoscrollX: fl.AutoscrollX,
			autoscrollY: fl.AutoscrollY,
			mask:        core.White,
			obsmap:      fl.Obsmap(),
		})
		if !fl.Parallax || m.width == 0 {
			m.width = core.Max(m.width, fl.Width)
			m.height = core.Max(m.height, fl.Height)
		}
	}

	for i, t := range file.Triggers {
		s, err := e.compile(fmt.Sprintf("%s:trigger%d", name, i), t.Script)
		if err != nil {
			return fail(err)
		}
		m.triggers = append(m.triggers, &trigger{x: t.X, y: t.Y, layer: t.Layer, script: s})
	}

	for i, z := range file.Zones {
		s, err := e.compile(fmt.Sprintf("%s:zone%d", name, i), z.Script)
		if err != nil {
			return fail(err)
		}
		m.zones = append(m.zones, newZone(z.Bounds, z.Layer, z.Steps, s))
	}
	return m, nil
}

var mapScriptNames = [numMapScripts]string{"enter", "leave", "leave_north", "leave_east", "leave_south", "leave_west"}

func newZone(bounds core.Rect, layer, steps int, s *script.Script) *zone {
	if steps < 1 {
		steps = 1
	}
	return &zone{
		bounds:    bounds.Normalize(),
		layer:     layer,
		interval:  steps,
		stepsLeft: steps,
		script:    s,
	}
}

// free releases every script and the tileset.
func (m *gameMap) free() {
	for i := range m.scripts {
		m.scripts[i].Release()
	}
	for _, l := range m.layers {
		l.renderScript.Release()
	}
	for _, t := range m.triggers {
		t.script.Release()
	}
	for _, z := range m.zones {
		z.script.Release()
	}
	m.tileset.Release()
}

// pixelSize returns the map size in pixels.
func (m *gameMap) pixelSize() (int, int) {
	tw, th := m.tileset.TileSize()
	return m.width * tw, m.height * th
}

// tileAt returns the tile index at a cell, wrapping on repeating maps and
// parallax layers. Cells outside a non-wrapping layer are -1.
func (m *gameMap) tileAt(x, y, layerIndex int) int {
	l := m.layers[layerIndex]
	if m.repeating || l.parallax {
		x = core.Wrap(x, l.width)
		y = core.Wrap(y, l.height)
	}
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return -1
	}
	return l.tiles[x+y*l.width]
}

// validLayer reports whether i indexes a layer.
func (m *gameMap) validLayer(i int) bool {
	return i >= 0 && i < len(m.layers)
}

// mapOrigin returns the current map's start position, or zero with no map.
func (e *Engine) mapOrigin() (int, int, int) {
	if e.mp == nil {
		return 0, 0, 0
	}
	return e.mp.originX, e.mp.originY, e.mp.origin
}

// normalizedXY returns p's position wrapped into the map on repeating maps.
func (e *Engine) normalizedXY(p *Person) (int, int) {
	x, y := e.wrapXY(p.x, p.y)
	return int(x), int(y)
}

// wrapXY folds a map position into the map on repeating maps. Persons keep
// walking past the seam, so every position test goes through here.
func (e *Engine) wrapXY(x, y float64) (float64, float64) {
	if e.mp == nil || !e.mp.repeating {
		return x, y
	}
	w, h := e.mp.pixelSize()
	return wrapF(x, float64(w)), wrapF(y, float64(h))
}

// wrapPoint is wrapXY for whole pixels.
func (e *Engine) wrapPoint(x, y int) (int, int) {
	if e.mp == nil || !e.mp.repeating {
		return x, y
	}
	w, h := e.mp.pixelSize()
	return core.Wrap(x, w), core.Wrap(y, h)
}

func wrapF(v, n float64) float64 {
	if n <= 0 {
		return v
	}
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	return v
}

// changeMap loads a new map and runs the transition: leave scripts of the
// old map, person reset, map persons, camera to origin, enter scripts. A
// load failure leaves the old map in place; a script failure part way
// through leaves the engine between maps.
func (e *Engine) changeMap(name string, keepPersons bool) error {
	m, err := e.loadMap(name)
	if err != nil {
		e.log.Error("failed to load map", "map", name, "error", err)
		return err
	}

	if e.mp != nil {
		if err := e.callMapScript(OnLeave); err != nil {
			m.free()
			return err
		}
	}

	old := e.mp
	e.clearDelayScripts()
	e.mp = m
	if old != nil {
		old.free()
	}
	e.log.Info("changed map", "map", name, "layers", len(m.layers), "persons", len(m.persons))

	if err := e.resetPersons(keepPersons); err != nil {
		return err
	}
	if err := e.spawnMapPersons(m); err != nil {
		return err
	}

	e.cameraX, e.cameraY = m.originX, m.originY
	for i := range e.players {
		e.players[i].trigger = nil
		if p := e.playerPerson(i); p != nil {
			x, y := e.normalizedXY(p)
			e.players[i].trigger = e.triggerAt(x, y, p.layer)
		}
	}

	if err := e.callMapScript(OnEnter); err != nil {
		return err
	}
	e.frames = 0
	return nil
}

// spawnMapPersons creates the persons placed by the map file.
func (e *Engine) spawnMapPersons(m *gameMap) error {
	for _, info := range m.persons {
		sprite, err := e.assets.Spriteset(info.Spriteset)
		if err != nil {
			return fmt.Errorf("map %s: person %s: %w", m.name, info.Name, err)
		}
		p, err := e.createPerson(info.Name, sprite, false, nil)
		if err != nil {
			return err
		}
		if !e.personExists(p.id) {
			continue
		}
		p.x, p.y, p.layer = float64(info.X), float64(info.Y), info.Layer
		for which, src := range info.Scripts {
			if err := e.setPersonScript(p, which, fmt.Sprintf("%s:%s:%s", m.name, info.Name, personScriptNames[which]), src); err != nil {
				return err
			}
		}
		// The person's own create script was not compiled yet when
		// createPerson ran the default one.
		if err := e.callPersonScript(p, OnCreate, false); err != nil {
			return err
		}
	}
	e.sortPersons()
	return nil
}

var personScriptNames = [numPersonScripts]string{"create", "destroy", "touch", "talk", "generator"}

// callMapScript runs the default and then the map's script for a slot.
func (e *Engine) callMapScript(which int) error {
	if err := e.defaultMapScripts[which].Run(false); err != nil {
		return err
	}
	if e.mp == nil {
		return nil
	}
	return e.mp.scripts[which].Run(false)
}
