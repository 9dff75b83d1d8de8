package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vovakirdan/minisphere/internal/core"
)

// Snapshot is the saveable part of a running game: the current map, the
// camera and every persistent person. Non-persistent persons belong to the
// map and are recreated by it.
type Snapshot struct {
	Map     string        `yaml:"map"`
	CameraX int           `yaml:"camera_x"`
	CameraY int           `yaml:"camera_y"`
	Frames  int           `yaml:"frames"`
	Persons []PersonState `yaml:"persons"`
}

// PersonState is one saved person.
type PersonState struct {
	Name           string            `yaml:"name"`
	Spriteset      string            `yaml:"spriteset"`
	X              float64           `yaml:"x"`
	Y              float64           `yaml:"y"`
	Layer          int               `yaml:"layer"`
	Direction      string            `yaml:"direction"`
	Frame          int               `yaml:"frame"`
	SpeedX         float64           `yaml:"speed_x"`
	SpeedY         float64           `yaml:"speed_y"`
	Hidden         bool              `yaml:"hidden,omitempty"`
	OffsetX        int               `yaml:"offset_x,omitempty"`
	OffsetY        int               `yaml:"offset_y,omitempty"`
	ScaleX         float64           `yaml:"scale_x,omitempty"` // 0 reads as 1
	ScaleY         float64           `yaml:"scale_y,omitempty"`
	Angle          float64           `yaml:"angle,omitempty"`
	Mask           *core.Color       `yaml:"mask,omitempty"` // nil is white
	RevertDelay    int               `yaml:"revert_delay,omitempty"`
	Scripts        map[string]string `yaml:"scripts,omitempty"` // keyed by slot name
	IgnoreAll      bool              `yaml:"ignore_all_persons,omitempty"`
	IgnoreTiles    bool              `yaml:"ignore_tiles,omitempty"`
	Ignores        []string          `yaml:"ignores,omitempty"`
	Leader         string            `yaml:"leader,omitempty"`
	FollowDistance int               `yaml:"follow_distance,omitempty"`
	Player         int               `yaml:"player"` // -1 when not under input
	Camera         bool              `yaml:"camera,omitempty"`
	Values         map[string]any    `yaml:"values,omitempty"`
}

// Snapshot captures the current game state.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if err := e.checkMap(); err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Map:     e.mp.name,
		CameraX: e.cameraX,
		CameraY: e.cameraY,
		Frames:  e.frames,
	}
	for _, p := range e.persons {
		if !p.persistent {
			continue
		}
		if p.sprite.Filename == "" {
			return nil, fmt.Errorf("%w: person %s has no spriteset file", ErrInvalidState, p.name)
		}
		ps := PersonState{
			Name:        p.name,
			Spriteset:   p.sprite.Filename,
			X:           p.x,
			Y:           p.y,
			Layer:       p.layer,
			Direction:   p.direction,
			Frame:       p.frame,
			SpeedX:      p.speedX,
			SpeedY:      p.speedY,
			Hidden:      !p.visible,
			OffsetX:     p.xOffset,
			OffsetY:     p.yOffset,
			ScaleX:      p.scaleX,
			ScaleY:      p.scaleY,
			Angle:       p.theta,
			RevertDelay: p.revertDelay,
			IgnoreAll:   p.ignoreAllPersons,
			IgnoreTiles: p.ignoreAllTiles,
			Ignores:     slices.Clone(p.ignores),
			Player:      -1,
			Camera:      e.cameraPerson == p.id,
			Values:      maps.Clone(p.values),
		}
		if p.mask != core.White {
			mask := p.mask
			ps.Mask = &mask
		}
		for which, src := range p.sources {
			if src == "" {
				continue
			}
			if ps.Scripts == nil {
				ps.Scripts = make(map[string]string)
			}
			ps.Scripts[personScriptNames[which]] = src
		}
		if l := e.leaderOf(p); l != nil {
			ps.Leader = l.name
			ps.FollowDistance = p.followDistance
		}
		for i := range e.players {
			if e.players[i].person == p.id {
				ps.Player = i
			}
		}
		snap.Persons = append(snap.Persons, ps)
	}
	return snap, nil
}

// Restore replaces the persistent persons with the saved ones and moves to
// the saved map, starting the engine if it is idle.
func (e *Engine) Restore(snap *Snapshot) error {
	if snap == nil || snap.Map == "" {
		return fmt.Errorf("%w: empty snapshot", ErrInvalidArgument)
	}
	for _, id := range e.personIDs() {
		if p, ok := e.byID[id]; ok && p.persistent {
			if err := e.destroyPerson(p); err != nil {
				return err
			}
		}
	}

	var err error
	if e.state == StateRunning {
		err = e.changeMap(snap.Map, false)
	} else {
		err = e.Start(snap.Map)
	}
	if err != nil {
		return err
	}

	created := make(map[string]*Person, len(snap.Persons))
	for _, ps := range snap.Persons {
		ss, err := e.assets.Spriteset(ps.Spriteset)
		if err != nil {
			return err
		}
		p, err := e.createPerson(ps.Name, ss, true, nil)
		if err != nil {
			return err
		}
		if !e.personExists(p.id) {
			continue
		}
		p.x, p.y, p.layer = ps.X, ps.Y, ps.Layer
		p.direction = ps.Direction
		p.setFrame(ps.Frame)
		p.speedX, p.speedY = ps.SpeedX, ps.SpeedY
		p.visible = !ps.Hidden
		p.xOffset, p.yOffset = ps.OffsetX, ps.OffsetY
		if ps.ScaleX != 0 && ps.ScaleY != 0 {
			p.scaleX, p.scaleY = ps.ScaleX, ps.ScaleY
		}
		p.theta = ps.Angle
		if ps.Mask != nil {
			p.mask = *ps.Mask
		}
		p.revertDelay, p.revertFrames = ps.RevertDelay, ps.RevertDelay
		p.ignoreAllPersons, p.ignoreAllTiles = ps.IgnoreAll, ps.IgnoreTiles
		p.ignores = slices.Clone(ps.Ignores)
		p.values = maps.Clone(ps.Values)
		// Create already ran in the saved game; the scripts come back
		// without running it again.
		for which, slot := range personScriptNames {
			src, ok := ps.Scripts[slot]
			if !ok {
				continue
			}
			if err := e.setPersonScript(p, which, fmt.Sprintf("%s:%s", p.name, slot), src); err != nil {
				return err
			}
		}
		created[ps.Name] = p
	}

	for _, ps := range snap.Persons {
		p, ok := created[ps.Name]
		if !ok || !e.personExists(p.id) {
			continue
		}
		if l, ok := created[ps.Leader]; ok && e.personExists(l.id) {
			if err := e.followPerson(p, l, ps.FollowDistance); err != nil {
				return err
			}
		}
		if ps.Player >= 0 && ps.Player < MaxPlayers {
			e.players[ps.Player].person = p.id
			x, y := e.normalizedXY(p)
			e.players[ps.Player].trigger = e.triggerAt(x, y, p.layer)
		}
		if ps.Camera {
			e.cameraPerson = p.id
		}
	}

	e.cameraX, e.cameraY = snap.CameraX, snap.CameraY
	e.sortPersons()
	e.log.Info("restored snapshot", "map", snap.Map, "persons", len(created))
	return nil
}
