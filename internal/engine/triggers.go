package engine

import (
	"fmt"

	"github.com/vovakirdan/minisphere/internal/core"
)

// triggerBounds is the tile-sized box centered on a trigger.
func (e *Engine) triggerBounds(t *trigger) core.Rect {
	tw, th := e.mp.tileset.TileSize()
	return core.NewRect(t.x-tw/2, t.y-th/2, tw, th)
}

// triggerAt returns the first trigger covering (x, y). Layers are not
// compared: content made for older engines relies on triggers firing from
// any layer.
func (e *Engine) triggerAt(x, y, layer int) *trigger {
	if e.mp == nil {
		return nil
	}
	for _, t := range e.mp.triggers {
		if e.triggerBounds(t).Contains(x, y) {
			return t
		}
	}
	return nil
}

func (e *Engine) triggerIndex(t *trigger) int {
	for i, other := range e.mp.triggers {
		if other == t {
			return i
		}
	}
	return -1
}

// runTrigger runs t's script with t as the current trigger.
func (e *Engine) runTrigger(t *trigger) error {
	last := e.currentTrigger
	e.currentTrigger = e.triggerIndex(t)
	defer func() { e.currentTrigger = last }()
	return t.script.Run(false)
}

// updateTriggers fires a trigger when an input person steps onto a
// different trigger cell than last frame.
func (e *Engine) updateTriggers() error {
	m := e.mp
	for i := range e.players {
		p := e.playerPerson(i)
		if p == nil {
			continue
		}
		x, y := e.normalizedXY(p)
		t := e.triggerAt(x, y, p.layer)
		if t == e.players[i].trigger {
			continue
		}
		e.players[i].trigger = t
		if t == nil {
			continue
		}
		if err := e.runTrigger(t); err != nil {
			return err
		}
		if e.mp != m {
			return nil
		}
	}
	return nil
}

func (e *Engine) checkTrigger(index int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if index < 0 || index >= len(e.mp.triggers) {
		return fmt.Errorf("%w: trigger %d", ErrOutOfRange, index)
	}
	return nil
}

// AddTrigger places a trigger and returns its index. Indices stay valid
// only until the next removal.
func (e *Engine) AddTrigger(x, y, layer int, source string) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	s, err := e.compile(fmt.Sprintf("%s:trigger%d", e.mp.name, len(e.mp.triggers)), source)
	if err != nil {
		return 0, err
	}
	e.mp.triggers = append(e.mp.triggers, &trigger{x: x, y: y, layer: layer, script: s})
	return len(e.mp.triggers) - 1, nil
}

// RemoveTrigger deletes a trigger, shifting later indices down.
func (e *Engine) RemoveTrigger(index int) error {
	if err := e.checkTrigger(index); err != nil {
		return err
	}
	t := e.mp.triggers[index]
	e.mp.triggers = append(e.mp.triggers[:index], e.mp.triggers[index+1:]...)
	for i := range e.players {
		if e.players[i].trigger == t {
			e.players[i].trigger = nil
		}
	}
	t.script.Release()
	return nil
}

// GetNumTriggers returns the number of triggers on the map.
func (e *Engine) GetNumTriggers() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return len(e.mp.triggers), nil
}

// GetTriggerX returns a trigger's x coordinate.
func (e *Engine) GetTriggerX(index int) (int, error) {
	if err := e.checkTrigger(index); err != nil {
		return 0, err
	}
	return e.mp.triggers[index].x, nil
}

// GetTriggerY returns a trigger's y coordinate.
func (e *Engine) GetTriggerY(index int) (int, error) {
	if err := e.checkTrigger(index); err != nil {
		return 0, err
	}
	return e.mp.triggers[index].y, nil
}

// GetTriggerLayer returns a trigger's layer.
func (e *Engine) GetTriggerLayer(index int) (int, error) {
	if err := e.checkTrigger(index); err != nil {
		return 0, err
	}
	return e.mp.triggers[index].layer, nil
}

// SetTriggerXYZ moves a trigger.
func (e *Engine) SetTriggerXYZ(index, x, y, layer int) error {
	if err := e.checkTrigger(index); err != nil {
		return err
	}
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	t := e.mp.triggers[index]
	t.x, t.y, t.layer = x, y, layer
	return nil
}

// SetTriggerScript replaces a trigger's script.
func (e *Engine) SetTriggerScript(index int, source string) error {
	if err := e.checkTrigger(index); err != nil {
		return err
	}
	s, err := e.compile(fmt.Sprintf("%s:trigger%d", e.mp.name, index), source)
	if err != nil {
		return err
	}
	t := e.mp.triggers[index]
	t.script.Release()
	t.script = s
	return nil
}

// ExecuteTrigger runs the trigger at a map position, if any.
func (e *Engine) ExecuteTrigger(x, y, layer int) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	if t := e.triggerAt(x, y, layer); t != nil {
		return e.runTrigger(t)
	}
	return nil
}

// IsTriggerAt reports whether a trigger covers a map position.
func (e *Engine) IsTriggerAt(x, y, layer int) (bool, error) {
	if err := e.checkLayer(layer); err != nil {
		return false, err
	}
	return e.triggerAt(x, y, layer) != nil, nil
}

// GetCurrentTrigger returns the index of the trigger whose script is
// running.
func (e *Engine) GetCurrentTrigger() (int, error) {
	if e.currentTrigger < 0 {
		return 0, fmt.Errorf("%w: no trigger is running", ErrInvalidState)
	}
	return e.currentTrigger, nil
}
