package engine

import (
	"fmt"

	"github.com/vovakirdan/minisphere/internal/core"
)

// runZone runs z's script with z as the current zone.
func (e *Engine) runZone(index int) error {
	last := e.currentZone
	e.currentZone = index
	defer func() { e.currentZone = last }()
	return e.mp.zones[index].script.Run(true)
}

// stepZones counts every pixel an input person walked this frame against
// the zones containing it. Positions are unwrapped walk coordinates; each
// pixel is wrapped into the map before the zone test. A zone fires each time its counter runs out, so
// a fast mover can fire a zone several times in one frame.
func (e *Engine) stepZones(startX, startY []int) error {
	m := e.mp
	for k := range e.players {
		p := e.playerPerson(k)
		if p == nil {
			continue
		}
		x, y := int(p.x), int(p.y)
		stepX := sign(float64(x - startX[k]))
		stepY := sign(float64(y - startY[k]))
		numSteps := core.Max(core.Abs(x-startX[k]), core.Abs(y-startY[k]))
		for i := 0; i < numSteps; i++ {
			checkX, checkY := e.wrapPoint(startX[k]+i*stepX, startY[k]+i*stepY)
			for j := 0; j < len(m.zones); j++ {
				z := m.zones[j]
				if !z.bounds.Contains(checkX, checkY) {
					continue
				}
				z.stepsLeft--
				if z.stepsLeft > 0 {
					continue
				}
				z.stepsLeft = z.interval
				if err := e.runZone(j); err != nil {
					return err
				}
				if e.mp != m {
					return nil
				}
			}
		}
	}
	return nil
}

// zonesAt returns the indices of zones containing (x, y). Like triggers,
// zones ignore layers.
func (e *Engine) zonesAt(x, y, layer int) []int {
	var out []int
	for i, z := range e.mp.zones {
		if z.bounds.Contains(x, y) {
			out = append(out, i)
		}
	}
	return out
}

func (e *Engine) checkZone(index int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if index < 0 || index >= len(e.mp.zones) {
		return fmt.Errorf("%w: zone %d", ErrOutOfRange, index)
	}
	return nil
}

// AddZone adds a zone and returns its index. Indices stay valid only until
// the next removal.
func (e *Engine) AddZone(x, y, width, height, layer int, source string) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: zone size %dx%d", ErrInvalidArgument, width, height)
	}
	s, err := e.compile(fmt.Sprintf("%s:zone%d", e.mp.name, len(e.mp.zones)), source)
	if err != nil {
		return 0, err
	}
	e.mp.zones = append(e.mp.zones, newZone(core.NewRect(x, y, width, height), layer, 8, s))
	return len(e.mp.zones) - 1, nil
}

// RemoveZone deletes a zone, shifting later indices down.
func (e *Engine) RemoveZone(index int) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	z := e.mp.zones[index]
	e.mp.zones = append(e.mp.zones[:index], e.mp.zones[index+1:]...)
	z.script.Release()
	return nil
}

// GetNumZones returns the number of zones on the map.
func (e *Engine) GetNumZones() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return len(e.mp.zones), nil
}

// GetZoneBounds returns a zone's rectangle.
func (e *Engine) GetZoneBounds(index int) (core.Rect, error) {
	if err := e.checkZone(index); err != nil {
		return core.Rect{}, err
	}
	return e.mp.zones[index].bounds, nil
}

// GetZoneX returns a zone's left edge.
func (e *Engine) GetZoneX(index int) (int, error) {
	r, err := e.GetZoneBounds(index)
	return r.X1, err
}

// GetZoneY returns a zone's top edge.
func (e *Engine) GetZoneY(index int) (int, error) {
	r, err := e.GetZoneBounds(index)
	return r.Y1, err
}

// GetZoneWidth returns a zone's width.
func (e *Engine) GetZoneWidth(index int) (int, error) {
	r, err := e.GetZoneBounds(index)
	return r.Width(), err
}

// GetZoneHeight returns a zone's height.
func (e *Engine) GetZoneHeight(index int) (int, error) {
	r, err := e.GetZoneBounds(index)
	return r.Height(), err
}

// GetZoneLayer returns a zone's layer.
func (e *Engine) GetZoneLayer(index int) (int, error) {
	if err := e.checkZone(index); err != nil {
		return 0, err
	}
	return e.mp.zones[index].layer, nil
}

// SetZoneLayer moves a zone to another layer.
func (e *Engine) SetZoneLayer(index, layer int) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	e.mp.zones[index].layer = layer
	return nil
}

// SetZoneBounds moves and resizes a zone.
func (e *Engine) SetZoneBounds(index, x, y, width, height int) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: zone size %dx%d", ErrInvalidArgument, width, height)
	}
	e.mp.zones[index].bounds = core.NewRect(x, y, width, height).Normalize()
	return nil
}

// GetZoneSteps returns how many pixels of movement fire a zone.
func (e *Engine) GetZoneSteps(index int) (int, error) {
	if err := e.checkZone(index); err != nil {
		return 0, err
	}
	return e.mp.zones[index].interval, nil
}

// SetZoneSteps changes a zone's step interval and restarts its count.
func (e *Engine) SetZoneSteps(index, steps int) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	if steps <= 0 {
		return fmt.Errorf("%w: zone steps %d", ErrInvalidArgument, steps)
	}
	z := e.mp.zones[index]
	z.interval = steps
	z.stepsLeft = steps
	return nil
}

// SetZoneScript replaces a zone's script.
func (e *Engine) SetZoneScript(index int, source string) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	s, err := e.compile(fmt.Sprintf("%s:zone%d", e.mp.name, index), source)
	if err != nil {
		return err
	}
	z := e.mp.zones[index]
	z.script.Release()
	z.script = s
	return nil
}

// ExecuteZoneScript runs a zone's script directly.
func (e *Engine) ExecuteZoneScript(index int) error {
	if err := e.checkZone(index); err != nil {
		return err
	}
	return e.runZone(index)
}

// ExecuteZones runs the script of every zone containing a map position.
func (e *Engine) ExecuteZones(x, y, layer int) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	m := e.mp
	for _, i := range e.zonesAt(x, y, layer) {
		if e.mp != m || i >= len(m.zones) {
			return nil
		}
		if err := e.runZone(i); err != nil {
			return err
		}
	}
	return nil
}

// AreZonesAt reports whether any zone contains a map position.
func (e *Engine) AreZonesAt(x, y, layer int) (bool, error) {
	if err := e.checkLayer(layer); err != nil {
		return false, err
	}
	return len(e.zonesAt(x, y, layer)) > 0, nil
}

// GetCurrentZone returns the index of the zone whose script is running.
func (e *Engine) GetCurrentZone() (int, error) {
	if e.currentZone < 0 {
		return 0, fmt.Errorf("%w: no zone is running", ErrInvalidState)
	}
	return e.currentZone, nil
}
