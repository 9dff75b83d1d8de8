package engine

import (
	"github.com/vovakirdan/minisphere/internal/core"
)

// screenToLayer converts a screen point to layer pixel coordinates for the
// given camera position. It accounts for camera clamping on non-repeating
// maps, parallax, autoscroll, windowboxing of small layers and wrap-around.
// Every screen/map conversion goes through here.
func (e *Engine) screenToLayer(layerIndex, camX, camY, x, y int) (int, int) {
	m := e.mp
	l := m.layers[layerIndex]
	screenW, screenH := e.renderer.Size()
	tileW, tileH := m.tileset.TileSize()
	layerW, layerH := l.width*tileW, l.height*tileH
	centerX, centerY := screenW/2, screenH/2

	cx, cy := float64(camX), float64(camY)
	if !m.repeating {
		mapW, mapH := m.pixelSize()
		cx = clampCamera(cx, centerX, mapW)
		cy = clampCamera(cy, centerY, mapH)
	}

	plxX := float64(e.frames)*l.autoscrollX - cx*(l.parallaxX-1)
	plxY := float64(e.frames)*l.autoscrollY - cy*(l.parallaxY-1)
	offX := int(cx) - centerX - int(plxX)
	offY := int(cy) - centerY - int(plxY)

	if !m.repeating && !l.parallax {
		if layerW < screenW {
			offX = -(screenW - layerW) / 2
		}
		if layerH < screenH {
			offY = -(screenH - layerH) / 2
		}
	}

	x += offX
	y += offY
	if m.repeating || l.parallax {
		x = core.Wrap(x, layerW)
		y = core.Wrap(y, layerH)
	}
	return x, y
}

// clampCamera keeps the view from showing past the map edges. On a map
// smaller than the screen the far edge wins; windowboxing takes over there.
func clampCamera(cam float64, center, size int) float64 {
	return min(max(cam, float64(center)), float64(size-center))
}

// layerOffset is the layer coordinate shown at the screen's top left.
func (e *Engine) layerOffset(layerIndex int) (int, int) {
	return e.screenToLayer(layerIndex, e.cameraX, e.cameraY, 0, 0)
}

// ScreenToMapX converts a screen x coordinate to a layer x coordinate.
func (e *Engine) ScreenToMapX(layer, x int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	mx, _ := e.screenToLayer(layer, e.cameraX, e.cameraY, x, 0)
	return mx, nil
}

// ScreenToMapY converts a screen y coordinate to a layer y coordinate.
func (e *Engine) ScreenToMapY(layer, y int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	_, my := e.screenToLayer(layer, e.cameraX, e.cameraY, 0, y)
	return my, nil
}

// MapToScreenX converts a layer x coordinate to a screen x coordinate.
func (e *Engine) MapToScreenX(layer, x int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	offX, _ := e.layerOffset(layer)
	return x - offX, nil
}

// MapToScreenY converts a layer y coordinate to a screen y coordinate.
func (e *Engine) MapToScreenY(layer, y int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	_, offY := e.layerOffset(layer)
	return y - offY, nil
}

// GetCameraX returns the camera's map x coordinate.
func (e *Engine) GetCameraX() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return e.cameraX, nil
}

// GetCameraY returns the camera's map y coordinate.
func (e *Engine) GetCameraY() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return e.cameraY, nil
}

// SetCameraX moves the camera. An attached person overrides it next update.
func (e *Engine) SetCameraX(x int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	e.cameraX = x
	return nil
}

// SetCameraY moves the camera. An attached person overrides it next update.
func (e *Engine) SetCameraY(y int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	e.cameraY = y
	return nil
}

// AttachCamera makes the camera track a person.
func (e *Engine) AttachCamera(name string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	e.cameraPerson = p.id
	if e.mp != nil {
		e.cameraX, e.cameraY = e.normalizedXY(p)
	}
	return nil
}

// DetachCamera stops tracking.
func (e *Engine) DetachCamera() {
	e.cameraPerson = 0
}

// IsCameraAttached reports whether the camera tracks a person.
func (e *Engine) IsCameraAttached() bool {
	return e.cameraPerson != 0 && e.personExists(e.cameraPerson)
}

// GetCameraPerson returns the name of the tracked person.
func (e *Engine) GetCameraPerson() (string, error) {
	p, ok := e.byID[e.cameraPerson]
	if !ok {
		return "", ErrCameraNotAttached
	}
	return p.name, nil
}

// updateCamera follows the attached person.
func (e *Engine) updateCamera() {
	if p, ok := e.byID[e.cameraPerson]; ok {
		e.cameraX, e.cameraY = e.normalizedXY(p)
	}
}
