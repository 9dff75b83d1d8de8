package engine

import (
	"fmt"
	"image"

	"github.com/vovakirdan/minisphere/internal/core"
)

func (e *Engine) checkTile(tile int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if tile < 0 || tile >= e.mp.tileset.Len() {
		return fmt.Errorf("%w: tile %d", ErrOutOfRange, tile)
	}
	return nil
}

// GetNumLayers returns the number of layers of the map.
func (e *Engine) GetNumLayers() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return len(e.mp.layers), nil
}

// GetLayerName returns a layer's name.
func (e *Engine) GetLayerName(layer int) (string, error) {
	if err := e.checkLayer(layer); err != nil {
		return "", err
	}
	return e.mp.layers[layer].name, nil
}

// FindLayer returns the index of the layer with the name.
func (e *Engine) FindLayer(name string) (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	for i, l := range e.mp.layers {
		if l.name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no layer named %q", ErrInvalidArgument, name)
}

// GetLayerWidth returns a layer's width in tiles.
func (e *Engine) GetLayerWidth(layer int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	return e.mp.layers[layer].width, nil
}

// GetLayerHeight returns a layer's height in tiles.
func (e *Engine) GetLayerHeight(layer int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	return e.mp.layers[layer].height, nil
}

// IsLayerVisible reports whether a layer is drawn.
func (e *Engine) IsLayerVisible(layer int) (bool, error) {
	if err := e.checkLayer(layer); err != nil {
		return false, err
	}
	return e.mp.layers[layer].visible, nil
}

// SetLayerVisible shows or hides a layer.
func (e *Engine) SetLayerVisible(layer int, visible bool) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	e.mp.layers[layer].visible = visible
	return nil
}

// IsLayerReflective reports whether a layer mirrors the persons on it.
func (e *Engine) IsLayerReflective(layer int) (bool, error) {
	if err := e.checkLayer(layer); err != nil {
		return false, err
	}
	return e.mp.layers[layer].reflective, nil
}

// SetLayerReflective turns reflections on a layer on or off.
func (e *Engine) SetLayerReflective(layer int, reflective bool) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	e.mp.layers[layer].reflective = reflective
	return nil
}

// GetLayerMask returns the tint applied to a layer's tiles.
func (e *Engine) GetLayerMask(layer int) (core.Color, error) {
	if err := e.checkLayer(layer); err != nil {
		return core.Color{}, err
	}
	return e.mp.layers[layer].mask, nil
}

// SetLayerMask tints a layer's tiles.
func (e *Engine) SetLayerMask(layer int, c core.Color) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	e.mp.layers[layer].mask = c
	return nil
}

// GetLayerParallax returns a layer's parallax factors. Layers without
// parallax report 1, 1.
func (e *Engine) GetLayerParallax(layer int) (float64, float64, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, 0, err
	}
	l := e.mp.layers[layer]
	return l.parallaxX, l.parallaxY, nil
}

// SetLayerRenderScript sets a script run right after a layer is drawn.
func (e *Engine) SetLayerRenderScript(layer int, source string) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	s, err := e.compile(fmt.Sprintf("%s:layer%d:render", e.mp.name, layer), source)
	if err != nil {
		return err
	}
	l := e.mp.layers[layer]
	l.renderScript.Release()
	l.renderScript = s
	return nil
}

// GetMapWidth returns the map width in pixels.
func (e *Engine) GetMapWidth() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	w, _ := e.mp.pixelSize()
	return w, nil
}

// GetMapHeight returns the map height in pixels.
func (e *Engine) GetMapHeight() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	_, h := e.mp.pixelSize()
	return h, nil
}

// IsMapRepeating reports whether the map wraps around.
func (e *Engine) IsMapRepeating() (bool, error) {
	if err := e.checkMap(); err != nil {
		return false, err
	}
	return e.mp.repeating, nil
}

// GetMapMusic returns the music file named by the map.
func (e *Engine) GetMapMusic() (string, error) {
	if err := e.checkMap(); err != nil {
		return "", err
	}
	return e.mp.music, nil
}

// GetTile returns the tile index at a cell.
func (e *Engine) GetTile(x, y, layer int) (int, error) {
	if err := e.checkLayer(layer); err != nil {
		return 0, err
	}
	l := e.mp.layers[layer]
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0, fmt.Errorf("%w: cell %d,%d", ErrOutOfRange, x, y)
	}
	return l.tiles[x+y*l.width], nil
}

// SetTile changes the tile at a cell.
func (e *Engine) SetTile(x, y, layer, tile int) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	if err := e.checkTile(tile); err != nil {
		return err
	}
	l := e.mp.layers[layer]
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return fmt.Errorf("%w: cell %d,%d", ErrOutOfRange, x, y)
	}
	l.tiles[x+y*l.width] = tile
	return nil
}

// ReplaceTilesOnLayer swaps every oldTile on a layer for newTile.
func (e *Engine) ReplaceTilesOnLayer(layer, oldTile, newTile int) error {
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	if err := e.checkTile(oldTile); err != nil {
		return err
	}
	if err := e.checkTile(newTile); err != nil {
		return err
	}
	l := e.mp.layers[layer]
	for i, t := range l.tiles {
		if t == oldTile {
			l.tiles[i] = newTile
		}
	}
	return nil
}

// GetNumTiles returns the size of the map's tileset.
func (e *Engine) GetNumTiles() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return e.mp.tileset.Len(), nil
}

// GetTileWidth returns the tile width in pixels.
func (e *Engine) GetTileWidth() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	w, _ := e.mp.tileset.TileSize()
	return w, nil
}

// GetTileHeight returns the tile height in pixels.
func (e *Engine) GetTileHeight() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	_, h := e.mp.tileset.TileSize()
	return h, nil
}

// GetTileName returns a tile's name.
func (e *Engine) GetTileName(tile int) (string, error) {
	if err := e.checkTile(tile); err != nil {
		return "", err
	}
	return e.mp.tileset.Name(tile), nil
}

// GetTileDelay returns the frames a tile shows before advancing.
func (e *Engine) GetTileDelay(tile int) (int, error) {
	if err := e.checkTile(tile); err != nil {
		return 0, err
	}
	return e.mp.tileset.Delay(tile), nil
}

// SetTileDelay changes a tile's animation delay. Zero stops it animating.
func (e *Engine) SetTileDelay(tile, delay int) error {
	if err := e.checkTile(tile); err != nil {
		return err
	}
	if delay < 0 {
		return fmt.Errorf("%w: tile delay %d", ErrInvalidArgument, delay)
	}
	e.mp.tileset.SetDelay(tile, delay)
	return nil
}

// GetNextAnimatedTile returns the tile shown after a tile.
func (e *Engine) GetNextAnimatedTile(tile int) (int, error) {
	if err := e.checkTile(tile); err != nil {
		return 0, err
	}
	return e.mp.tileset.Next(tile), nil
}

// SetNextAnimatedTile changes the tile shown after a tile.
func (e *Engine) SetNextAnimatedTile(tile, next int) error {
	if err := e.checkTile(tile); err != nil {
		return err
	}
	if err := e.checkTile(next); err != nil {
		return err
	}
	e.mp.tileset.SetNext(tile, next)
	return nil
}

// GetTileImage returns a tile's image.
func (e *Engine) GetTileImage(tile int) (image.Image, error) {
	if err := e.checkTile(tile); err != nil {
		return nil, err
	}
	return e.mp.tileset.Image(tile), nil
}

// SetTileImage replaces a tile's pixels.
func (e *Engine) SetTileImage(tile int, img image.Image) error {
	if err := e.checkTile(tile); err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	e.mp.tileset.SetImage(tile, img)
	return nil
}

// SetCameraXY moves the camera. An attached person overrides it next update.
func (e *Engine) SetCameraXY(x, y int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	e.cameraX, e.cameraY = x, y
	return nil
}
