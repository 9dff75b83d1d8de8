// Package tileset implements indexed tile collections with per-tile
// animation chains and obstruction maps.
package tileset

import (
	"image"
	"image/draw"
	"math"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
	"github.com/vovakirdan/minisphere/internal/obsmap"
)

// Tile is one entry of a tileset.
type Tile struct {
	Name       string
	Image      *image.NRGBA // View into the atlas
	Delay      int          // Frames before advancing; 0 means not animated
	NextIndex  int          // Tile shown after Delay frames (self if not chained)
	FramesLeft int
	ImageIndex int // Tile whose image is currently displayed
	Obsmap     *obsmap.ObsMap
}

// Tileset owns an atlas and the tiles that view into it.
type Tileset struct {
	tileW, tileH int
	atlas        *image.NRGBA
	columns      int
	tiles        []Tile
	refs         int
}

// New builds a tileset from tile images of the given size. Images are packed
// into a single atlas; each tile starts unanimated and unobstructed.
func New(tileW, tileH int, images []image.Image) *Tileset {
	n := len(images)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols == 0 {
		cols = 1
	}
	rows := (n + cols - 1) / cols
	ts := &Tileset{
		tileW:   tileW,
		tileH:   tileH,
		atlas:   image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH)),
		columns: cols,
		tiles:   make([]Tile, n),
		refs:    1,
	}
	for i, img := range images {
		ts.tiles[i] = Tile{
			Image:      ts.cell(i),
			NextIndex:  i,
			ImageIndex: i,
		}
		if img != nil {
			draw.Draw(ts.tiles[i].Image, ts.tiles[i].Image.Bounds(), img, img.Bounds().Min, draw.Src)
		}
	}
	return ts
}

// cell returns the atlas view for tile i.
func (ts *Tileset) cell(i int) *image.NRGBA {
	x := (i % ts.columns) * ts.tileW
	y := (i / ts.columns) * ts.tileH
	return ts.atlas.SubImage(image.Rect(x, y, x+ts.tileW, y+ts.tileH)).(*image.NRGBA)
}

// Ref adds a reference and returns the tileset.
func (ts *Tileset) Ref() *Tileset {
	if ts != nil {
		ts.refs++
	}
	return ts
}

// Release drops a reference. It returns true when the last one is gone.
func (ts *Tileset) Release() bool {
	if ts == nil || ts.refs <= 0 {
		return false
	}
	ts.refs--
	if ts.refs == 0 {
		ts.tiles = nil
		ts.atlas = nil
		return true
	}
	return false
}

// Refs returns the current reference count.
func (ts *Tileset) Refs() int {
	return ts.refs
}

// Len returns the number of tiles.
func (ts *Tileset) Len() int {
	return len(ts.tiles)
}

// TileSize returns the pixel size shared by all tiles.
func (ts *Tileset) TileSize() (int, int) {
	return ts.tileW, ts.tileH
}

// Atlas returns the image that holds every tile.
func (ts *Tileset) Atlas() *image.NRGBA {
	return ts.atlas
}

// Tile returns a pointer to tile i for direct inspection.
func (ts *Tileset) Tile(i int) *Tile {
	return &ts.tiles[i]
}

// Name returns the name of tile i.
func (ts *Tileset) Name(i int) string {
	return ts.tiles[i].Name
}

// SetName renames tile i.
func (ts *Tileset) SetName(i int, name string) {
	ts.tiles[i].Name = name
}

// Find returns the index of the first tile with the given name, or -1.
func (ts *Tileset) Find(name string) int {
	for i := range ts.tiles {
		if ts.tiles[i].Name == name {
			return i
		}
	}
	return -1
}

// Delay returns the animation delay of tile i.
func (ts *Tileset) Delay(i int) int {
	return ts.tiles[i].Delay
}

// SetDelay changes the animation delay of tile i and restarts its countdown.
func (ts *Tileset) SetDelay(i, delay int) {
	ts.tiles[i].Delay = delay
	ts.tiles[i].FramesLeft = delay
}

// Next returns the tile that follows i in its animation chain.
func (ts *Tileset) Next(i int) int {
	return ts.tiles[i].NextIndex
}

// SetNext changes the animation successor of tile i. Out of range values
// make the tile self-referencing.
func (ts *Tileset) SetNext(i, next int) {
	if next < 0 || next >= len(ts.tiles) {
		next = i
	}
	ts.tiles[i].NextIndex = next
}

// Obsmap returns the obstruction map of tile i, which may be nil.
func (ts *Tileset) Obsmap(i int) *obsmap.ObsMap {
	if i < 0 || i >= len(ts.tiles) {
		return nil
	}
	return ts.tiles[i].Obsmap
}

// SetObsmap replaces the obstruction map of tile i.
func (ts *Tileset) SetObsmap(i int, m *obsmap.ObsMap) {
	ts.tiles[i].Obsmap = m
}

// Image returns the image tile i owns, regardless of animation.
func (ts *Tileset) Image(i int) *image.NRGBA {
	return ts.tiles[i].Image
}

// SetImage copies img into the atlas slot of tile i. Every tile currently
// displaying tile i picks up the change.
func (ts *Tileset) SetImage(i int, img image.Image) {
	dst := ts.tiles[i].Image
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
}

// ImageIndex returns the tile whose image is currently displayed for i.
func (ts *Tileset) ImageIndex(i int) int {
	return ts.tiles[i].ImageIndex
}

// Animate advances every animated tile by one frame. It returns true if any
// displayed image changed.
func (ts *Tileset) Animate() bool {
	changed := false
	for i := range ts.tiles {
		tile := &ts.tiles[i]
		if tile.FramesLeft <= 0 {
			continue
		}
		tile.FramesLeft--
		if tile.FramesLeft > 0 {
			continue
		}
		next := ts.tiles[tile.ImageIndex].NextIndex
		if next != tile.ImageIndex {
			changed = true
		}
		tile.ImageIndex = next
		tile.FramesLeft = ts.tiles[next].Delay
	}
	return changed
}

// ResetAnimation returns every tile to its own image and full delay.
func (ts *Tileset) ResetAnimation() {
	for i := range ts.tiles {
		ts.tiles[i].ImageIndex = i
		ts.tiles[i].FramesLeft = ts.tiles[i].Delay
	}
}

// Draw blits the currently displayed image of tile index at (x, y).
// A negative index is an empty cell and draws nothing.
func (ts *Tileset) Draw(r gfx.Renderer, mask core.Color, x, y, index int) {
	if index < 0 || index >= len(ts.tiles) {
		return
	}
	img := ts.tiles[ts.tiles[index].ImageIndex].Image
	r.Blit(img, x, y, gfx.DrawOptions{Tint: mask})
}
