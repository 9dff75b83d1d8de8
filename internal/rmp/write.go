package rmp

import (
	"fmt"
	"io"

	"github.com/vovakirdan/minisphere/internal/binfmt"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

// NewLayer creates a visible, non-parallax layer filled with tile index fill.
func NewLayer(name string, width, height, fill int) *Layer {
	tiles := make([]int, width*height)
	for i := range tiles {
		tiles[i] = fill
	}
	return &Layer{
		Name:      name,
		Width:     width,
		Height:    height,
		Tiles:     tiles,
		Visible:   true,
		ParallaxX: 1,
		ParallaxY: 1,
	}
}

// SetTile changes the tile index at a cell.
func (l *Layer) SetTile(x, y, index int) {
	l.Tiles[x+y*l.Width] = index
}

// Write encodes file in RMP format. The tileset is embedded when
// TilesetFile is empty.
func Write(w io.Writer, file *File) error {
	if len(file.Layers) == 0 || len(file.Layers) > 127 {
		return fmt.Errorf("rmp: cannot write %d layers", len(file.Layers))
	}
	if file.TilesetFile == "" && file.Tileset == nil {
		return fmt.Errorf("rmp: map has neither a tileset file nor an embedded tileset")
	}

	hdr := header{
		Signature:      binfmt.Signature(signature),
		Version:        1,
		NumLayers:      int8(len(file.Layers)),
		NumEntities:    int16(len(file.Persons) + len(file.Triggers)),
		StartX:         int16(file.StartX),
		StartY:         int16(file.StartY),
		StartLayer:     int8(file.StartLayer),
		StartDirection: int8(file.StartDirection),
		NumStrings:     3 + NumScripts,
		NumZones:       int16(len(file.Zones)),
	}
	if file.Repeating {
		hdr.RepeatMap = 1
	}
	if err := binfmt.WriteStruct(w, &hdr); err != nil {
		return fmt.Errorf("rmp: writing header: %w", err)
	}

	strs := append([]string{file.TilesetFile, file.Music, file.ScriptFile}, file.Scripts[:]...)
	for i, s := range strs {
		if err := binfmt.WriteLString(w, s); err != nil {
			return fmt.Errorf("rmp: writing string %d: %w", i, err)
		}
	}

	for i, layer := range file.Layers {
		if err := writeLayer(w, layer); err != nil {
			return fmt.Errorf("rmp: layer %d: %w", i, err)
		}
	}

	for i, p := range file.Persons {
		eh := entityHeader{X: uint16(p.X), Y: uint16(p.Y), Z: uint16(p.Layer), Type: entityPerson}
		if err := writePerson(w, &eh, &p); err != nil {
			return fmt.Errorf("rmp: person %d: %w", i, err)
		}
	}
	for i, t := range file.Triggers {
		eh := entityHeader{X: uint16(t.X), Y: uint16(t.Y), Z: uint16(t.Layer), Type: entityTrigger}
		if err := binfmt.WriteStruct(w, &eh); err != nil {
			return fmt.Errorf("rmp: trigger %d: %w", i, err)
		}
		if err := binfmt.WriteLString(w, t.Script); err != nil {
			return fmt.Errorf("rmp: trigger %d script: %w", i, err)
		}
	}

	for i, z := range file.Zones {
		b := z.Bounds.Normalize()
		zh := zoneHeader{
			X1: uint16(b.X1), Y1: uint16(b.Y1), X2: uint16(b.X2), Y2: uint16(b.Y2),
			Layer: uint16(z.Layer),
			Steps: uint16(z.Steps),
		}
		if err := binfmt.WriteStruct(w, &zh); err != nil {
			return fmt.Errorf("rmp: zone %d: %w", i, err)
		}
		if err := binfmt.WriteLString(w, z.Script); err != nil {
			return fmt.Errorf("rmp: zone %d script: %w", i, err)
		}
	}

	if file.TilesetFile == "" {
		if err := tileset.Write(w, file.Tileset); err != nil {
			return fmt.Errorf("rmp: embedded tileset: %w", err)
		}
	}
	return nil
}

func writeLayer(w io.Writer, layer *Layer) error {
	lh := layerHeader{
		Width:       int16(layer.Width),
		Height:      int16(layer.Height),
		NumSegments: int32(len(layer.Segments)),
	}
	if !layer.Visible {
		lh.Flags |= flagInvisible
	}
	if layer.Parallax {
		lh.Flags |= flagParallax
		lh.ParallaxX = float32(layer.ParallaxX)
		lh.ParallaxY = float32(layer.ParallaxY)
		lh.ScrollX = float32(layer.AutoscrollX)
		lh.ScrollY = float32(layer.AutoscrollY)
	}
	if layer.Reflective {
		lh.Reflective = 1
	}
	if err := binfmt.WriteStruct(w, &lh); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := binfmt.WriteLString(w, layer.Name); err != nil {
		return fmt.Errorf("writing name: %w", err)
	}

	raw := make([]int16, len(layer.Tiles))
	for i, t := range layer.Tiles {
		raw[i] = int16(t)
	}
	if err := binfmt.WriteStruct(w, raw); err != nil {
		return fmt.Errorf("writing tiles: %w", err)
	}
	for _, s := range layer.Segments {
		seg := [4]uint32{uint32(s.X1), uint32(s.Y1), uint32(s.X2), uint32(s.Y2)}
		if err := binfmt.WriteStruct(w, &seg); err != nil {
			return fmt.Errorf("writing segment: %w", err)
		}
	}
	return nil
}

func writePerson(w io.Writer, eh *entityHeader, p *Person) error {
	if err := binfmt.WriteStruct(w, eh); err != nil {
		return err
	}
	if err := binfmt.WriteLString(w, p.Name); err != nil {
		return err
	}
	if err := binfmt.WriteLString(w, p.Spriteset); err != nil {
		return err
	}
	if err := binfmt.WriteStruct(w, uint16(NumPersonScripts)); err != nil {
		return err
	}
	for _, src := range p.Scripts {
		if err := binfmt.WriteLString(w, src); err != nil {
			return err
		}
	}
	var trailer [16]byte
	return binfmt.WriteStruct(w, &trailer)
}
