// Package rmp reads and writes Sphere .rmp map files. The decoded File keeps
// script sources as text; compiling them is the map engine's job.
package rmp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/vovakirdan/minisphere/internal/binfmt"
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/obsmap"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

const signature = ".rmp"

// Map script slots, in file order after the tileset, music and script names.
const (
	ScriptOnEnter = iota
	ScriptOnLeave
	ScriptOnLeaveNorth
	ScriptOnLeaveEast
	ScriptOnLeaveSouth
	ScriptOnLeaveWest
	NumScripts
)

// Person script slots.
const (
	PersonOnCreate = iota
	PersonOnDestroy
	PersonOnTouch
	PersonOnTalk
	PersonGenerator
	NumPersonScripts
)

// Layer flags.
const (
	flagInvisible = 1 << 0
	flagParallax  = 1 << 1
)

// Entity types.
const (
	entityPerson  = 1
	entityTrigger = 2
)

type header struct {
	Signature      [4]byte
	Version        int16
	Type           uint8
	NumLayers      int8
	Reserved1      uint8
	NumEntities    int16
	StartX         int16
	StartY         int16
	StartLayer     int8
	StartDirection int8
	NumStrings     int16
	NumZones       int16
	RepeatMap      uint8
	Reserved       [234]byte
}

type layerHeader struct {
	Width       int16
	Height      int16
	Flags       uint16
	ParallaxX   float32
	ParallaxY   float32
	ScrollX     float32
	ScrollY     float32
	NumSegments int32
	Reflective  uint8
	Reserved    [3]byte
}

type entityHeader struct {
	X        uint16
	Y        uint16
	Z        uint16
	Type     uint16
	Reserved [8]byte
}

type zoneHeader struct {
	X1       uint16
	Y1       uint16
	X2       uint16
	Y2       uint16
	Layer    uint16
	Steps    uint16
	Reserved [4]byte
}

// Layer is one tile plane of a map.
type Layer struct {
	Name        string
	Width       int
	Height      int
	Tiles       []int // Row-major tile indices
	Visible     bool
	Parallax    bool
	ParallaxX   float64
	ParallaxY   float64
	AutoscrollX float64
	AutoscrollY float64
	Reflective  bool
	Segments    []core.Rect
}

// Tile returns the tile index at a cell.
func (l *Layer) Tile(x, y int) int {
	return l.Tiles[x+y*l.Width]
}

// Obsmap builds the layer's obstruction map from its segments.
func (l *Layer) Obsmap() *obsmap.ObsMap {
	m := obsmap.New()
	for _, s := range l.Segments {
		m.AddLine(s)
	}
	return m
}

// Person is a person entity placed by the map.
type Person struct {
	Name      string
	Spriteset string
	X, Y      int
	Layer     int
	Scripts   [NumPersonScripts]string
}

// Trigger is a trigger entity placed by the map.
type Trigger struct {
	X, Y   int
	Layer  int
	Script string
}

// Zone is a rectangular step-counting region.
type Zone struct {
	Bounds core.Rect
	Layer  int
	Steps  int
	Script string
}

// File is a decoded map.
type File struct {
	Repeating      bool
	StartX         int
	StartY         int
	StartLayer     int
	StartDirection int
	TilesetFile    string // Empty when the tileset is embedded
	Music          string
	ScriptFile     string
	Scripts        [NumScripts]string
	Layers         []*Layer
	Persons        []Person
	Triggers       []Trigger
	Zones          []Zone
	Tileset        *tileset.Tileset // Embedded tileset, nil when TilesetFile is set
}

// Load reads an .rmp file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rmp: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Read decodes a map from r.
func Read(r io.Reader) (*File, error) {
	var hdr header
	if err := binfmt.ReadStruct(r, &hdr); err != nil {
		return nil, fmt.Errorf("rmp: reading header: %w", err)
	}
	if err := binfmt.CheckSignature(hdr.Signature, signature); err != nil {
		return nil, fmt.Errorf("rmp: %w", err)
	}
	if hdr.Version != 1 {
		return nil, fmt.Errorf("rmp: unsupported version %d", hdr.Version)
	}
	if hdr.NumLayers <= 0 || hdr.NumEntities < 0 || hdr.NumZones < 0 {
		return nil, fmt.Errorf("rmp: bad counts: %d layers, %d entities, %d zones", hdr.NumLayers, hdr.NumEntities, hdr.NumZones)
	}
	if hdr.NumStrings != 3 && hdr.NumStrings != 5 && hdr.NumStrings < 9 {
		return nil, fmt.Errorf("rmp: unexpected string count %d", hdr.NumStrings)
	}

	file := &File{
		Repeating:      hdr.RepeatMap != 0,
		StartX:         int(hdr.StartX),
		StartY:         int(hdr.StartY),
		StartLayer:     int(hdr.StartLayer),
		StartDirection: int(hdr.StartDirection),
	}

	strs := make([]string, hdr.NumStrings)
	for i := range strs {
		s, err := binfmt.ReadLString(r)
		if err != nil {
			return nil, fmt.Errorf("rmp: reading string %d: %w", i, err)
		}
		strs[i] = s
	}
	file.TilesetFile, file.Music, file.ScriptFile = strs[0], strs[1], strs[2]
	// Strings 3 and 4 are the enter and leave scripts, 5 to 8 the edge scripts.
	for i := 3; i < len(strs) && i-3 < NumScripts; i++ {
		file.Scripts[i-3] = strs[i]
	}

	for i := 0; i < int(hdr.NumLayers); i++ {
		layer, err := readLayer(r)
		if err != nil {
			return nil, fmt.Errorf("rmp: layer %d: %w", i, err)
		}
		file.Layers = append(file.Layers, layer)
	}

	for i := 0; i < int(hdr.NumEntities); i++ {
		if err := readEntity(r, file); err != nil {
			return nil, fmt.Errorf("rmp: entity %d: %w", i, err)
		}
	}

	for i := 0; i < int(hdr.NumZones); i++ {
		var zh zoneHeader
		if err := binfmt.ReadStruct(r, &zh); err != nil {
			return nil, fmt.Errorf("rmp: zone %d: %w", i, err)
		}
		src, err := binfmt.ReadLString(r)
		if err != nil {
			return nil, fmt.Errorf("rmp: zone %d script: %w", i, err)
		}
		file.Zones = append(file.Zones, Zone{
			Bounds: core.Rect{X1: int(zh.X1), Y1: int(zh.Y1), X2: int(zh.X2), Y2: int(zh.Y2)}.Normalize(),
			Layer:  int(zh.Layer),
			Steps:  int(zh.Steps),
			Script: src,
		})
	}

	if file.TilesetFile == "" {
		ts, err := tileset.Read(r)
		if err != nil {
			return nil, fmt.Errorf("rmp: embedded tileset: %w", err)
		}
		file.Tileset = ts
	}

	if file.StartLayer < 0 || file.StartLayer >= len(file.Layers) {
		file.StartLayer = 0
	}
	return file, nil
}

func readLayer(r io.Reader) (*Layer, error) {
	var lh layerHeader
	if err := binfmt.ReadStruct(r, &lh); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if lh.Width <= 0 || lh.Height <= 0 || lh.NumSegments < 0 {
		return nil, fmt.Errorf("bad size %dx%d with %d segments", lh.Width, lh.Height, lh.NumSegments)
	}
	name, err := binfmt.ReadLString(r)
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}

	layer := &Layer{
		Name:       name,
		Width:      int(lh.Width),
		Height:     int(lh.Height),
		Visible:    lh.Flags&flagInvisible == 0,
		Parallax:   lh.Flags&flagParallax != 0,
		ParallaxX:  1,
		ParallaxY:  1,
		Reflective: lh.Reflective != 0,
	}
	if layer.Parallax {
		layer.ParallaxX = float64(lh.ParallaxX)
		layer.ParallaxY = float64(lh.ParallaxY)
		layer.AutoscrollX = float64(lh.ScrollX)
		layer.AutoscrollY = float64(lh.ScrollY)
	}

	raw := make([]int16, layer.Width*layer.Height)
	if err := binfmt.ReadStruct(r, raw); err != nil {
		return nil, fmt.Errorf("reading tiles: %w", err)
	}
	layer.Tiles = make([]int, len(raw))
	for i, t := range raw {
		layer.Tiles[i] = int(t)
	}

	for i := 0; i < int(lh.NumSegments); i++ {
		var seg [4]uint32
		if err := binfmt.ReadStruct(r, &seg); err != nil {
			return nil, fmt.Errorf("reading segment %d: %w", i, err)
		}
		layer.Segments = append(layer.Segments, core.Line(int(seg[0]), int(seg[1]), int(seg[2]), int(seg[3])))
	}
	return layer, nil
}

func readEntity(r io.Reader, file *File) error {
	var eh entityHeader
	if err := binfmt.ReadStruct(r, &eh); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	switch eh.Type {
	case entityPerson:
		p := Person{X: int(eh.X), Y: int(eh.Y), Layer: int(eh.Z)}
		var err error
		if p.Name, err = binfmt.ReadLString(r); err != nil {
			return fmt.Errorf("reading person name: %w", err)
		}
		if p.Spriteset, err = binfmt.ReadLString(r); err != nil {
			return fmt.Errorf("reading person spriteset: %w", err)
		}
		var count uint16
		if err := binfmt.ReadStruct(r, &count); err != nil {
			return fmt.Errorf("reading script count: %w", err)
		}
		for i := 0; i < int(count); i++ {
			src, err := binfmt.ReadLString(r)
			if err != nil {
				return fmt.Errorf("reading person script %d: %w", i, err)
			}
			if i < NumPersonScripts {
				p.Scripts[i] = src
			}
		}
		if err := binfmt.Skip(r, 16); err != nil {
			return fmt.Errorf("reading person trailer: %w", err)
		}
		file.Persons = append(file.Persons, p)
	case entityTrigger:
		src, err := binfmt.ReadLString(r)
		if err != nil {
			return fmt.Errorf("reading trigger script: %w", err)
		}
		file.Triggers = append(file.Triggers, Trigger{X: int(eh.X), Y: int(eh.Y), Layer: int(eh.Z), Script: src})
	default:
		return fmt.Errorf("unknown entity type %d", eh.Type)
	}
	return nil
}
