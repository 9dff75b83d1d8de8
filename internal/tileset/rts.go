package tileset

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/vovakirdan/minisphere/internal/binfmt"
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/obsmap"
)

const rtsSignature = ".rts"

// rtsHeader is the 256-byte file header.
type rtsHeader struct {
	Signature       [4]byte
	Version         int16
	NumTiles        int16
	TileWidth       int16
	TileHeight      int16
	BPP             int16
	Compression     uint8
	HasObstructions uint8
	Reserved        [240]byte
}

// rtsTileInfo is the 32-byte record following the pixel data for each tile.
type rtsTileInfo struct {
	Reserved1       uint8
	Animated        uint8
	NextTile        int16
	Delay           int16
	Reserved2       uint8
	ObstructionType uint8
	NumSegments     int16
	NameLength      int16
	Terraformed     uint8
	Reserved        [19]byte
}

// Obstruction encodings.
const (
	obsNone    = 0
	obsPixels  = 1 // Per-pixel masks are no longer supported and are skipped
	obsSegment = 2
)

// Load reads an .rts file from disk.
func Load(path string) (*Tileset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rts: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Read decodes an RTS tileset from r. Maps embed tilesets in the same format,
// so r is left positioned right after the last tile record.
func Read(r io.Reader) (*Tileset, error) {
	var hdr rtsHeader
	if err := binfmt.ReadStruct(r, &hdr); err != nil {
		return nil, fmt.Errorf("rts: reading header: %w", err)
	}
	if err := binfmt.CheckSignature(hdr.Signature, rtsSignature); err != nil {
		return nil, fmt.Errorf("rts: %w", err)
	}
	switch {
	case hdr.Version != 1:
		return nil, fmt.Errorf("rts: unsupported version %d", hdr.Version)
	case hdr.BPP != 32:
		return nil, fmt.Errorf("rts: unsupported bit depth %d", hdr.BPP)
	case hdr.Compression != 0:
		return nil, fmt.Errorf("rts: compressed tilesets are not supported")
	case hdr.NumTiles < 0 || hdr.TileWidth <= 0 || hdr.TileHeight <= 0:
		return nil, fmt.Errorf("rts: bad dimensions %d tiles of %dx%d", hdr.NumTiles, hdr.TileWidth, hdr.TileHeight)
	}

	w, h := int(hdr.TileWidth), int(hdr.TileHeight)
	images := make([]image.Image, hdr.NumTiles)
	for i := range images {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		if _, err := io.ReadFull(r, img.Pix); err != nil {
			return nil, fmt.Errorf("rts: reading tile %d pixels: %w", i, err)
		}
		images[i] = img
	}
	ts := New(w, h, images)

	for i := range ts.tiles {
		var info rtsTileInfo
		if err := binfmt.ReadStruct(r, &info); err != nil {
			return nil, fmt.Errorf("rts: reading tile %d info: %w", i, err)
		}
		name, err := binfmt.ReadRaw(r, int(info.NameLength))
		if err != nil {
			return nil, fmt.Errorf("rts: reading tile %d name: %w", i, err)
		}
		tile := &ts.tiles[i]
		tile.Name = name
		if info.Animated != 0 {
			tile.Delay = int(info.Delay)
			ts.SetNext(i, int(info.NextTile))
		}
		tile.FramesLeft = tile.Delay

		if hdr.HasObstructions == 0 {
			continue
		}
		switch info.ObstructionType {
		case obsNone:
		case obsPixels:
			if err := binfmt.Skip(r, int64(w*h)); err != nil {
				return nil, fmt.Errorf("rts: skipping tile %d mask: %w", i, err)
			}
		case obsSegment:
			m := obsmap.New()
			for j := 0; j < int(info.NumSegments); j++ {
				var seg [4]uint16
				if err := binfmt.ReadStruct(r, &seg); err != nil {
					return nil, fmt.Errorf("rts: reading tile %d segment %d: %w", i, j, err)
				}
				m.AddLine(core.Line(int(seg[0]), int(seg[1]), int(seg[2]), int(seg[3])))
			}
			tile.Obsmap = m
		default:
			return nil, fmt.Errorf("rts: tile %d has unknown obstruction type %d", i, info.ObstructionType)
		}
	}
	return ts, nil
}

// Write encodes ts in RTS format.
func Write(w io.Writer, ts *Tileset) error {
	hdr := rtsHeader{
		Signature:       binfmt.Signature(rtsSignature),
		Version:         1,
		NumTiles:        int16(len(ts.tiles)),
		TileWidth:       int16(ts.tileW),
		TileHeight:      int16(ts.tileH),
		BPP:             32,
		HasObstructions: 1,
	}
	if err := binfmt.WriteStruct(w, &hdr); err != nil {
		return fmt.Errorf("rts: writing header: %w", err)
	}

	row := make([]byte, ts.tileW*4)
	for i := range ts.tiles {
		img := ts.tiles[i].Image
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			copy(row, img.Pix[off:off+len(row)])
			if _, err := w.Write(row); err != nil {
				return fmt.Errorf("rts: writing tile %d pixels: %w", i, err)
			}
		}
	}

	for i := range ts.tiles {
		tile := &ts.tiles[i]
		info := rtsTileInfo{
			NextTile:   int16(tile.NextIndex),
			Delay:      int16(tile.Delay),
			NameLength: int16(len(tile.Name)),
		}
		if tile.Delay > 0 {
			info.Animated = 1
		}
		lines := tile.Obsmap.Lines()
		if tile.Obsmap != nil {
			info.ObstructionType = obsSegment
			info.NumSegments = int16(len(lines))
		}
		if err := binfmt.WriteStruct(w, &info); err != nil {
			return fmt.Errorf("rts: writing tile %d info: %w", i, err)
		}
		if _, err := io.WriteString(w, tile.Name); err != nil {
			return fmt.Errorf("rts: writing tile %d name: %w", i, err)
		}
		for _, l := range lines {
			seg := [4]uint16{uint16(l.X1), uint16(l.Y1), uint16(l.X2), uint16(l.Y2)}
			if err := binfmt.WriteStruct(w, &seg); err != nil {
				return fmt.Errorf("rts: writing tile %d segment: %w", i, err)
			}
		}
	}
	return nil
}
