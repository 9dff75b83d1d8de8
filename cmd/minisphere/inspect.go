package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minisphere/internal/rmp"
	"github.com/vovakirdan/minisphere/internal/spriteset"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Dump a map, tileset or spriteset file",
	Long: `Decode an .rmp, .rts or .rss file and print what it holds.

Examples:
  minisphere inspect ./games/quest/maps/town.rmp
  minisphere inspect ./games/quest/spritesets/hero.rss`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".rmp":
		m, err := rmp.Load(path)
		if err != nil {
			return err
		}
		printMap(m)
	case ".rts":
		ts, err := tileset.Load(path)
		if err != nil {
			return err
		}
		printTileset(ts)
	case ".rss":
		ss, err := spriteset.Load(path)
		if err != nil {
			return err
		}
		printSpriteset(ss)
	default:
		return fmt.Errorf("unknown file type %q (expected .rmp, .rts or .rss)", ext)
	}
	return nil
}

func printMap(m *rmp.File) {
	fmt.Printf("Start:     %d,%d layer %d direction %d\n", m.StartX, m.StartY, m.StartLayer, m.StartDirection)
	fmt.Printf("Repeating: %v\n", m.Repeating)
	if m.TilesetFile != "" {
		fmt.Printf("Tileset:   %s\n", m.TilesetFile)
	} else if m.Tileset != nil {
		w, h := m.Tileset.TileSize()
		fmt.Printf("Tileset:   embedded, %d tiles of %dx%d\n", m.Tileset.Len(), w, h)
	}
	if m.Music != "" {
		fmt.Printf("Music:     %s\n", m.Music)
	}
	fmt.Println()

	fmt.Printf("Layers (%d):\n", len(m.Layers))
	for i, l := range m.Layers {
		var flags []string
		if !l.Visible {
			flags = append(flags, "hidden")
		}
		if l.Parallax {
			flags = append(flags, "parallax")
		}
		if l.Reflective {
			flags = append(flags, "reflective")
		}
		fmt.Printf("  %2d  %-16s %dx%d  %d segments  %s\n", i, l.Name, l.Width, l.Height, len(l.Segments), strings.Join(flags, ","))
	}

	fmt.Printf("Persons (%d):\n", len(m.Persons))
	for _, p := range m.Persons {
		fmt.Printf("  %-16s %-20s at %d,%d layer %d\n", p.Name, p.Spriteset, p.X, p.Y, p.Layer)
	}
	fmt.Printf("Triggers (%d):\n", len(m.Triggers))
	for _, t := range m.Triggers {
		fmt.Printf("  at %d,%d layer %d  %s\n", t.X, t.Y, t.Layer, oneLine(t.Script))
	}
	fmt.Printf("Zones (%d):\n", len(m.Zones))
	for _, z := range m.Zones {
		b := z.Bounds
		fmt.Printf("  %d,%d-%d,%d layer %d every %d steps  %s\n", b.X1, b.Y1, b.X2, b.Y2, z.Layer, z.Steps, oneLine(z.Script))
	}
}

func printTileset(ts *tileset.Tileset) {
	w, h := ts.TileSize()
	fmt.Printf("Tiles: %d of %dx%d\n", ts.Len(), w, h)
	for i := range ts.Len() {
		line := fmt.Sprintf("  %3d", i)
		if name := ts.Name(i); name != "" {
			line += "  " + name
		}
		if d := ts.Delay(i); d > 0 {
			line += fmt.Sprintf("  next %d after %d frames", ts.Next(i), d)
		}
		fmt.Println(line)
	}
}

func printSpriteset(ss *spriteset.Spriteset) {
	b := ss.Base()
	fmt.Printf("Frame size: %dx%d\n", ss.Width(), ss.Height())
	fmt.Printf("Base:       %d,%d-%d,%d\n", b.X1, b.Y1, b.X2, b.Y2)
	fmt.Printf("Images:     %d\n", ss.NumImages())
	fmt.Printf("Poses (%d):\n", len(ss.Poses()))
	for _, p := range ss.Poses() {
		frames := make([]string, len(p.Frames))
		for i, f := range p.Frames {
			frames[i] = fmt.Sprintf("%d/%d", f.ImageIndex, f.Delay)
		}
		fmt.Printf("  %-12s %s\n", p.Name, strings.Join(frames, " "))
	}
}

// oneLine shortens a script for a single output line.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	if s == "" {
		s = "(no script)"
	}
	return s
}
