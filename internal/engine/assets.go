package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/minisphere/internal/rmp"
	"github.com/vovakirdan/minisphere/internal/spriteset"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

// Asset directories inside a game.
const (
	MapsDir       = "maps"
	SpritesetsDir = "spritesets"
	TilesetsDir   = "tilesets"
)

// Assets resolves game files by name inside a game directory and caches
// spritesets, which many persons usually share, and external tilesets,
// which many maps usually share.
type Assets struct {
	fsys    fs.FS
	sprites map[string]*spriteset.Spriteset
	tiles   map[string]*tileset.Tileset // By path inside the game
}

// NewAssets creates a resolver over a game directory.
func NewAssets(fsys fs.FS) *Assets {
	return &Assets{
		fsys:    fsys,
		sprites: make(map[string]*spriteset.Spriteset),
		tiles:   make(map[string]*tileset.Tileset),
	}
}

// FS returns the underlying file system.
func (a *Assets) FS() fs.FS {
	return a.fsys
}

func withExt(name, ext string) string {
	if strings.EqualFold(path.Ext(name), ext) {
		return name
	}
	return name + ext
}

func (a *Assets) open(name string) (fs.File, error) {
	if a == nil || a.fsys == nil {
		return nil, fmt.Errorf("assets: no game directory for %s", name)
	}
	f, err := a.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return f, nil
}

// Map reads maps/<name>. The .rmp extension is optional.
func (a *Assets) Map(name string) (*rmp.File, error) {
	f, err := a.open(path.Join(MapsDir, withExt(name, ".rmp")))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rmp.Read(bufio.NewReader(f))
}

// Tileset returns a new reference to the external tileset of a map. The
// file is looked up next to the map first and in tilesets/ second; each
// path is read once and shared after that.
func (a *Assets) Tileset(mapName, file string) (*tileset.Tileset, error) {
	candidates := []string{
		path.Join(MapsDir, path.Dir(mapName), file),
		path.Join(TilesetsDir, file),
	}
	var lastErr error
	for _, name := range candidates {
		if ts, ok := a.tiles[name]; ok {
			return ts.Ref(), nil
		}
		f, err := a.open(name)
		if err != nil {
			lastErr = err
			continue
		}
		ts, err := tileset.Read(bufio.NewReader(f))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		a.tiles[name] = ts
		return ts.Ref(), nil
	}
	return nil, lastErr
}

// Spriteset returns a new reference to spritesets/<name>, loading it on
// first use. The .rss extension is optional. Callers release their
// reference when done.
func (a *Assets) Spriteset(name string) (*spriteset.Spriteset, error) {
	name = withExt(name, ".rss")
	if ss, ok := a.sprites[name]; ok {
		return ss.Ref(), nil
	}
	f, err := a.open(path.Join(SpritesetsDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss, err := spriteset.Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	ss.Filename = name
	a.sprites[name] = ss
	return ss.Ref(), nil
}

// Cached returns the number of cached spritesets and tilesets.
func (a *Assets) Cached() int {
	return len(a.sprites) + len(a.tiles)
}

// Purge drops cached assets nobody else references and returns how many
// were dropped.
func (a *Assets) Purge() int {
	n := 0
	for name, ss := range a.sprites {
		if ss.Refs() <= 1 {
			ss.Release()
			delete(a.sprites, name)
			n++
		}
	}
	for name, ts := range a.tiles {
		if ts.Refs() <= 1 {
			ts.Release()
			delete(a.tiles, name)
			n++
		}
	}
	return n
}

// Maps lists the map files of the game, sorted.
func (a *Assets) Maps() ([]string, error) {
	if a == nil || a.fsys == nil {
		return nil, errors.New("assets: no game directory")
	}
	var names []string
	err := fs.WalkDir(a.fsys, MapsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ".rmp") {
			return nil
		}
		rel := strings.TrimPrefix(p, MapsDir+"/")
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: walking %s: %w", MapsDir, err)
	}
	sort.Strings(names)
	return names, nil
}
