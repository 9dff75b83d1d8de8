// Package registry keeps the catalogue of games a player can start. A game
// is a directory holding maps/, spritesets/ and tilesets/ and an optional
// game.yaml; the registry discovers them on disk and launches map engines
// for them.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/engine"
	"github.com/vovakirdan/minisphere/internal/gfx"
	"github.com/vovakirdan/minisphere/internal/script/gointerp"
)

// ManifestName is the optional per-game settings file.
const ManifestName = "game.yaml"

// GameInfo describes one game directory.
type GameInfo struct {
	ID       string `yaml:"-"`
	Title    string `yaml:"title"`
	Dir      string `yaml:"-"`
	StartMap string `yaml:"start_map"` // First map in maps/ when empty
	Script   string `yaml:"script"`    // Go source evaluated before the first map
}

// Inspect reads the game in dir. The directory must contain maps/.
func Inspect(dir string) (GameInfo, error) {
	info := GameInfo{ID: filepath.Base(filepath.Clean(dir)), Dir: dir}
	st, err := os.Stat(filepath.Join(dir, engine.MapsDir))
	if err != nil {
		return info, fmt.Errorf("registry: %s is not a game: %w", dir, err)
	}
	if !st.IsDir() {
		return info, fmt.Errorf("registry: %s/%s is not a directory", dir, engine.MapsDir)
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return info, fmt.Errorf("registry: %w", err)
	default:
		if err := yaml.Unmarshal(data, &info); err != nil {
			return info, fmt.Errorf("registry: parsing %s: %w", ManifestName, err)
		}
	}
	if info.Title == "" {
		info.Title = info.ID
	}
	return info, nil
}

// Registry is a thread-safe set of games keyed by ID.
type Registry struct {
	mu    sync.RWMutex
	games map[string]GameInfo
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{games: make(map[string]GameInfo)}
}

// Register adds a game. Returns an error if the ID is already taken.
func (r *Registry) Register(g GameInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[g.ID]; exists {
		return fmt.Errorf("registry: game %q already registered", g.ID)
	}
	r.games[g.ID] = g
	return nil
}

// Scan registers root itself when it is a game, otherwise every immediate
// subdirectory that is one. It returns the number of games added.
func (r *Registry) Scan(root string) (int, error) {
	if g, err := Inspect(root); err == nil {
		return 1, r.Register(g)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("registry: %w", err)
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		g, err := Inspect(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		if err := r.Register(g); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// List returns all registered games, sorted by ID.
func (r *Registry) List() []GameInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]GameInfo, 0, len(r.games))
	for _, g := range r.games {
		result = append(result, g)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the game with the given ID.
func (r *Registry) Lookup(id string) (GameInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return GameInfo{}, fmt.Errorf("registry: unknown game %q", id)
	}
	return g, nil
}

// Len returns the number of registered games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// LaunchOptions are the per-player parts of a launch.
type LaunchOptions struct {
	Config   config.EngineConfig
	Logger   *log.Logger
	Input    engine.Input
	Renderer gfx.Renderer
	Map      string // Overrides the game's start map
}

// Launch builds a map engine for the game with Go scripting enabled, runs
// the game script and starts the first map. The caller owns the engine.
func (g GameInfo) Launch(opts LaunchOptions) (*engine.Engine, error) {
	engOpts, err := opts.Config.EngineOptions()
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	engOpts.Logger = opts.Logger
	engOpts.Input = opts.Input
	engOpts.Renderer = opts.Renderer
	engOpts.Assets = engine.NewAssets(os.DirFS(g.Dir))

	e := engine.New(engOpts)
	interp, err := gointerp.New(engine.Symbols(e))
	if err != nil {
		return nil, err
	}
	e.SetCompiler(interp)

	if g.Script != "" {
		src, err := os.ReadFile(filepath.Join(g.Dir, g.Script))
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if err := interp.Eval(string(src)); err != nil {
			return nil, fmt.Errorf("registry: %s: %w", g.Script, err)
		}
	}

	start := opts.Map
	if start == "" {
		start = g.StartMap
	}
	if start == "" {
		maps, err := engOpts.Assets.Maps()
		if err != nil {
			return nil, err
		}
		if len(maps) == 0 {
			return nil, fmt.Errorf("registry: game %q has no maps", g.ID)
		}
		start = maps[0]
	}

	if err := e.Start(start); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}
