package tui

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/rmp"
	"github.com/vovakirdan/minisphere/internal/spriteset"
	"github.com/vovakirdan/minisphere/internal/storage"
	"github.com/vovakirdan/minisphere/internal/tileset"
)

// heroScript spawns an input-driven Hero on every map.
const heroScript = `sphere.SetDefaultMapScript(sphere.ScriptOnEnterMap, "sphere.CreatePerson(\"Hero\", \"hero.rss\", false)\nsphere.AttachInput(\"Hero\")")
`

// writeGame creates a one-map game whose script puts Hero at 32,32.
func writeGame(t *testing.T, dir string) registry.GameInfo {
	t.Helper()
	for _, sub := range []string{"maps", "spritesets"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Create(filepath.Join(dir, "maps", "field.rmp"))
	if err != nil {
		t.Fatal(err)
	}
	m := &rmp.File{
		StartX:  32,
		StartY:  32,
		Layers:  []*rmp.Layer{rmp.NewLayer("ground", 8, 8, 0)},
		Tileset: tileset.New(16, 16, []image.Image{nil}),
	}
	if err := rmp.Write(f, m); err != nil {
		t.Fatalf("rmp.Write() error: %v", err)
	}
	f.Close()

	f, err = os.Create(filepath.Join(dir, "spritesets", "hero.rss"))
	if err != nil {
		t.Fatal(err)
	}
	var poses []spriteset.Pose
	for _, name := range []string{"south", "north", "east", "west"} {
		poses = append(poses, spriteset.Pose{Name: name, Frames: []spriteset.Frame{{ImageIndex: 0, Delay: 8}}})
	}
	ss := spriteset.New(core.Rect{X2: 16, Y2: 16},
		[]*image.NRGBA{image.NewNRGBA(image.Rect(0, 0, 16, 16))}, poses)
	if err := spriteset.Write(f, ss); err != nil {
		t.Fatalf("spriteset.Write() error: %v", err)
	}
	f.Close()

	if err := os.WriteFile(filepath.Join(dir, "game.go"), []byte(heroScript), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, registry.ManifestName), []byte("title: Field\nscript: game.go\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	g, err := registry.Inspect(dir)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	return g
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("storage.Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newGame(t *testing.T, store *storage.Store) GameModel {
	t.Helper()
	g := writeGame(t, filepath.Join(t.TempDir(), "field"))
	m, err := NewGameModel(GameOptions{
		Game:   g,
		Config: config.DefaultEngineConfig(),
		Store:  store,
		Width:  80,
		Height: 25,
		User:   "alice",
	})
	if err != nil {
		t.Fatalf("NewGameModel() error: %v", err)
	}
	return m
}

func step(t *testing.T, m GameModel, msg tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return gm, cmd
}

func heroX(t *testing.T, m GameModel) int {
	t.Helper()
	x, err := m.engine.GetPersonX("Hero")
	if err != nil {
		t.Fatalf("GetPersonX() error: %v", err)
	}
	return x
}

func TestGameModelMovesHero(t *testing.T) {
	m := newGame(t, nil)
	if m.Init() == nil {
		t.Fatal("Init() should start the frame loop")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	for range 5 {
		var cmd tea.Cmd
		m, cmd = step(t, m, TickMsg{})
		if cmd == nil {
			t.Fatal("tick did not schedule the next frame")
		}
	}
	if x := heroX(t, m); x != 36 {
		t.Errorf("Hero x = %d, expected 36", x)
	}
	if dir, _ := m.engine.GetPersonDirection("Hero"); dir != "east" {
		t.Errorf("Hero direction = %q, expected east", dir)
	}
}

func TestGameModelView(t *testing.T) {
	m := newGame(t, nil)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 40, Height: 16})
	m, _ = step(t, m, TickMsg{})

	view := m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 16 {
		t.Errorf("View() has %d lines, expected 15 of map and a status bar", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "field.rmp") {
		t.Errorf("status bar = %q, expected the map name", lines[len(lines)-1])
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.showHelp || !strings.Contains(m.View(), "quick save") {
		t.Error("help toggle did not show the key help")
	}
}

func TestGameModelQuickSaveLoad(t *testing.T) {
	store := openStore(t)
	m := newGame(t, store)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.status != "saved" {
		t.Fatalf("status = %q after quick save, expected saved", m.status)
	}
	if _, err := store.LoadSlot(m.game.ID, QuickSlot); err != nil {
		t.Fatalf("quick slot not written: %v", err)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	for range 5 {
		m, _ = step(t, m, TickMsg{})
	}
	if x := heroX(t, m); x != 36 {
		t.Fatalf("Hero x = %d before load, expected 36", x)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.status != "loaded" {
		t.Fatalf("status = %q after quick load, expected loaded", m.status)
	}
	if x := heroX(t, m); x != 32 {
		t.Errorf("Hero x = %d after load, expected 32", x)
	}
	if m.keys.IsKeyDown(core.KeyRight) {
		t.Error("load should release held keys")
	}
}

func TestGameModelSaveWithoutStore(t *testing.T) {
	m := newGame(t, nil)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.status == "saved" || m.status == "" {
		t.Errorf("status = %q, expected an error", m.status)
	}
}

func TestGameModelQuitRecordsSession(t *testing.T) {
	store := openStore(t)
	m := newGame(t, store)
	m, _ = step(t, m, TickMsg{})
	m, _ = step(t, m, TickMsg{})

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil || !m.Done() {
		t.Fatal("quit key did not end the game")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}

	recs, err := store.RecentSessions(m.game.ID, 10)
	if err != nil {
		t.Fatalf("RecentSessions() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("RecentSessions() = %d records, expected 1", len(recs))
	}
	rec := recs[0]
	if rec.User != "alice" || rec.EndReason != "quit" || rec.Frames != 2 || rec.StartMap != "field.rmp" {
		t.Errorf("session = %+v", rec)
	}

	// Further messages are ignored.
	if _, cmd := step(t, m, TickMsg{}); cmd != nil {
		t.Error("finished game should not tick")
	}
}

func TestGameModelScriptExit(t *testing.T) {
	m := newGame(t, nil)
	if err := m.engine.SetUpdateScript(`sphere.ExitMapEngine()`); err != nil {
		t.Fatalf("SetUpdateScript() error: %v", err)
	}
	m, cmd := step(t, m, TickMsg{})
	if cmd == nil || m.Done() {
		t.Fatal("the frame that asks to exit should still be shown")
	}
	m, cmd = step(t, m, TickMsg{})
	if cmd == nil || !m.Done() || m.Err() != nil {
		t.Errorf("Done() = %v, Err() = %v, expected a clean exit", m.Done(), m.Err())
	}
}

func TestGameModelScriptError(t *testing.T) {
	m := newGame(t, nil)
	if err := m.engine.SetUpdateScript(`sphere.DestroyPerson("Nobody")`); err != nil {
		t.Fatalf("SetUpdateScript() error: %v", err)
	}
	m, _ = step(t, m, TickMsg{})
	if !m.Done() || m.Err() == nil {
		t.Errorf("Done() = %v, Err() = %v, expected the script error", m.Done(), m.Err())
	}
}
