package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

func sessionWith(t *testing.T, store *storage.Store, ids ...string) SessionModel {
	t.Helper()
	root := t.TempDir()
	games := registry.New()
	for _, id := range ids {
		if err := games.Register(writeGame(t, filepath.Join(root, id))); err != nil {
			t.Fatal(err)
		}
	}
	return NewSessionModel(SessionOptions{
		Games:  games,
		Config: config.DefaultEngineConfig(),
		Store:  store,
		Width:  80,
		Height: 25,
	})
}

func send(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return sm, cmd
}

func TestSessionSingleGameStartsPlaying(t *testing.T) {
	m := sessionWith(t, nil, "field")
	if m.screen != screenGame {
		t.Fatalf("screen = %v, expected the game", m.screen)
	}
	if m.Init() == nil {
		t.Error("Init() should start the frame loop")
	}
	m, _ = send(t, m, TickMsg{})
	if m.View() == "" {
		t.Error("View() is empty while playing")
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.quitting {
		t.Error("quitting the game should end the session")
	}
}

func TestSessionSlotsThenGame(t *testing.T) {
	store := openStore(t)
	m := sessionWith(t, store, "field")
	if m.screen != screenSlots {
		t.Fatalf("screen = %v, expected the slot picker", m.screen)
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenGame {
		t.Fatalf("screen = %v after enter, expected the game", m.screen)
	}
	if cmd == nil {
		t.Error("starting the game should schedule a tick")
	}
	if m.game.engine.MapName() != "field.rmp" {
		t.Errorf("map = %q, expected field.rmp", m.game.engine.MapName())
	}
}

func TestSessionLoadsChosenSlot(t *testing.T) {
	store := openStore(t)
	m := sessionWith(t, store, "field")
	gameID := m.slots.game.ID

	// Save a game that has walked a bit, then pick its slot.
	gm, err := NewGameModel(GameOptions{Game: m.slots.game, Config: config.DefaultEngineConfig(), Store: store})
	if err != nil {
		t.Fatal(err)
	}
	if err := gm.engine.SetCameraXY(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := gm.save("1"); err != nil {
		t.Fatalf("save() error: %v", err)
	}
	gm.finish("quit")

	m.slots = NewSlotsModel(m.slots.game, store, 80, 25)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenGame {
		t.Fatalf("screen = %v, expected the game (menu status %q)", m.screen, m.menu.status)
	}
	snap, err := store.LoadSlot(gameID, "1")
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := m.game.engine.GetCameraX(); x != snap.CameraX {
		t.Errorf("camera x = %d, expected the saved %d", x, snap.CameraX)
	}
}

func TestSessionMenuFlow(t *testing.T) {
	store := openStore(t)
	m := sessionWith(t, store, "beta", "alpha")
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, expected the menu", m.screen)
	}
	if m.Init() != nil {
		t.Error("menu Init() should not tick")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenSlots || m.slots.game.ID != "beta" {
		t.Fatalf("screen = %v for %q, expected beta's slots", m.screen, m.slots.game.ID)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu {
		t.Fatalf("screen = %v after back, expected the menu", m.screen)
	}

	m, cmd := send(t, m, runeKey('q'))
	if cmd == nil || !m.quitting || m.View() != "" {
		t.Error("q in the menu should quit the session")
	}
}

func TestSessionLaunchFailureShowsInMenu(t *testing.T) {
	m := sessionWith(t, nil, "alpha", "beta")
	alpha, _ := m.opts.Games.Lookup("alpha")
	if err := os.Remove(filepath.Join(alpha.Dir, "maps", "field.rmp")); err != nil {
		t.Fatal(err)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, expected to stay in the menu", m.screen)
	}
	if m.menu.status == "" || m.Err() == nil {
		t.Error("launch error should be shown in the menu")
	}
}

func TestRunNeedsGames(t *testing.T) {
	if err := Run(SessionOptions{}); err == nil {
		t.Error("Run() without games should fail")
	}
}
