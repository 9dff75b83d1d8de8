package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

type screen int

const (
	screenMenu screen = iota
	screenSlots
	screenGame
)

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	Games    *registry.Registry
	Config   config.EngineConfig
	Store    *storage.Store
	Logger   *log.Logger
	Renderer *lipgloss.Renderer
	Map      string // Start map override, single-game sessions only
	Width    int
	Height   int
	User     string
	Remote   string
}

// SessionModel manages the whole session flow: menu -> save slots -> game.
// The menu is skipped when only one game is registered, and the slot
// picker when there is no save database.
type SessionModel struct {
	opts     SessionOptions
	screen   screen
	menu     MenuModel
	slots    SlotsModel
	game     GameModel
	quitting bool
	err      error
}

// NewSessionModel creates a session. With a single game it goes straight
// to its slots or launches it.
func NewSessionModel(opts SessionOptions) SessionModel {
	m := SessionModel{
		opts: opts,
		menu: NewMenuModel(opts.Games, opts.Width, opts.Height),
	}
	if games := opts.Games.List(); len(games) == 1 {
		m.choose(games[0])
		if m.screen == screenMenu {
			// The only game failed to launch.
			m.quitting = true
		}
	}
	return m
}

// choose moves on from the menu with the selected game.
func (m *SessionModel) choose(g registry.GameInfo) {
	if m.opts.Store == nil {
		m.launch(g, "")
		return
	}
	m.slots = NewSlotsModel(g, m.opts.Store, m.opts.Width, m.opts.Height)
	m.screen = screenSlots
}

// launch starts the game and switches to it. On failure the session falls
// back to the menu with the error shown.
func (m *SessionModel) launch(g registry.GameInfo, slot string) {
	gm, err := NewGameModel(GameOptions{
		Game:     g,
		Config:   m.opts.Config,
		Store:    m.opts.Store,
		Logger:   m.opts.Logger,
		Renderer: m.opts.Renderer,
		Map:      m.opts.Map,
		Slot:     slot,
		Width:    m.opts.Width,
		Height:   m.opts.Height,
		User:     m.opts.User,
		Remote:   m.opts.Remote,
	})
	if err != nil {
		m.err = err
		m.menu.status = err.Error()
		m.screen = screenMenu
		if m.opts.Logger != nil {
			m.opts.Logger.Error("cannot launch game", "game", g.ID, "error", err)
		}
		return
	}
	m.err = nil
	m.game = gm
	m.screen = screenGame
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	if m.screen == screenGame {
		return m.game.Init()
	}
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenSlots:
		return m.updateSlots(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if selected := m.menu.Selected(); selected != nil {
		m.menu.selected = nil
		m.choose(*selected)
		if m.screen == screenGame {
			return m, m.game.Init()
		}
	}

	return m, cmd
}

// updateSlots handles updates when picking a save slot.
func (m SessionModel) updateSlots(msg tea.Msg) (tea.Model, tea.Cmd) {
	newSlots, cmd := m.slots.Update(msg)
	if slotsModel, ok := newSlots.(SlotsModel); ok {
		m.slots = slotsModel
	}

	switch {
	case m.slots.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.slots.IsGoingBack():
		if m.opts.Games.Len() == 1 {
			m.quitting = true
			return m, tea.Quit
		}
		m.screen = screenMenu
		return m, nil
	}

	if slot, ok := m.slots.Chosen(); ok {
		m.launch(m.slots.game, slot)
		if m.screen == screenGame {
			return m, m.game.Init()
		}
		if m.opts.Games.Len() == 1 {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newGame, cmd := m.game.Update(msg)
	if gameModel, ok := newGame.(GameModel); ok {
		m.game = gameModel
	}

	if m.game.Done() {
		m.quitting = true
		m.err = m.game.Err()
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenSlots:
		return m.slots.View()
	}
	return m.menu.View()
}

// Err returns the error that ended the session, if any.
func (m SessionModel) Err() error {
	return m.err
}

// Run plays in the local terminal until the player quits or the game exits.
func Run(opts SessionOptions) error {
	if opts.Games == nil || opts.Games.Len() == 0 {
		return errors.New("tui: no games to play")
	}
	model := NewSessionModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if sm, ok := final.(SessionModel); ok {
		return sm.Err()
	}
	return nil
}
