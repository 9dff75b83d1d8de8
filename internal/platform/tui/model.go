package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/engine"
	"github.com/vovakirdan/minisphere/internal/gfx"
	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

// QuickSlot is the save slot used by quick save and quick load.
const QuickSlot = "quick"

// GameOptions configures a GameModel.
type GameOptions struct {
	Game     registry.GameInfo
	Config   config.EngineConfig
	Store    *storage.Store // Optional; saving is disabled without it
	Logger   *log.Logger
	Renderer *lipgloss.Renderer
	Map      string // Start map override
	Slot     string // Save slot to restore after launch
	Width    int
	Height   int
	User     string
	Remote   string
}

// GameModel is the Bubble Tea model that plays one game.
type GameModel struct {
	game      registry.GameInfo
	engine    *engine.Engine
	canvas    *gfx.Canvas
	keys      *KeyState
	presenter *Presenter
	store     *storage.Store
	logger    *log.Logger
	keymap    KeyMap
	help      help.Model
	showHelp  bool

	user     string
	remote   string
	startMap string
	started  time.Time
	frames   int

	status string
	width  int
	done   bool
	err    error
}

// NewGameModel launches the game and wraps it in a model.
func NewGameModel(opts GameOptions) (GameModel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	rc := opts.Config.Runtime()
	canvas := gfx.NewCanvas(rc.ScreenW, rc.ScreenH)
	keys := NewKeyState(rc.FrameRate, DefaultHold)

	e, err := opts.Game.Launch(registry.LaunchOptions{
		Config:   opts.Config,
		Logger:   logger,
		Input:    keys,
		Renderer: canvas,
		Map:      opts.Map,
	})
	if err != nil {
		return GameModel{}, err
	}

	m := GameModel{
		game:      opts.Game,
		engine:    e,
		canvas:    canvas,
		keys:      keys,
		presenter: NewPresenter(opts.Renderer, opts.Width, max(opts.Height-1, 0)),
		store:     opts.Store,
		logger:    logger,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		user:      opts.User,
		remote:    opts.Remote,
		startMap:  e.MapName(),
		started:   time.Now(),
		width:     opts.Width,
	}

	if opts.Slot != "" {
		if err := m.load(opts.Slot); err != nil {
			e.Close()
			return GameModel{}, err
		}
		m.startMap = e.MapName()
	}

	logger.Info("game started", "game", m.game.ID, "map", m.startMap, "user", m.user)
	return m, nil
}

// Init starts the frame loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.engine.GetFrameRate())
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.presenter.Resize(msg.Width, msg.Height-1)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.finish("quit")
		return m, tea.Quit

	case key.Matches(msg, m.keymap.QuickSave):
		m.status = m.statusOf("saved", m.save(QuickSlot))
		return m, nil

	case key.Matches(msg, m.keymap.QuickLoad):
		m.status = m.statusOf("loaded", m.load(QuickSlot))
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if k, ok := EngineKey(msg); ok {
		m.keys.Press(k)
	}
	return m, nil
}

// handleTick runs one map engine frame.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	running, err := m.engine.Frame()
	m.keys.Tick()
	m.frames++

	if err != nil {
		m.err = err
		m.finish("error")
		return m, tea.Quit
	}
	if !running {
		m.finish("exit")
		return m, tea.Quit
	}

	return m, tickCmd(m.engine.GetFrameRate())
}

func (m *GameModel) save(slot string) error {
	if m.store == nil {
		return fmt.Errorf("no save database")
	}
	snap, err := m.engine.Snapshot()
	if err != nil {
		return err
	}
	return m.store.SaveSlot(m.game.ID, slot, snap)
}

func (m *GameModel) load(slot string) error {
	if m.store == nil {
		return fmt.Errorf("no save database")
	}
	snap, err := m.store.LoadSlot(m.game.ID, slot)
	if err != nil {
		return err
	}
	m.keys.Release()
	return m.engine.Restore(snap)
}

func (m *GameModel) statusOf(done string, err error) string {
	if err != nil {
		m.logger.Warn("save slot", "game", m.game.ID, "error", err)
		return err.Error()
	}
	return done
}

// finish stops the engine and records the session. Safe to call twice.
func (m *GameModel) finish(reason string) {
	if m.done {
		return
	}
	m.done = true
	endMap := m.engine.MapName()
	m.engine.Close()

	duration := time.Since(m.started)
	m.logger.Info("game ended",
		"game", m.game.ID,
		"map", endMap,
		"reason", reason,
		"frames", m.frames,
		"duration", duration.Round(time.Second),
	)
	if m.err != nil {
		m.logger.Error("game failed", "game", m.game.ID, "error", m.err)
	}

	if m.store == nil {
		return
	}
	_, err := m.store.RecordSession(storage.SessionRecord{
		Game:      m.game.ID,
		User:      m.user,
		Remote:    m.remote,
		StartMap:  m.startMap,
		EndMap:    endMap,
		Frames:    m.frames,
		Duration:  int(duration / time.Second),
		EndReason: reason,
	})
	if err != nil {
		m.logger.Warn("could not record session", "error", err)
	}
}

// Done reports whether the game has ended.
func (m GameModel) Done() bool {
	return m.done
}

// Err returns the error that ended the game, if any.
func (m GameModel) Err() error {
	return m.err
}

// View renders the current frame and the status bar.
func (m GameModel) View() string {
	if m.done {
		return ""
	}

	m.presenter.Present(m.canvas)
	bar := m.help.View(m.keymap)
	if !m.showHelp {
		right := m.status
		if right == "" {
			right = fmt.Sprintf("frame %d", m.frames)
		}
		bar = m.presenter.StatusBar(m.width, m.game.Title+"  "+m.engine.MapName(), right)
	}
	return m.presenter.Render() + "\n" + bar
}
