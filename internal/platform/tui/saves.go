package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

// newGameRow is the first table row; choosing it starts without a save.
const newGameRow = "(new game)"

// SlotsKeyMap defines the key bindings for the save slot picker.
type SlotsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SlotsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k SlotsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultSlotsKeyMap returns default key bindings.
func DefaultSlotsKeyMap() SlotsKeyMap {
	return SlotsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete save"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SlotsModel lets the player start a game fresh or from a save slot.
type SlotsModel struct {
	game      registry.GameInfo
	store     *storage.Store
	slots     []storage.SlotInfo
	table     table.Model
	help      help.Model
	keys      SlotsKeyMap
	width     int
	height    int
	status    string
	chosen    bool
	slot      string
	goingBack bool
	quitting  bool
}

// NewSlotsModel creates a slot picker for game.
func NewSlotsModel(game registry.GameInfo, store *storage.Store, width, height int) SlotsModel {
	m := SlotsModel{
		game:   game,
		store:  store,
		help:   help.New(),
		keys:   DefaultSlotsKeyMap(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.loadSlots()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *SlotsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Slot", Width: 12},
		{Title: "Map", Width: 20},
		{Title: "Frame", Width: 8},
		{Title: "Saved", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadSlots reloads the slots from the store.
func (m *SlotsModel) loadSlots() {
	m.slots = nil
	if m.store != nil {
		slots, err := m.store.ListSlots(m.game.ID)
		if err != nil {
			m.status = err.Error()
		}
		m.slots = slots
	}

	rows := []table.Row{{newGameRow, m.game.StartMap, "", ""}}
	for _, s := range m.slots {
		rows = append(rows, table.Row{
			s.Slot,
			s.Map,
			fmt.Sprintf("%d", s.Frames),
			s.UpdatedAt.Format("Jan 02 15:04"),
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the slot picker.
func (m SlotsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the slot picker.
func (m SlotsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Select):
			m.chosen = true
			if i := m.table.Cursor(); i > 0 && i <= len(m.slots) {
				m.slot = m.slots[i-1].Slot
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if i := m.table.Cursor(); i > 0 && i <= len(m.slots) {
				slot := m.slots[i-1].Slot
				if err := m.store.DeleteSlot(m.game.ID, slot); err != nil {
					m.status = err.Error()
				} else {
					m.status = fmt.Sprintf("deleted %s", slot)
				}
				m.loadSlots()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.loadSlots()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the slot picker.
func (m SlotsModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(m.game.Title), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.table.View()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Chosen reports whether the player picked a row, and which save slot.
// The slot is empty for a new game.
func (m SlotsModel) Chosen() (slot string, ok bool) {
	return m.slot, m.chosen
}

// IsGoingBack returns true if user wants to go back to menu.
func (m SlotsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m SlotsModel) IsQuitting() bool {
	return m.quitting
}
