package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minisphere/internal/core"
)

// KeyMap holds the platform keys that never reach the map engine.
type KeyMap struct {
	Quit      key.Binding
	QuickSave key.Binding
	QuickLoad key.Binding
	Help      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.QuickSave, k.QuickLoad, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.QuickSave, k.QuickLoad},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default platform bindings. They all use ctrl so
// every plain key stays available to games.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("^q", "quit"),
		),
		QuickSave: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "quick save"),
		),
		QuickLoad: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^l", "quick load"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("^g", "help"),
		),
	}
}

// EngineKey translates a Bubble Tea key message to the engine key it
// presses. Returns false for keys the engine has no name for.
func EngineKey(msg tea.KeyMsg) (core.Key, bool) {
	k, ok := core.ParseKey(msg.String())
	if !ok || k == core.KeyNone {
		return core.KeyNone, false
	}
	return k, true
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionDelete
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "d", "delete":
		return MenuActionDelete
	}

	return MenuActionNone
}
