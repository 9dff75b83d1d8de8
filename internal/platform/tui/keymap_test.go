package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/minisphere/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestEngineKey(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		expected core.Key
		ok       bool
	}{
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, core.KeyUp, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, core.KeyEnter, true},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.KeySpace, true},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, core.KeyEscape, true},
		{"function", tea.KeyMsg{Type: tea.KeyF5}, core.KeyF5, true},
		{"letter", runeKey('w'), core.KeyA + 'w' - 'a', true},
		{"shifted letter", runeKey('W'), core.KeyA + 'w' - 'a', true},
		{"digit", runeKey('7'), core.Key0 + 7, true},
		{"control", tea.KeyMsg{Type: tea.KeyCtrlC}, core.KeyNone, false},
		{"punctuation", runeKey('?'), core.KeyNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EngineKey(tt.msg)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("EngineKey(%q) = %v, %v, expected %v, %v", tt.msg.String(), got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	tests := []struct {
		msg      tea.KeyMsg
		expected MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{runeKey('k'), MenuActionUp},
		{runeKey('j'), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{runeKey('d'), MenuActionDelete},
		{runeKey('q'), MenuActionQuit},
		{runeKey('x'), MenuActionNone},
	}
	for _, tt := range tests {
		if got := MapKeyToMenuAction(tt.msg); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
		}
	}
}

func TestKeyStateHoldsAfterPress(t *testing.T) {
	s := NewKeyState(60, 50*time.Millisecond) // 3 frames

	s.Press(core.KeyUp)
	for i := 0; i < 2; i++ {
		s.Tick()
		if !s.IsKeyDown(core.KeyUp) {
			t.Fatalf("up released after %d ticks, expected it held for 3", i+1)
		}
	}
	s.Press(core.KeyUp) // auto-repeat restarts the window
	s.Tick()
	s.Tick()
	if !s.IsKeyDown(core.KeyUp) {
		t.Error("repeat did not extend the hold")
	}
	s.Tick()
	if s.IsKeyDown(core.KeyUp) {
		t.Error("up still held after the window expired")
	}
	if s.IsJoyButtonDown(0, 0) {
		t.Error("IsJoyButtonDown() = true, expected false")
	}
}

func TestKeyStateMinimumHold(t *testing.T) {
	s := NewKeyState(10, time.Millisecond)
	s.Press(core.KeySpace)
	s.Press(core.KeyLeft)
	if !s.IsKeyDown(core.KeySpace) {
		t.Fatal("space not down after press")
	}
	s.Tick()
	if s.IsKeyDown(core.KeySpace) || s.IsKeyDown(core.KeyLeft) {
		t.Error("keys should last exactly one frame")
	}

	s.Press(core.KeySpace)
	s.Release()
	if s.IsKeyDown(core.KeySpace) {
		t.Error("Release() left space down")
	}
}
