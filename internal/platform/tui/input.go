package tui

import (
	"time"

	"github.com/vovakirdan/minisphere/internal/core"
)

// DefaultHold is how long a key stays down after its last press event.
// Terminals report presses and auto-repeats but never releases, so a held
// key is one that keeps repeating within this window.
const DefaultHold = 250 * time.Millisecond

// KeyState emulates key up/down state from terminal key presses. It is the
// engine's input source for a terminal session.
type KeyState struct {
	keys   core.KeySet
	left   map[core.Key]int
	frames int
}

// NewKeyState creates a key state where a press lasts hold at the given
// frame rate, and at least one frame.
func NewKeyState(frameRate int, hold time.Duration) *KeyState {
	frames := int(hold * time.Duration(frameRate) / time.Second)
	if frames < 1 {
		frames = 1
	}
	return &KeyState{
		keys:   core.NewKeySet(),
		left:   make(map[core.Key]int),
		frames: frames,
	}
}

// Press marks k as down and restarts its hold window.
func (s *KeyState) Press(k core.Key) {
	s.keys.Set(k)
	s.left[k] = s.frames
}

// Tick ages every held key by one frame and releases the expired ones.
func (s *KeyState) Tick() {
	for k, n := range s.left {
		if n <= 1 {
			delete(s.left, k)
			s.keys.Unset(k)
			continue
		}
		s.left[k] = n - 1
	}
}

// Release lets go of every key.
func (s *KeyState) Release() {
	s.keys.Clear()
	clear(s.left)
}

// IsKeyDown reports whether k is held.
func (s *KeyState) IsKeyDown(k core.Key) bool {
	return s.keys.Has(k)
}

// IsJoyButtonDown always reports false; terminals have no joysticks.
func (s *KeyState) IsJoyButtonDown(joy, button int) bool {
	return false
}
