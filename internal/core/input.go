package core

import (
	"strings"
)

// Key identifies a physical key, abstracted from the terminal or window
// backend that produced it. The map engine polls keys by Key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
	KeyEscape
	KeyTab
	KeyBackspace
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyA // KeyA..KeyZ are contiguous
	KeyZ Key = KeyA + 25
	Key0 Key = KeyZ + 1 // Key0..Key9 are contiguous
	Key9 Key = Key0 + 9
)

var namedKeys = map[Key]string{
	KeyNone:      "none",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyEnter:     "enter",
	KeySpace:     "space",
	KeyEscape:    "esc",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

// String returns the key name used in config files.
func (k Key) String() string {
	if name, ok := namedKeys[k]; ok {
		return name
	}
	if k >= KeyA && k <= KeyZ {
		return string(rune('a' + int(k-KeyA)))
	}
	if k >= Key0 && k <= Key9 {
		return string(rune('0' + int(k-Key0)))
	}
	return "unknown"
}

// ParseKey converts a key name ("up", "space", "z", "7") back to a Key.
func ParseKey(name string) (Key, bool) {
	if name == " " {
		return KeySpace, true
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "spacebar" {
		return KeySpace, true
	}
	if name == "escape" {
		return KeyEscape, true
	}
	for k, n := range namedKeys {
		if n == name {
			return k, true
		}
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return KeyA + Key(c-'a'), true
		case c >= '0' && c <= '9':
			return Key0 + Key(c-'0'), true
		}
	}
	return KeyNone, false
}

// KeySet is the set of keys held down during one frame.
type KeySet struct {
	keys map[Key]bool
}

// NewKeySet creates an empty key set.
func NewKeySet() KeySet {
	return KeySet{keys: make(map[Key]bool)}
}

// Set marks a key as held.
func (s *KeySet) Set(k Key) {
	if s.keys == nil {
		s.keys = make(map[Key]bool)
	}
	s.keys[k] = true
}

// Unset releases a key.
func (s *KeySet) Unset(k Key) {
	delete(s.keys, k)
}

// Has returns true if the key is held.
func (s KeySet) Has(k Key) bool {
	if s.keys == nil {
		return false
	}
	return s.keys[k]
}

// IsKeyDown makes KeySet usable directly as the engine's input source.
func (s KeySet) IsKeyDown(k Key) bool {
	return s.Has(k)
}

// IsJoyButtonDown always reports false; a KeySet carries no joystick state.
func (s KeySet) IsJoyButtonDown(joy, button int) bool {
	return false
}

// Clear releases all keys.
func (s *KeySet) Clear() {
	for k := range s.keys {
		delete(s.keys, k)
	}
}

// Clone creates a copy of this key set.
func (s KeySet) Clone() KeySet {
	clone := NewKeySet()
	for k, v := range s.keys {
		clone.keys[k] = v
	}
	return clone
}
