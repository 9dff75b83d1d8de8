package engine

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/script"
)

// PlayerKeys are the keys that steer one input person.
type PlayerKeys struct {
	Up    core.Key
	Down  core.Key
	Left  core.Key
	Right core.Key
	Talk  core.Key
}

// DefaultPlayerKeys returns the stock key layout for a player slot.
func DefaultPlayerKeys(player int) PlayerKeys {
	letter := func(c byte) core.Key { return core.KeyA + core.Key(c-'a') }
	digit := func(c byte) core.Key { return core.Key0 + core.Key(c-'0') }
	switch player {
	case 1:
		return PlayerKeys{Up: letter('w'), Down: letter('s'), Left: letter('a'), Right: letter('d'), Talk: letter('e')}
	case 2:
		return PlayerKeys{Up: letter('i'), Down: letter('k'), Left: letter('j'), Right: letter('l'), Talk: letter('o')}
	case 3:
		return PlayerKeys{Up: digit('8'), Down: digit('5'), Left: digit('4'), Right: digit('6'), Talk: digit('0')}
	}
	return PlayerKeys{Up: core.KeyUp, Down: core.KeyDown, Left: core.KeyLeft, Right: core.KeyRight, Talk: core.KeyEnter}
}

// player is one input slot.
type player struct {
	person      int // Person id, 0 when detached
	keys        PlayerKeys
	talkAllowed bool
	trigger     *trigger // Trigger under the person last frame
}

// keyBinding runs scripts on the press and release edges of a key.
type keyBinding struct {
	onDown  *script.Script
	onUp    *script.Script
	pressed bool
}

func (b *keyBinding) free() {
	b.onDown.Release()
	b.onUp.Release()
}

// playerPerson returns the person attached to player slot i, or nil.
func (e *Engine) playerPerson(i int) *Person {
	if e.players[i].person == 0 {
		return nil
	}
	return e.byID[e.players[i].person]
}

// detachPerson removes p from the camera and every input slot.
func (e *Engine) detachPerson(p *Person) {
	if e.cameraPerson == p.id {
		e.cameraPerson = 0
	}
	for i := range e.players {
		if e.players[i].person == p.id {
			e.players[i].person = 0
			e.players[i].trigger = nil
		}
	}
}

func (e *Engine) talkDown(i int) bool {
	return e.input.IsKeyDown(e.players[i].keys.Talk) ||
		e.input.IsKeyDown(e.talkKey) ||
		e.input.IsJoyButtonDown(i, e.talkButton)
}

// processInput turns held keys into commands for the input persons and
// fires key bindings. Talking is edge triggered: the talk key has to be
// released before it talks again.
func (e *Engine) processInput() error {
	m := e.mp
	for i := range e.players {
		if e.playerPerson(i) != nil && !e.talkDown(i) {
			e.players[i].talkAllowed = true
		}
	}

	for i := range e.players {
		p := e.playerPerson(i)
		if p == nil || p.busy() {
			continue
		}
		if e.players[i].talkAllowed && e.talkDown(i) {
			e.players[i].talkAllowed = false
			if err := e.talkPerson(p); err != nil || e.mp != m {
				return err
			}
			if !e.personExists(p.id) {
				continue
			}
		}

		keys := e.players[i].keys
		mvX, mvY := 0, 0
		if e.input.IsKeyDown(keys.Up) {
			mvY--
		}
		if e.input.IsKeyDown(keys.Down) {
			mvY++
		}
		if e.input.IsKeyDown(keys.Left) {
			mvX--
		}
		if e.input.IsKeyDown(keys.Right) {
			mvX++
		}
		face := facingFor(mvX, mvY)
		if _, idle := face.(Wait); idle {
			continue
		}
		if mvY < 0 {
			p.queueCommand(Move{Dir: North}, true)
		}
		if mvY > 0 {
			p.queueCommand(Move{Dir: South}, true)
		}
		if mvX > 0 {
			p.queueCommand(Move{Dir: East}, true)
		}
		if mvX < 0 {
			p.queueCommand(Move{Dir: West}, true)
		}
		p.queueCommand(face, true)
		p.queueCommand(Animate{}, false)
	}

	for _, k := range e.boundKeyOrder() {
		b, ok := e.boundKeys[k]
		if !ok {
			continue
		}
		down := e.input.IsKeyDown(k)
		var s *script.Script
		switch {
		case down && !b.pressed:
			s = b.onDown
		case !down && b.pressed:
			s = b.onUp
		}
		b.pressed = down
		if err := s.Run(false); err != nil || e.mp != m {
			return err
		}
	}
	return nil
}

// boundKeyOrder lists bound keys in key order so bindings fire
// deterministically.
func (e *Engine) boundKeyOrder() []core.Key {
	keys := make([]core.Key, 0, len(e.boundKeys))
	for k := range e.boundKeys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// BindKey runs onDown when key is pressed and onUp when it is released.
func (e *Engine) BindKey(key core.Key, onDown, onUp string) error {
	if key == core.KeyNone {
		return fmt.Errorf("%w: key %v", ErrInvalidArgument, key)
	}
	down, err := e.compile(fmt.Sprintf("key:%s:down", key), onDown)
	if err != nil {
		return err
	}
	up, err := e.compile(fmt.Sprintf("key:%s:up", key), onUp)
	if err != nil {
		down.Release()
		return err
	}
	if old, ok := e.boundKeys[key]; ok {
		old.free()
	}
	e.boundKeys[key] = &keyBinding{onDown: down, onUp: up, pressed: e.input.IsKeyDown(key)}
	return nil
}

// UnbindKey removes a key binding.
func (e *Engine) UnbindKey(key core.Key) {
	if b, ok := e.boundKeys[key]; ok {
		b.free()
		delete(e.boundKeys, key)
	}
}

func checkPlayer(player int) error {
	if player < 0 || player >= MaxPlayers {
		return fmt.Errorf("%w: player %d", ErrOutOfRange, player)
	}
	return nil
}

// AttachPlayerInput gives control of a person to a player slot.
func (e *Engine) AttachPlayerInput(name string, player int) error {
	if err := checkPlayer(player); err != nil {
		return err
	}
	p, err := e.person(name)
	if err != nil {
		return err
	}
	for i := range e.players {
		if e.players[i].person == p.id {
			e.players[i].person = 0
		}
	}
	e.players[player].person = p.id
	e.players[player].talkAllowed = false
	e.players[player].trigger = nil
	if e.mp != nil {
		x, y := e.normalizedXY(p)
		e.players[player].trigger = e.triggerAt(x, y, p.layer)
	}
	return nil
}

// AttachInput gives control of a person to the first player.
func (e *Engine) AttachInput(name string) error {
	return e.AttachPlayerInput(name, 0)
}

// DetachPlayerInput releases a player slot.
func (e *Engine) DetachPlayerInput(player int) error {
	if err := checkPlayer(player); err != nil {
		return err
	}
	e.players[player].person = 0
	e.players[player].trigger = nil
	return nil
}

// DetachInput releases the first player slot.
func (e *Engine) DetachInput() {
	e.players[0].person = 0
	e.players[0].trigger = nil
}

// IsInputAttached reports whether the first player controls a person.
func (e *Engine) IsInputAttached() bool {
	return e.playerPerson(0) != nil
}

// GetInputPerson returns the name of the person a player controls.
func (e *Engine) GetInputPerson(player int) (string, error) {
	if err := checkPlayer(player); err != nil {
		return "", err
	}
	p := e.playerPerson(player)
	if p == nil {
		return "", fmt.Errorf("%w: player %d has no person", ErrInvalidState, player)
	}
	return p.name, nil
}

// SetPlayerKeys changes a player's key layout.
func (e *Engine) SetPlayerKeys(player int, keys PlayerKeys) error {
	if err := checkPlayer(player); err != nil {
		return err
	}
	e.players[player].keys = keys
	return nil
}

// SetTalkActivationKey sets the key every player can talk with.
func (e *Engine) SetTalkActivationKey(key core.Key) {
	e.talkKey = key
}

// GetTalkActivationKey returns the shared talk key.
func (e *Engine) GetTalkActivationKey() core.Key {
	return e.talkKey
}

// SetTalkActivationButton sets the joystick button players talk with.
func (e *Engine) SetTalkActivationButton(button int) {
	e.talkButton = button
}

// GetTalkActivationButton returns the joystick talk button.
func (e *Engine) GetTalkActivationButton() int {
	return e.talkButton
}
