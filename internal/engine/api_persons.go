package engine

import (
	"fmt"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/spriteset"
)

// CreatePerson creates a person using spritesets/<spriteset> and runs its
// default create script.
func (e *Engine) CreatePerson(name, spritesetName string, persistent bool) error {
	ss, err := e.assets.Spriteset(spritesetName)
	if err != nil {
		return err
	}
	_, err = e.createPerson(name, ss, persistent, nil)
	return err
}

// AddPerson creates a person from an already loaded spriteset. The engine
// takes its own reference.
func (e *Engine) AddPerson(name string, ss *spriteset.Spriteset, persistent bool) (*Person, error) {
	if ss == nil {
		return nil, fmt.Errorf("%w: nil spriteset", ErrInvalidArgument)
	}
	return e.createPerson(name, ss.Ref(), persistent, nil)
}

// DestroyPerson runs the person's destroy script and removes it.
func (e *Engine) DestroyPerson(name string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	return e.destroyPerson(p)
}

// DoesPersonExist reports whether a person with the name exists.
func (e *Engine) DoesPersonExist(name string) bool {
	return e.findPerson(name) != nil
}

// GetPersonList returns every person's name in draw order.
func (e *Engine) GetPersonList() []string {
	names := make([]string, len(e.persons))
	for i, p := range e.persons {
		names[i] = p.name
	}
	return names
}

// Persons returns the persons in draw order. The slice must not be modified.
func (e *Engine) Persons() []*Person {
	return e.persons
}

// GetPersonX returns a person's map x coordinate.
func (e *Engine) GetPersonX(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	x, _ := e.normalizedXY(p)
	return x, nil
}

// GetPersonY returns a person's map y coordinate.
func (e *Engine) GetPersonY(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	_, y := e.normalizedXY(p)
	return y, nil
}

// GetPersonXFloat returns a person's exact x coordinate.
func (e *Engine) GetPersonXFloat(name string) (float64, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.x, nil
}

// GetPersonYFloat returns a person's exact y coordinate.
func (e *Engine) GetPersonYFloat(name string) (float64, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.y, nil
}

// SetPersonX moves a person horizontally without an obstruction check.
func (e *Engine) SetPersonX(name string, x int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.x = float64(x)
	e.sortPersons()
	return nil
}

// SetPersonY moves a person vertically without an obstruction check.
func (e *Engine) SetPersonY(name string, y int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.y = float64(y)
	e.sortPersons()
	return nil
}

// SetPersonXYFloat places a person at an exact position.
func (e *Engine) SetPersonXYFloat(name string, x, y float64) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.x, p.y = x, y
	e.sortPersons()
	return nil
}

// GetPersonLayer returns the layer a person walks on.
func (e *Engine) GetPersonLayer(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.layer, nil
}

// SetPersonLayer moves a person to another layer.
func (e *Engine) SetPersonLayer(name string, layer int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if err := e.checkLayer(layer); err != nil {
		return err
	}
	p.layer = layer
	return nil
}

// GetPersonDirection returns the current pose name.
func (e *Engine) GetPersonDirection(name string) (string, error) {
	p, err := e.person(name)
	if err != nil {
		return "", err
	}
	return p.direction, nil
}

// SetPersonDirection sets the pose by name. Unknown names fall back to the
// closest pose when drawing.
func (e *Engine) SetPersonDirection(name, direction string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.direction = direction
	return nil
}

// GetPersonFrame returns the current animation frame.
func (e *Engine) GetPersonFrame(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	n := p.sprite.NumFrames(p.direction)
	if n == 0 {
		return 0, nil
	}
	return core.Wrap(p.frame, n), nil
}

// SetPersonFrame forces an animation frame.
func (e *Engine) SetPersonFrame(name string, frame int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.setFrame(frame)
	return nil
}

// GetPersonFrameRevert returns the idle frames before a person's frame
// resets to 0.
func (e *Engine) GetPersonFrameRevert(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.revertDelay, nil
}

// SetPersonFrameRevert sets the idle frames before the frame resets to 0.
// Zero disables reverting.
func (e *Engine) SetPersonFrameRevert(name string, frames int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if frames < 0 {
		return fmt.Errorf("%w: frame revert %d", ErrInvalidArgument, frames)
	}
	p.revertDelay = frames
	p.revertFrames = frames
	return nil
}

// GetPersonSpeedX returns a person's horizontal step size.
func (e *Engine) GetPersonSpeedX(name string) (float64, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.speedX, nil
}

// GetPersonSpeedY returns a person's vertical step size.
func (e *Engine) GetPersonSpeedY(name string) (float64, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.speedY, nil
}

// SetPersonSpeed sets both step sizes.
func (e *Engine) SetPersonSpeed(name string, speed float64) error {
	return e.SetPersonSpeedXY(name, speed, speed)
}

// SetPersonSpeedXY sets the step sizes per axis.
func (e *Engine) SetPersonSpeedXY(name string, x, y float64) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if x < 0 || y < 0 {
		return fmt.Errorf("%w: speed %v,%v", ErrInvalidArgument, x, y)
	}
	p.speedX, p.speedY = x, y
	return nil
}

// GetPersonOffsetX returns the horizontal draw offset.
func (e *Engine) GetPersonOffsetX(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.xOffset, nil
}

// GetPersonOffsetY returns the vertical draw offset.
func (e *Engine) GetPersonOffsetY(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.yOffset, nil
}

// SetPersonOffsetX shifts where a person is drawn.
func (e *Engine) SetPersonOffsetX(name string, offset int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.xOffset = offset
	return nil
}

// SetPersonOffsetY shifts where a person is drawn. It also changes the
// person's depth.
func (e *Engine) SetPersonOffsetY(name string, offset int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.yOffset = offset
	e.sortPersons()
	return nil
}

// GetPersonMask returns a person's tint.
func (e *Engine) GetPersonMask(name string) (core.Color, error) {
	p, err := e.person(name)
	if err != nil {
		return core.Color{}, err
	}
	return p.mask, nil
}

// SetPersonMask tints a person.
func (e *Engine) SetPersonMask(name string, c core.Color) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.mask = c
	return nil
}

// SetPersonScaleFactor scales a person's sprite and footprint.
func (e *Engine) SetPersonScaleFactor(name string, scaleX, scaleY float64) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if scaleX <= 0 || scaleY <= 0 {
		return fmt.Errorf("%w: scale %v,%v", ErrInvalidArgument, scaleX, scaleY)
	}
	p.scaleX, p.scaleY = scaleX, scaleY
	return nil
}

// GetPersonAngle returns a person's rotation in radians.
func (e *Engine) GetPersonAngle(name string) (float64, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return p.theta, nil
}

// SetPersonAngle rotates a person's sprite.
func (e *Engine) SetPersonAngle(name string, theta float64) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.theta = theta
	return nil
}

// IsPersonVisible reports whether a person is drawn.
func (e *Engine) IsPersonVisible(name string) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return p.visible, nil
}

// SetPersonVisible shows or hides a person. Hidden persons still collide.
func (e *Engine) SetPersonVisible(name string, visible bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.visible = visible
	return nil
}

// GetPersonSpriteset returns the spriteset a person is drawn with.
func (e *Engine) GetPersonSpriteset(name string) (*spriteset.Spriteset, error) {
	p, err := e.person(name)
	if err != nil {
		return nil, err
	}
	return p.sprite, nil
}

// SetPersonSpriteset swaps a person's spriteset for spritesets/<file>.
func (e *Engine) SetPersonSpriteset(name, file string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	ss, err := e.assets.Spriteset(file)
	if err != nil {
		return err
	}
	p.sprite.Release()
	p.sprite = ss
	p.setFrame(0)
	return nil
}

// GetPersonBase returns a person's footprint in map coordinates.
func (e *Engine) GetPersonBase(name string) (core.Rect, error) {
	p, err := e.person(name)
	if err != nil {
		return core.Rect{}, err
	}
	return p.base(), nil
}

// QueuePersonCommand appends a numeric command to a person's queue.
// Immediate commands let the next one run in the same frame.
func (e *Engine) QueuePersonCommand(name string, code int, immediate bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	cmd, err := CommandFromCode(code)
	if err != nil {
		return err
	}
	p.queueCommand(cmd, immediate)
	return nil
}

// QueueCommand appends a command to a person's queue.
func (e *Engine) QueueCommand(name string, cmd Command, immediate bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidArgument)
	}
	p.queueCommand(cmd, immediate)
	return nil
}

// QueuePersonScript appends a script to a person's queue.
func (e *Engine) QueuePersonScript(name, source string, immediate bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	s, err := e.compile(fmt.Sprintf("%s:queued%d", name, len(p.commands)), source)
	if err != nil {
		return err
	}
	p.queueCommand(RunScript{Script: s}, immediate)
	return nil
}

// ClearPersonCommands empties a person's queue.
func (e *Engine) ClearPersonCommands(name string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.clearCommands()
	return nil
}

// IsCommandQueueEmpty reports whether a person has no queued commands.
func (e *Engine) IsCommandQueueEmpty(name string) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return len(p.commands) == 0, nil
}

// IsPersonBusy reports whether a person has queued commands or a leader.
// Busy persons ignore player input.
func (e *Engine) IsPersonBusy(name string) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return p.busy(), nil
}

// FollowPerson makes name trail leader by distance steps. An empty leader
// stops following.
func (e *Engine) FollowPerson(name, leader string, distance int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if leader == "" {
		return e.followPerson(p, nil, 0)
	}
	l, err := e.person(leader)
	if err != nil {
		return err
	}
	if err := e.followPerson(p, l, distance); err != nil {
		return err
	}
	e.sortPersons()
	return nil
}

// GetPersonLeader returns the name of a person's leader, or "".
func (e *Engine) GetPersonLeader(name string) (string, error) {
	p, err := e.person(name)
	if err != nil {
		return "", err
	}
	if l := e.leaderOf(p); l != nil {
		return l.name, nil
	}
	return "", nil
}

// GetPersonFollowers returns the direct followers of a person.
func (e *Engine) GetPersonFollowers(name string) ([]string, error) {
	p, err := e.person(name)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range e.followers(p) {
		names = append(names, f.name)
	}
	return names, nil
}

// GetPersonFollowDistance returns how many steps behind its leader a person
// walks.
func (e *Engine) GetPersonFollowDistance(name string) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	if p.leader == 0 {
		return 0, fmt.Errorf("%w: %s has no leader", ErrInvalidState, name)
	}
	return p.followDistance, nil
}

// SetPersonFollowDistance changes the follow distance.
func (e *Engine) SetPersonFollowDistance(name string, distance int) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	l := e.leaderOf(p)
	if l == nil {
		return fmt.Errorf("%w: %s has no leader", ErrInvalidState, name)
	}
	return e.followPerson(p, l, distance)
}

// IgnorePersonObstructions lets a person walk through every other person.
func (e *Engine) IgnorePersonObstructions(name string, ignore bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.ignoreAllPersons = ignore
	return nil
}

// IsIgnoringPersonObstructions reports the ignore-all-persons flag.
func (e *Engine) IsIgnoringPersonObstructions(name string) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return p.ignoreAllPersons, nil
}

// IgnoreTileObstructions lets a person walk through obstructed tiles.
func (e *Engine) IgnoreTileObstructions(name string, ignore bool) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.ignoreAllTiles = ignore
	return nil
}

// IsIgnoringTileObstructions reports the ignore-tiles flag.
func (e *Engine) IsIgnoringTileObstructions(name string) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return p.ignoreAllTiles, nil
}

// GetPersonIgnoreList returns the names a person walks through.
func (e *Engine) GetPersonIgnoreList(name string) ([]string, error) {
	p, err := e.person(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), p.ignores...), nil
}

// SetPersonIgnoreList replaces the names a person walks through.
func (e *Engine) SetPersonIgnoreList(name string, ignores []string) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	p.ignores = append([]string(nil), ignores...)
	return nil
}

// IsPersonObstructed reports whether a person would collide at (x, y).
func (e *Engine) IsPersonObstructed(name string, x, y int) (bool, error) {
	p, err := e.person(name)
	if err != nil {
		return false, err
	}
	return e.obstructionAt(p, float64(x), float64(y)).obstructed, nil
}

// GetObstructingPerson returns the person a person would bump into at
// (x, y), or "".
func (e *Engine) GetObstructingPerson(name string, x, y int) (string, error) {
	p, err := e.person(name)
	if err != nil {
		return "", err
	}
	if hit := e.obstructionAt(p, float64(x), float64(y)).person; hit != nil {
		return hit.name, nil
	}
	return "", nil
}

// GetObstructingTile returns the tile a person would bump into at (x, y),
// or -1.
func (e *Engine) GetObstructingTile(name string, x, y int) (int, error) {
	p, err := e.person(name)
	if err != nil {
		return 0, err
	}
	return e.obstructionAt(p, float64(x), float64(y)).tile, nil
}

func checkPersonScript(which int) error {
	if which < 0 || which >= numPersonScripts {
		return fmt.Errorf("%w: person script %d", ErrOutOfRange, which)
	}
	return nil
}

// SetPersonScript replaces one of a person's scripts.
func (e *Engine) SetPersonScript(name string, which int, source string) error {
	if err := checkPersonScript(which); err != nil {
		return err
	}
	p, err := e.person(name)
	if err != nil {
		return err
	}
	return e.setPersonScript(p, which, fmt.Sprintf("%s:%s", name, personScriptNames[which]), source)
}

// CallPersonScript runs one of a person's own scripts.
func (e *Engine) CallPersonScript(name string, which int) error {
	if err := checkPersonScript(which); err != nil {
		return err
	}
	p, err := e.person(name)
	if err != nil {
		return err
	}
	return e.callPersonScript(p, which, false)
}

// SetDefaultPersonScript sets the script every person runs before its own
// for a slot.
func (e *Engine) SetDefaultPersonScript(which int, source string) error {
	if err := checkPersonScript(which); err != nil {
		return err
	}
	s, err := e.compile("default:"+personScriptNames[which], source)
	if err != nil {
		return err
	}
	e.defaultPersonScripts[which].Release()
	e.defaultPersonScripts[which] = s
	return nil
}

// CallDefaultPersonScript runs the default script of a slot with name as the
// current person.
func (e *Engine) CallDefaultPersonScript(name string, which int) error {
	if err := checkPersonScript(which); err != nil {
		return err
	}
	p, err := e.person(name)
	if err != nil {
		return err
	}
	last := e.currentPerson
	e.currentPerson = p.id
	defer func() { e.currentPerson = last }()
	return e.defaultPersonScripts[which].Run(false)
}

// GetCurrentPerson returns the person whose script is running.
func (e *Engine) GetCurrentPerson() (string, error) {
	p, ok := e.byID[e.currentPerson]
	if !ok {
		return "", fmt.Errorf("%w: no person script is running", ErrInvalidState)
	}
	return p.name, nil
}

// GetActingPerson returns the person that started the running talk or touch
// script.
func (e *Engine) GetActingPerson() (string, error) {
	p, ok := e.byID[e.actingPerson]
	if !ok {
		return "", fmt.Errorf("%w: no person is acting", ErrInvalidState)
	}
	return p.name, nil
}

// GetPersonValue returns a value stored on a person, or nil.
func (e *Engine) GetPersonValue(name, key string) (any, error) {
	p, err := e.person(name)
	if err != nil {
		return nil, err
	}
	return p.values[key], nil
}

// SetPersonValue stores a value on a person.
func (e *Engine) SetPersonValue(name, key string, value any) error {
	p, err := e.person(name)
	if err != nil {
		return err
	}
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[key] = value
	return nil
}
