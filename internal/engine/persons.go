package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/script"
	"github.com/vovakirdan/minisphere/internal/spriteset"
)

// DefaultTalkDistance is how far ahead a talking person reaches, in pixels.
const DefaultTalkDistance = 8

// createPerson adds a person at the map origin facing the spriteset's first
// pose, runs its create script and re-sorts. The person takes over the
// caller's reference to sprite.
func (e *Engine) createPerson(name string, sprite *spriteset.Spriteset, persistent bool, create *script.Script) (*Person, error) {
	e.nextID++
	ox, oy, olayer := e.mapOrigin()
	p := &Person{
		id:         e.nextID,
		name:       name,
		x:          float64(ox),
		y:          float64(oy),
		layer:      olayer,
		speedX:     1,
		speedY:     1,
		sprite:     sprite,
		direction:  sprite.FirstPose(),
		mask:       core.White,
		scaleX:     1,
		scaleY:     1,
		visible:    true,
		persistent: persistent,
	}
	p.animFrames = sprite.FrameDelay(p.direction, 0)
	p.scripts[OnCreate] = create

	e.persons = append(e.persons, p)
	e.byID[p.id] = p
	e.log.Debug("created person", "name", name, "id", p.id, "persistent", persistent)

	err := e.callPersonScript(p, OnCreate, true)
	e.sortPersons()
	return p, err
}

// destroyPerson runs the destroy script, then orphans followers, detaches
// the camera and input and frees the person. The destroy script runs first
// so it can hand the followers to a new leader.
func (e *Engine) destroyPerson(p *Person) error {
	err := e.callPersonScript(p, OnDestroy, true)
	if !e.personExists(p.id) {
		// The destroy script destroyed the person itself.
		return err
	}

	for _, other := range e.persons {
		if other.leader == p.id {
			other.leader = 0
		}
	}
	e.detachPerson(p)
	for i, other := range e.persons {
		if other == p {
			e.persons = append(e.persons[:i], e.persons[i+1:]...)
			break
		}
	}
	delete(e.byID, p.id)
	p.free()
	e.log.Debug("destroyed person", "name", p.name, "id", p.id)
	e.sortPersons()
	return err
}

// resetPersons is the map transition boundary for actors. Persistent
// persons, or all of them when keep is set, move to the new origin; the rest
// are destroyed.
func (e *Engine) resetPersons(keep bool) error {
	ox, oy, olayer := e.mapOrigin()
	for _, id := range e.personIDs() {
		p, ok := e.byID[id]
		if !ok {
			continue
		}
		if !keep {
			p.clearCommands()
		}
		if p.persistent || keep {
			p.x, p.y, p.layer = float64(ox), float64(oy), olayer
			continue
		}
		if err := e.destroyPerson(p); err != nil {
			return err
		}
	}
	e.sortPersons()
	return nil
}

// personIDs snapshots the ids of all persons in draw order. Loops that run
// scripts iterate the snapshot and re-look-up each id.
func (e *Engine) personIDs() []int {
	ids := make([]int, len(e.persons))
	for i, p := range e.persons {
		ids[i] = p.id
	}
	return ids
}

func (e *Engine) personExists(id int) bool {
	_, ok := e.byID[id]
	return ok
}

// findPerson looks a person up by name.
func (e *Engine) findPerson(name string) *Person {
	for _, p := range e.persons {
		if p.name == name {
			return p
		}
	}
	return nil
}

// leaderOf returns p's leader, or nil.
func (e *Engine) leaderOf(p *Person) *Person {
	if p.leader == 0 {
		return nil
	}
	return e.byID[p.leader]
}

// isFollowing reports whether leader is anywhere up p's leader chain.
func (e *Engine) isFollowing(p, leader *Person) bool {
	for node := e.leaderOf(p); node != nil; node = e.leaderOf(node) {
		if node == leader {
			return true
		}
	}
	return false
}

// followPerson makes p follow leader at the given distance, or severs the
// link when leader is nil. It fails if the link would close a cycle.
func (e *Engine) followPerson(p, leader *Person, distance int) error {
	if leader == nil {
		p.leader = 0
		return nil
	}
	for node := leader; node != nil; node = e.leaderOf(node) {
		if node == p {
			return fmt.Errorf("%w: %s already leads %s", ErrCircularFollow, p.name, leader.name)
		}
	}
	if distance <= 0 {
		return fmt.Errorf("%w: follow distance %d", ErrInvalidArgument, distance)
	}
	leader.enlargeHistory(distance)
	p.leader = leader.id
	p.followDistance = distance
	return nil
}

// followers returns the direct followers of p in draw order.
func (e *Engine) followers(p *Person) []*Person {
	var out []*Person
	for _, other := range e.persons {
		if other.leader == p.id {
			out = append(out, other)
		}
	}
	return out
}

// personLess orders by depth (y + y offset), then leaders before their
// followers, then creation id. Depths less than a pixel apart tie.
func (e *Engine) personLess(a, b *Person) bool {
	ya := a.y + float64(a.yOffset)
	yb := b.y + float64(b.yOffset)
	if d := int(ya - yb); d != 0 {
		return d < 0
	}
	if e.isFollowing(b, a) {
		return true
	}
	if e.isFollowing(a, b) {
		return false
	}
	return a.id < b.id
}

func (e *Engine) sortPersons() {
	sort.SliceStable(e.persons, func(i, j int) bool {
		return e.personLess(e.persons[i], e.persons[j])
	})
}

// setPersonScript compiles source into one of p's script slots. The source
// is kept so a snapshot can rebuild the script.
func (e *Engine) setPersonScript(p *Person, which int, name, source string) error {
	s, err := e.compile(name, source)
	if err != nil {
		return err
	}
	p.scripts[which].Release()
	p.scripts[which] = s
	p.sources[which] = source
	return nil
}

// callPersonScript runs the default script of a slot and then the person's
// own, with p as the current person. The person's own script is skipped if
// the default one destroyed it.
func (e *Engine) callPersonScript(p *Person, which int, useDefault bool) error {
	last := e.currentPerson
	e.currentPerson = p.id
	defer func() { e.currentPerson = last }()

	if useDefault {
		if err := e.defaultPersonScripts[which].Run(false); err != nil {
			return err
		}
	}
	if !e.personExists(p.id) {
		return nil
	}
	return p.scripts[which].Run(false)
}

// updatePersons ticks every person without a leader; followers are updated
// by their leaders. Persons are re-sorted if anyone moved.
func (e *Engine) updatePersons() error {
	sortNeeded := false
	defer func() {
		if sortNeeded {
			e.sortPersons()
		}
	}()

	for _, id := range e.personIDs() {
		p, ok := e.byID[id]
		if !ok || e.leaderOf(p) != nil {
			continue
		}
		moved, err := e.updatePerson(p)
		sortNeeded = sortNeeded || moved
		if err != nil {
			return err
		}
	}
	return nil
}

// updatePerson runs one tick for p and then, depth first, for its followers.
func (e *Engine) updatePerson(p *Person) (bool, error) {
	p.mvX, p.mvY = 0, 0
	if p.revertFrames > 0 {
		p.revertFrames--
		if p.revertFrames == 0 {
			p.frame = 0
		}
	}

	var err error
	if leader := e.leaderOf(p); leader == nil {
		err = e.runCommandQueue(p)
	} else {
		err = e.stepTowardLeader(p, leader)
	}
	if err != nil || !e.personExists(p.id) {
		return false, err
	}

	moved := p.hasMoved()
	if moved {
		p.recordStep()
	}

	for _, f := range e.followers(p) {
		if !e.personExists(f.id) {
			continue
		}
		fmoved, err := e.updatePerson(f)
		moved = moved || fmoved
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

// runCommandQueue drains p's queue from the front until the first
// non-immediate command, or until p is destroyed by a script. An empty queue
// gives the generator script a chance to add commands first.
func (e *Engine) runCommandQueue(p *Person) error {
	if len(p.commands) == 0 {
		if err := e.callPersonScript(p, Generator, true); err != nil {
			return err
		}
		if !e.personExists(p.id) {
			return nil
		}
	}

	for len(p.commands) > 0 {
		qc := p.commands[0]
		p.commands = p.commands[1:]

		last := e.currentPerson
		e.currentPerson = p.id
		err := e.commandPerson(p, qc.cmd)
		e.currentPerson = last
		if rs, ok := qc.cmd.(RunScript); ok {
			rs.Script.Release()
		}
		if err != nil {
			return err
		}
		if !e.personExists(p.id) || !qc.immediate {
			break
		}
	}
	return nil
}

// stepTowardLeader moves a follower toward its leader's recorded position
// follow distance steps ago and faces it along the movement.
func (e *Engine) stepTowardLeader(p, leader *Person) error {
	target := leader.steps[p.followDistance-1]
	dx := target.x - p.x
	dy := target.y - p.y

	if abs(dx) > p.speedX {
		dir := West
		if dx > 0 {
			dir = East
		}
		if err := e.commandPerson(p, Move{Dir: dir}); err != nil {
			return err
		}
		if !e.personExists(p.id) {
			return nil
		}
	}
	if abs(dy) > p.speedY {
		dir := North
		if dy > 0 {
			dir = South
		}
		if err := e.commandPerson(p, Move{Dir: dir}); err != nil {
			return err
		}
		if !e.personExists(p.id) {
			return nil
		}
	}

	facing := facingFor(p.mvX, p.mvY)
	if _, idle := facing.(Wait); !idle {
		p.animate()
	}
	return e.commandPerson(p, facing)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// talkPerson looks talk distance ahead of p and runs the talk script of
// whoever stands there, with p as the acting person.
func (e *Engine) talkPerson(p *Person) error {
	x, y := e.normalizedXY(p)
	tx, ty := float64(x), float64(y)
	dist := float64(e.talkDistance)
	if strings.Contains(p.direction, "north") {
		ty -= dist
	}
	if strings.Contains(p.direction, "east") {
		tx += dist
	}
	if strings.Contains(p.direction, "south") {
		ty += dist
	}
	if strings.Contains(p.direction, "west") {
		tx -= dist
	}

	hit := e.obstructionAt(p, tx, ty)
	if hit.person == nil {
		return nil
	}
	last := e.actingPerson
	e.actingPerson = p.id
	defer func() { e.actingPerson = last }()
	return e.callPersonScript(hit.person, OnTalk, true)
}
