package engine

import (
	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/rmp"
	"github.com/vovakirdan/minisphere/internal/script"
	"github.com/vovakirdan/minisphere/internal/spriteset"
)

// Person script slots.
const (
	OnCreate  = rmp.PersonOnCreate
	OnDestroy = rmp.PersonOnDestroy
	OnTouch   = rmp.PersonOnTouch
	OnTalk    = rmp.PersonOnTalk
	Generator = rmp.PersonGenerator

	numPersonScripts = rmp.NumPersonScripts
)

// step is one entry of a leader's position history.
type step struct {
	x, y float64
}

// Person is an actor on the map.
type Person struct {
	id   int
	name string

	x, y             float64
	layer            int
	xOffset, yOffset int
	speedX, speedY   float64
	mvX, mvY         int
	direction        string

	sprite       *spriteset.Spriteset
	frame        int
	animFrames   int
	revertDelay  int
	revertFrames int
	mask         core.Color
	scaleX       float64
	scaleY       float64
	theta        float64
	visible      bool

	commands []queuedCommand
	scripts  [numPersonScripts]*script.Script
	sources  [numPersonScripts]string // Source of each script, for saving

	// Followers reference their leader by id; 0 means no leader.
	leader         int
	followDistance int
	steps          []step // steps[0] is the most recent position

	ignores          []string
	ignoreAllPersons bool
	ignoreAllTiles   bool
	persistent       bool

	values map[string]any
}

// ID returns the creation id, unique for the life of the engine.
func (p *Person) ID() int { return p.id }

// Name returns the person's name.
func (p *Person) Name() string { return p.name }

// XY returns the position in map pixels.
func (p *Person) XY() (float64, float64) { return p.x, p.y }

// Layer returns the map layer the person walks on.
func (p *Person) Layer() int { return p.layer }

// Direction returns the current pose name.
func (p *Person) Direction() string { return p.direction }

// Frame returns the current animation frame.
func (p *Person) Frame() int { return p.frame }

// NumCommands returns the length of the command queue.
func (p *Person) NumCommands() int { return len(p.commands) }

// Persistent reports whether the person survives map changes.
func (p *Person) Persistent() bool { return p.persistent }

// Spriteset returns the person's spriteset.
func (p *Person) Spriteset() *spriteset.Spriteset { return p.sprite }

// HistoryLen returns the capacity of the step history followers trail.
func (p *Person) HistoryLen() int { return len(p.steps) }

func (p *Person) hasMoved() bool {
	return p.mvX != 0 || p.mvY != 0
}

// busy persons ignore player movement keys.
func (p *Person) busy() bool {
	return len(p.commands) > 0 || p.leader != 0
}

// baseAt returns the footprint centered on (x, y).
func (p *Person) baseAt(x, y float64) core.Rect {
	base := p.sprite.Base().Zoom(p.scaleX, p.scaleY)
	cx, cy := base.Center()
	return base.Translate(int(x)-cx, int(y)-cy)
}

// base returns the footprint at the current position.
func (p *Person) base() core.Rect {
	return p.baseAt(p.x, p.y)
}

// recordStep pushes the current position onto the history.
func (p *Person) recordStep() {
	if len(p.steps) == 0 {
		return
	}
	copy(p.steps[1:], p.steps[:len(p.steps)-1])
	p.steps[0] = step{x: p.x, y: p.y}
}

// enlargeHistory grows the history to at least n entries. New slots repeat
// the oldest entry, or the current position when there is no history yet.
func (p *Person) enlargeHistory(n int) {
	if n <= len(p.steps) {
		return
	}
	fill := step{x: p.x, y: p.y}
	if len(p.steps) > 0 {
		fill = p.steps[len(p.steps)-1]
	}
	for len(p.steps) < n {
		p.steps = append(p.steps, fill)
	}
}

// listsIgnored reports whether name is on p's ignore list.
func (p *Person) listsIgnored(name string) bool {
	for _, n := range p.ignores {
		if n == name {
			return true
		}
	}
	return false
}

// isIgnored reports whether a and b pass through each other. The relation
// is commutative: either side ignoring the other is enough.
func isIgnored(a, b *Person) bool {
	if a.ignoreAllPersons || b.ignoreAllPersons {
		return true
	}
	return a.listsIgnored(b.name) || b.listsIgnored(a.name)
}

// setFrame forces an animation frame and restarts its timers.
func (p *Person) setFrame(frame int) {
	n := p.sprite.NumFrames(p.direction)
	if n > 0 {
		frame = core.Wrap(frame, n)
	}
	p.frame = frame
	p.animFrames = p.sprite.FrameDelay(p.direction, frame)
	p.revertFrames = p.revertDelay
}

// animate ticks the frame timer once.
func (p *Person) animate() {
	p.revertFrames = p.revertDelay
	if p.animFrames > 0 {
		p.animFrames--
		if p.animFrames == 0 {
			p.frame++
			p.animFrames = p.sprite.FrameDelay(p.direction, p.frame)
		}
	}
}

func (p *Person) clearCommands() {
	for _, c := range p.commands {
		if rs, ok := c.cmd.(RunScript); ok {
			rs.Script.Release()
		}
	}
	p.commands = nil
}

// free releases everything the person holds.
func (p *Person) free() {
	p.clearCommands()
	for i := range p.scripts {
		p.scripts[i].Release()
		p.scripts[i] = nil
		p.sources[i] = ""
	}
	p.sprite.Release()
}
