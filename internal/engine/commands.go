package engine

import (
	"fmt"

	"github.com/vovakirdan/minisphere/internal/script"
)

// Direction is one of the eight facings.
type Direction int

const (
	North Direction = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest
)

var directionNames = [...]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// String returns the pose name for the facing.
func (d Direction) String() string {
	if d < North || d > Northwest {
		return "unknown"
	}
	return directionNames[d]
}

// Command is an entry of a person's command queue. The set of commands is
// closed: Wait, Animate, Face, Move and RunScript.
type Command interface {
	isCommand()
}

// Wait does nothing for one tick.
type Wait struct{}

// Animate ticks the person's frame timer.
type Animate struct{}

// Face turns the person.
type Face struct{ Dir Direction }

// Move steps the person by its speed in a cardinal direction.
type Move struct{ Dir Direction }

// RunScript runs an ad hoc script with the person as the current person.
type RunScript struct{ Script *script.Script }

func (Wait) isCommand()      {}
func (Animate) isCommand()   {}
func (Face) isCommand()      {}
func (Move) isCommand()      {}
func (RunScript) isCommand() {}

type queuedCommand struct {
	cmd       Command
	immediate bool
}

// Numeric command codes used by scripts.
const (
	CommandWait          = 0
	CommandAnimate       = 1
	CommandFaceNorth     = 2 // Face codes run north..northwest
	CommandFaceNorthwest = 9
	CommandMoveNorth     = 10
	CommandMoveEast      = 11
	CommandMoveSouth     = 12
	CommandMoveWest      = 13
)

// CommandFromCode converts a script command code to a Command.
func CommandFromCode(code int) (Command, error) {
	switch {
	case code == CommandWait:
		return Wait{}, nil
	case code == CommandAnimate:
		return Animate{}, nil
	case code >= CommandFaceNorth && code <= CommandFaceNorthwest:
		return Face{Dir: Direction(code - CommandFaceNorth)}, nil
	case code == CommandMoveNorth:
		return Move{Dir: North}, nil
	case code == CommandMoveEast:
		return Move{Dir: East}, nil
	case code == CommandMoveSouth:
		return Move{Dir: South}, nil
	case code == CommandMoveWest:
		return Move{Dir: West}, nil
	}
	return nil, fmt.Errorf("%w: command code %d", ErrInvalidArgument, code)
}

// queueCommand appends a command to p's queue.
func (p *Person) queueCommand(cmd Command, immediate bool) {
	p.commands = append(p.commands, queuedCommand{cmd: cmd, immediate: immediate})
}

// commandPerson executes one primitive command. A blocked move fires the
// touch script of the person in the way.
func (e *Engine) commandPerson(p *Person, cmd Command) error {
	newX, newY := p.x, p.y
	switch c := cmd.(type) {
	case Wait:
	case Animate:
		p.animate()
	case Face:
		p.direction = c.Dir.String()
	case Move:
		switch c.Dir {
		case North:
			newY = p.y - p.speedY
		case East:
			newX = p.x + p.speedX
		case South:
			newY = p.y + p.speedY
		case West:
			newX = p.x - p.speedX
		}
	case RunScript:
		return c.Script.Run(false)
	}

	if newX == p.x && newY == p.y {
		return nil
	}
	hit := e.obstructionAt(p, newX, newY)
	if !hit.obstructed {
		if newX != p.x {
			p.mvX = sign(newX - p.x)
		}
		if newY != p.y {
			p.mvY = sign(newY - p.y)
		}
		p.x, p.y = newX, newY
		return nil
	}
	if hit.person != nil {
		last := e.actingPerson
		e.actingPerson = p.id
		defer func() { e.actingPerson = last }()
		return e.callPersonScript(hit.person, OnTouch, true)
	}
	return nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// facingFor maps a movement vector (mvX + 3*mvY) to a facing command.
func facingFor(mvX, mvY int) Command {
	switch mvX + mvY*3 {
	case -3:
		return Face{Dir: North}
	case -2:
		return Face{Dir: Northeast}
	case 1:
		return Face{Dir: East}
	case 4:
		return Face{Dir: Southeast}
	case 3:
		return Face{Dir: South}
	case 2:
		return Face{Dir: Southwest}
	case -1:
		return Face{Dir: West}
	case -4:
		return Face{Dir: Northwest}
	}
	return Wait{}
}
