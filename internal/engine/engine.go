// Package engine implements the map engine: the per-frame update and render
// loop over a tile map, the persons walking on it and the scripts attached
// to both.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/gfx"
	"github.com/vovakirdan/minisphere/internal/script"
)

// Errors returned by the engine API.
var (
	ErrNotRunning        = errors.New("map engine is not running")
	ErrAlreadyRunning    = errors.New("map engine is already running")
	ErrNoSuchPerson      = errors.New("no such person")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOutOfRange        = errors.New("index out of range")
	ErrCircularFollow    = errors.New("circular follow chain")
	ErrCameraNotAttached = errors.New("camera is not attached to a person")
	ErrInvalidState      = errors.New("invalid state")
	ErrNoCompiler        = errors.New("no script compiler")
)

// MaxPlayers is the number of input persons the engine can drive at once.
const MaxPlayers = 4

// State is the map engine's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRunning
	StateExiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateExiting:
		return "exiting"
	}
	return "unknown"
}

// Input is polled once per frame for player movement, talk and key bindings.
type Input interface {
	IsKeyDown(k core.Key) bool
	IsJoyButtonDown(joy, button int) bool
}

// Options configures a new Engine.
type Options struct {
	Config   core.RuntimeConfig
	Logger   *log.Logger
	Assets   *Assets
	Input    Input
	Renderer gfx.Renderer
	Compiler script.Compiler

	TalkKey      core.Key
	TalkButton   int
	TalkDistance int
	Players      [MaxPlayers]PlayerKeys
}

type delayScript struct {
	script     *script.Script
	framesLeft int
}

// Engine holds all map engine state. Engines share nothing, so several can
// run side by side in one process; each one must be driven from a single
// goroutine.
type Engine struct {
	log      *log.Logger
	assets   *Assets
	input    Input
	renderer gfx.Renderer
	compiler script.Compiler

	state         State
	exitRequested bool
	frameRate     int
	frames        int
	mp            *gameMap

	persons              []*Person
	byID                 map[int]*Person
	nextID               int
	currentPerson        int
	actingPerson         int
	defaultPersonScripts [numPersonScripts]*script.Script
	defaultMapScripts    [numMapScripts]*script.Script
	talkDistance         int
	talkKey              core.Key
	talkButton           int

	cameraX, cameraY int
	cameraPerson     int

	players      [MaxPlayers]player
	boundKeys    map[core.Key]*keyBinding
	delayScripts []delayScript
	updateScript *script.Script
	renderScript *script.Script

	colorMask    core.Color
	fadeFrom     core.Color
	fadeTo       core.Color
	fadeFrames   int
	fadeProgress int

	currentTrigger int
	currentZone    int
}

// New creates an idle engine.
func New(opts Options) *Engine {
	cfg := opts.Config
	def := core.DefaultConfig()
	if cfg.ScreenW <= 0 || cfg.ScreenH <= 0 {
		cfg.ScreenW, cfg.ScreenH = def.ScreenW, def.ScreenH
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = def.FrameRate
	}

	e := &Engine{
		log:            opts.Logger,
		assets:         opts.Assets,
		input:          opts.Input,
		renderer:       opts.Renderer,
		compiler:       opts.Compiler,
		frameRate:      cfg.FrameRate,
		byID:           make(map[int]*Person),
		talkDistance:   opts.TalkDistance,
		talkKey:        opts.TalkKey,
		talkButton:     opts.TalkButton,
		boundKeys:      make(map[core.Key]*keyBinding),
		colorMask:      core.Transparent,
		currentTrigger: -1,
		currentZone:    -1,
	}
	if e.log == nil {
		e.log = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.input == nil {
		e.input = core.NewKeySet()
	}
	if e.renderer == nil {
		e.renderer = gfx.NewCanvas(cfg.ScreenW, cfg.ScreenH)
	}
	if e.talkDistance <= 0 {
		e.talkDistance = DefaultTalkDistance
	}
	if e.talkKey == core.KeyNone {
		e.talkKey = core.KeySpace
	}
	for i := range e.players {
		e.players[i].keys = opts.Players[i]
		if e.players[i].keys == (PlayerKeys{}) {
			e.players[i].keys = DefaultPlayerKeys(i)
		}
	}
	return e
}

// SetCompiler sets the compiler used for every script source the engine
// receives. It is settable after New because the compiler usually needs the
// engine to build its API.
func (e *Engine) SetCompiler(c script.Compiler) {
	e.compiler = c
}

// SetInput replaces the input source.
func (e *Engine) SetInput(in Input) {
	e.input = in
}

// Renderer returns the surface the map is drawn to.
func (e *Engine) Renderer() gfx.Renderer {
	return e.renderer
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger {
	return e.log
}

// compile turns script source into a handle. Empty source yields a nil
// script, which runs as a no-op.
func (e *Engine) compile(name, source string) (*script.Script, error) {
	if source == "" {
		return nil, nil
	}
	if e.compiler == nil {
		return nil, fmt.Errorf("%w: compiling %s", ErrNoCompiler, name)
	}
	s, err := e.compiler.Compile(name, source)
	if err != nil {
		e.log.Error("script compile failed", "script", name, "error", err)
		return nil, err
	}
	return s, nil
}

func (e *Engine) checkMap() error {
	if e.mp == nil {
		return ErrNotRunning
	}
	return nil
}

func (e *Engine) checkLayer(layer int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if !e.mp.validLayer(layer) {
		return fmt.Errorf("%w: layer %d", ErrOutOfRange, layer)
	}
	return nil
}

// person looks a person up by name for the public API.
func (e *Engine) person(name string) (*Person, error) {
	p := e.findPerson(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchPerson, name)
	}
	return p, nil
}

// Person returns the named person, or nil.
func (e *Engine) Person(name string) *Person {
	return e.findPerson(name)
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// IsMapEngineRunning reports whether a map is loaded and frames are being
// processed.
func (e *Engine) IsMapEngineRunning() bool {
	return e.state == StateRunning
}

// MapName returns the name of the loaded map, or "".
func (e *Engine) MapName() string {
	if e.mp == nil {
		return ""
	}
	return e.mp.name
}

// Start loads the first map and enters the running state.
func (e *Engine) Start(mapName string) error {
	if e.state == StateRunning || e.state == StateLoading {
		return ErrAlreadyRunning
	}
	e.state = StateLoading
	e.exitRequested = false
	e.log.Info("starting map engine", "map", mapName, "fps", e.frameRate)
	if err := e.changeMap(mapName, true); err != nil {
		e.state = StateIdle
		return err
	}
	e.state = StateRunning
	return nil
}

// ChangeMap switches to another map. Non-persistent persons are destroyed.
func (e *Engine) ChangeMap(name string) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	return e.changeMap(name, false)
}

// ExitMapEngine asks the loop to stop after the current frame.
func (e *Engine) ExitMapEngine() error {
	if e.state != StateRunning && e.state != StateLoading {
		return ErrNotRunning
	}
	e.exitRequested = true
	return nil
}

// Frame runs one full frame: update, input, render. An exit requested
// during a frame lets that frame finish; the next call stops the engine and
// returns false.
func (e *Engine) Frame() (bool, error) {
	if e.state != StateRunning {
		return false, nil
	}
	if e.exitRequested {
		e.stop()
		return false, nil
	}

	err := e.update()
	if err == nil {
		err = e.processInput()
	}
	if err == nil {
		err = e.render()
	}
	if err != nil {
		e.log.Error("frame failed", "map", e.MapName(), "frame", e.frames, "error", err)
	}
	return true, err
}

// stop leaves the running state. The map stays loaded until Close.
func (e *Engine) stop() {
	e.state = StateExiting
	e.log.Info("exiting map engine", "map", e.MapName())
	e.exitRequested = false
	e.state = StateIdle
}

// Run drives the engine at its frame rate until the map engine exits, a
// frame fails or ctx is done. present is called after every frame,
// including the one that requested the exit.
func (e *Engine) Run(ctx context.Context, present func(gfx.Renderer) error) error {
	if e.state != StateRunning {
		return ErrNotRunning
	}
	ticker := time.NewTicker(e.frameInterval())
	defer ticker.Stop()
	rate := e.frameRate

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		running, err := e.Frame()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if present != nil {
			if err := present(e.renderer); err != nil {
				return err
			}
		}
		if e.frameRate != rate {
			rate = e.frameRate
			ticker.Reset(e.frameInterval())
		}
	}
}

func (e *Engine) frameInterval() time.Duration {
	return time.Second / time.Duration(e.frameRate)
}

// GetMapEngineFrame returns the frames elapsed since the map was entered.
func (e *Engine) GetMapEngineFrame() (int, error) {
	if err := e.checkMap(); err != nil {
		return 0, err
	}
	return e.frames, nil
}

// GetFrameRate returns the map engine frame rate.
func (e *Engine) GetFrameRate() int {
	return e.frameRate
}

// SetFrameRate changes the map engine frame rate.
func (e *Engine) SetFrameRate(fps int) error {
	if fps <= 0 {
		return fmt.Errorf("%w: frame rate %d", ErrInvalidArgument, fps)
	}
	e.frameRate = fps
	return nil
}

// UpdateMapEngine runs one update step outside the normal loop.
func (e *Engine) UpdateMapEngine() error {
	if err := e.checkMap(); err != nil {
		return err
	}
	return e.update()
}

// RenderMap draws the map outside the normal loop.
func (e *Engine) RenderMap() error {
	if err := e.checkMap(); err != nil {
		return err
	}
	return e.render()
}

// update advances the world by one frame. Any script may change the map;
// when that happens the rest of the old map's update is skipped.
func (e *Engine) update() error {
	m := e.mp
	e.frames++
	m.tileset.Animate()

	var startX, startY [MaxPlayers]int
	for i := range e.players {
		if p := e.playerPerson(i); p != nil {
			startX[i], startY[i] = int(p.x), int(p.y)
		}
	}

	if err := e.updatePersons(); err != nil || e.mp != m {
		return err
	}

	if e.fadeProgress < e.fadeFrames {
		e.fadeProgress++
		e.colorMask = core.Mix(e.fadeTo, e.fadeFrom, float64(e.fadeProgress), float64(e.fadeFrames-e.fadeProgress))
	}

	e.updateCamera()

	if !m.repeating {
		if err := e.runEdgeScripts(); err != nil || e.mp != m {
			return err
		}
	}
	if err := e.updateTriggers(); err != nil || e.mp != m {
		return err
	}
	if err := e.stepZones(startX[:], startY[:]); err != nil || e.mp != m {
		return err
	}
	if err := e.runDelayScripts(); err != nil || e.mp != m {
		return err
	}
	return e.updateScript.Run(false)
}

// runEdgeScripts calls a leave script for every input person standing
// outside the map.
func (e *Engine) runEdgeScripts() error {
	m := e.mp
	mapW, mapH := m.pixelSize()
	for i := range e.players {
		p := e.playerPerson(i)
		if p == nil {
			continue
		}
		x, y := int(p.x), int(p.y)
		which := -1
		switch {
		case y < 0:
			which = OnLeaveNorth
		case x >= mapW:
			which = OnLeaveEast
		case y >= mapH:
			which = OnLeaveSouth
		case x < 0:
			which = OnLeaveWest
		}
		if which < 0 {
			continue
		}
		if err := e.callMapScript(which); err != nil || e.mp != m {
			return err
		}
	}
	return nil
}

// runDelayScripts counts down delay scripts and runs the due ones once.
func (e *Engine) runDelayScripts() error {
	m := e.mp
	for i := 0; i < len(e.delayScripts); i++ {
		d := &e.delayScripts[i]
		left := d.framesLeft
		d.framesLeft--
		if left > 0 {
			continue
		}
		s := d.script
		e.delayScripts = append(e.delayScripts[:i], e.delayScripts[i+1:]...)
		i--
		err := s.Run(false)
		s.Release()
		if err != nil || e.mp != m {
			return err
		}
	}
	return nil
}

func (e *Engine) clearDelayScripts() {
	for _, d := range e.delayScripts {
		d.script.Release()
	}
	e.delayScripts = nil
}

// SetDelayScript runs source once after the given number of frames.
func (e *Engine) SetDelayScript(frames int, source string) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if frames < 0 {
		return fmt.Errorf("%w: delay %d", ErrInvalidArgument, frames)
	}
	s, err := e.compile(fmt.Sprintf("%s:delay%d", e.mp.name, len(e.delayScripts)), source)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	e.delayScripts = append(e.delayScripts, delayScript{script: s, framesLeft: frames})
	return nil
}

// SetUpdateScript sets the script run at the end of every update.
func (e *Engine) SetUpdateScript(source string) error {
	s, err := e.compile("update", source)
	if err != nil {
		return err
	}
	e.updateScript.Release()
	e.updateScript = s
	return nil
}

// SetRenderScript sets the script run after the map is drawn.
func (e *Engine) SetRenderScript(source string) error {
	s, err := e.compile("render", source)
	if err != nil {
		return err
	}
	e.renderScript.Release()
	e.renderScript = s
	return nil
}

// SetDefaultMapScript sets the script every map runs before its own script
// for a slot.
func (e *Engine) SetDefaultMapScript(which int, source string) error {
	if which < 0 || which >= numMapScripts {
		return fmt.Errorf("%w: map script %d", ErrOutOfRange, which)
	}
	s, err := e.compile("default:"+mapScriptNames[which], source)
	if err != nil {
		return err
	}
	e.defaultMapScripts[which].Release()
	e.defaultMapScripts[which] = s
	return nil
}

// CallMapScript runs the current map's script for a slot.
func (e *Engine) CallMapScript(which int) error {
	if err := e.checkMap(); err != nil {
		return err
	}
	if which < 0 || which >= numMapScripts {
		return fmt.Errorf("%w: map script %d", ErrOutOfRange, which)
	}
	return e.mp.scripts[which].Run(false)
}

// CallDefaultMapScript runs the default script for a slot.
func (e *Engine) CallDefaultMapScript(which int) error {
	if which < 0 || which >= numMapScripts {
		return fmt.Errorf("%w: map script %d", ErrOutOfRange, which)
	}
	return e.defaultMapScripts[which].Run(false)
}

// GetColorMask returns the color drawn over the whole map.
func (e *Engine) GetColorMask() core.Color {
	return e.colorMask
}

// SetColorMask fades the map's color mask to c over the given number of
// frames. Zero frames sets it at once.
func (e *Engine) SetColorMask(c core.Color, frames int) error {
	if frames < 0 {
		return fmt.Errorf("%w: fade frames %d", ErrInvalidArgument, frames)
	}
	if frames == 0 {
		e.colorMask = c
		e.fadeFrames, e.fadeProgress = 0, 0
		return nil
	}
	e.fadeFrom = e.colorMask
	e.fadeTo = c
	e.fadeFrames = frames
	e.fadeProgress = 0
	return nil
}

// GetTalkDistance returns how far ahead a talking person reaches.
func (e *Engine) GetTalkDistance() int {
	return e.talkDistance
}

// SetTalkDistance changes how far ahead a talking person reaches.
func (e *Engine) SetTalkDistance(pixels int) error {
	if pixels < 0 {
		return fmt.Errorf("%w: talk distance %d", ErrInvalidArgument, pixels)
	}
	e.talkDistance = pixels
	return nil
}

// Close destroys every person and unloads the map without running any
// script.
func (e *Engine) Close() {
	for _, p := range e.persons {
		p.free()
	}
	e.persons = nil
	e.byID = make(map[int]*Person)
	e.clearDelayScripts()
	if e.mp != nil {
		e.mp.free()
		e.mp = nil
	}
	for i := range e.defaultPersonScripts {
		e.defaultPersonScripts[i].Release()
		e.defaultPersonScripts[i] = nil
	}
	for i := range e.defaultMapScripts {
		e.defaultMapScripts[i].Release()
		e.defaultMapScripts[i] = nil
	}
	for _, b := range e.boundKeys {
		b.free()
	}
	e.boundKeys = make(map[core.Key]*keyBinding)
	e.updateScript.Release()
	e.renderScript.Release()
	e.updateScript, e.renderScript = nil, nil
	e.cameraPerson = 0
	for i := range e.players {
		e.players[i].person = 0
		e.players[i].trigger = nil
	}
	e.state = StateIdle
}
