// Package script defines the script service the map engine runs its hooks
// through: compiled handles with reference counting and a reentrancy guard.
// The engine never looks inside a script; it only compiles source taken from
// map and person records and runs the result at fixed hook points.
package script

import (
	"errors"
	"fmt"
)

// Func is the compiled body of a script.
type Func func() error

// Error wraps a failure raised while a script ran.
type Error struct {
	Script string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Script is a compiled, runnable handle. A nil *Script is valid and does
// nothing when run, which is how absent hooks are represented.
type Script struct {
	name    string
	fn      Func
	running bool
	refs    int
}

// New wraps fn as a script with one reference.
func New(name string, fn Func) *Script {
	return &Script{name: name, fn: fn, refs: 1}
}

// Name returns the debug name given at compile time.
func (s *Script) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Ref adds a reference and returns the script.
func (s *Script) Ref() *Script {
	if s != nil {
		s.refs++
	}
	return s
}

// Release drops a reference. The body is discarded with the last one.
func (s *Script) Release() {
	if s == nil || s.refs <= 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.fn = nil
	}
}

// Refs returns the current reference count.
func (s *Script) Refs() int {
	if s == nil {
		return 0
	}
	return s.refs
}

// Running reports whether the script is on the call stack.
func (s *Script) Running() bool {
	return s != nil && s.running
}

// Run executes the script. A script that is already running is skipped
// unless allowReentry is set. Panics inside the body are returned as errors.
func (s *Script) Run(allowReentry bool) (err error) {
	if s == nil || s.fn == nil {
		return nil
	}
	if s.running && !allowReentry {
		return nil
	}

	wasRunning := s.running
	s.running = true
	// The body may release the last reference to its own handle.
	s.refs++
	defer func() {
		s.running = wasRunning
		s.Release()
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			err = &Error{Script: s.name, Err: perr}
		}
	}()

	if runErr := s.fn(); runErr != nil {
		var serr *Error
		if errors.As(runErr, &serr) {
			return runErr
		}
		return &Error{Script: s.name, Err: runErr}
	}
	return nil
}

// Compiler turns source text into a runnable script. Empty source compiles
// to a nil script without error.
type Compiler interface {
	Compile(name, source string) (*Script, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(name, source string) (*Script, error)

// Compile calls f.
func (f CompilerFunc) Compile(name, source string) (*Script, error) {
	return f(name, source)
}
