// Package gointerp compiles map and person scripts written in Go using the
// yaegi interpreter. Script bodies see the engine API as package "sphere"
// plus a small allowlist of the standard library.
package gointerp

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/vovakirdan/minisphere/internal/script"
)

// APIPath is the import path scripts use for the engine API.
const APIPath = "sphere"

// allowedPkgs are the standard library packages scripts may import.
var allowedPkgs = []string{
	"fmt/fmt",
	"math/math",
	"strings/strings",
	"strconv/strconv",
}

// Interpreter is a script.Compiler backed by one yaegi interpreter. Every
// compiled script shares its globals, the way scripts of one game share a
// single scripting context.
type Interpreter struct {
	vm    *interp.Interpreter
	count int
}

// New creates an interpreter exposing symbols as package "sphere".
func New(symbols map[string]reflect.Value) (*Interpreter, error) {
	vm := interp.New(interp.Options{})
	if err := vm.Use(restrictedStdlib()); err != nil {
		return nil, fmt.Errorf("gointerp: loading stdlib: %w", err)
	}
	if err := vm.Use(interp.Exports{APIPath + "/" + APIPath: symbols}); err != nil {
		return nil, fmt.Errorf("gointerp: loading api: %w", err)
	}
	for _, pkg := range append([]string{APIPath + "/" + APIPath}, allowedPkgs...) {
		path := pkg[:strings.IndexByte(pkg, '/')]
		if _, err := vm.Eval(fmt.Sprintf("import %q", path)); err != nil {
			return nil, fmt.Errorf("gointerp: importing %s: %w", path, err)
		}
	}
	return &Interpreter{vm: vm}, nil
}

func restrictedStdlib() interp.Exports {
	restricted := interp.Exports{}
	for _, key := range allowedPkgs {
		if syms, ok := stdlib.Symbols[key]; ok {
			restricted[key] = syms
		}
	}
	return restricted
}

// Eval runs a top-level declaration block, such as a game's main script
// defining helper functions for later hooks.
func (in *Interpreter) Eval(source string) error {
	if _, err := in.vm.Eval(source); err != nil {
		return fmt.Errorf("gointerp: %w", err)
	}
	return nil
}

// Compile wraps source as the body of a fresh function and returns it as a
// script. Empty source compiles to nil.
func (in *Interpreter) Compile(name, source string) (*script.Script, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	in.count++
	fname := fmt.Sprintf("hook%d", in.count)
	if _, err := in.vm.Eval(fmt.Sprintf("func %s() {\n%s\n}", fname, source)); err != nil {
		return nil, fmt.Errorf("gointerp: compiling %s: %w", name, err)
	}
	v, err := in.vm.Eval(fname)
	if err != nil {
		return nil, fmt.Errorf("gointerp: resolving %s: %w", name, err)
	}
	fn, ok := v.Interface().(func())
	if !ok {
		return nil, fmt.Errorf("gointerp: %s compiled to %s, expected func()", name, v.Type())
	}
	return script.New(name, func() error {
		fn()
		return nil
	}), nil
}
