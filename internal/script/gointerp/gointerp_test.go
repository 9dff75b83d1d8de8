package gointerp

import (
	"reflect"
	"testing"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *[]int) {
	t.Helper()
	var hits []int
	in, err := New(map[string]reflect.Value{
		"Hit": reflect.ValueOf(func(n int) { hits = append(hits, n) }),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return in, &hits
}

func TestCompileAndRun(t *testing.T) {
	in, hits := newTestInterpreter(t)

	s, err := in.Compile("touch", "sphere.Hit(2)")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Run(false); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	}
	if len(*hits) != 2 || (*hits)[0] != 2 {
		t.Errorf("hits = %v, expected [2 2]", *hits)
	}
}

func TestCompileEmpty(t *testing.T) {
	in, _ := newTestInterpreter(t)
	s, err := in.Compile("empty", "  \n ")
	if s != nil || err != nil {
		t.Errorf("Compile(empty) = %v, %v; expected nil, nil", s, err)
	}
}

func TestCompileError(t *testing.T) {
	in, _ := newTestInterpreter(t)
	if _, err := in.Compile("broken", "sphere.Hit("); err == nil {
		t.Error("Compile() should fail on a syntax error")
	}
}

func TestSharedGlobals(t *testing.T) {
	in, hits := newTestInterpreter(t)
	if err := in.Eval("var steps int"); err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	s, err := in.Compile("zone", "steps++\nsphere.Hit(steps)")
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Run(false); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	}
	if got := (*hits)[2]; got != 3 {
		t.Errorf("third run saw steps = %d, expected 3", got)
	}
}

func TestPanicBecomesError(t *testing.T) {
	in, _ := newTestInterpreter(t)
	s, err := in.Compile("abort", `panic("game over")`)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if err := s.Run(false); err == nil {
		t.Error("Run() = nil, expected the panic as an error")
	}
}
