package engine

import (
	"errors"
	"testing"

	"github.com/vovakirdan/minisphere/internal/rmp"
)

// spawn creates persistent persons at the given positions.
func spawn(t *testing.T, e *Engine, at map[string][2]int) {
	t.Helper()
	for name, xy := range at {
		mustDo(t, e.CreatePerson(name, "hero.rss", true))
		mustDo(t, e.SetPersonX(name, xy[0]))
		mustDo(t, e.SetPersonY(name, xy[1]))
	}
}

func personX(t *testing.T, e *Engine, name string) int {
	t.Helper()
	x, err := e.GetPersonX(name)
	if err != nil {
		t.Fatalf("GetPersonX(%s) error: %v", name, err)
	}
	return x
}

func TestFollowRejectsCycles(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 100}, "B": {140, 100}, "C": {180, 100}})

	mustDo(t, e.FollowPerson("A", "B", 4))
	if err := e.FollowPerson("B", "A", 1); !errors.Is(err, ErrCircularFollow) {
		t.Errorf("FollowPerson(B, A) error = %v, expected ErrCircularFollow", err)
	}
	mustDo(t, e.FollowPerson("B", "C", 2))
	if err := e.FollowPerson("C", "A", 1); !errors.Is(err, ErrCircularFollow) {
		t.Errorf("FollowPerson(C, A) error = %v, expected ErrCircularFollow for a longer chain", err)
	}
	if err := e.FollowPerson("C", "C", 1); !errors.Is(err, ErrCircularFollow) {
		t.Errorf("FollowPerson(C, C) error = %v, expected ErrCircularFollow", err)
	}
	if err := e.FollowPerson("A", "C", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("FollowPerson(distance 0) error = %v, expected ErrInvalidArgument", err)
	}

	mustDo(t, e.FollowPerson("A", "", 0))
	mustDo(t, e.FollowPerson("B", "", 0))
	mustDo(t, e.FollowPerson("B", "A", 4))
	if n := e.Person("A").HistoryLen(); n < 4 {
		t.Errorf("leader history = %d, expected at least 4", n)
	}
	leader, _ := e.GetPersonLeader("B")
	if leader != "A" {
		t.Errorf("GetPersonLeader(B) = %q, expected A", leader)
	}
	followers, _ := e.GetPersonFollowers("A")
	if len(followers) != 1 || followers[0] != "B" {
		t.Errorf("GetPersonFollowers(A) = %v, expected [B]", followers)
	}
	if busy, _ := e.IsPersonBusy("B"); !busy {
		t.Error("a follower should count as busy")
	}
}

func TestFollowerTrailsLeader(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 60}, "B": {100, 60}})
	mustDo(t, e.SetPersonIgnoreList("B", []string{"A"}))
	mustDo(t, e.FollowPerson("B", "A", 20))

	for i := 0; i < 40; i++ {
		mustDo(t, e.QueueCommand("A", Move{Dir: East}, false))
	}
	frames(t, e, 40)

	ax, bx := personX(t, e, "A"), personX(t, e, "B")
	if ax != 140 {
		t.Fatalf("leader x = %d, expected 140", ax)
	}
	if gap := ax - bx; gap < 19 || gap > 22 {
		t.Errorf("follower gap = %d, expected about 20", gap)
	}
	if dir, _ := e.GetPersonDirection("B"); dir != "east" {
		t.Errorf("follower facing = %q, expected east", dir)
	}
	if y, _ := e.GetPersonY("B"); y != 60 {
		t.Errorf("follower y = %d, expected 60", y)
	}
}

func TestSortOrder(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	// Creation order fixes ids: P2 gets the lower id.
	mustDo(t, e.CreatePerson("P2", "hero.rss", true))
	mustDo(t, e.CreatePerson("P1", "hero.rss", true))
	mustDo(t, e.CreatePerson("Top", "hero.rss", true))
	mustDo(t, e.CreatePerson("Tie", "hero.rss", true))
	mustDo(t, e.SetPersonIgnoreList("P2", []string{"P1"}))
	for _, name := range []string{"P1", "P2"} {
		mustDo(t, e.SetPersonY(name, 10))
	}
	mustDo(t, e.SetPersonY("Top", 5))
	mustDo(t, e.SetPersonY("Tie", 10))
	mustDo(t, e.FollowPerson("P2", "P1", 1))

	got := e.GetPersonList()
	expected := []string{"Top", "P1", "P2", "Tie"}
	if len(got) != len(expected) {
		t.Fatalf("GetPersonList() = %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("GetPersonList() = %v, expected %v", got, expected)
		}
	}

	mustDo(t, e.SetPersonOffsetY("Top", 20))
	got = e.GetPersonList()
	if got[len(got)-1] != "Top" {
		t.Errorf("GetPersonList() = %v, expected the y offset to sort Top last", got)
	}

	// A follower half a pixel above its leader still draws after it.
	x, _ := e.GetPersonXFloat("P2")
	mustDo(t, e.SetPersonXYFloat("P2", x, 9.5))
	got = e.GetPersonList()
	if got[0] != "P1" || got[1] != "P2" {
		t.Errorf("GetPersonList() = %v, expected P1 then P2 for a sub-pixel depth gap", got)
	}
}

func TestIgnoreIsCommutative(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 100}, "B": {130, 100}, "C": {160, 100}})
	mustDo(t, e.SetPersonIgnoreList("A", []string{"B"}))

	a, b, c := e.Person("A"), e.Person("B"), e.Person("C")
	if !isIgnored(a, b) || !isIgnored(b, a) {
		t.Errorf("isIgnored(A, B), isIgnored(B, A) = %v, %v; expected both true", isIgnored(a, b), isIgnored(b, a))
	}
	if isIgnored(b, c) {
		t.Error("isIgnored(B, C) = true, expected false")
	}

	if hit, _ := e.IsPersonObstructed("B", 100, 100); hit {
		t.Error("B should walk through A, which ignores it")
	}
	if hit, _ := e.IsPersonObstructed("C", 100, 100); !hit {
		t.Error("C should be obstructed by A")
	}
}

func TestPersonObstruction(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {160, 60}, "B": {200, 60}})

	tests := []struct {
		name     string
		x        int
		expected string
	}{
		{"edges touching", 176, ""},
		{"overlapping", 175, "A"},
		{"far away", 220, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.GetObstructingPerson("B", tt.x, 60)
			if err != nil {
				t.Fatalf("GetObstructingPerson() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("GetObstructingPerson(B, %d) = %q, expected %q", tt.x, got, tt.expected)
			}
		})
	}

	mustDo(t, e.SetPersonLayer("B", 1))
	if hit, _ := e.IsPersonObstructed("B", 175, 60); hit {
		t.Error("persons on different layers should not collide")
	}
	mustDo(t, e.SetPersonLayer("B", 0))
	mustDo(t, e.IgnorePersonObstructions("B", true))
	if hit, _ := e.IsPersonObstructed("B", 175, 60); hit {
		t.Error("a person ignoring persons should not collide")
	}
	if _, err := e.IsPersonObstructed("nobody", 0, 0); !errors.Is(err, ErrNoSuchPerson) {
		t.Errorf("IsPersonObstructed(nobody) error = %v, expected ErrNoSuchPerson", err)
	}
}

func TestTileObstruction(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {160, 120}})

	if tile, _ := e.GetObstructingTile("A", 248, 120); tile != tileWall {
		t.Errorf("GetObstructingTile() on the wall = %d, expected %d", tile, tileWall)
	}
	if tile, _ := e.GetObstructingTile("A", 160, 120); tile != -1 {
		t.Errorf("GetObstructingTile() on grass = %d, expected -1", tile)
	}

	// A footprint lying inside the wall outline without touching it.
	mustDo(t, e.SetPersonScaleFactor("A", 0.5, 0.5))
	if hit, _ := e.IsPersonObstructed("A", 248, 120); hit {
		t.Error("a footprint inside an obstruction outline should not be obstructed")
	}
	mustDo(t, e.SetPersonScaleFactor("A", 1, 1))

	mustDo(t, e.IgnoreTileObstructions("A", true))
	if hit, _ := e.IsPersonObstructed("A", 248, 120); hit {
		t.Error("a person ignoring tiles should not be obstructed by them")
	}
}

func TestWalkingIntoWall(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {160, 120}})
	for i := 0; i < 100; i++ {
		mustDo(t, e.QueueCommand("A", Move{Dir: East}, false))
	}
	frames(t, e, 100)
	if x := personX(t, e, "A"); x != 231 {
		t.Errorf("x after walking into the wall = %d, expected 231", x)
	}
}

func TestTouchScript(t *testing.T) {
	f := newFixture(t)
	var e *Engine
	touches := 0
	var acting, current string
	f.table["touched"] = func() error {
		touches++
		acting, _ = e.GetActingPerson()
		current, _ = e.GetCurrentPerson()
		return nil
	}
	e = f.start(t)
	spawn(t, e, map[string][2]int{"A": {160, 60}, "B": {190, 60}})
	mustDo(t, e.SetPersonScript("B", OnTouch, "touched"))

	for i := 0; i < 20; i++ {
		mustDo(t, e.QueueCommand("A", Move{Dir: East}, false))
	}
	frames(t, e, 20)

	if x := personX(t, e, "A"); x != 174 {
		t.Errorf("A stopped at %d, expected 174", x)
	}
	if touches != 6 {
		t.Errorf("touch script ran %d times, expected 6", touches)
	}
	if acting != "A" || current != "B" {
		t.Errorf("acting, current = %q, %q; expected A, B", acting, current)
	}
	if _, err := e.GetActingPerson(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("GetActingPerson() outside a script error = %v, expected ErrInvalidState", err)
	}
}

func TestCommandQueue(t *testing.T) {
	f := newFixture(t)
	gens := f.counter("gen")
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 60}})
	mustDo(t, e.SetPersonScript("A", Generator, "gen"))

	mustDo(t, e.QueuePersonCommand("A", CommandFaceNorth+int(East), true))
	mustDo(t, e.QueuePersonCommand("A", CommandMoveEast, true))
	mustDo(t, e.QueuePersonCommand("A", CommandMoveEast, false))
	mustDo(t, e.QueuePersonCommand("A", CommandMoveEast, false))

	frames(t, e, 1)
	if x := personX(t, e, "A"); x != 102 {
		t.Errorf("x after one frame = %d, expected 102", x)
	}
	if dir, _ := e.GetPersonDirection("A"); dir != "east" {
		t.Errorf("direction = %q, expected east", dir)
	}
	frames(t, e, 1)
	if x := personX(t, e, "A"); x != 103 {
		t.Errorf("x after two frames = %d, expected 103", x)
	}
	if *gens != 0 {
		t.Errorf("generator ran %d times with commands queued, expected 0", *gens)
	}
	if empty, _ := e.IsCommandQueueEmpty("A"); !empty {
		t.Error("queue should be empty")
	}
	frames(t, e, 1)
	if *gens != 1 {
		t.Errorf("generator ran %d times on an empty queue, expected 1", *gens)
	}

	if err := e.QueuePersonCommand("A", 99, false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("QueuePersonCommand(99) error = %v, expected ErrInvalidArgument", err)
	}
	mustDo(t, e.QueuePersonCommand("A", CommandWait, false))
	mustDo(t, e.ClearPersonCommands("A"))
	if empty, _ := e.IsCommandQueueEmpty("A"); !empty {
		t.Error("ClearPersonCommands() should empty the queue")
	}
}

func TestGeneratorFeedsQueue(t *testing.T) {
	f := newFixture(t)
	var e *Engine
	f.table["walk"] = func() error {
		name, _ := e.GetCurrentPerson()
		return e.QueueCommand(name, Move{Dir: South}, false)
	}
	e = f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 20}})
	mustDo(t, e.SetPersonScript("A", Generator, "walk"))
	frames(t, e, 5)
	if y, _ := e.GetPersonY("A"); y != 25 {
		t.Errorf("y = %d, expected 25", y)
	}
}

func TestScriptDestroysItsPerson(t *testing.T) {
	f := newFixture(t)
	var e *Engine
	f.table["vanish"] = func() error {
		return e.DestroyPerson("A")
	}
	e = f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 20}})
	mustDo(t, e.QueuePersonScript("A", "vanish", true))
	mustDo(t, e.QueueCommand("A", Move{Dir: East}, false))

	frames(t, e, 2)
	if e.DoesPersonExist("A") {
		t.Error("A should have been destroyed by its queued script")
	}
}

func TestAnimationAndFrameRevert(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {100, 20}})
	mustDo(t, e.SetPersonDirection("A", "east"))
	mustDo(t, e.SetPersonFrame("A", 0))

	for i := 0; i < 4; i++ {
		mustDo(t, e.QueueCommand("A", Animate{}, false))
	}
	frames(t, e, 3)
	if fr, _ := e.GetPersonFrame("A"); fr != 0 {
		t.Errorf("frame after 3 animates = %d, expected 0", fr)
	}
	frames(t, e, 1)
	if fr, _ := e.GetPersonFrame("A"); fr != 1 {
		t.Errorf("frame after 4 animates = %d, expected 1", fr)
	}

	mustDo(t, e.SetPersonFrameRevert("A", 3))
	mustDo(t, e.SetPersonFrame("A", 1))
	frames(t, e, 2)
	if fr, _ := e.GetPersonFrame("A"); fr != 1 {
		t.Errorf("frame before revert = %d, expected 1", fr)
	}
	frames(t, e, 1)
	if fr, _ := e.GetPersonFrame("A"); fr != 0 {
		t.Errorf("frame after revert = %d, expected 0", fr)
	}
}

func otherMap() *rmp.File {
	m := testMap()
	m.StartX, m.StartY, m.StartLayer = 48, 32, 1
	return m
}

func TestMapChangePersonLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addMap(t, "other.rmp", otherMap())
	destroyed := f.counter("destroyed")
	e := f.start(t)

	mustDo(t, e.CreatePerson("A", "hero.rss", false))
	mustDo(t, e.SetPersonScript("A", OnDestroy, "destroyed"))
	mustDo(t, e.CreatePerson("B", "hero.rss", true))
	mustDo(t, e.SetPersonX("B", 10))
	mustDo(t, e.QueueCommand("B", Move{Dir: East}, false))

	mustDo(t, e.ChangeMap("other"))
	if e.DoesPersonExist("A") {
		t.Error("a map-bound person survived the map change")
	}
	if *destroyed != 1 {
		t.Errorf("destroy script ran %d times, expected 1", *destroyed)
	}
	if !e.DoesPersonExist("B") {
		t.Fatal("a persistent person did not survive the map change")
	}
	x, _ := e.GetPersonX("B")
	y, _ := e.GetPersonY("B")
	l, _ := e.GetPersonLayer("B")
	if x != 48 || y != 32 || l != 1 {
		t.Errorf("B at %d,%d layer %d; expected the new origin 48,32 layer 1", x, y, l)
	}
	if empty, _ := e.IsCommandQueueEmpty("B"); !empty {
		t.Error("the map change should clear queued commands")
	}
}

func TestMapPersons(t *testing.T) {
	f := newFixture(t)
	m := testMap()
	m.Persons = []rmp.Person{{Name: "Guard", Spriteset: "hero.rss", X: 64, Y: 80, Layer: 1}}
	m.Persons[0].Scripts[rmp.PersonOnCreate] = "guard created"
	m.Persons[0].Scripts[rmp.PersonOnDestroy] = "guard destroyed"
	f.addMap(t, "guarded.rmp", m)
	created := f.counter("guard created")
	destroyed := f.counter("guard destroyed")
	defaults := f.counter("default create")

	e := f.engine(t)
	mustDo(t, e.SetDefaultPersonScript(OnCreate, "default create"))
	mustDo(t, e.Start("guarded"))

	if !e.DoesPersonExist("Guard") {
		t.Fatal("map person was not created")
	}
	x, _ := e.GetPersonX("Guard")
	y, _ := e.GetPersonY("Guard")
	if x != 64 || y != 80 {
		t.Errorf("Guard at %d,%d, expected 64,80", x, y)
	}
	if *created != 1 || *defaults != 1 {
		t.Errorf("create scripts ran %d/%d times, expected 1/1", *created, *defaults)
	}

	mustDo(t, e.ChangeMap("test"))
	if e.DoesPersonExist("Guard") {
		t.Error("map person survived leaving its map")
	}
	if *destroyed != 1 {
		t.Errorf("destroy script ran %d times, expected 1", *destroyed)
	}
}

func TestDestroyPersonDetaches(t *testing.T) {
	f := newFixture(t)
	e := f.withHero(t)
	mustDo(t, e.CreatePerson("Pet", "hero.rss", true))
	mustDo(t, e.FollowPerson("Pet", "Hero", 8))

	mustDo(t, e.DestroyPerson("Hero"))
	if e.IsCameraAttached() {
		t.Error("camera still attached to a destroyed person")
	}
	if e.IsInputAttached() {
		t.Error("input still attached to a destroyed person")
	}
	if leader, _ := e.GetPersonLeader("Pet"); leader != "" {
		t.Errorf("GetPersonLeader(Pet) = %q, expected none", leader)
	}
	if err := e.DestroyPerson("Hero"); !errors.Is(err, ErrNoSuchPerson) {
		t.Errorf("second DestroyPerson() error = %v, expected ErrNoSuchPerson", err)
	}
}

func TestAddPersonTakesReference(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	ss := testSpriteset()
	p, err := e.AddPerson("A", ss, true)
	if err != nil {
		t.Fatalf("AddPerson() error: %v", err)
	}
	if ss.Refs() != 2 {
		t.Errorf("Refs() = %d, expected 2", ss.Refs())
	}
	if p.Direction() != "south" {
		t.Errorf("Direction() = %q, expected the first pose", p.Direction())
	}
	mustDo(t, e.DestroyPerson("A"))
	if ss.Refs() != 1 {
		t.Errorf("Refs() after destroy = %d, expected 1", ss.Refs())
	}
}

func TestPersonValues(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {0, 0}})

	if v, _ := e.GetPersonValue("A", "hp"); v != nil {
		t.Errorf("GetPersonValue(unset) = %v, expected nil", v)
	}
	mustDo(t, e.SetPersonValue("A", "hp", 12))
	if v, _ := e.GetPersonValue("A", "hp"); v != 12 {
		t.Errorf("GetPersonValue(hp) = %v, expected 12", v)
	}
}

func TestSpeedValidation(t *testing.T) {
	f := newFixture(t)
	e := f.start(t)
	spawn(t, e, map[string][2]int{"A": {0, 0}})

	if err := e.SetPersonSpeedXY("A", -1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetPersonSpeedXY(-1) error = %v, expected ErrInvalidArgument", err)
	}
	mustDo(t, e.SetPersonSpeedXY("A", 2, 3))
	sx, _ := e.GetPersonSpeedX("A")
	sy, _ := e.GetPersonSpeedY("A")
	if sx != 2 || sy != 3 {
		t.Errorf("speed = %v,%v; expected 2,3", sx, sy)
	}
}
