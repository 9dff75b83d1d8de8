package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/minisphere/internal/engine"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Map:     "town.rmp",
		CameraX: 160,
		CameraY: 120,
		Frames:  42,
		Persons: []engine.PersonState{
			{
				Name: "Hero", Spriteset: "hero.rss", X: 100.5, Y: 60, Direction: "west",
				SpeedX: 1, SpeedY: 1, Player: 0, Camera: true,
				Values: map[string]any{"hp": 3}, Scripts: map[string]string{"talk": "greet"},
			},
			{
				Name: "Dog", Spriteset: "dog.rss", X: 96, Y: 60, Direction: "south",
				SpeedX: 2, SpeedY: 2, Hidden: true, Leader: "Hero", FollowDistance: 4, Player: -1,
			},
		},
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestSaveAndLoadSlot(t *testing.T) {
	store := openTemp(t)

	want := sampleSnapshot()
	if err := store.SaveSlot("quest", "1", want); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}

	got, err := store.LoadSlot("quest", "1")
	if err != nil {
		t.Fatalf("LoadSlot() failed: %v", err)
	}
	if got.Map != want.Map || got.CameraX != 160 || got.Frames != 42 {
		t.Errorf("LoadSlot() = %+v, expected %+v", got, want)
	}
	if len(got.Persons) != 2 {
		t.Fatalf("len(Persons) = %d, expected 2", len(got.Persons))
	}
	hero, dog := got.Persons[0], got.Persons[1]
	if hero.X != 100.5 || hero.Direction != "west" || !hero.Camera || hero.Values["hp"] != 3 {
		t.Errorf("hero = %+v", hero)
	}
	if hero.Scripts["talk"] != "greet" {
		t.Errorf("hero scripts = %v, expected the talk source", hero.Scripts)
	}
	if dog.Leader != "Hero" || dog.FollowDistance != 4 || dog.Player != -1 || !dog.Hidden {
		t.Errorf("dog = %+v", dog)
	}

	if err := store.SaveSlot("quest", "1", nil); err == nil {
		t.Error("SaveSlot(nil) should fail")
	}
}

func TestSaveSlotOverwrites(t *testing.T) {
	store := openTemp(t)

	snap := sampleSnapshot()
	if err := store.SaveSlot("quest", "auto", snap); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}
	snap.Map = "cave.rmp"
	snap.Persons = snap.Persons[:1]
	if err := store.SaveSlot("quest", "auto", snap); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}

	got, err := store.LoadSlot("quest", "auto")
	if err != nil {
		t.Fatalf("LoadSlot() failed: %v", err)
	}
	if got.Map != "cave.rmp" || len(got.Persons) != 1 {
		t.Errorf("LoadSlot() = %s with %d persons, expected cave.rmp with 1", got.Map, len(got.Persons))
	}

	slots, err := store.ListSlots("quest")
	if err != nil {
		t.Fatalf("ListSlots() failed: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("Expected 1 slot after overwrite, got %d", len(slots))
	}
}

func TestMissingSlot(t *testing.T) {
	store := openTemp(t)

	if _, err := store.LoadSlot("quest", "9"); !errors.Is(err, ErrNoSlot) {
		t.Errorf("LoadSlot() error = %v, expected ErrNoSlot", err)
	}
	if err := store.DeleteSlot("quest", "9"); !errors.Is(err, ErrNoSlot) {
		t.Errorf("DeleteSlot() error = %v, expected ErrNoSlot", err)
	}
}

func TestListAndDeleteSlots(t *testing.T) {
	store := openTemp(t)

	for _, slot := range []string{"1", "2"} {
		if err := store.SaveSlot("quest", slot, sampleSnapshot()); err != nil {
			t.Fatalf("SaveSlot(%s) failed: %v", slot, err)
		}
	}
	// Different game
	if err := store.SaveSlot("other", "1", sampleSnapshot()); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}

	slots, err := store.ListSlots("quest")
	if err != nil {
		t.Fatalf("ListSlots() failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 quest slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Game != "quest" || s.Map != "town.rmp" || s.Frames != 42 {
			t.Errorf("slot = %+v", s)
		}
		if s.UpdatedAt.IsZero() {
			t.Errorf("slot %s has no timestamp", s.Slot)
		}
	}

	if err := store.DeleteSlot("quest", "1"); err != nil {
		t.Fatalf("DeleteSlot() failed: %v", err)
	}
	slots, _ = store.ListSlots("quest")
	if len(slots) != 1 || slots[0].Slot != "2" {
		t.Errorf("ListSlots() after delete = %+v, expected only slot 2", slots)
	}
	if other, _ := store.ListSlots("other"); len(other) != 1 {
		t.Error("other game's slots should not be affected")
	}
}

func TestRecordSessions(t *testing.T) {
	store := openTemp(t)

	recs := []SessionRecord{
		{Game: "quest", StartMap: "town.rmp", EndMap: "cave.rmp", Frames: 600, Duration: 10, EndReason: "exit"},
		{Game: "quest", User: "alice", Remote: "10.0.0.1:5000", StartMap: "town.rmp", EndMap: "town.rmp", Frames: 60, Duration: 1, EndReason: "disconnect"},
		{Game: "other", EndReason: "exit"},
	}
	for _, rec := range recs {
		id, err := store.RecordSession(rec)
		if err != nil {
			t.Fatalf("RecordSession() failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("RecordSession() id = %d, expected positive", id)
		}
	}

	got, err := store.RecentSessions("quest", 10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 quest sessions, got %d", len(got))
	}
	if got[0].User != "alice" || got[0].EndReason != "disconnect" {
		t.Errorf("most recent = %+v, expected alice's disconnect", got[0])
	}
	if got[1].EndMap != "cave.rmp" || got[1].Frames != 600 {
		t.Errorf("oldest = %+v", got[1])
	}

	all, _ := store.RecentSessions("", 10)
	if len(all) != 3 {
		t.Errorf("RecentSessions(\"\") = %d records, expected 3", len(all))
	}
	if limited, _ := store.RecentSessions("", 1); len(limited) != 1 {
		t.Errorf("RecentSessions(limit 1) = %d records, expected 1", len(limited))
	}
}
