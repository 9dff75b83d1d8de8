// Package storage provides SQLite-based persistence for save slots and
// play sessions. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/minisphere/internal/engine"
)

// ErrNoSlot is returned when a save slot does not exist.
var ErrNoSlot = errors.New("storage: no such save slot")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SlotInfo describes a save slot without its payload.
type SlotInfo struct {
	Game      string
	Slot      string
	Map       string
	Frames    int
	UpdatedAt time.Time
}

// SessionRecord is one finished play session, local or over SSH.
type SessionRecord struct {
	ID        int64
	Game      string
	User      string // Empty for local play
	Remote    string
	StartMap  string
	EndMap    string
	Frames    int
	Duration  int // Duration in seconds
	EndReason string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS save_slots (
			game TEXT NOT NULL,
			slot TEXT NOT NULL,
			map TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game, slot)
		);

		CREATE TABLE IF NOT EXISTS play_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game TEXT NOT NULL,
			user TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT '',
			start_map TEXT NOT NULL DEFAULT '',
			end_map TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_play_sessions_game ON play_sessions(game);
		CREATE INDEX IF NOT EXISTS idx_play_sessions_user ON play_sessions(user);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSlot writes snap into the named slot, replacing what was there.
func (s *Store) SaveSlot(game, slot string, snap *engine.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("storage: nil snapshot")
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("storage: cannot encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO save_slots (game, slot, map, frames, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game, slot) DO UPDATE SET
		   map = excluded.map,
		   frames = excluded.frames,
		   data = excluded.data,
		   updated_at = CURRENT_TIMESTAMP`,
		game, slot, snap.Map, snap.Frames, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save slot %s/%s: %w", game, slot, err)
	}
	return nil
}

// LoadSlot reads the snapshot in the named slot.
// Returns ErrNoSlot if the slot was never saved.
func (s *Store) LoadSlot(game, slot string) (*engine.Snapshot, error) {
	var data string
	err := s.db.QueryRow(
		"SELECT data FROM save_slots WHERE game = ? AND slot = ?",
		game, slot,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoSlot, game, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query slot: %w", err)
	}

	var snap engine.Snapshot
	if err := yaml.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("storage: corrupt slot %s/%s: %w", game, slot, err)
	}
	return &snap, nil
}

// ListSlots returns the slots saved for a game, most recent first.
func (s *Store) ListSlots(game string) ([]SlotInfo, error) {
	rows, err := s.db.Query(
		`SELECT game, slot, map, frames, updated_at
		 FROM save_slots
		 WHERE game = ?
		 ORDER BY updated_at DESC, slot`,
		game,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query slots: %w", err)
	}
	defer rows.Close()

	var slots []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var updatedAt any
		if err := rows.Scan(&info.Game, &info.Slot, &info.Map, &info.Frames, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.UpdatedAt = parseTime(updatedAt)
		slots = append(slots, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return slots, nil
}

// DeleteSlot removes a save slot. Returns ErrNoSlot if it did not exist.
func (s *Store) DeleteSlot(game, slot string) error {
	res, err := s.db.Exec("DELETE FROM save_slots WHERE game = ? AND slot = ?", game, slot)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNoSlot, game, slot)
	}
	return nil
}

// RecordSession stores a finished play session.
// Returns the ID of the inserted record.
func (s *Store) RecordSession(rec SessionRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO play_sessions
		 (game, user, remote, start_map, end_map, frames, duration_secs, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Game,
		rec.User,
		rec.Remote,
		rec.StartMap,
		rec.EndMap,
		rec.Frames,
		rec.Duration,
		rec.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot record session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the most recent sessions of a game.
// An empty game matches every game.
func (s *Store) RecentSessions(game string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, game, user, remote, start_map, end_map, frames, duration_secs, end_reason, created_at
		 FROM play_sessions
		 WHERE ? = '' OR game = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		game, game, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var createdAt any
		if err := rows.Scan(
			&rec.ID,
			&rec.Game,
			&rec.User,
			&rec.Remote,
			&rec.StartMap,
			&rec.EndMap,
			&rec.Frames,
			&rec.Duration,
			&rec.EndReason,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
