package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/platform/tui"
	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

var flagKeys string

var runCmd = &cobra.Command{
	Use:   "run [game-dir] [map]",
	Short: "Play a game",
	Long: `Start playing the game in game-dir, or pick one when game-dir holds
several games. Without game-dir the config's game_dir is used.

Player one walks with the arrow keys and talks with Enter or Space.
Other players use the keys from the config file.

Controls:
  Ctrl+S     - Quick save
  Ctrl+L     - Quick load
  Ctrl+G     - Show key help
  Ctrl+Q     - Quit

Logs go to ~/.minisphere/minisphere.log while the game runs.

Examples:
  minisphere run ./games/quest
  minisphere run ./games/quest cave.rmp
  minisphere run ./games --fps 30
  minisphere run ./games/quest --keys wasd`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagKeys, "keys", "", "Movement keys for player one: arrows, wasd or vim")
}

func runRun(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagKeys != "" {
		if err := config.ApplyKeyPreset(&cfg, 0, config.KeyPreset(flagKeys)); err != nil {
			return err
		}
	}

	dir := cfg.GameDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no game directory given and none configured")
	}
	games, err := scanGames(config.ExpandHome(dir))
	if err != nil {
		return err
	}

	logger, closeLog, err := newFileLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.Open(cfg.SaveDB)
	if err != nil {
		logger.Warn("could not open save database", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	// Get terminal size; the first resize message corrects it anyway
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}

	opts := tui.SessionOptions{
		Games:  games,
		Config: cfg,
		Store:  store,
		Logger: logger,
		Width:  width,
		Height: height,
		User:   os.Getenv("USER"),
	}
	if len(args) > 1 {
		opts.Map = args[1]
	}
	return tui.Run(opts)
}

// scanGames registers the games found in dir.
func scanGames(dir string) (*registry.Registry, error) {
	games := registry.New()
	n, err := games.Scan(dir)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no games in %s (a game directory contains maps/)", dir)
	}
	return games, nil
}

// newFileLogger logs to ~/.minisphere/minisphere.log, since the terminal
// belongs to the game.
func newFileLogger(cfg config.EngineConfig) (*log.Logger, func(), error) {
	dir := config.UserDir()
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "minisphere.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger, err := newLogger(cfg, "minisphere")
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}
