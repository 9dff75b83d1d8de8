// minisphere plays Sphere map engine games in the terminal.
//
// Usage:
//
//	minisphere run <game-dir> [map]  - Play a game (or pick one from a directory of games)
//	minisphere list <dir>            - List the games in a directory
//	minisphere inspect <file>        - Dump an .rmp, .rts or .rss file
//	minisphere saves <game>          - Show save slots and recent sessions
//	minisphere serve [games-dir]     - Start SSH server for remote play
//	minisphere config                - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.minisphere/config.yaml, ./configs/minisphere.yaml)
//	--fps <rate>        - Override the map engine frame rate
//	--db <path>         - Save database path (default: ~/.minisphere/saves.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/minisphere/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "minisphere",
	Short: "minisphere - Sphere map engine games in your terminal",
	Long: `minisphere runs games built for the Sphere map engine: tile maps, persons
walking on them and the scripts attached to both. Scripts are written in Go
and see the engine API as package "sphere".

Available commands:
  run      - Play a game
  list     - Show the games in a directory
  inspect  - Dump a map, tileset or spriteset file
  saves    - View save slots and recent sessions
  serve    - Start SSH server for remote play
  config   - Print the effective configuration

Examples:
  minisphere run ./games/quest
  minisphere run ./games/quest town.rmp
  minisphere inspect ./games/quest/maps/town.rmp
  minisphere serve ./games --log-level debug`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Map engine frame rate (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to save database (empty = from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the config file and applies the global flag overrides.
func loadConfig() (config.EngineConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.FrameRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.SaveDB = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg config.EngineConfig, prefix string) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
		}
		logger.SetLevel(level)
	}
	return logger, nil
}
