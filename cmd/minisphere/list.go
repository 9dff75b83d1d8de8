package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minisphere/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the games in a directory",
	Long: `Shows the games found in dir, or in the config's game_dir.

A game is a directory with a maps/ subdirectory and an optional game.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.GameDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}

	games, err := scanGames(config.ExpandHome(dir))
	if err != nil {
		return err
	}
	list := games.List()

	fmt.Println("Available games:")
	fmt.Println()

	// Calculate column widths
	maxIDLen, maxTitleLen := 2, 5
	for _, g := range list {
		maxIDLen = max(maxIDLen, len(g.ID))
		maxTitleLen = max(maxTitleLen, len(g.Title))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Start map")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "---------")
	for _, g := range list {
		start := g.StartMap
		if start == "" {
			start = "(first map)"
		}
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, g.ID, maxTitleLen, g.Title, start)
	}

	fmt.Println()
	fmt.Println("Run 'minisphere run <directory>' to play a game.")
	return nil
}
