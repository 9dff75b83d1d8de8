package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minisphere/internal/registry"
	"github.com/vovakirdan/minisphere/internal/storage"
)

var (
	flagDeleteSlot string
	flagSessions   int
)

var savesCmd = &cobra.Command{
	Use:   "saves <game-dir>",
	Short: "Show save slots and recent sessions for a game",
	Long: `Display the save slots of a game and its most recent play sessions.

Examples:
  minisphere saves ./games/quest
  minisphere saves ./games/quest --delete quick`,
	Args: cobra.ExactArgs(1),
	RunE: runSaves,
}

func init() {
	savesCmd.Flags().StringVar(&flagDeleteSlot, "delete", "", "Delete the named save slot")
	savesCmd.Flags().IntVar(&flagSessions, "sessions", 10, "Number of recent sessions to show")
}

func runSaves(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	game, err := registry.Inspect(args[0])
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.SaveDB)
	if err != nil {
		return fmt.Errorf("opening save database: %w", err)
	}
	defer store.Close()

	if flagDeleteSlot != "" {
		if err := store.DeleteSlot(game.ID, flagDeleteSlot); err != nil {
			return err
		}
		fmt.Printf("Deleted slot %q.\n\n", flagDeleteSlot)
	}

	slots, err := store.ListSlots(game.ID)
	if err != nil {
		return fmt.Errorf("listing slots: %w", err)
	}

	fmt.Printf("Save slots - %s\n", game.Title)
	fmt.Println()
	if len(slots) == 0 {
		fmt.Println("No saves yet. Press Ctrl+S while playing to quick save.")
	} else {
		fmt.Printf("  %-12s  %-20s  %-8s  %s\n", "Slot", "Map", "Frames", "Saved")
		fmt.Printf("  %-12s  %-20s  %-8s  %s\n", "----", "---", "------", "-----")
		for _, s := range slots {
			fmt.Printf("  %-12s  %-20s  %-8d  %s\n", s.Slot, s.Map, s.Frames, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}
	fmt.Println()

	sessions, err := store.RecentSessions(game.ID, flagSessions)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	fmt.Println("Recent sessions")
	fmt.Println()
	fmt.Printf("  %-16s  %-12s  %-20s  %-8s  %-8s  %s\n", "Date", "User", "Ended on", "Time", "Reason", "Frames")
	fmt.Printf("  %-16s  %-12s  %-20s  %-8s  %-8s  %s\n", "----", "----", "--------", "----", "------", "------")
	for _, rec := range sessions {
		user := rec.User
		if user == "" {
			user = "(local)"
		}
		played := (time.Duration(rec.Duration) * time.Second).String()
		fmt.Printf("  %-16s  %-12s  %-20s  %-8s  %-8s  %d\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), user, rec.EndMap, played, rec.EndReason, rec.Frames)
	}
	return nil
}
