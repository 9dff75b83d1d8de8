package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minisphere/internal/config"
	"github.com/vovakirdan/minisphere/internal/platform/tui"
	"github.com/vovakirdan/minisphere/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve [games-dir]",
	Short: "Start the minisphere SSH server",
	Long: `Start an SSH server that allows users to connect and play games.

Each SSH connection gets its own map engine and a game picker menu.
Save slots are stored per server and keyed by game, so every user
sees the same slots.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.minisphere/host_key

Examples:
  minisphere serve ./games                  # Listen on the configured address
  minisphere serve ./games --ssh :2222      # Listen on port 2222
  minisphere serve --host-key ./my_host_key # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, empty = from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", -1, "Idle timeout in minutes before disconnecting (-1 = from config)")
}

func runServe(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagSSHAddr != "" {
		cfg.Server.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKey = flagHostKey
	}
	if flagIdleTimeout >= 0 {
		cfg.Server.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	dir := cfg.Server.GameDir
	if dir == "" {
		dir = cfg.GameDir
	}
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no games directory given and none configured")
	}
	games, err := scanGames(config.ExpandHome(dir))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, "minisphere-ssh")
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.SaveDB)
	if err != nil {
		logger.Warn("serving without saves", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfigFrom(cfg), games, store, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Serving %d game(s) on %s\n", games.Len(), server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
