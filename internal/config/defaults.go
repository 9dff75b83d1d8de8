package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/minisphere.yaml
var defaultEngineYAML []byte

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Screen: ScreenConfig{
			Width:  320,
			Height: 240,
		},
		FrameRate: 60,
		Talk: TalkConfig{
			Key:      "space",
			Distance: 8,
		},
		Players: []PlayerConfig{
			{Preset: PresetArrows, Talk: "enter"},
			{Preset: PresetWASD, Talk: "e"},
			{Up: "i", Down: "k", Left: "j", Right: "l", Talk: "o"},
			{Up: "8", Down: "5", Left: "4", Right: "6", Talk: "0"},
		},
		SaveDB:   "~/.minisphere/saves.db",
		LogLevel: "info",
		Server: ServerConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultEngineYAML
}
