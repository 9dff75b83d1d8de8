// Package config provides YAML-based engine configuration loading for
// minisphere.
package config

import (
	"time"

	"github.com/vovakirdan/minisphere/internal/core"
)

// EngineConfig contains everything the command line and the SSH server need
// to build a map engine.
type EngineConfig struct {
	Screen    ScreenConfig   `yaml:"screen"`
	FrameRate int            `yaml:"frame_rate"`
	Talk      TalkConfig     `yaml:"talk"`
	Players   []PlayerConfig `yaml:"players"`
	GameDir   string         `yaml:"game_dir"`
	SaveDB    string         `yaml:"save_db"`
	LogLevel  string         `yaml:"log_level"` // debug, info, warn or error
	Server    ServerConfig   `yaml:"server"`
}

// ScreenConfig is the engine's virtual resolution in pixels.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TalkConfig controls talk activation.
type TalkConfig struct {
	Key      string `yaml:"key"`
	Distance int    `yaml:"distance"` // Pixels ahead of the talking person
}

// PlayerConfig binds keys for one player slot. Key names are the ones
// accepted by core.ParseKey. A preset fills in the directions left empty.
type PlayerConfig struct {
	Preset KeyPreset `yaml:"preset,omitempty"`
	Up     string    `yaml:"up,omitempty"`
	Down   string    `yaml:"down,omitempty"`
	Left   string    `yaml:"left,omitempty"`
	Right  string    `yaml:"right,omitempty"`
	Talk   string    `yaml:"talk,omitempty"`
}

// ServerConfig configures `minisphere serve`.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"` // Generated under ~/.minisphere when empty
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	GameDir     string        `yaml:"game_dir"` // Falls back to the top-level game_dir
	StartMap    string        `yaml:"start_map"`
}

// Runtime returns the engine runtime settings.
func (c EngineConfig) Runtime() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if c.Screen.Width > 0 && c.Screen.Height > 0 {
		rc.ScreenW, rc.ScreenH = c.Screen.Width, c.Screen.Height
	}
	if c.FrameRate > 0 {
		rc.FrameRate = c.FrameRate
	}
	return rc
}
