package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/engine"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := DefaultEngineConfig()
	if cfg.Screen != def.Screen || cfg.FrameRate != def.FrameRate || cfg.Talk != def.Talk {
		t.Errorf("Load() = %+v, expected %+v", cfg, def)
	}
	if cfg.Server.IdleTimeout != 30*time.Minute {
		t.Errorf("IdleTimeout = %v, expected 30m", cfg.Server.IdleTimeout)
	}
	if len(cfg.Players) != engine.MaxPlayers {
		t.Fatalf("len(Players) = %d, expected %d", len(cfg.Players), engine.MaxPlayers)
	}
	for i := range def.Players {
		if cfg.Players[i] != def.Players[i] {
			t.Errorf("Players[%d] = %+v, expected %+v", i, cfg.Players[i], def.Players[i])
		}
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	write := func(path, body string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write(filepath.Join(work, "configs", FileName), "frame_rate: 30\n")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %d from ./configs, expected 30", cfg.FrameRate)
	}
	if cfg.Screen.Width != 320 {
		t.Errorf("Screen.Width = %d, expected the default 320 to survive", cfg.Screen.Width)
	}

	write(filepath.Join(home, ".minisphere", "config.yaml"), "frame_rate: 45\n")
	if cfg, _ = Load(""); cfg.FrameRate != 45 {
		t.Errorf("FrameRate = %d from home, expected 45", cfg.FrameRate)
	}

	custom := filepath.Join(work, "custom.yaml")
	write(custom, "frame_rate: 12\nscreen: {width: 160, height: 120}\n")
	if cfg, _ = Load(custom); cfg.FrameRate != 12 || cfg.Screen.Width != 160 {
		t.Errorf("Load(custom) = %d fps %d wide, expected 12 and 160", cfg.FrameRate, cfg.Screen.Width)
	}

	if _, err := Load(filepath.Join(work, "missing.yaml")); err == nil {
		t.Error("Load(missing) should fail")
	}
	write(custom, "frame_rate: [\n")
	if _, err := Load(custom); err == nil {
		t.Error("Load(broken) should fail")
	}
}

func TestPlayerKeys(t *testing.T) {
	tests := []struct {
		name     string
		player   int
		cfg      PlayerConfig
		expected engine.PlayerKeys
		wantErr  bool
	}{
		{
			name:     "empty uses stock layout",
			player:   0,
			expected: engine.DefaultPlayerKeys(0),
		},
		{
			name:   "preset with custom talk",
			player: 0,
			cfg:    PlayerConfig{Preset: PresetVim, Talk: "f"},
			expected: engine.PlayerKeys{
				Up: core.KeyA + 'k' - 'a', Down: core.KeyA + 'j' - 'a',
				Left: core.KeyA + 'h' - 'a', Right: core.KeyA + 'l' - 'a',
				Talk: core.KeyA + 'f' - 'a',
			},
		},
		{
			name:   "explicit key beats preset",
			player: 1,
			cfg:    PlayerConfig{Preset: PresetArrows, Up: "space"},
			expected: engine.PlayerKeys{
				Up: core.KeySpace, Down: core.KeyDown, Left: core.KeyLeft, Right: core.KeyRight,
				Talk: engine.DefaultPlayerKeys(1).Talk,
			},
		},
		{name: "bad key", cfg: PlayerConfig{Up: "hyper"}, wantErr: true},
		{name: "bad preset", cfg: PlayerConfig{Preset: "dvorak"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Keys(tt.player)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Keys() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("Keys() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestApplyKeyPreset(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Players = cfg.Players[:1]
	if err := ApplyKeyPreset(&cfg, 2, PresetWASD); err != nil {
		t.Fatalf("ApplyKeyPreset() error: %v", err)
	}
	if len(cfg.Players) != 3 || cfg.Players[2].Preset != PresetWASD {
		t.Errorf("Players = %+v, expected a wasd third player", cfg.Players)
	}
	if err := ApplyKeyPreset(&cfg, engine.MaxPlayers, PresetWASD); err == nil {
		t.Error("ApplyKeyPreset() should reject an out of range player")
	}
	if err := ApplyKeyPreset(&cfg, 0, "dvorak"); err == nil {
		t.Error("ApplyKeyPreset() should reject an unknown preset")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Talk = TalkConfig{Key: "z", Distance: 12}
	cfg.FrameRate = 30

	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error: %v", err)
	}
	if opts.TalkKey != core.KeyZ || opts.TalkDistance != 12 {
		t.Errorf("talk = %v/%d, expected z/12", opts.TalkKey, opts.TalkDistance)
	}
	if opts.Config.FrameRate != 30 || opts.Config.ScreenW != 320 {
		t.Errorf("Config = %+v, expected 30 fps at 320 wide", opts.Config)
	}
	if opts.Players[1].Up != core.KeyA+'w'-'a' {
		t.Errorf("player 1 up = %v, expected w", opts.Players[1].Up)
	}

	cfg.Talk.Key = "nope"
	if _, err := cfg.EngineOptions(); err == nil {
		t.Error("EngineOptions() should reject an unknown talk key")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	tests := []struct {
		in, expected string
	}{
		{"~/saves.db", filepath.Join(home, "saves.db")},
		{"~", home},
		{"/tmp/x", "/tmp/x"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.expected {
			t.Errorf("ExpandHome(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}
