package config

import (
	"fmt"

	"github.com/vovakirdan/minisphere/internal/core"
	"github.com/vovakirdan/minisphere/internal/engine"
)

// KeyPreset represents a named movement key layout.
type KeyPreset string

const (
	PresetArrows KeyPreset = "arrows"
	PresetWASD   KeyPreset = "wasd"
	PresetVim    KeyPreset = "vim"
)

// presetKeys returns the up, down, left and right key names of a preset.
func presetKeys(preset KeyPreset) ([4]string, bool) {
	switch preset {
	case PresetArrows:
		return [4]string{"up", "down", "left", "right"}, true
	case PresetWASD:
		return [4]string{"w", "s", "a", "d"}, true
	case PresetVim:
		return [4]string{"k", "j", "h", "l"}, true
	}
	return [4]string{}, false
}

// ApplyKeyPreset replaces the movement keys of a player with a preset.
func ApplyKeyPreset(cfg *EngineConfig, player int, preset KeyPreset) error {
	if player < 0 || player >= engine.MaxPlayers {
		return fmt.Errorf("player %d out of range", player)
	}
	if _, ok := presetKeys(preset); !ok {
		return fmt.Errorf("unknown key preset %q", preset)
	}
	for len(cfg.Players) <= player {
		cfg.Players = append(cfg.Players, PlayerConfig{})
	}
	p := &cfg.Players[player]
	p.Preset = preset
	p.Up, p.Down, p.Left, p.Right = "", "", "", ""
	return nil
}

func parseKey(name string) (core.Key, error) {
	if name == "" {
		return core.KeyNone, nil
	}
	k, ok := core.ParseKey(name)
	if !ok {
		return core.KeyNone, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// Keys resolves a player's key names. Unset keys fall back to the preset
// and then to the engine's stock layout for the slot.
func (p PlayerConfig) Keys(player int) (engine.PlayerKeys, error) {
	names := [5]string{p.Up, p.Down, p.Left, p.Right, p.Talk}
	if p.Preset != "" {
		preset, ok := presetKeys(p.Preset)
		if !ok {
			return engine.PlayerKeys{}, fmt.Errorf("player %d: unknown key preset %q", player, p.Preset)
		}
		for i := range preset {
			if names[i] == "" {
				names[i] = preset[i]
			}
		}
	}

	def := engine.DefaultPlayerKeys(player)
	out := [5]core.Key{def.Up, def.Down, def.Left, def.Right, def.Talk}
	for i, name := range names {
		k, err := parseKey(name)
		if err != nil {
			return engine.PlayerKeys{}, fmt.Errorf("player %d: %w", player, err)
		}
		if k != core.KeyNone {
			out[i] = k
		}
	}
	return engine.PlayerKeys{Up: out[0], Down: out[1], Left: out[2], Right: out[3], Talk: out[4]}, nil
}

// EngineOptions resolves the key and talk settings into engine options.
// Assets, input, renderer and compiler are left for the caller.
func (c EngineConfig) EngineOptions() (engine.Options, error) {
	opts := engine.Options{
		Config:       c.Runtime(),
		TalkDistance: c.Talk.Distance,
	}
	talk, err := parseKey(c.Talk.Key)
	if err != nil {
		return opts, fmt.Errorf("talk key: %w", err)
	}
	opts.TalkKey = talk
	for i := 0; i < engine.MaxPlayers; i++ {
		var pc PlayerConfig
		if i < len(c.Players) {
			pc = c.Players[i]
		}
		keys, err := pc.Keys(i)
		if err != nil {
			return opts, err
		}
		opts.Players[i] = keys
	}
	return opts, nil
}
