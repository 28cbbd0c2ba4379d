// Package config persists user preferences between runs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/mitchellh/go-homedir"
)

// DarkMode values as stored on disk.
const (
	DarkModeEnabled  = "enabled"
	DarkModeDisabled = "disabled"
)

const (
	MinBPM = 20
	MaxBPM = 300
)

// Config is the persisted preference set.
type Config struct {
	DarkMode      string  `json:"darkMode"`
	BPM           float64 `json:"bpm"`
	TurboDivision int     `json:"turboDivision"`
	Gain          float64 `json:"gain"`
	Volume        float64 `json:"volume"`
	HoldTimeoutMs int     `json:"holdTimeoutMs"`
	MIDIPort      string  `json:"midiPort,omitempty"`
	SampleRate    int     `json:"sampleRate"`
}

// Default returns the preferences used when no file exists.
func Default() *Config {
	return &Config{
		DarkMode:      DarkModeDisabled,
		BPM:           120,
		TurboDivision: 16,
		Gain:          1.0,
		Volume:        0.8,
		HoldTimeoutMs: 550,
		SampleRate:    44100,
	}
}

// Dir returns ~/.config/drumbeast.
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("resolve home directory"))
	}
	return filepath.Join(home, ".config", "drumbeast"), nil
}

// DefaultPath returns the full path to config.json.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or returns defaults if it does not
// exist. Missing or out-of-range fields fall back to their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("expand config path"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("read config", "Could not read config file."))
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("parse config", "Config file is not valid JSON."))
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("expand config path"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write config", "Could not save preferences."))
	}
	return nil
}

// Normalize replaces invalid values with defaults and clamps the rest.
func (c *Config) Normalize() {
	def := Default()
	if c.DarkMode != DarkModeEnabled {
		c.DarkMode = DarkModeDisabled
	}
	if c.BPM == 0 {
		c.BPM = def.BPM
	}
	c.BPM = min(max(c.BPM, MinBPM), MaxBPM)
	switch c.TurboDivision {
	case 8, 16, 32:
	default:
		c.TurboDivision = def.TurboDivision
	}
	if c.Gain < 0 || c.Gain > 2 {
		c.Gain = def.Gain
	}
	if c.Volume < 0 || c.Volume > 1 {
		c.Volume = def.Volume
	}
	if c.HoldTimeoutMs <= 0 {
		c.HoldTimeoutMs = def.HoldTimeoutMs
	}
	if c.SampleRate < 8000 {
		c.SampleRate = def.SampleRate
	}
}

// Dark reports whether the dark theme is on.
func (c *Config) Dark() bool { return c.DarkMode == DarkModeEnabled }

// SetDark stores the theme preference.
func (c *Config) SetDark(on bool) {
	c.DarkMode = DarkModeDisabled
	if on {
		c.DarkMode = DarkModeEnabled
	}
}
