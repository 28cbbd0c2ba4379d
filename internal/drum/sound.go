// Package drum holds the drum kit: the sound set, its key and MIDI
// mappings, and the synthesis recipes behind each sound.
package drum

import (
	"sort"
	"strings"
)

// Sound identifies one synthesized percussion sound.
type Sound int

const (
	Kick Sound = iota
	Snare
	HatClosed
	HatOpen
	Tom1
	Tom2
	Tom3
	Crash
	Clap
	Rimshot
	Ride
	Tambourine
	Kick808
	Snare808
	MetronomeTick

	numSounds
)

var names = [numSounds]string{
	Kick:          "Kick",
	Snare:         "Snare",
	HatClosed:     "Hat (C)",
	HatOpen:       "Hat (O)",
	Tom1:          "Tom 1",
	Tom2:          "Tom 2",
	Tom3:          "Tom 3",
	Crash:         "Crash",
	Clap:          "Clap",
	Rimshot:       "Rimshot",
	Ride:          "Ride",
	Tambourine:    "Tambourine",
	Kick808:       "808 Kick",
	Snare808:      "808 Snare",
	MetronomeTick: "Tick",
}

// General MIDI percussion notes (channel 10).
var gmNotes = [numSounds]uint8{
	Kick:          36,
	Snare:         38,
	HatClosed:     42,
	HatOpen:       46,
	Tom1:          50,
	Tom2:          47,
	Tom3:          45,
	Crash:         49,
	Clap:          39,
	Rimshot:       37,
	Ride:          51,
	Tambourine:    54,
	Kick808:       35,
	Snare808:      40,
	MetronomeTick: 76,
}

// String returns the display name.
func (s Sound) String() string {
	if s < 0 || s >= numSounds {
		return "Unknown"
	}
	return names[s]
}

// GMNote returns the General MIDI percussion note for s.
func (s Sound) GMNote() uint8 {
	if s < 0 || s >= numSounds {
		return 0
	}
	return gmNotes[s]
}

// Sounds returns every sound, metronome tick last.
func Sounds() []Sound {
	out := make([]Sound, numSounds)
	for i := range out {
		out[i] = Sound(i)
	}
	return out
}

var keyMap = map[string]Sound{
	"q": Kick, "w": Snare, "e": HatClosed, "r": HatOpen,
	"a": Tom1, "s": Tom2, "d": Tom3, "f": Crash,
	"z": Clap, "x": Rimshot, "v": Ride, "b": Tambourine,
	"n": Kick808, "m": Snare808,
}

// ForKey returns the sound mapped to a single-character key.
func ForKey(key string) (Sound, bool) {
	s, ok := keyMap[key]
	return s, ok
}

// KeyFor returns the key that plays s.
func KeyFor(s Sound) (string, bool) {
	for k, v := range keyMap {
		if v == s {
			return k, true
		}
	}
	return "", false
}

// Keys returns the mapped keys in keyboard row order.
func Keys() []string {
	order := "qwerasdfzxvbnm"
	keys := make([]string, 0, len(keyMap))
	for k := range keyMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.Index(order, keys[i]) < strings.Index(order, keys[j])
	})
	return keys
}

// ForNote returns the sound for a General MIDI percussion note.
func ForNote(note uint8) (Sound, bool) {
	for i, n := range gmNotes {
		if Sound(i) != MetronomeTick && n == note {
			return Sound(i), true
		}
	}
	return 0, false
}
