package drum

import "github.com/icco/drumbeast/internal/audio"

type hatRole int

const (
	noHat hatRole = iota
	closedHat
	openHat
)

// gate is a step in a layer's gain before its decay starts.
type gate struct {
	at    float64
	level float64
}

// layer is one chain of a sound. Times are seconds after the hit.
type layer struct {
	wave     audio.Waveform
	freq     float64
	freqEnd  float64 // exponential sweep target, 0 for none
	sweep    float64
	series   []audio.Filter
	parallel []audio.Filter
	level    float64
	gates    []gate // replaces the initial level step when set
	decay    float64
	linear   bool
	length   float64
}

type recipe struct {
	layers []layer
	hat    hatRole
}

// recipes is indexed by Sound; every sound must have an entry.
var recipes = [numSounds]recipe{
	Kick: {layers: []layer{
		{wave: audio.Sine, freq: 150, freqEnd: 0.01, sweep: 0.5, level: 1, decay: 0.5, length: 0.5},
	}},
	Snare: {layers: []layer{
		{wave: audio.Noise, series: []audio.Filter{{Type: audio.Bandpass, Frequency: 1500, Q: 0.5}}, level: 1, decay: 0.2, length: 0.2},
		{wave: audio.Triangle, freq: 100, level: 0.7, decay: 0.1, length: 0.1},
	}},
	HatClosed: {hat: closedHat, layers: []layer{hatLayer(0.05)}},
	HatOpen:   {hat: openHat, layers: []layer{hatLayer(0.5)}},
	Tom1:      {layers: []layer{tomLayer(250)}},
	Tom2:      {layers: []layer{tomLayer(180)}},
	Tom3:      {layers: []layer{tomLayer(120)}},
	Crash: {layers: []layer{
		{wave: audio.Noise, series: []audio.Filter{
			{Type: audio.Highpass, Frequency: 2000},
			{Type: audio.Bandpass, Frequency: 4000, Q: 0.5},
		}, level: 0.4, decay: 1.2, length: 1.2},
	}},
	Clap: {layers: []layer{
		{wave: audio.Noise, series: []audio.Filter{{Type: audio.Bandpass, Frequency: 1000, Q: 0.5}},
			gates: []gate{{0, 1}, {0.01, 0}, {0.02, 1}, {0.03, 0}, {0.04, 1}},
			level: 1, decay: 0.15, length: 0.2},
	}},
	Rimshot: {layers: []layer{
		{wave: audio.Sine, freq: 1500, level: 1.5, decay: 0.05, length: 0.05},
		{wave: audio.Noise, level: 0.3, decay: 0.02, length: 0.02},
	}},
	Ride: {layers: []layer{
		{wave: audio.Noise, parallel: []audio.Filter{
			{Type: audio.Bandpass, Frequency: 5000, Q: 0.5},
			{Type: audio.Bandpass, Frequency: 8000, Q: 0.4},
		}, level: 0.3, decay: 2.5, length: 2.5},
	}},
	Tambourine: {layers: []layer{
		{wave: audio.Noise, series: []audio.Filter{{Type: audio.Highpass, Frequency: 8000}}, level: 0.5, decay: 0.3, length: 0.3},
	}},
	Kick808: {layers: []layer{
		{wave: audio.Sine, freq: 120, freqEnd: 30, sweep: 0.5, level: 1, decay: 0.9, linear: true, length: 1},
		{wave: audio.Triangle, freq: 1000, level: 0.3, decay: 0.02, length: 0.02},
	}},
	Snare808: {layers: []layer{
		{wave: audio.Triangle, freq: 180, level: 0.5, decay: 0.2, length: 0.2},
		{wave: audio.Noise, series: []audio.Filter{{Type: audio.Highpass, Frequency: 1000}}, level: 1, decay: 0.15, length: 0.15},
	}},
	MetronomeTick: {layers: []layer{
		{wave: audio.Sine, freq: 1000, level: 0.3, decay: 0.05, length: 0.05},
	}},
}

func hatLayer(decay float64) layer {
	return layer{
		wave: audio.Noise,
		series: []audio.Filter{
			{Type: audio.Highpass, Frequency: 7000},
			{Type: audio.Bandpass, Frequency: 10000, Q: 1.5},
		},
		level:  0.9,
		decay:  decay,
		length: decay,
	}
}

func tomLayer(pitch float64) layer {
	return layer{wave: audio.Sine, freq: pitch, freqEnd: 0.01, sweep: 0.4, level: 1.2, decay: 0.4, length: 0.4}
}

// Length returns the longest layer duration of s in seconds.
func (s Sound) Length() float64 {
	if s < 0 || s >= numSounds {
		return 0
	}
	var d float64
	for _, l := range recipes[s].layers {
		d = max(d, l.length)
	}
	return d
}
