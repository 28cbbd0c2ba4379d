// Package sequence records drum hits against the audio clock, loops them
// back, and moves beats in and out of files.
package sequence

import (
	"math"
	"sort"
)

const (
	// DefaultDuration and DefaultGain are given to every event; neither
	// is persisted.
	DefaultDuration = 0.1
	DefaultGain     = 1.0

	tailPadding = 0.2
	minLoop     = 1.0
)

// Event is one recorded hit.
type Event struct {
	Key      string
	Offset   float64 // seconds since recording start
	Duration float64
	Gain     float64
}

// Sequence is a timeline of events ordered by offset.
type Sequence []Event

// Sort orders events by offset, keeping the capture order of ties.
func (s Sequence) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Offset < s[j].Offset })
}

// Sorted reports whether offsets never decrease.
func (s Sequence) Sorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Offset < s[j].Offset })
}

// MaxOffset returns the latest offset, or 0 for an empty sequence.
func (s Sequence) MaxOffset() float64 {
	var m float64
	for _, e := range s {
		m = math.Max(m, e.Offset)
	}
	return m
}

// LoopDuration is the latest offset plus a short tail, rounded up to
// whole seconds and never shorter than one second.
func (s Sequence) LoopDuration() float64 {
	return math.Max(minLoop, math.Ceil(s.MaxOffset()+tailPadding))
}

// Clone returns a copy that shares nothing with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	return append(Sequence(nil), s...)
}
