package audio

import (
	"math"
	"sort"
)

type automationKind int

const (
	setValue automationKind = iota
	linearRamp
	exponentialRamp
)

type automation struct {
	kind  automationKind
	time  float64
	value float64
}

// Param is a value that changes over audio-clock time according to a
// timeline of automation events. A Param is not safe for concurrent use;
// once its Chain is connected, change it only through Chain methods.
type Param struct {
	initial float64
	events  []automation
}

// NewParam returns a Param holding v until automated.
func NewParam(v float64) *Param {
	return &Param{initial: v}
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(automation{kind: setValue, time: t, value: v})
}

// LinearRampToValueAtTime ramps linearly from the previous event's value,
// reaching v at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(automation{kind: linearRamp, time: t, value: v})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous
// event's value, reaching v at time t. v must be non-zero and share the
// sign of the value it starts from, otherwise the ramp holds its start.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(automation{kind: exponentialRamp, time: t, value: v})
}

// CancelScheduledValues drops every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
}

// ValueAt returns the automated value at time t.
func (p *Param) ValueAt(t float64) float64 {
	v := p.initial
	prev := 0.0
	for _, e := range p.events {
		if e.time <= t {
			v, prev = e.value, e.time
			continue
		}
		span := e.time - prev
		if span <= 0 {
			return v
		}
		frac := (t - prev) / span
		switch e.kind {
		case linearRamp:
			return v + (e.value-v)*frac
		case exponentialRamp:
			if v == 0 || e.value == 0 || (v > 0) != (e.value > 0) {
				return v
			}
			return v * math.Pow(e.value/v, frac)
		}
		return v
	}
	return v
}

// insert keeps events ordered by time; equal times keep insertion order.
func (p *Param) insert(a automation) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > a.time })
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = a
}
