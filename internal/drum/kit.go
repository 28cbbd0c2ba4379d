package drum

import (
	"github.com/icco/drumbeast/internal/audio"
	"github.com/icco/drumbeast/internal/debug"
)

const (
	// ChokeWindow is how long a choked open hat takes to fade out.
	ChokeWindow = 0.03
	// chokeGrace keeps an open hat chokeable a little past its decay.
	chokeGrace = 0.05
	decayFloor = 0.001
)

type ringing struct {
	chains []*audio.Chain
	until  float64
}

// Kit builds drum sounds on an engine. It remembers only the open hats
// that may still be ringing, so a later hat can choke them.
type Kit struct {
	eng  *audio.Engine
	open []ringing
}

// NewKit returns a kit playing through eng.
func NewKit(eng *audio.Engine) *Kit {
	return &Kit{eng: eng}
}

// Synthesize builds and connects the chains for s, starting at audio time
// at (or now, if at has passed), scaled by gain. It returns the source
// chains so the caller can stop them early. A kit without an engine plays
// nothing.
func (k *Kit) Synthesize(s Sound, gain, at float64) []*audio.Chain {
	if k == nil || k.eng == nil || s < 0 || s >= numSounds {
		return nil
	}
	now := k.eng.CurrentTime()
	at = max(at, now)

	r := recipes[s]
	if r.hat != noHat {
		k.chokeAt(at)
	}

	chains := make([]*audio.Chain, 0, len(r.layers))
	var ring float64
	for _, l := range r.layers {
		c := k.build(l, gain, at)
		k.eng.Connect(c)
		chains = append(chains, c)
		ring = max(ring, l.decay)
	}
	if r.hat == openHat {
		k.open = append(k.open, ringing{chains: chains, until: at + ring + chokeGrace})
	}
	return chains
}

// ChokeOpenHats fades out every open hat that may still be ringing and
// returns how many were choked.
func (k *Kit) ChokeOpenHats() int {
	if k == nil || k.eng == nil {
		return 0
	}
	return k.chokeAt(k.eng.CurrentTime())
}

// Ringing returns the number of open hats that could still be choked.
func (k *Kit) Ringing() int {
	if k == nil || k.eng == nil {
		return 0
	}
	k.prune(k.eng.CurrentTime())
	return len(k.open)
}

func (k *Kit) chokeAt(at float64) int {
	k.prune(k.eng.CurrentTime())
	n := len(k.open)
	for _, r := range k.open {
		for _, c := range r.chains {
			c.ChokeAt(at, ChokeWindow)
		}
	}
	k.open = nil
	if n > 0 {
		debug.Log("kit", "choked %d open hat(s)", n)
	}
	return n
}

func (k *Kit) prune(now float64) {
	live := k.open[:0]
	for _, r := range k.open {
		if r.until > now {
			live = append(live, r)
		}
	}
	k.open = live
}

func (k *Kit) build(l layer, gain, at float64) *audio.Chain {
	c := k.eng.NewChain(l.wave)
	if l.wave != audio.Noise {
		c.Frequency().SetValueAtTime(l.freq, at)
		if l.freqEnd > 0 {
			c.Frequency().ExponentialRampToValueAtTime(l.freqEnd, at+l.sweep)
		}
	}
	c.Through(l.series...).Split(l.parallel...)

	g := c.Gain()
	if len(l.gates) == 0 {
		g.SetValueAtTime(l.level*gain, at)
	}
	for _, st := range l.gates {
		g.SetValueAtTime(st.level*l.level*gain, at+st.at)
	}
	if l.linear {
		g.LinearRampToValueAtTime(decayFloor, at+l.decay)
	} else {
		g.ExponentialRampToValueAtTime(decayFloor, at+l.decay)
	}
	return c.Play(at, at+l.length)
}
