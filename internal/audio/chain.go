package audio

import "math"

// Waveform selects the source of a Chain.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
	Noise
)

// Chain is a disposable signal path: one source, optional filters and a
// gain envelope feeding the master bus. A Chain plays once, between its
// start and stop times, and is never reused.
type Chain struct {
	eng      *Engine
	wave     Waveform
	freq     *Param
	gain     *Param
	phase    float64
	noisePos int
	series   []*biquad
	parallel []*biquad
	start    float64
	stop     float64
	done     bool
}

// NewChain returns an unconnected chain with the given source.
func (e *Engine) NewChain(w Waveform) *Chain {
	return &Chain{
		eng:  e,
		wave: w,
		freq: NewParam(440),
		gain: NewParam(1),
		stop: math.Inf(1),
	}
}

// Frequency is the oscillator frequency in Hz. Noise sources ignore it.
func (c *Chain) Frequency() *Param { return c.freq }

// Gain is the output envelope.
func (c *Chain) Gain() *Param { return c.gain }

// Through appends filters in series.
func (c *Chain) Through(filters ...Filter) *Chain {
	for _, f := range filters {
		c.series = append(c.series, newBiquad(f, c.eng.sampleRate))
	}
	return c
}

// Split feeds the signal through filters in parallel and sums them.
func (c *Chain) Split(filters ...Filter) *Chain {
	for _, f := range filters {
		c.parallel = append(c.parallel, newBiquad(f, c.eng.sampleRate))
	}
	return c
}

// Play sets the chain's start and stop times.
func (c *Chain) Play(start, stop float64) *Chain {
	c.start, c.stop = start, stop
	return c
}

// Window returns the start and stop times.
func (c *Chain) Window() (start, stop float64) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	return c.start, c.stop
}

// Stop silences the chain immediately and detaches it from the bus.
func (c *Chain) Stop() {
	c.eng.mu.Lock()
	c.done = true
	c.eng.mu.Unlock()
}

// Done reports whether the chain has finished or been stopped.
func (c *Chain) Done() bool {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	return c.done || c.eng.timeLocked() >= c.stop
}

// Choke fades the chain out over window seconds from now and stops it
// afterwards.
func (c *Chain) Choke(window float64) {
	c.ChokeAt(0, window)
}

// ChokeAt is Choke starting at audio time at, or now if at has passed.
func (c *Chain) ChokeAt(at, window float64) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	if c.done {
		return
	}
	at = math.Max(at, c.eng.timeLocked())
	cur := c.gain.ValueAt(at)
	c.gain.CancelScheduledValues(at)
	c.gain.SetValueAtTime(cur, at)
	if cur != 0 {
		c.gain.ExponentialRampToValueAtTime(0.0001*math.Copysign(1, cur), at+window)
	}
	if end := at + window; end < c.stop {
		c.stop = end
	}
}

func (c *Chain) sample(t, sampleRate float64, noise []float64) float64 {
	var x float64
	if c.wave == Noise {
		x = noise[c.noisePos]
		c.noisePos = (c.noisePos + 1) % len(noise)
	} else {
		x = oscillate(c.wave, c.phase)
		c.phase += c.freq.ValueAt(t) / sampleRate
		c.phase -= math.Floor(c.phase)
	}
	for _, f := range c.series {
		x = f.process(x)
	}
	if len(c.parallel) > 0 {
		var sum float64
		for _, f := range c.parallel {
			sum += f.process(x)
		}
		x = sum
	}
	return x * c.gain.ValueAt(t)
}

func oscillate(w Waveform, phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	case Triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
