// Package audio renders drum voices on an audio clock, either offline or
// through the system sound card.
package audio

import (
	"math"
	"math/rand"
	"sync"
)

const (
	DefaultSampleRate = 44100
	channelCount      = 2 // stereo
	bitDepth          = 2 // 16-bit
	noiseSeconds      = 2
)

// Engine mixes connected chains into a master bus with a limiter. Its
// clock is the number of frames rendered so far, so events scheduled on
// it are sample accurate no matter when the control thread wakes up.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	frame      int64
	chains     []*Chain
	noise      []float64
	bus        *limiter
	volume     float64
	player     sink
}

// NewEngine returns an engine that renders only when asked to, through
// Render or Read.
func NewEngine(sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	rng := rand.New(rand.NewSource(1))
	noise := make([]float64, noiseSeconds*sampleRate)
	for i := range noise {
		noise[i] = rng.Float64()*2 - 1
	}
	return &Engine{
		sampleRate: sampleRate,
		noise:      noise,
		bus:        newLimiter(sampleRate, -1, 20, 0.002, 0.1),
		volume:     1,
	}
}

// SampleRate returns the frames per second.
func (e *Engine) SampleRate() int { return e.sampleRate }

// CurrentTime returns the audio clock in seconds.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeLocked()
}

func (e *Engine) timeLocked() float64 {
	return float64(e.frame) / float64(e.sampleRate)
}

// Connect attaches a chain to the master bus. The chain must not be
// modified afterwards except through its own methods.
func (e *Engine) Connect(c *Chain) {
	e.mu.Lock()
	e.chains = append(e.chains, c)
	e.mu.Unlock()
}

// Active returns the number of chains still attached to the bus.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.chains)
}

// SetVolume sets the master volume (0.0 - 1.0)
func (e *Engine) SetVolume(vol float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = math.Max(0, math.Min(1, vol))
}

// Render advances the clock by frames and returns the mono mix.
func (e *Engine) Render(frames int) []float32 {
	out := make([]float32, frames)
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range out {
		out[i] = float32(e.nextLocked())
	}
	return out
}

// Read implements io.Reader for oto, producing interleaved stereo signed
// 16-bit little-endian samples.
func (e *Engine) Read(buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	frames := len(buf) / (channelCount * bitDepth)
	for i := 0; i < frames; i++ {
		v := int16(e.nextLocked() * 32767)
		idx := i * channelCount * bitDepth
		buf[idx] = byte(v)
		buf[idx+1] = byte(v >> 8)
		buf[idx+2] = byte(v)
		buf[idx+3] = byte(v >> 8)
	}
	return frames * channelCount * bitDepth, nil
}

func (e *Engine) nextLocked() float64 {
	t := e.timeLocked()
	sr := float64(e.sampleRate)
	var sum float64
	live := e.chains[:0]
	for _, c := range e.chains {
		if c.done || t >= c.stop {
			c.done = true
			continue
		}
		live = append(live, c)
		if t < c.start {
			continue
		}
		sum += c.sample(t, sr, e.noise)
	}
	for i := len(live); i < len(e.chains); i++ {
		e.chains[i] = nil
	}
	e.chains = live
	e.frame++

	sample := e.bus.process(sum) * e.volume
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	return sample
}

// Close stops realtime output, if any, and drops the player so the
// output stream no longer reads from the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	p := e.player
	e.player = nil
	e.mu.Unlock()
	if p != nil {
		p.Pause()
	}
	return nil
}
