package audio

import "math"

// FilterType selects a biquad response.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

// String returns the filter's name.
func (f FilterType) String() string {
	switch f {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// Filter describes one biquad stage.
type Filter struct {
	Type      FilterType
	Frequency float64
	Q         float64
}

// biquad is a direct form I filter using the RBJ cookbook coefficients.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(f Filter, sampleRate int) *biquad {
	q := f.Q
	if q <= 0 {
		q = math.Sqrt2 / 2
	}
	freq := math.Min(f.Frequency, float64(sampleRate)/2*0.99)
	w0 := 2 * math.Pi * freq / float64(sampleRate)
	cos, sin := math.Cos(w0), math.Sin(w0)
	alpha := sin / (2 * q)

	var b0, b1, b2 float64
	switch f.Type {
	case Highpass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = (1 + cos) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = (1 - cos) / 2
	}
	a0 := 1 + alpha
	return &biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha) / a0,
	}
}

func (b *biquad) process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}
