package audio

import "math"

// limiter is a hard-knee peak compressor on the master bus.
type limiter struct {
	threshold float64
	ratio     float64
	attack    float64
	release   float64
	env       float64
}

func newLimiter(sampleRate int, thresholdDB, ratio, attackSec, releaseSec float64) *limiter {
	sr := float64(sampleRate)
	return &limiter{
		threshold: math.Pow(10, thresholdDB/20),
		ratio:     ratio,
		attack:    1 - math.Exp(-1/(attackSec*sr)),
		release:   1 - math.Exp(-1/(releaseSec*sr)),
	}
}

func (l *limiter) process(x float64) float64 {
	a := math.Abs(x)
	if a > l.env {
		l.env += l.attack * (a - l.env)
	} else {
		l.env += l.release * (a - l.env)
	}
	if l.env <= l.threshold {
		return x
	}
	over := l.env / l.threshold
	return x * math.Pow(over, 1/l.ratio-1)
}
