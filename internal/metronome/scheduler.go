// Package metronome drives the metronome click and turbo auto-repeat from
// a lookahead scheduler on the audio clock.
package metronome

import (
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/timer"
)

const (
	// Interval is the wall-clock period of the scheduler tick.
	Interval = 25 * time.Millisecond
	// Lookahead is how far past the audio clock events are scheduled.
	Lookahead = 0.1

	quarterDivision = 4
	minBPM          = 20
	maxBPM          = 300
)

// AudioClock reports the audio engine's time in seconds.
type AudioClock interface {
	CurrentTime() float64
}

// Output receives scheduled events at audio-clock times.
type Output interface {
	Tick(at float64)
	Repeat(key string, at float64)
}

// Scheduler is stopped unless the metronome or turbo is enabled. While
// running it fires every event due before the audio clock plus Lookahead.
type Scheduler struct {
	timers timer.Clock
	audio  AudioClock
	out    Output

	metronome bool
	turbo     bool
	bpm       float64
	division  int
	latched   string

	next   float64
	beat   int
	ticker timer.Handle
}

// New returns a stopped scheduler at 120 bpm with a 16th-note turbo
// division.
func New(timers timer.Clock, audio AudioClock, out Output) *Scheduler {
	return &Scheduler{
		timers:   timers,
		audio:    audio,
		out:      out,
		bpm:      120,
		division: 16,
	}
}

// Running reports whether the periodic tick is active.
func (s *Scheduler) Running() bool { return s.ticker != nil }

// Metronome reports whether the metronome is enabled.
func (s *Scheduler) Metronome() bool { return s.metronome }

// Turbo reports whether turbo is enabled.
func (s *Scheduler) Turbo() bool { return s.turbo }

// BPM returns the tempo.
func (s *Scheduler) BPM() float64 { return s.bpm }

// Division returns the turbo division in notes per whole note.
func (s *Scheduler) Division() int { return s.division }

// Latched returns the key auto-repeating under turbo, or "".
func (s *Scheduler) Latched() string { return s.latched }

// SetMetronome enables or disables the metronome.
func (s *Scheduler) SetMetronome(on bool) {
	s.metronome = on
	s.update()
}

// SetTurbo enables or disables turbo. Disabling it drops the latch.
func (s *Scheduler) SetTurbo(on bool) {
	s.turbo = on
	if !on {
		s.latched = ""
	}
	s.update()
}

// SetBPM changes the tempo from the next computed interval on.
func (s *Scheduler) SetBPM(bpm float64) error {
	if bpm < minBPM || bpm > maxBPM {
		return fault.New("bpm out of range",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("bpm out of range", "BPM must be between 20 and 300."))
	}
	s.bpm = bpm
	return nil
}

// SetDivision changes the turbo division: 4, 8, 16 or 32 notes per whole
// note.
func (s *Scheduler) SetDivision(d int) error {
	switch d {
	case 4, 8, 16, 32:
	default:
		return fault.New("invalid division",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("invalid division", "Turbo division must be 4, 8, 16 or 32."))
	}
	s.division = d
	return nil
}

// Press latches key as the auto-repeat source when turbo is on and no
// key is latched yet, firing its first repeat immediately. It reports
// whether turbo consumed the press.
func (s *Scheduler) Press(key string) bool {
	if !s.turbo {
		return false
	}
	if s.latched != "" {
		return true
	}
	s.latched = key
	s.reset()
	s.tick()
	debug.Log("sched", "latched %q", key)
	return true
}

// Release drops the latch if key holds it.
func (s *Scheduler) Release(key string) {
	if s.latched != "" && s.latched == key {
		s.latched = ""
		debug.Log("sched", "released %q", key)
	}
}

// Stop cancels the periodic tick and disables both drivers.
func (s *Scheduler) Stop() {
	s.metronome, s.turbo, s.latched = false, false, ""
	s.update()
}

func (s *Scheduler) update() {
	want := s.metronome || s.turbo
	switch {
	case want && s.ticker == nil:
		s.reset()
		s.ticker = s.timers.Every(Interval, s.tick)
		debug.Log("sched", "started (metronome=%v turbo=%v)", s.metronome, s.turbo)
	case !want && s.ticker != nil:
		s.ticker.Stop()
		s.ticker = nil
		debug.Log("sched", "stopped")
	}
}

func (s *Scheduler) reset() {
	s.next = s.audio.CurrentTime()
	s.beat = 0
}

// tick fires every event due within the lookahead window.
func (s *Scheduler) tick() {
	horizon := s.audio.CurrentTime() + Lookahead
	for s.next < horizon {
		division := quarterDivision
		if s.turbo {
			division = s.division
		}
		if s.metronome {
			perQuarter := division / quarterDivision
			if s.beat%perQuarter == 0 {
				s.out.Tick(s.next)
			}
		}
		if s.turbo && s.latched != "" {
			s.out.Repeat(s.latched, s.next)
		}
		s.next += (float64(quarterDivision) / float64(division)) * (60 / s.bpm)
		s.beat++
	}
}
