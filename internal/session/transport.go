package session

import (
	"github.com/icco/drumbeast/internal/debug"
)

const (
	maxGain = 2.0
	maxVol  = 1.0
)

// SetMetronome turns the metronome click on or off.
func (s *Session) SetMetronome(on bool) error {
	var err error
	s.clk.Do(func() {
		if on {
			if err = s.ensureEngine(); err != nil {
				return
			}
		}
		s.sched.SetMetronome(on)
		s.changed()
	})
	return err
}

// SetTurbo turns turbo auto-repeat on or off.
func (s *Session) SetTurbo(on bool) error {
	var err error
	s.clk.Do(func() {
		if on {
			if err = s.ensureEngine(); err != nil {
				return
			}
		}
		s.sched.SetTurbo(on)
		s.changed()
	})
	return err
}

// SetBPM changes the tempo.
func (s *Session) SetBPM(bpm float64) error {
	var err error
	s.clk.Do(func() {
		if err = s.sched.SetBPM(bpm); err != nil {
			s.setStatus(issue(err, "Invalid tempo."), shortRevert)
			return
		}
		s.changed()
	})
	return err
}

// SetDivision changes the turbo division.
func (s *Session) SetDivision(d int) error {
	var err error
	s.clk.Do(func() {
		if err = s.sched.SetDivision(d); err != nil {
			s.setStatus(issue(err, "Invalid division."), shortRevert)
			return
		}
		s.changed()
	})
	return err
}

// SetGain sets the drum gain, clamped to [0, 2].
func (s *Session) SetGain(g float64) {
	s.clk.Do(func() {
		s.gain = min(max(g, 0), maxGain)
		s.changed()
	})
}

// SetVolume sets the master volume, clamped to [0, 1]. It also scales the
// metronome.
func (s *Session) SetVolume(v float64) {
	s.clk.Do(func() {
		s.volume = min(max(v, 0), maxVol)
		if s.eng != nil {
			s.eng.SetVolume(s.volume)
		}
		s.changed()
	})
}

// ToggleRecord starts or stops recording. Starting stops playback and
// discards the current sequence.
func (s *Session) ToggleRecord() error {
	var err error
	s.clk.Do(func() {
		if s.looper.Recording() {
			s.looper.StopRecording()
			s.setStatus(StatusRecorded, shortRevert)
			s.changed()
			return
		}
		if err = s.ensureEngine(); err != nil {
			return
		}
		s.stopPlayback()
		if err = s.looper.StartRecording(); err != nil {
			s.setStatus(issue(err, ""), shortRevert)
			return
		}
		s.setStatus(StatusRecording, 0)
		s.changed()
	})
	return err
}

// Play loops the sequence.
func (s *Session) Play() error {
	var err error
	s.clk.Do(func() {
		if err = s.ensureEngine(); err != nil {
			return
		}
		if err = s.looper.Play(); err != nil {
			s.setStatus(issue(err, ""), shortRevert)
			return
		}
		s.setStatus(StatusPlaying, 0)
		s.changed()
	})
	return err
}

// StopPlayback abandons playback and chokes ringing open hats. It
// reports whether anything was playing.
func (s *Session) StopPlayback() bool {
	var stopped bool
	s.clk.Do(func() {
		stopped = s.stopPlayback()
	})
	return stopped
}

func (s *Session) stopPlayback() bool {
	if !s.looper.Stop() {
		return false
	}
	if n := s.kit.ChokeOpenHats(); n > 0 {
		debug.Log("session", "choked %d open hats", n)
	}
	s.setStatus(StatusStopped, shortRevert)
	s.changed()
	return true
}

// Clear drops the sequence.
func (s *Session) Clear() error {
	var err error
	s.clk.Do(func() {
		if err = s.looper.Clear(); err != nil {
			s.setStatus(issue(err, ""), shortRevert)
			return
		}
		s.setStatus(StatusCleared, shortRevert)
		s.changed()
	})
	return err
}
