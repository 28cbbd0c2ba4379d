package session

import (
	"strings"

	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/voice"
)

// KeyDown plays the drum mapped to key. With turbo on the key latches
// instead. Keys are ignored while the sequence plays.
func (s *Session) KeyDown(key string) {
	key = strings.ToLower(key)
	s.clk.Do(func() {
		if s.looper.Playing() {
			return
		}
		if _, ok := drum.ForKey(key); !ok {
			return
		}
		if err := s.ensureEngine(); err != nil {
			return
		}
		if s.sched.Press(key) {
			s.changed()
			return
		}
		s.trigger(key, s.currentTime(), FromKey)
	})
}

// KeyUp releases the turbo latch if key holds it.
func (s *Session) KeyUp(key string) {
	key = strings.ToLower(key)
	s.clk.Do(func() {
		if s.sched.Latched() != key {
			return
		}
		s.sched.Release(key)
		s.changed()
	})
}

// Escape stops playback.
func (s *Session) Escape() {
	s.StopPlayback()
}

// trigger plays key at audio time at through a voice slot and records it.
func (s *Session) trigger(key string, at float64, src Source) {
	snd, ok := drum.ForKey(key)
	if !ok || s.kit == nil {
		return
	}
	chains := s.kit.Synthesize(snd, s.gain, at)
	handles := make([]voice.Handle, len(chains))
	for i, c := range chains {
		handles[i] = c
	}
	s.pool.Acquire(snd).Attach(handles...)

	s.looper.Record(key, at)
	s.emit(Event{Kind: Hit, Key: key, Sound: snd, At: at, Source: src})

	switch src {
	case FromKey:
		s.setStatus(snd.String(), 0)
	case FromPlayback:
		s.setStatus(snd.String()+" (Seq)", 0)
	}
	if s.looper.Recording() {
		s.changed()
	}
}
