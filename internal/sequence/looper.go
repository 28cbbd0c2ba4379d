package sequence

import (
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/timer"
)

// AudioClock reports the audio engine's time in seconds.
type AudioClock interface {
	CurrentTime() float64
}

var (
	// ErrEmpty is returned when playing an empty sequence.
	ErrEmpty = fault.New("empty sequence",
		ftag.With(ftag.NotFound),
		fmsg.WithDesc("empty sequence", "Nothing recorded yet."))
	// ErrBusy is returned when recording or playback is already active.
	ErrBusy = fault.New("recorder busy",
		ftag.With(ftag.AlreadyExists),
		fmsg.WithDesc("recorder busy", "Stop recording or playback first."))
)

// Looper owns one sequence. It records hits while recording and replays
// the sequence in a loop while playing; it never does both at once.
type Looper struct {
	timers timer.Clock
	audio  AudioClock

	// Trigger plays a key during playback.
	Trigger func(key string)
	// OnPosition reports the index of the event just played, or -1.
	OnPosition func(index int)

	seq       Sequence
	recording bool
	startedAt float64
	playing   bool
	loop      float64
	position  int
	pending   timer.Group
}

// NewLooper returns an idle looper with an empty sequence.
func NewLooper(timers timer.Clock, audio AudioClock) *Looper {
	return &Looper{timers: timers, audio: audio, position: -1}
}

// Recording reports whether hits are being captured.
func (l *Looper) Recording() bool { return l.recording }

// Playing reports whether the sequence is looping.
func (l *Looper) Playing() bool { return l.playing }

// Position returns the index of the last played event, or -1.
func (l *Looper) Position() int { return l.position }

// Len returns the number of events.
func (l *Looper) Len() int { return len(l.seq) }

// Sequence returns a copy of the events.
func (l *Looper) Sequence() Sequence { return l.seq.Clone() }

// LoopDuration returns the current playback loop length in seconds.
func (l *Looper) LoopDuration() float64 { return l.loop }

// StartRecording clears the sequence and starts capturing.
func (l *Looper) StartRecording() error {
	if l.playing || l.recording {
		return ErrBusy
	}
	l.seq = nil
	l.startedAt = l.audio.CurrentTime()
	l.recording = true
	debug.Log("looper", "recording from %.3f", l.startedAt)
	return nil
}

// StopRecording ends capture and sorts the sequence.
func (l *Looper) StopRecording() {
	if !l.recording {
		return
	}
	l.recording = false
	l.seq.Sort()
	debug.Log("looper", "recorded %d events", len(l.seq))
}

// Record appends a hit played at audio time at, if recording.
func (l *Looper) Record(key string, at float64) {
	if !l.recording {
		return
	}
	l.seq = append(l.seq, Event{
		Key:      key,
		Offset:   max(0, at-l.startedAt),
		Duration: DefaultDuration,
		Gain:     DefaultGain,
	})
}

// Load replaces the sequence wholesale.
func (l *Looper) Load(seq Sequence) error {
	if l.playing || l.recording {
		return ErrBusy
	}
	seq = seq.Clone()
	for i := range seq {
		seq[i].Duration = DefaultDuration
		seq[i].Gain = DefaultGain
	}
	seq.Sort()
	l.seq = seq
	return nil
}

// Clear drops every event.
func (l *Looper) Clear() error {
	if l.playing || l.recording {
		return ErrBusy
	}
	l.seq = nil
	return nil
}

// Play starts looping the sequence.
func (l *Looper) Play() error {
	if len(l.seq) == 0 {
		return ErrEmpty
	}
	if l.playing || l.recording {
		return ErrBusy
	}
	l.playing = true
	l.loop = l.seq.LoopDuration()
	debug.Log("looper", "playing %d events, loop %.1fs", len(l.seq), l.loop)
	l.runLoop()
	return nil
}

// Stop abandons playback, revoking every pending callback. It reports
// whether playback was running.
func (l *Looper) Stop() bool {
	if !l.playing {
		return false
	}
	l.playing = false
	n := l.pending.StopAll()
	l.setPosition(-1)
	debug.Log("looper", "stopped, revoked %d callbacks", n)
	return true
}

// Pending returns the number of callbacks scheduled by playback.
func (l *Looper) Pending() int { return l.pending.Len() }

func (l *Looper) runLoop() {
	if !l.playing {
		return
	}
	// The previous iteration's callbacks have all fired by now.
	l.pending.StopAll()
	for i, ev := range l.seq {
		l.pending.Add(l.timers.AfterFunc(seconds(ev.Offset), func() {
			if !l.playing {
				return
			}
			if l.Trigger != nil {
				l.Trigger(ev.Key)
			}
			l.setPosition(i)
		}))
	}
	l.pending.Add(l.timers.AfterFunc(seconds(l.loop), l.runLoop))
}

func (l *Looper) setPosition(i int) {
	l.position = i
	if l.OnPosition != nil {
		l.OnPosition(i)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
