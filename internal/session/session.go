// Package session ties the drum kit, voice pool, scheduler and looper to
// one audio engine and one control goroutine.
//
// Exported methods may be called from any goroutine except from inside
// a session callback. State changes are reported on Events.
package session

import (
	"context"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/drumbeast/internal/audio"
	"github.com/icco/drumbeast/internal/config"
	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/metronome"
	"github.com/icco/drumbeast/internal/sequence"
	"github.com/icco/drumbeast/internal/timer"
	"github.com/icco/drumbeast/internal/voice"
)

const (
	defaultEventBuffer = 256
	retryTimeout       = 5 * time.Second
)

// Opener starts the audio engine.
type Opener interface {
	Open(ctx context.Context) (*audio.Engine, error)
}

// Options configure a Session. Zero values pick the defaults.
type Options struct {
	// Clock runs every callback. Defaults to a new timer.Loop owned by
	// the session.
	Clock timer.Clock
	// Opener starts the engine. Defaults to a realtime audio.Opener.
	Opener    Opener
	Clipboard Clipboard
	Config    *config.Config
	PoolSize  int
	Hold      time.Duration
	// Now stamps export file names.
	Now         func() time.Time
	EventBuffer int
}

// Session is one running drum machine.
type Session struct {
	clk    timer.Clock
	loop   *timer.Loop
	opener Opener
	clip   Clipboard
	now    func() time.Time

	eng      *audio.Engine
	kit      *drum.Kit
	starting bool
	reported bool
	lastErr  error

	pool   *voice.Pool[drum.Sound]
	sched  *metronome.Scheduler
	looper *sequence.Looper

	gain   float64
	volume float64

	status      string
	statusTimer timer.Handle

	events chan Event
	closed bool
}

// New builds a session without an engine. Call Init to start audio.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		clk:    opts.Clock,
		opener: opts.Opener,
		clip:   opts.Clipboard,
		now:    opts.Now,
		gain:   cfg.Gain,
		volume: cfg.Volume,
	}
	if s.clk == nil {
		s.loop = timer.NewLoop()
		s.clk = s.loop
	}
	if s.opener == nil {
		s.opener = &audio.Opener{SampleRate: cfg.SampleRate}
	}
	if s.clip == nil {
		s.clip = SystemClipboard{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	n := opts.EventBuffer
	if n <= 0 {
		n = defaultEventBuffer
	}
	s.events = make(chan Event, n)

	s.pool = voice.NewPool[drum.Sound](s.clk, opts.PoolSize, opts.Hold)
	s.sched = metronome.New(s.clk, audioClock{s}, (*output)(s))
	s.looper = sequence.NewLooper(s.clk, audioClock{s})
	s.looper.Trigger = func(key string) {
		s.trigger(key, s.currentTime(), FromPlayback)
	}
	s.looper.OnPosition = func(i int) {
		s.emit(Event{Kind: PositionChanged, Position: i})
	}

	if err := s.sched.SetBPM(cfg.BPM); err != nil {
		s.Shutdown()
		return nil, fault.Wrap(err, fmsg.With("configure tempo"))
	}
	if err := s.sched.SetDivision(cfg.TurboDivision); err != nil {
		s.Shutdown()
		return nil, fault.Wrap(err, fmsg.With("configure turbo division"))
	}
	return s, nil
}

// Init starts the audio engine and waits for it. Init does not run on
// the control goroutine, so the session keeps serving other calls while
// it waits. On failure the session stays usable without sound and later
// actions retry.
func (s *Session) Init(ctx context.Context) error {
	s.clk.Do(func() { s.starting = true })
	eng, err := s.opener.Open(ctx)
	s.clk.Do(func() { s.engineStarted(eng, err) })
	return err
}

// Shutdown stops playback, the scheduler and every voice, then releases
// the engine and the control goroutine. Events is closed afterwards.
func (s *Session) Shutdown() {
	s.clk.Do(func() {
		if s.closed {
			return
		}
		s.looper.Stop()
		s.sched.Stop()
		s.pool.StopAll()
		if s.statusTimer != nil {
			s.statusTimer.Stop()
		}
		if s.eng != nil {
			if err := s.eng.Close(); err != nil {
				debug.Log("session", "close engine: %v", err)
			}
		}
		s.closed = true
		close(s.events)
		debug.Log("session", "shut down")
	})
	if s.loop != nil {
		s.loop.Close()
	}
}

// Events returns the notification stream. Slow readers miss events.
func (s *Session) Events() <-chan Event { return s.events }

// State is a point-in-time view of the session.
type State struct {
	Ready        bool
	Starting     bool
	Metronome    bool
	Turbo        bool
	Latched      string
	BPM          float64
	Division     int
	Gain         float64
	Volume       float64
	Recording    bool
	Playing      bool
	Position     int
	LoopDuration float64
	Sequence     sequence.Sequence
	Status       string
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	var st State
	s.clk.Do(func() {
		st = State{
			Ready:        s.eng != nil,
			Starting:     s.starting,
			Metronome:    s.sched.Metronome(),
			Turbo:        s.sched.Turbo(),
			Latched:      s.sched.Latched(),
			BPM:          s.sched.BPM(),
			Division:     s.sched.Division(),
			Gain:         s.gain,
			Volume:       s.volume,
			Recording:    s.looper.Recording(),
			Playing:      s.looper.Playing(),
			Position:     s.looper.Position(),
			LoopDuration: s.looper.LoopDuration(),
			Sequence:     s.looper.Sequence(),
			Status:       s.status,
		}
	})
	return st
}

func (s *Session) install(eng *audio.Engine) {
	if s.eng == eng {
		return
	}
	s.eng = eng
	s.kit = drum.NewKit(eng)
	s.reported = false
	s.lastErr = nil
	eng.SetVolume(s.volume)
	debug.Log("session", "engine ready at %d Hz", eng.SampleRate())
}

func (s *Session) engineFailed(err error) {
	debug.Log("session", "engine unavailable: %v", err)
	s.lastErr = err
	if s.reported {
		return
	}
	s.reported = true
	s.setStatus(issue(err, StatusNoAudio), errorRevert)
}

// ensureEngine reports an error unless the engine is running. When it is
// not, a start attempt is launched in the background and the caller drops
// its action; the next gesture after the engine comes up plays normally.
func (s *Session) ensureEngine() error {
	if s.eng != nil {
		return nil
	}
	s.startEngine()
	if s.lastErr != nil {
		return s.lastErr
	}
	return fault.New("audio engine starting",
		ftag.With(audio.ErrUnavailable),
		fmsg.WithDesc("audio engine starting", "Audio is still starting."))
}

// startEngine opens the engine off the control goroutine and hands the
// result back through Post.
func (s *Session) startEngine() {
	if s.starting || s.closed {
		return
	}
	s.starting = true
	s.changed()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), retryTimeout)
		defer cancel()
		eng, err := s.opener.Open(ctx)
		s.clk.Post(func() { s.engineStarted(eng, err) })
	}()
}

func (s *Session) engineStarted(eng *audio.Engine, err error) {
	s.starting = false
	if s.closed {
		if eng != nil && eng != s.eng {
			_ = eng.Close()
		}
		return
	}
	if err != nil {
		s.engineFailed(err)
		s.changed()
		return
	}
	s.install(eng)
	s.setStatus(StatusReady, readyRevert)
	s.changed()
}

func (s *Session) currentTime() float64 {
	if s.eng == nil {
		return 0
	}
	return s.eng.CurrentTime()
}

type audioClock struct{ s *Session }

func (c audioClock) CurrentTime() float64 { return c.s.currentTime() }

// output receives scheduler events.
type output Session

func (o *output) Tick(at float64) {
	s := (*Session)(o)
	s.kit.Synthesize(drum.MetronomeTick, 1, at)
	s.emit(Event{Kind: Hit, Sound: drum.MetronomeTick, At: at, Source: FromMetronome})
}

func (o *output) Repeat(key string, at float64) {
	(*Session)(o).trigger(key, at, FromTurbo)
}
