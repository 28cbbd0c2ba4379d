package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/singleflight"

	"github.com/icco/drumbeast/internal/debug"
)

// ErrUnavailable tags failures to bring up audio output.
const ErrUnavailable ftag.Kind = "ENGINE_UNAVAILABLE"

// sink is a running output stream fed by an engine.
type sink interface {
	Pause()
}

// device is an opened sound card.
type device interface {
	Resume() error
	Play(e *Engine) sink
}

// Opener brings up the realtime engine. Calls made while an attempt is in
// flight share its result, and a successful engine is kept for every later
// call. A failed resume is retried by the next call. A device that could
// not be created stays failed: oto allows one context per process.
type Opener struct {
	SampleRate int
	BufferSize time.Duration

	group  singleflight.Group
	engine atomic.Pointer[Engine]

	mu     sync.Mutex
	dev    device
	failed error

	// newDevice defaults to the oto sound card.
	newDevice func(rate int, buffer time.Duration) (device, error)
}

// Open returns the running engine, starting it if needed. It gives up
// waiting when ctx ends; the attempt itself keeps going and a later call
// picks up its result.
func (o *Opener) Open(ctx context.Context) (*Engine, error) {
	if e := o.engine.Load(); e != nil {
		return e, nil
	}
	if err := o.permanent(); err != nil {
		return nil, err
	}

	ch := o.group.DoChan("engine", func() (any, error) {
		return o.start()
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Engine), nil
	case <-ctx.Done():
		return nil, fault.Wrap(ctx.Err(),
			ftag.With(ErrUnavailable),
			fmsg.WithDesc("waiting for audio output", "Audio is still starting."))
	}
}

func (o *Opener) permanent() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failed
}

func (o *Opener) start() (*Engine, error) {
	if e := o.engine.Load(); e != nil {
		return e, nil
	}

	rate := o.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}

	o.mu.Lock()
	dev, failed := o.dev, o.failed
	o.mu.Unlock()
	if failed != nil {
		return nil, failed
	}
	if dev == nil {
		newDevice := o.newDevice
		if newDevice == nil {
			newDevice = openOto
		}
		d, err := newDevice(rate, o.BufferSize)
		if err != nil {
			debug.Log("audio", "context failed: %v", err)
			err = fault.Wrap(err,
				ftag.With(ErrUnavailable),
				fmsg.WithDesc("create audio context", "Audio output not supported."))
			o.mu.Lock()
			o.failed = err
			o.mu.Unlock()
			return nil, err
		}
		o.mu.Lock()
		o.dev = d
		o.mu.Unlock()
		dev = d
	}

	if err := dev.Resume(); err != nil {
		debug.Log("audio", "resume failed: %v", err)
		return nil, fault.Wrap(err,
			ftag.With(ErrUnavailable),
			fmsg.WithDesc("resume audio context", "Error resuming audio."))
	}

	e := NewEngine(rate)
	e.player = dev.Play(e)
	o.engine.Store(e)
	debug.Log("audio", "engine running at %d Hz", rate)
	return e, nil
}

type otoDevice struct {
	ctx *oto.Context
}

func openOto(rate int, buffer time.Duration) (device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return otoDevice{ctx: ctx}, nil
}

func (d otoDevice) Resume() error { return d.ctx.Resume() }

func (d otoDevice) Play(e *Engine) sink {
	p := d.ctx.NewPlayer(e)
	p.SetBufferSize(e.SampleRate() / 50 * channelCount * bitDepth)
	p.Play()
	return p
}
