package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Southclaws/fault/ftag"
)

type fakeSink struct{ paused atomic.Bool }

func (s *fakeSink) Pause() { s.paused.Store(true) }

type fakeDevice struct {
	mu         sync.Mutex
	resumeErrs []error
	resumes    int
	sinks      []*fakeSink
}

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumes++
	if len(d.resumeErrs) > 0 {
		err := d.resumeErrs[0]
		d.resumeErrs = d.resumeErrs[1:]
		return err
	}
	return nil
}

func (d *fakeDevice) Play(*Engine) sink {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &fakeSink{}
	d.sinks = append(d.sinks, s)
	return s
}

// newTestOpener returns an opener whose device creation waits on gate,
// when gate is not nil, and counts its calls.
func newTestOpener(dev *fakeDevice, devErr error, gate chan struct{}) (*Opener, *atomic.Int32) {
	var calls atomic.Int32
	o := &Opener{SampleRate: 8000}
	o.newDevice = func(rate int, _ time.Duration) (device, error) {
		calls.Add(1)
		if gate != nil {
			<-gate
		}
		if devErr != nil {
			return nil, devErr
		}
		return dev, nil
	}
	return o, &calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never held")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOpenSharesOneStart(t *testing.T) {
	dev := &fakeDevice{}
	gate := make(chan struct{})
	o, calls := newTestOpener(dev, nil, gate)

	const n = 8
	engines := make([]*Engine, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engines[i], errs[i] = o.Open(context.Background())
		}()
	}
	waitFor(t, func() bool { return calls.Load() > 0 })
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("device opened %d times, want 1", got)
	}
	for i := range n {
		if errs[i] != nil {
			t.Fatalf("Open %d: %v", i, errs[i])
		}
		if engines[i] == nil || engines[i] != engines[0] {
			t.Fatalf("Open %d returned a different engine", i)
		}
	}
	if engines[0].SampleRate() != 8000 {
		t.Errorf("sample rate = %d", engines[0].SampleRate())
	}

	e, err := o.Open(context.Background())
	if err != nil || e != engines[0] {
		t.Fatalf("later Open = %v, %v; want the running engine", e, err)
	}
	if calls.Load() != 1 || dev.resumes != 1 || len(dev.sinks) != 1 {
		t.Errorf("running engine should be reused: calls %d resumes %d players %d",
			calls.Load(), dev.resumes, len(dev.sinks))
	}
}

func TestOpenWaitEndsWithContext(t *testing.T) {
	gate := make(chan struct{})
	o, calls := newTestOpener(&fakeDevice{}, nil, gate)

	first := make(chan error, 1)
	go func() {
		_, err := o.Open(context.Background())
		first <- err
	}()
	waitFor(t, func() bool { return calls.Load() > 0 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	begin := time.Now()
	_, err := o.Open(ctx)
	if ftag.Get(err) != ErrUnavailable {
		t.Fatalf("Open during a blocked start = %v, want engine unavailable", err)
	}
	if waited := time.Since(begin); waited > time.Second {
		t.Errorf("Open waited %v past its context", waited)
	}

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := o.Open(context.Background()); err != nil {
		t.Fatalf("Open after start: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("device opened %d times, want 1", calls.Load())
	}
}

func TestOpenRetriesFailedResume(t *testing.T) {
	dev := &fakeDevice{resumeErrs: []error{errors.New("suspended")}}
	o, calls := newTestOpener(dev, nil, nil)

	if _, err := o.Open(context.Background()); ftag.Get(err) != ErrUnavailable {
		t.Fatalf("first Open = %v, want engine unavailable", err)
	}
	e, err := o.Open(context.Background())
	if err != nil || e == nil {
		t.Fatalf("retry = %v, %v", e, err)
	}
	if calls.Load() != 1 || dev.resumes != 2 {
		t.Errorf("retry should resume the same device: calls %d resumes %d", calls.Load(), dev.resumes)
	}
}

func TestOpenDeviceFailureIsFinal(t *testing.T) {
	o, calls := newTestOpener(nil, errors.New("no sound card"), nil)

	for i := 0; i < 3; i++ {
		if _, err := o.Open(context.Background()); ftag.Get(err) != ErrUnavailable {
			t.Fatalf("Open %d = %v, want engine unavailable", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("device creation attempted %d times, want 1", calls.Load())
	}
}

func TestEngineCloseStopsPlayer(t *testing.T) {
	dev := &fakeDevice{}
	o, _ := newTestOpener(dev, nil, nil)
	e, err := o.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if !dev.sinks[0].paused.Load() {
		t.Error("Close should pause the player")
	}
	if e.player != nil {
		t.Error("Close should drop the player")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
