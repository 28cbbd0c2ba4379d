package metronome

import (
	"math"
	"testing"
	"time"

	"github.com/icco/drumbeast/internal/timer"
)

type event struct {
	key string
	at  float64
}

type recorder struct {
	ticks   []float64
	repeats []event
}

func (r *recorder) Tick(at float64)              { r.ticks = append(r.ticks, at) }
func (r *recorder) Repeat(key string, at float64) { r.repeats = append(r.repeats, event{key, at}) }

func newTestScheduler() (*Scheduler, *timer.Manual, *recorder) {
	clk := timer.NewManual()
	out := &recorder{}
	return New(clk, clk, out), clk, out
}

func TestMetronomeQuarterNotes(t *testing.T) {
	s, clk, out := newTestScheduler()
	if err := s.SetBPM(120); err != nil {
		t.Fatal(err)
	}
	s.SetMetronome(true)
	clk.Advance(3 * time.Second)

	if len(out.ticks) < 6 {
		t.Fatalf("expected at least 6 ticks in 3s, got %d", len(out.ticks))
	}
	for i := 1; i < len(out.ticks); i++ {
		if d := out.ticks[i] - out.ticks[i-1]; math.Abs(d-0.5) > 1e-9 {
			t.Errorf("tick %d spacing %v, want 0.5", i, d)
		}
	}
	if out.ticks[0] != 0 {
		t.Errorf("first tick at %v, want 0", out.ticks[0])
	}
}

func TestEventsStayWithinLookahead(t *testing.T) {
	s, clk, out := newTestScheduler()
	s.SetMetronome(true)
	for i := 0; i < 100; i++ {
		clk.Advance(10 * time.Millisecond)
		if n := len(out.ticks); n > 0 {
			if last := out.ticks[n-1]; last >= clk.CurrentTime()+Lookahead {
				t.Fatalf("tick at %v scheduled beyond horizon %v", last, clk.CurrentTime()+Lookahead)
			}
		}
	}
}

func TestRunStopStates(t *testing.T) {
	s, clk, _ := newTestScheduler()
	if s.Running() {
		t.Fatal("new scheduler should be stopped")
	}
	s.SetMetronome(true)
	s.SetTurbo(true)
	if !s.Running() {
		t.Fatal("scheduler should run with a driver enabled")
	}
	s.SetMetronome(false)
	if !s.Running() {
		t.Fatal("turbo alone should keep the scheduler running")
	}
	s.SetTurbo(false)
	if s.Running() {
		t.Fatal("scheduler should stop when both drivers are off")
	}
	if clk.Pending() != 0 {
		t.Errorf("periodic tick still pending after stop: %d", clk.Pending())
	}
}

func TestTurboLatch(t *testing.T) {
	s, clk, out := newTestScheduler()
	if err := s.SetDivision(16); err != nil {
		t.Fatal(err)
	}
	s.SetTurbo(true)

	if !s.Press("q") {
		t.Fatal("turbo should consume the press")
	}
	if len(out.repeats) == 0 || out.repeats[0].at != 0 {
		t.Fatalf("first repeat should fire immediately, got %v", out.repeats)
	}
	if !s.Press("w") {
		t.Error("second key should still be consumed by turbo")
	}
	if s.Latched() != "q" {
		t.Errorf("latch overridden: %q", s.Latched())
	}

	clk.Advance(time.Second)
	for _, r := range out.repeats {
		if r.key != "q" {
			t.Fatalf("repeat for %q while q is latched", r.key)
		}
	}
	for i := 1; i < len(out.repeats); i++ {
		if d := out.repeats[i].at - out.repeats[i-1].at; math.Abs(d-0.125) > 1e-9 {
			t.Errorf("repeat spacing %v, want 0.125 at 16ths and 120 bpm", d)
		}
	}

	s.Release("w")
	if s.Latched() != "q" {
		t.Error("releasing another key must not clear the latch")
	}
	s.Release("q")
	n := len(out.repeats)
	clk.Advance(time.Second)
	if len(out.repeats) != n {
		t.Errorf("repeats continued after release: %d -> %d", n, len(out.repeats))
	}
}

func TestTurboOffIgnoresPress(t *testing.T) {
	s, _, out := newTestScheduler()
	if s.Press("q") {
		t.Error("press should not be consumed without turbo")
	}
	if len(out.repeats) != 0 {
		t.Error("no repeats expected without turbo")
	}
}

func TestDisablingTurboClearsLatch(t *testing.T) {
	s, _, _ := newTestScheduler()
	s.SetTurbo(true)
	s.Press("e")
	s.SetTurbo(false)
	if s.Latched() != "" {
		t.Errorf("latch should clear with turbo off, got %q", s.Latched())
	}
}

func TestMetronomeWithTurboTicksOnQuarters(t *testing.T) {
	s, clk, out := newTestScheduler()
	if err := s.SetDivision(8); err != nil {
		t.Fatal(err)
	}
	s.SetMetronome(true)
	s.SetTurbo(true)
	clk.Advance(2 * time.Second)
	for i := 1; i < len(out.ticks); i++ {
		if d := out.ticks[i] - out.ticks[i-1]; math.Abs(d-0.5) > 1e-9 {
			t.Errorf("metronome spacing %v under 8ths, want 0.5", d)
		}
	}
}

func TestRateChangeAppliesToNextInterval(t *testing.T) {
	s, clk, out := newTestScheduler()
	s.SetMetronome(true)
	clk.Advance(25 * time.Millisecond)
	if len(out.ticks) != 1 {
		t.Fatalf("expected one tick scheduled, got %v", out.ticks)
	}
	if err := s.SetBPM(60); err != nil {
		t.Fatal(err)
	}
	clk.Advance(2 * time.Second)
	if d := out.ticks[1] - out.ticks[0]; math.Abs(d-0.5) > 1e-9 {
		t.Errorf("already computed interval changed: %v", d)
	}
	if d := out.ticks[2] - out.ticks[1]; math.Abs(d-1) > 1e-9 {
		t.Errorf("new tempo interval %v, want 1", d)
	}
}

func TestValidation(t *testing.T) {
	s, _, _ := newTestScheduler()
	for _, bpm := range []float64{0, 19, 301} {
		if err := s.SetBPM(bpm); err == nil {
			t.Errorf("SetBPM(%v) should fail", bpm)
		}
	}
	for _, d := range []int{0, 3, 6, 13, 64} {
		if err := s.SetDivision(d); err == nil {
			t.Errorf("SetDivision(%d) should fail", d)
		}
	}
	if s.BPM() != 120 || s.Division() != 16 {
		t.Errorf("invalid input changed state: bpm=%v division=%d", s.BPM(), s.Division())
	}
}
