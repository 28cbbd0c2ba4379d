package drum

import (
	"math"
	"testing"

	"github.com/icco/drumbeast/internal/audio"
)

func TestEverySoundHasARecipe(t *testing.T) {
	for _, s := range Sounds() {
		if len(recipes[s].layers) == 0 {
			t.Errorf("%v has no layers", s)
		}
		if s.String() == "" || s.String() == "Unknown" {
			t.Errorf("sound %d has no name", int(s))
		}
		if s.Length() <= 0 {
			t.Errorf("%v has no length", s)
		}
	}
}

func TestKeyMap(t *testing.T) {
	keys := Keys()
	if len(keys) != 14 {
		t.Fatalf("expected 14 mapped keys, got %d", len(keys))
	}
	if keys[0] != "q" || keys[len(keys)-1] != "m" {
		t.Errorf("keys out of row order: %v", keys)
	}

	tests := []struct {
		key  string
		want Sound
	}{
		{"q", Kick},
		{"e", HatClosed},
		{"r", HatOpen},
		{"v", Ride},
		{"m", Snare808},
	}
	for _, tt := range tests {
		got, ok := ForKey(tt.key)
		if !ok || got != tt.want {
			t.Errorf("ForKey(%q) = %v, %v; want %v", tt.key, got, ok, tt.want)
		}
		if k, _ := KeyFor(tt.want); k != tt.key {
			t.Errorf("KeyFor(%v) = %q, want %q", tt.want, k, tt.key)
		}
	}
	if _, ok := ForKey("p"); ok {
		t.Error("unmapped key should not resolve")
	}
	if _, ok := KeyFor(MetronomeTick); ok {
		t.Error("metronome tick has no key")
	}
}

func TestForNote(t *testing.T) {
	for _, s := range Sounds() {
		if s == MetronomeTick {
			continue
		}
		got, ok := ForNote(s.GMNote())
		if !ok || got != s {
			t.Errorf("ForNote(%d) = %v, want %v", s.GMNote(), got, s)
		}
	}
	if _, ok := ForNote(MetronomeTick.GMNote()); ok {
		t.Error("metronome note should not map to a pad")
	}
}

func TestSynthesizeConnectsLayers(t *testing.T) {
	eng := audio.NewEngine(8000)
	k := NewKit(eng)

	chains := k.Synthesize(Snare, 1, 0)
	if len(chains) != 2 {
		t.Fatalf("snare should build 2 chains, got %d", len(chains))
	}
	if eng.Active() != 2 {
		t.Errorf("expected 2 connected chains, got %d", eng.Active())
	}
	out := eng.Render(800)
	if peakOf(out) == 0 {
		t.Error("snare rendered silence")
	}
	eng.Render(8000)
	if eng.Active() != 0 {
		t.Errorf("chains should finish after their length, %d left", eng.Active())
	}
}

func TestSynthesizeSchedulesAhead(t *testing.T) {
	eng := audio.NewEngine(8000)
	k := NewKit(eng)
	chains := k.Synthesize(MetronomeTick, 1, 0.1)
	start, stop := chains[0].Window()
	if start != 0.1 || math.Abs(stop-0.15) > 1e-9 {
		t.Errorf("window = [%v, %v], want [0.1, 0.15]", start, stop)
	}
	if peakOf(eng.Render(790)) != 0 {
		t.Error("tick sounded before its start time")
	}
}

func TestSynthesizePastTimeStartsNow(t *testing.T) {
	eng := audio.NewEngine(8000)
	eng.Render(800)
	k := NewKit(eng)
	chains := k.Synthesize(Kick, 1, 0)
	if start, _ := chains[0].Window(); start != 0.1 {
		t.Errorf("start = %v, want now (0.1)", start)
	}
}

func TestHatChokesOpenHat(t *testing.T) {
	tests := []struct {
		name  string
		next  Sound
		choke bool
	}{
		{"closed hat chokes", HatClosed, true},
		{"open hat chokes", HatOpen, true},
		{"kick leaves it ringing", Kick, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := audio.NewEngine(8000)
			k := NewKit(eng)
			open := k.Synthesize(HatOpen, 1, 0)
			eng.Render(400)

			k.Synthesize(tt.next, 1, 0)
			_, stop := open[0].Window()
			choked := stop < 0.5
			if choked != tt.choke {
				t.Fatalf("choked = %v (stop %v), want %v", choked, stop, tt.choke)
			}
			if tt.choke && math.Abs(stop-(0.05+ChokeWindow)) > 1e-9 {
				t.Errorf("choke should take %vs, stop at %v", ChokeWindow, stop)
			}
		})
	}
}

func TestChokeOpenHats(t *testing.T) {
	eng := audio.NewEngine(8000)
	k := NewKit(eng)
	k.Synthesize(HatOpen, 1, 0)
	k.Synthesize(Ride, 1, 0)
	if k.Ringing() != 1 {
		t.Fatalf("expected 1 ringing open hat, got %d", k.Ringing())
	}
	if n := k.ChokeOpenHats(); n != 1 {
		t.Errorf("ChokeOpenHats = %d, want 1", n)
	}
	if k.Ringing() != 0 {
		t.Error("choke list should be empty")
	}

	k.Synthesize(HatOpen, 1, 0)
	eng.Render(8000)
	if k.Ringing() != 0 {
		t.Error("open hat should drop out of the choke list after its decay")
	}
}

func TestKitWithoutEngineIsNoop(t *testing.T) {
	var k *Kit
	if got := k.Synthesize(Kick, 1, 0); got != nil {
		t.Errorf("nil kit returned %d chains", len(got))
	}
	if k.ChokeOpenHats() != 0 {
		t.Error("nil kit should choke nothing")
	}
	if NewKit(nil).Synthesize(Kick, 1, 0) != nil {
		t.Error("kit without engine should build nothing")
	}
}

func peakOf(s []float32) float64 {
	var p float64
	for _, v := range s {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}
