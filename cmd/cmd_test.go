package cmd

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/drumbeast/internal/audio"
	"github.com/icco/drumbeast/internal/sequence"
	"github.com/icco/drumbeast/internal/session"
	"github.com/icco/drumbeast/internal/timer"
)

const testBeat = `// two hits
[
  {"key": "q", "startTime": 0},
  {"key": "w", "startTime": 0.5}
]`

type engineOpener struct{ eng *audio.Engine }

func (o engineOpener) Open(context.Context) (*audio.Engine, error) { return o.eng, nil }

func TestRenderBeat(t *testing.T) {
	eng := audio.NewEngine(8000)
	seq := sequence.Sequence{{Key: "q", Offset: 0, Gain: 1}, {Key: "w", Offset: 0.5, Gain: 1}}
	samples := renderBeat(eng, seq, 2, 1)

	if want := (2*1 + 1) * 8000; len(samples) != want {
		t.Fatalf("rendered %d frames, want %d", len(samples), want)
	}
	var second float64
	for _, s := range samples[8000:8400] {
		second = math.Max(second, math.Abs(float64(s)))
	}
	if second == 0 {
		t.Error("second loop should start with a kick")
	}
}

func TestNoteKey(t *testing.T) {
	tests := []struct {
		note uint8
		key  string
		ok   bool
	}{
		{36, "q", true},
		{38, "w", true},
		{42, "e", true},
		{46, "r", true},
		{35, "n", true},
		{76, "", false},
		{60, "", false},
	}
	for _, tt := range tests {
		k, ok := noteKey(tt.note)
		if k != tt.key || ok != tt.ok {
			t.Errorf("noteKey(%d) = %q, %v; want %q, %v", tt.note, k, ok, tt.key, tt.ok)
		}
	}
}

func TestHandleMIDIHoldsTurbo(t *testing.T) {
	sess, err := session.New(session.Options{
		Clock:  timer.NewManual(),
		Opener: engineOpener{audio.NewEngine(8000)},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Shutdown()
	if err := sess.SetTurbo(true); err != nil {
		t.Fatal(err)
	}

	handleMIDI(sess, midi.NoteOn(9, 36, 100))
	if l := sess.Snapshot().Latched; l != "q" {
		t.Fatalf("latched = %q, want q", l)
	}
	handleMIDI(sess, midi.NoteOn(9, 38, 100))
	handleMIDI(sess, midi.NoteOff(9, 38))
	if l := sess.Snapshot().Latched; l != "q" {
		t.Errorf("other pads must not steal the latch, got %q", l)
	}
	handleMIDI(sess, midi.NoteOn(9, 36, 0))
	if l := sess.Snapshot().Latched; l != "" {
		t.Errorf("velocity 0 should release, still %q", l)
	}
}

func TestConvertAndRenderCommands(t *testing.T) {
	dir := t.TempDir()
	beat := filepath.Join(dir, "beat.json")
	if err := os.WriteFile(beat, []byte(testBeat), 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.json")

	mid := filepath.Join(dir, "beat.mid")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"convert", beat, "-o", mid, "--config", cfgPath, "--bpm", "96"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert: %v", err)
	}
	rd, err := smf.ReadFile(mid)
	if err != nil {
		t.Fatalf("read midi: %v", err)
	}
	if tc := rd.TempoChanges(); len(tc) == 0 || tc[0].BPM != 96 {
		t.Errorf("tempo = %+v, want 96", tc)
	}

	wav := filepath.Join(dir, "beat.wav")
	rootCmd.SetArgs([]string{"render", beat, "-o", wav, "--loops", "2", "--config", cfgPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(wav)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("output is not a WAV file")
	}
}

type gatedOpener struct {
	gate chan struct{}
	eng  *audio.Engine
}

func (o gatedOpener) Open(ctx context.Context) (*audio.Engine, error) {
	select {
	case <-o.gate:
		return o.eng, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStartAudioDoesNotBlock(t *testing.T) {
	op := gatedOpener{gate: make(chan struct{}), eng: audio.NewEngine(8000)}
	sess, err := session.New(session.Options{Opener: op})
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Shutdown()

	done := startAudio(context.Background(), sess)

	deadline := time.Now().Add(2 * time.Second)
	for !sess.Snapshot().Starting {
		if time.Now().After(deadline) {
			t.Fatal("engine start never began")
		}
		time.Sleep(time.Millisecond)
	}
	if sess.Snapshot().Ready {
		t.Fatal("engine should still be starting")
	}

	close(op.gate)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Init: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Init never returned")
	}
	if st := sess.Snapshot(); !st.Ready || st.Starting {
		t.Errorf("state after start = %+v", st)
	}
}
