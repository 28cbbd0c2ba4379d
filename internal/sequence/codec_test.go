package sequence

import (
	"bytes"
	"testing"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestRoundTrip(t *testing.T) {
	in := []byte(`[
  {
    "key": "q",
    "startTime": 0
  },
  {
    "key": "e",
    "startTime": 0.2501
  },
  {
    "key": "w",
    "startTime": 1.0000000000000002
  }
]`)
	seq, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(seq)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("round trip changed payload:\n%s\n---\n%s", in, out)
	}
	for _, e := range seq {
		if e.Duration != DefaultDuration || e.Gain != DefaultGain {
			t.Errorf("defaults not applied on import: %+v", e)
		}
	}
}

func TestDecodeAcceptsCommentsAndStrings(t *testing.T) {
	in := []byte(`// exported beat
[
  {"key": "q", "startTime": "0.5"}, // kick
  {"key": "w", "startTime": 0.25, "note": "http://example.com"}
]`)
	seq, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seq) != 2 || seq[0].Key != "w" || seq[1].Offset != 0.5 {
		t.Errorf("unexpected sequence %+v", seq)
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	seq, err := Decode([]byte(`[]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seq) != 0 {
		t.Errorf("expected empty sequence, got %d", len(seq))
	}
}

func TestDecodeRejectsWholePayload(t *testing.T) {
	tests := []struct {
		name  string
		input string
		issue string
	}{
		{"missing startTime", `[{"key":"q"}]`, "Invalid beat file format."},
		{"missing key", `[{"startTime":0}]`, "Invalid beat file format."},
		{"empty key", `[{"key":"","startTime":0}]`, "Invalid beat file format."},
		{"one bad element", `[{"key":"q","startTime":0},{"key":"w"}]`, "Invalid beat file format."},
		{"object", `{"key":"q","startTime":0}`, "Invalid beat file format."},
		{"element not object", `[1]`, "Invalid beat file format."},
		{"bad number", `[{"key":"q","startTime":"soon"}]`, "Invalid beat file format."},
		{"not json", `[{key: q}]`, "Error parsing beat file."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatalf("expected rejection, got %+v", seq)
			}
			if seq != nil {
				t.Errorf("rejected payload returned %d events", len(seq))
			}
			if ftag.Get(err) != ErrMalformed {
				t.Errorf("kind = %q, want %q", ftag.Get(err), ErrMalformed)
			}
			if got := fmsg.GetIssue(err); got != tt.issue {
				t.Errorf("issue = %q, want %q", got, tt.issue)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	in := "[\"a//b\", // gone\n\"c\\\"//d\"] // tail"
	want := "[\"a//b\", \n\"c\\\"//d\"] "
	if got := string(StripComments([]byte(in))); got != want {
		t.Errorf("StripComments = %q, want %q", got, want)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := Filename(at); got != "drumbeast_beat_20240309T140507.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestWriteSMF(t *testing.T) {
	seq := Sequence{
		{Key: "q", Offset: 0},
		{Key: "w", Offset: 0.5},
		{Key: "?", Offset: 0.75},
		{Key: "q", Offset: 1},
	}
	var buf bytes.Buffer
	if err := WriteSMF(&buf, seq, 120); err != nil {
		t.Fatalf("WriteSMF: %v", err)
	}

	rd, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if tc := rd.TempoChanges(); len(tc) == 0 || tc[0].BPM != 120 {
		t.Errorf("tempo not written: %+v", tc)
	}
	if len(rd.Tracks) != 2 {
		t.Fatalf("expected tempo and drum tracks, got %d", len(rd.Tracks))
	}

	var ticks []uint32
	var keys []uint8
	var abs uint32
	for _, ev := range rd.Tracks[1] {
		abs += ev.Delta
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			if ch != drumChannel {
				t.Errorf("note on channel %d, want %d", ch, drumChannel)
			}
			ticks = append(ticks, abs)
			keys = append(keys, key)
		}
	}
	wantTicks := []uint32{0, 960, 1920}
	wantKeys := []uint8{36, 38, 36}
	if len(ticks) != len(wantTicks) {
		t.Fatalf("note ons at %v, want %v", ticks, wantTicks)
	}
	for i := range wantTicks {
		if ticks[i] != wantTicks[i] || keys[i] != wantKeys[i] {
			t.Errorf("note %d = key %d at %d, want key %d at %d", i, keys[i], ticks[i], wantKeys[i], wantTicks[i])
		}
	}
}
