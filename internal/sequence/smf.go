package sequence

import (
	"io"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/drumbeast/internal/drum"
)

const (
	ticksPerQuarterNote = 960 // Standard MIDI resolution
	drumChannel         = 9   // General MIDI percussion (channel 10)
	noteVelocity        = 100
)

type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// WriteSMF writes the sequence as a Standard MIDI File on the percussion
// channel, each hit lasting a 16th note. Keys without a sound are skipped.
func WriteSMF(w io.Writer, seq Sequence, bpm float64) error {
	if bpm <= 0 {
		bpm = 120
	}
	ticksPerSecond := bpm / 60 * ticksPerQuarterNote
	length := uint32(ticksPerQuarterNote / 4)

	var msgs []timedMessage
	for _, e := range seq {
		snd, ok := drum.ForKey(e.Key)
		if !ok {
			continue
		}
		on := uint32(e.Offset*ticksPerSecond + 0.5)
		msgs = append(msgs,
			timedMessage{tick: on, msg: midi.NoteOn(drumChannel, snd.GMNote(), noteVelocity)},
			timedMessage{tick: on + length, off: true, msg: midi.NoteOff(drumChannel, snd.GMNote())},
		)
	}
	// Note-offs go first at equal ticks so a retrigger is not cut short.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fault.Wrap(err, fmsg.With("add tempo track"))
	}

	var track smf.Track
	var last uint32
	for _, m := range msgs {
		track.Add(m.tick-last, m.msg)
		last = m.tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return fault.Wrap(err, fmsg.With("add drum track"))
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write midi", "Could not write MIDI file."))
	}
	return nil
}
