package cmd

import (
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/session"
)

var (
	portName    string
	virtualName string
)

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Play the drum machine from a MIDI controller",
	Long: `Play the drum machine from a MIDI keyboard or pad controller.

Notes follow the General MIDI percussion map (36 kick, 38 snare, 42 closed hat,
46 open hat, ...) on any channel. Note-off releases a held pad, so turbo rolls
stop exactly when the pad is released.

With --virtual a virtual MIDI input is created that other software can send to.

Example:
  drumbeast midi --port "Launchpad"
  drumbeast midi --virtual "DrumBeast"
`,
	RunE: runMIDI,
}

func init() {
	midiCmd.Flags().StringVarP(&portName, "port", "p", "", "MIDI input port to open (substring match, default from config)")
	midiCmd.Flags().StringVarP(&virtualName, "virtual", "n", "", "create a virtual MIDI input with this name")
	rootCmd.AddCommand(midiCmd)
}

func runMIDI(cmd *cobra.Command, args []string) error {
	driver, err := rtmididrv.New()
	if err != nil {
		return fault.Wrap(err, fmsg.With("initialize MIDI driver"))
	}
	defer driver.Close()

	in, err := openInput(driver)
	if err != nil {
		return err
	}
	defer in.Close()

	sess, err := session.New(session.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer sess.Shutdown()
	startAudio(cmd.Context(), sess)

	stop, err := in.Listen(func(data []byte, timestamp int32) {
		handleMIDI(sess, midi.Message(data))
	}, drivers.ListenConfig{})
	if err != nil {
		return fault.Wrap(err, fmsg.With("listen to MIDI port"))
	}
	defer stop()
	debug.Log("midi", "listening on %s", in.String())

	return runTUI(sess)
}

func openInput(driver *rtmididrv.Driver) (drivers.In, error) {
	if virtualName != "" {
		in, err := driver.OpenVirtualIn(virtualName)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("create virtual MIDI port"))
		}
		return in, nil
	}

	name := portName
	if name == "" {
		name = cfg.MIDIPort
	}
	ins, err := driver.Ins()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("list MIDI inputs"))
	}
	for _, in := range ins {
		if name != "" && !strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			continue
		}
		if err := in.Open(); err != nil {
			return nil, fault.Wrap(err, fmsg.With("open MIDI port "+in.String()))
		}
		return in, nil
	}
	return nil, fault.New("no MIDI input",
		ftag.With(ftag.NotFound),
		fmsg.WithDesc("no MIDI input", "No matching MIDI input found; try --virtual."))
}

// handleMIDI maps percussion notes to pad presses and releases.
func handleMIDI(sess *session.Session, msg midi.Message) {
	var ch, note, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &note, &vel):
		if k, ok := noteKey(note); ok {
			sess.KeyDown(k)
		}
	case msg.GetNoteEnd(&ch, &note):
		if k, ok := noteKey(note); ok {
			sess.KeyUp(k)
		}
	case msg.Is(midi.ControlChangeMsg):
		var cc, val uint8
		// All notes off
		if msg.GetControlChange(&ch, &cc, &val) && cc == 123 {
			sess.StopPlayback()
			for _, k := range drum.Keys() {
				sess.KeyUp(k)
			}
		}
	}
}

func noteKey(note uint8) (string, bool) {
	snd, ok := drum.ForNote(note)
	if !ok {
		return "", false
	}
	return drum.KeyFor(snd)
}
