package cmd

import (
	"fmt"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/icco/drumbeast/internal/audio"
	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/sequence"
)

const renderTail = 1.0 // seconds of ring-out after the last loop

var (
	renderOut   string
	renderLoops int
)

var renderCmd = &cobra.Command{
	Use:   "render <beat.json>",
	Short: "Render a beat to a WAV file",
	Long: `Render a beat file offline to a 16-bit mono WAV file, looping it the
given number of times. No audio device is needed.

Example:
  drumbeast render beat.json -o beat.wav --loops 4
`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "beat.wav", "output WAV file")
	renderCmd.Flags().IntVarP(&renderLoops, "loops", "l", 1, "number of times to loop the beat")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	seq, err := readBeat(args[0])
	if err != nil {
		return err
	}
	if len(seq) == 0 {
		return sequence.ErrEmpty
	}
	loops := max(renderLoops, 1)

	eng := audio.NewEngine(cfg.SampleRate)
	eng.SetVolume(cfg.Volume)
	samples := renderBeat(eng, seq, loops, cfg.Gain)

	path, err := homedir.Expand(renderOut)
	if err != nil {
		return fault.Wrap(err, fmsg.With("expand output path"))
	}
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("create wav", "Could not create output file."))
	}
	defer f.Close()
	if err := audio.WriteWAV(f, samples, eng.SampleRate()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d events x %d loops to %s (%.1fs)\n",
		len(seq), loops, path, float64(len(samples))/float64(eng.SampleRate()))
	return nil
}

// renderBeat schedules every loop of seq on an offline engine and renders
// it with a short tail.
func renderBeat(eng *audio.Engine, seq sequence.Sequence, loops int, gain float64) []float32 {
	kit := drum.NewKit(eng)
	loop := seq.LoopDuration()
	for i := 0; i < loops; i++ {
		base := float64(i) * loop
		for _, ev := range seq {
			snd, ok := drum.ForKey(ev.Key)
			if !ok {
				continue
			}
			kit.Synthesize(snd, gain*ev.Gain, base+ev.Offset)
		}
	}
	frames := int((float64(loops)*loop + renderTail) * float64(eng.SampleRate()))
	return eng.Render(frames)
}

func readBeat(path string) (sequence.Sequence, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("expand beat path"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("read beat file", "Could not read beat file."))
	}
	return sequence.Decode(data)
}
