package cmd

import (
	"fmt"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/icco/drumbeast/internal/sequence"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <beat.json>",
	Short: "Convert a beat file to a Standard MIDI File",
	Long: `Convert a beat file to a Standard MIDI File on the General MIDI
percussion channel, using the configured tempo (or --bpm).

Example:
  drumbeast convert beat.json -o beat.mid --bpm 96
`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "beat.mid", "output MIDI file")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	seq, err := readBeat(args[0])
	if err != nil {
		return err
	}
	path, err := homedir.Expand(convertOut)
	if err != nil {
		return fault.Wrap(err, fmsg.With("expand output path"))
	}
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("create midi", "Could not create output file."))
	}
	defer f.Close()

	if err := sequence.WriteSMF(f, seq, cfg.BPM); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events at %.0f bpm to %s\n", len(seq), cfg.BPM, path)
	return nil
}
