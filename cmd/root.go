package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/icco/drumbeast/internal/config"
	"github.com/icco/drumbeast/internal/debug"
)

var (
	configPath string
	debugLog   bool
	bpmFlag    float64
	divFlag    int

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "drumbeast",
	Short: "A terminal drum machine",
	Long: `drumbeast is a synthesized drum machine for the terminal built with Bubbletea.

Play pads from the keyboard, keep time with the metronome, hold keys under turbo
to roll, and record beats that loop back and can be shared as JSON.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/drumbeast/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log next to the config file")
	rootCmd.PersistentFlags().Float64Var(&bpmFlag, "bpm", 0, "tempo in beats per minute")
	rootCmd.PersistentFlags().IntVar(&divFlag, "division", 0, "turbo division (8, 16 or 32)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if debugLog {
		if err := debug.Enable(filepath.Join(filepath.Dir(configPath), "debug.log")); err != nil {
			return err
		}
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("bpm") {
		c.BPM = bpmFlag
	}
	if flags.Changed("division") {
		c.TurboDivision = divFlag
	}
	c.Normalize()
	cfg = c
	debug.Log("config", "loaded %s: %+v", configPath, *cfg)
	return nil
}
