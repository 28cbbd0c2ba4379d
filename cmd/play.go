package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/icco/drumbeast/internal/session"
	"github.com/icco/drumbeast/internal/tui"
)

var exportDir string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the drum machine",
	Long: `Start the drum machine with an interactive TUI.

The pads are laid out like the keyboard: q w e r / a s d f / z x v b / n m.
Beats are exported to the current directory unless --out is given.`,
	RunE: runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&exportDir, "out", ".", "directory for exported beats")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	sess, err := session.New(session.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer sess.Shutdown()
	startAudio(cmd.Context(), sess)

	return runTUI(sess)
}

// startAudio opens the sound card in the background so the screen comes
// up right away. Failures are shown in the TUI and retried on the next
// action.
func startAudio(ctx context.Context, sess *session.Session) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- sess.Init(ctx)
	}()
	return done
}

// runTUI runs the drum machine screen until the user quits.
func runTUI(sess *session.Session) error {
	m := tui.New(sess, cfg, tui.Options{ConfigPath: configPath, ExportDir: exportDir})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fault.Wrap(err, fmsg.With("run program"))
	}
	return nil
}
