package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/session"
)

const (
	padWidth   = 10
	meterWidth = 8
	seqLines   = 8
)

var padRows = []string{"qwer", "asdf", "zxvb", "nm"}

func (m *Model) View() string {
	t := m.theme
	st := m.state
	var b strings.Builder

	b.WriteString(t.title.Render("DRUMBEAST") + "  " + m.renderTransport() + "\n\n")
	b.WriteString(m.renderControls() + "\n\n")

	for _, row := range padRows {
		pads := make([]string, 0, len(row))
		for _, r := range row {
			pads = append(pads, m.renderPad(string(r)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pads...) + "\n")
	}

	b.WriteString("\n" + m.renderSequence() + "\n")

	if m.prompting {
		b.WriteString("\n" + m.prompt.View() + "\n")
	} else {
		status := st.Status
		if status == "" {
			status = " "
		}
		b.WriteString("\n" + t.status.Render(status) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTransport() string {
	t := m.theme
	st := m.state
	switch {
	case st.Starting:
		return t.label.Render("starting audio")
	case !st.Ready:
		return t.label.Render("no audio")
	case st.Recording:
		return t.rec.Render("● REC")
	case st.Playing:
		return t.on.Render(fmt.Sprintf("▶ PLAY %.0fs loop", st.LoopDuration))
	default:
		return t.label.Render("■ idle")
	}
}

func (m *Model) renderControls() string {
	t := m.theme
	st := m.state
	toggle := func(name string, on bool) string {
		if on {
			return t.on.Render(name + " on")
		}
		return t.label.Render(name + " off")
	}
	beat := " "
	if m.meters[drum.MetronomeTick].level > 0.3 {
		beat = t.on.Render("●")
	}
	parts := []string{
		toggle("metronome", st.Metronome) + " " + beat,
		toggle("turbo", st.Turbo),
		t.label.Render("bpm ") + t.value.Render(fmt.Sprintf("%.0f", st.BPM)),
		t.label.Render("div 1/") + t.value.Render(fmt.Sprint(st.Division)),
		t.label.Render("gain ") + t.value.Render(formatGain(st.Gain)),
		t.label.Render("vol ") + t.value.Render(formatGain(st.Volume)),
	}
	return strings.Join(parts, t.label.Render("  │  "))
}

func (m *Model) renderPad(k string) string {
	t := m.theme
	snd, _ := drum.ForKey(k)
	level := m.meters[snd].level

	style := t.pad
	switch {
	case m.state.Latched == k:
		style = t.padHeld
	case level > 0.5:
		style = t.padHit
	}
	body := strings.ToUpper(k) + "\n" + snd.String() + "\n" + t.meter.Render(renderMeter(level, meterWidth))
	return style.Render(body)
}

func formatGain(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func renderMeter(level float64, width int) string {
	n := int(level*float64(width) + 0.5)
	n = min(max(n, 0), width)
	return strings.Repeat("▮", n) + strings.Repeat("▯", width-n)
}

// renderSequence lists the events around the playback position.
func (m *Model) renderSequence() string {
	t := m.theme
	seq := m.state.Sequence
	header := t.label.Render(fmt.Sprintf("Sequence: %d events", len(seq)))
	if len(seq) == 0 {
		return header
	}

	start := 0
	if m.state.Position >= seqLines {
		start = m.state.Position - seqLines + 1
	} else if m.state.Recording && len(seq) > seqLines {
		start = len(seq) - seqLines
	}
	end := min(start+seqLines, len(seq))

	lines := []string{header}
	for i := start; i < end; i++ {
		lines = append(lines, formatEvent(i, seq[i].Key, seq[i].Offset, i == m.state.Position, t))
	}
	return strings.Join(lines, "\n")
}

func formatEvent(i int, k string, offset float64, active bool, t theme) string {
	name := "Unknown"
	if snd, ok := drum.ForKey(k); ok {
		name = snd.String()
	}
	line := fmt.Sprintf("%03d: %-10s @ %.2fs", i+1, name, offset)
	if active {
		return t.seqActive.Render("▶ " + line)
	}
	return t.seq.Render("  " + line)
}

// State returns the last state the model rendered.
func (m *Model) State() session.State { return m.state }
