package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/icco/drumbeast/internal/drum"
)

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.sess

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveConfig()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Metronome):
		_ = s.SetMetronome(!m.state.Metronome)
	case key.Matches(msg, m.keys.Turbo):
		_ = s.SetTurbo(!m.state.Turbo)
		clear(m.held)
	case key.Matches(msg, m.keys.Record):
		_ = s.ToggleRecord()
	case key.Matches(msg, m.keys.Play):
		_ = s.Play()
	case key.Matches(msg, m.keys.Stop):
		s.Escape()
	case key.Matches(msg, m.keys.Clear):
		if !m.state.Recording && !m.state.Playing {
			_ = s.Clear()
		}

	case key.Matches(msg, m.keys.Copy):
		_ = s.Copy()
	case key.Matches(msg, m.keys.Paste):
		_ = s.Paste()
	case key.Matches(msg, m.keys.Export):
		_, _ = s.ExportFile(m.opts.ExportDir)
	case key.Matches(msg, m.keys.ExportMIDI):
		_, _ = s.ExportMIDI(m.opts.ExportDir)
	case key.Matches(msg, m.keys.Import):
		if m.state.Recording || m.state.Playing {
			return m, nil
		}
		m.prompting = true
		m.prompt.SetValue("")
		return m, m.prompt.Focus()

	case key.Matches(msg, m.keys.BPMUp):
		_ = s.SetBPM(min(m.state.BPM+bpmStep, 300))
	case key.Matches(msg, m.keys.BPMDown):
		_ = s.SetBPM(max(m.state.BPM-bpmStep, 20))
	case key.Matches(msg, m.keys.DivUp):
		_ = s.SetDivision(stepDivision(m.state.Division, 1))
	case key.Matches(msg, m.keys.DivDown):
		_ = s.SetDivision(stepDivision(m.state.Division, -1))
	case key.Matches(msg, m.keys.GainUp):
		s.SetGain(m.state.Gain + gainStep)
	case key.Matches(msg, m.keys.GainDown):
		s.SetGain(m.state.Gain - gainStep)
	case key.Matches(msg, m.keys.VolUp):
		s.SetVolume(m.state.Volume + volStep)
	case key.Matches(msg, m.keys.VolDown):
		s.SetVolume(m.state.Volume - volStep)

	case key.Matches(msg, m.keys.Theme):
		m.cfg.SetDark(!m.cfg.Dark())
		m.theme = newTheme(m.cfg.Dark())
		m.saveConfig()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		return m, m.pressPad(msg.String())
	}

	m.refresh()
	return m, nil
}

// pressPad plays a drum key. A press that follows the previous press of
// the same key within repeatGap is terminal auto-repeat and only extends
// the hold. With turbo on, any press of a held key is a repeat.
func (m *Model) pressPad(k string) tea.Cmd {
	if len(k) != 1 {
		return nil
	}
	if _, ok := drum.ForKey(k); !ok {
		return nil
	}
	if !m.isRepeat(k) {
		m.sess.KeyDown(k)
	}
	m.refresh()
	return m.hold(k)
}

func (m *Model) isRepeat(k string) bool {
	h, ok := m.held[k]
	if !ok {
		return false
	}
	return m.state.Turbo || m.now().Sub(h.last) < repeatGap
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.prompt.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.prompt.Blur()
		if path := m.prompt.Value(); path != "" {
			_ = m.sess.ImportFile(path)
			m.refresh()
		}
		return m, nil
	case tea.KeyCtrlC:
		m.saveConfig()
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func stepDivision(cur, dir int) int {
	i := slices.Index(divisions, cur)
	if i < 0 {
		return divisions[1]
	}
	return divisions[min(max(i+dir, 0), len(divisions)-1)]
}
