// Package tui is the terminal front end of the drum machine.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"

	"github.com/icco/drumbeast/internal/config"
	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/drum"
	"github.com/icco/drumbeast/internal/session"
)

const (
	fps       = 60
	bpmStep   = 1
	gainStep  = 0.1
	volStep   = 0.05
	meterRest = 0.01

	// repeatGap separates terminal auto-repeat from a deliberate re-hit.
	repeatGap = 100 * time.Millisecond
)

var divisions = []int{8, 16, 32}

type (
	eventMsg       session.Event
	sessionDoneMsg struct{}
	frameMsg       time.Time
)

// releaseMsg ends a hold unless the key repeated since.
type releaseMsg struct {
	key string
	gen int
}

// holdState is a key seen recently.
type holdState struct {
	gen  int
	last time.Time
}

// meter is a pad's level, flashed by hits and eased back by a spring.
type meter struct {
	level, vel float64
}

// Options configure the model.
type Options struct {
	// ConfigPath is where preferences are saved. Empty disables saving.
	ConfigPath string
	// ExportDir receives exported beats.
	ExportDir string
}

// Model is the drum machine screen.
type Model struct {
	sess *session.Session
	cfg  *config.Config
	opts Options

	keys   keyMap
	help   help.Model
	theme  theme
	prompt textinput.Model

	state     session.State
	meters    [drum.MetronomeTick + 1]meter
	spring    harmonica.Spring
	animating bool

	// held tracks keys seen recently. Terminals send no key-up, so a key
	// counts as released once holdTimeout passes without a repeat.
	held        map[string]holdState
	gen         int
	holdTimeout time.Duration
	now         func() time.Time

	prompting bool
	width     int
	height    int
}

// New returns a model driving sess.
func New(sess *session.Session, cfg *config.Config, opts Options) *Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	ti := textinput.New()
	ti.Placeholder = "path/to/beat.json"
	ti.Prompt = "Import: "
	ti.CharLimit = 512

	return &Model{
		sess:        sess,
		cfg:         cfg,
		opts:        opts,
		keys:        defaultKeyMap(),
		help:        help.New(),
		theme:       newTheme(cfg.Dark()),
		prompt:      ti,
		state:       sess.Snapshot(),
		spring:      harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		held:        make(map[string]holdState),
		holdTimeout: time.Duration(cfg.HoldTimeoutMs) * time.Millisecond,
		now:         time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.sess.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionDoneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(session.Event(msg))
		return m, tea.Batch(cmd, m.waitForEvent())

	case sessionDoneMsg:
		return m, nil

	case frameMsg:
		return m, m.animate()

	case releaseMsg:
		if h, ok := m.held[msg.key]; ok && h.gen == msg.gen {
			delete(m.held, msg.key)
			m.sess.KeyUp(msg.key)
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(ev session.Event) tea.Cmd {
	switch ev.Kind {
	case session.StatusChanged:
		m.state.Status = ev.Status
	case session.PositionChanged:
		m.state.Position = ev.Position
	case session.StateChanged:
		m.refresh()
	case session.Hit:
		if ev.Sound == drum.MetronomeTick {
			m.meters[ev.Sound].level = 0.6
		} else {
			m.meters[ev.Sound].level = 1
		}
		if ev.Source == session.FromKey || m.state.Recording {
			m.refresh()
		}
		return m.startAnimation()
	}
	return nil
}

func (m *Model) refresh() {
	m.state = m.sess.Snapshot()
}

func (m *Model) startAnimation() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// animate eases every meter towards zero and keeps ticking while any
// meter is still visible.
func (m *Model) animate() tea.Cmd {
	active := false
	for i := range m.meters {
		mt := &m.meters[i]
		if mt.level == 0 && mt.vel == 0 {
			continue
		}
		mt.level, mt.vel = m.spring.Update(mt.level, mt.vel, 0)
		if mt.level < meterRest && mt.vel > -meterRest && mt.vel < meterRest {
			mt.level, mt.vel = 0, 0
			continue
		}
		active = true
	}
	m.animating = active
	if !active {
		return nil
	}
	return frame()
}

func (m *Model) hold(key string) tea.Cmd {
	m.gen++
	gen := m.gen
	m.held[key] = holdState{gen: gen, last: m.now()}
	return tea.Tick(m.holdTimeout, func(time.Time) tea.Msg {
		return releaseMsg{key: key, gen: gen}
	})
}

func (m *Model) saveConfig() {
	m.cfg.BPM = m.state.BPM
	m.cfg.TurboDivision = m.state.Division
	m.cfg.Gain = m.state.Gain
	m.cfg.Volume = m.state.Volume
	if m.opts.ConfigPath == "" {
		return
	}
	if err := m.cfg.Save(m.opts.ConfigPath); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}
