package session

import (
	"time"

	"github.com/Southclaws/fault/fmsg"

	"github.com/icco/drumbeast/internal/drum"
)

// EventKind says what changed.
type EventKind int

const (
	StatusChanged EventKind = iota
	Hit
	PositionChanged
	StateChanged
)

// Source says what caused a hit.
type Source int

const (
	FromKey Source = iota
	FromTurbo
	FromPlayback
	FromMetronome
)

// Event is one notification from the session.
type Event struct {
	Kind     EventKind
	Status   string
	Key      string
	Sound    drum.Sound
	At       float64
	Source   Source
	Position int
}

// Status messages.
const (
	StatusReady      = "Ready"
	StatusNoAudio    = "Audio unavailable."
	StatusRecording  = "REC ●"
	StatusRecorded   = "REC ■"
	StatusPlaying    = "PLAY ▶"
	StatusStopped    = "PLAY ■"
	StatusCleared    = "Beat Cleared"
	StatusLoaded     = "Beat Loaded"
	StatusPasted     = "Beat Pasted!"
	StatusCopied     = "Beat copied!"
	StatusCopyFailed = "Copy failed!"
	StatusNotABeat   = "Pasted data is not a valid beat."
	StatusPasteFail  = "Paste failed or invalid format."
	StatusExported   = "Beat Exported"
)

const (
	shortRevert = 1500 * time.Millisecond
	loadRevert  = 2 * time.Second
	errorRevert = 3 * time.Second
	readyRevert = 2 * time.Second
)

// setStatus shows text, clearing it after revert unless something else
// replaced it first. A zero revert keeps the text.
func (s *Session) setStatus(text string, revert time.Duration) {
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	s.status = text
	s.emit(Event{Kind: StatusChanged, Status: text})
	if revert <= 0 {
		return
	}
	s.statusTimer = s.clk.AfterFunc(revert, func() {
		s.statusTimer = nil
		s.status = ""
		s.emit(Event{Kind: StatusChanged})
	})
}

func (s *Session) emit(ev Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Session) changed() {
	s.emit(Event{Kind: StateChanged})
}

// issue returns the user-facing message carried by err, or fallback.
func issue(err error, fallback string) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return fallback
}
