package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/mitchellh/go-homedir"

	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/sequence"
)

// Import replaces the sequence with a beat payload. A rejected payload
// leaves the sequence as it was.
func (s *Session) Import(data []byte) error {
	var err error
	s.clk.Do(func() {
		err = s.load(data, StatusLoaded)
		if err != nil {
			s.setStatus(issue(err, sequence.IssueParse), errorRevert)
		}
	})
	return err
}

// ImportFile reads a beat file. A leading ~ is expanded.
func (s *Session) ImportFile(path string) error {
	path, err := homedir.Expand(strings.TrimSpace(path))
	if err == nil {
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			return s.Import(data)
		}
	}
	err = fault.Wrap(err, fmsg.WithDesc("read beat file", "Could not read beat file."))
	s.clk.Do(func() {
		s.setStatus(issue(err, ""), errorRevert)
	})
	return err
}

func (s *Session) load(data []byte, status string) error {
	if s.looper.Recording() || s.looper.Playing() {
		return sequence.ErrBusy
	}
	seq, err := sequence.Decode(data)
	if err != nil {
		debug.Log("session", "rejected beat: %v", err)
		return err
	}
	if err := s.looper.Load(seq); err != nil {
		return err
	}
	debug.Log("session", "loaded %d events", len(seq))
	s.setStatus(status, loadRevert)
	s.changed()
	return nil
}

// ExportJSON encodes the sequence.
func (s *Session) ExportJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	s.clk.Do(func() {
		data, err = s.encode()
	})
	return data, err
}

func (s *Session) encode() ([]byte, error) {
	if s.looper.Len() == 0 {
		return nil, sequence.ErrEmpty
	}
	return sequence.Encode(s.looper.Sequence())
}

// ExportFile writes the sequence to a time-stamped file in dir and
// returns its path.
func (s *Session) ExportFile(dir string) (string, error) {
	data, err := s.ExportJSON()
	if err != nil {
		return "", err
	}
	path, err := s.exportPath(dir, "")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", s.exportFailed(err)
	}
	s.exported(path)
	return path, nil
}

// ExportMIDI writes the sequence as a Standard MIDI File at the current
// tempo and returns its path.
func (s *Session) ExportMIDI(dir string) (string, error) {
	var (
		seq sequence.Sequence
		bpm float64
	)
	s.clk.Do(func() {
		seq, bpm = s.looper.Sequence(), s.sched.BPM()
	})
	if len(seq) == 0 {
		return "", sequence.ErrEmpty
	}
	var buf bytes.Buffer
	if err := sequence.WriteSMF(&buf, seq, bpm); err != nil {
		return "", s.exportFailed(err)
	}
	path, err := s.exportPath(dir, ".mid")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", s.exportFailed(err)
	}
	s.exported(path)
	return path, nil
}

func (s *Session) exportPath(dir, ext string) (string, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", s.exportFailed(err)
	}
	name := sequence.Filename(s.now())
	if ext != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	}
	return filepath.Join(dir, name), nil
}

func (s *Session) exportFailed(err error) error {
	err = fault.Wrap(err, fmsg.WithDesc("export beat", "Could not export beat."))
	s.clk.Do(func() {
		s.setStatus(issue(err, ""), errorRevert)
	})
	return err
}

func (s *Session) exported(path string) {
	debug.Log("session", "exported %s", path)
	s.clk.Do(func() {
		s.setStatus(StatusExported, loadRevert)
	})
}

// Copy puts the sequence on the clipboard. An empty sequence is not
// copied.
func (s *Session) Copy() error {
	var err error
	s.clk.Do(func() {
		if s.looper.Len() == 0 || s.looper.Recording() || s.looper.Playing() {
			return
		}
		var data []byte
		if data, err = s.encode(); err != nil {
			return
		}
		if werr := s.clip.WriteAll(string(data)); werr != nil {
			err = clipboardErr(werr, "write clipboard", StatusCopyFailed)
			debug.Log("session", "copy failed: %v", werr)
			s.setStatus(StatusCopyFailed, shortRevert)
			return
		}
		s.setStatus(StatusCopied, shortRevert)
	})
	return err
}

// Paste replaces the sequence with a beat from the clipboard, stopping
// recording and playback first.
func (s *Session) Paste() error {
	var err error
	s.clk.Do(func() {
		if s.looper.Recording() {
			s.looper.StopRecording()
		}
		s.stopPlayback()
		s.changed()

		text, rerr := s.clip.ReadAll()
		if rerr != nil {
			err = clipboardErr(rerr, "read clipboard", StatusPasteFail)
			debug.Log("session", "paste failed: %v", rerr)
			s.setStatus(StatusPasteFail, errorRevert)
			return
		}
		if err = s.load([]byte(text), StatusPasted); err != nil {
			msg := StatusPasteFail
			if ftag.Get(err) == sequence.ErrMalformed && fmsg.GetIssue(err) == sequence.IssueFormat {
				msg = StatusNotABeat
			}
			s.setStatus(msg, errorRevert)
		}
	})
	return err
}
