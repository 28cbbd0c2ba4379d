package session

import (
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/atotto/clipboard"
)

// ErrClipboard tags clipboard reads and writes that failed.
const ErrClipboard ftag.Kind = "CLIPBOARD_UNAVAILABLE"

// Clipboard moves beats as plain text.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard is the desktop clipboard.
type SystemClipboard struct{}

var errNoClipboard = errors.New("no clipboard utility found")

func (SystemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", errNoClipboard
	}
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}

func clipboardErr(err error, op, user string) error {
	return fault.Wrap(err, ftag.With(ErrClipboard), fmsg.WithDesc(op, user))
}
