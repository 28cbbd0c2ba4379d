package sequence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrMalformed tags beat payloads that cannot be imported.
const ErrMalformed ftag.Kind = "MALFORMED_IMPORT"

// User-facing issues attached to ErrMalformed errors.
const (
	IssueParse  = "Error parsing beat file."
	IssueFormat = "Invalid beat file format."
)

// note is the persisted form of an Event.
type note struct {
	Key       string  `json:"key"`
	StartTime float64 `json:"startTime"`
}

// Encode renders the sequence as a pretty-printed JSON array of
// {key, startTime} objects.
func Encode(seq Sequence) ([]byte, error) {
	notes := make([]note, len(seq))
	for i, e := range seq {
		notes[i] = note{Key: e.Key, StartTime: e.Offset}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("encode beat"))
	}
	return data, nil
}

// Decode parses a beat payload. Line comments starting with // outside
// strings are ignored. The payload is rejected as a whole unless it is an
// array whose every element has a non-empty string key and a startTime.
func Decode(data []byte) (Sequence, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(StripComments(data), &raw); err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ErrMalformed),
			fmsg.WithDesc("parse beat", IssueParse))
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, invalid("beat is not an array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalid("beat is not an array")
	}
	seq := make(Sequence, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, invalid("element %d is not an object", i)
		}
		var key string
		if err := json.Unmarshal(fields["key"], &key); err != nil || key == "" {
			return nil, invalid("element %d has no key", i)
		}
		rawStart, ok := fields["startTime"]
		if !ok {
			return nil, invalid("element %d has no startTime", i)
		}
		start, err := parseStart(rawStart)
		if err != nil {
			return nil, invalid("element %d has a bad startTime", i)
		}
		seq = append(seq, Event{Key: key, Offset: start, Duration: DefaultDuration, Gain: DefaultGain})
	}
	seq.Sort()
	return seq, nil
}

// parseStart accepts a number, a numeric string, or null (zero).
func parseStart(raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("unsupported startTime %T", v)
	}
}

func invalid(format string, args ...any) error {
	return fault.Wrap(fmt.Errorf(format, args...),
		ftag.With(ErrMalformed),
		fmsg.WithDesc("invalid beat", IssueFormat))
}

// StripComments removes // line comments that are not inside strings.
func StripComments(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == '/' && i+1 < len(data) && data[i+1] == '/' {
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out.WriteByte('\n')
			}
			continue
		}
		out.WriteByte(c)
	}
	return out.Bytes()
}

// Filename returns the export file name for a beat saved at t.
func Filename(t time.Time) string {
	return "drumbeast_beat_" + t.UTC().Format("20060102T150405") + ".json"
}
