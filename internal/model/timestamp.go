package model

import (
	"bytes"
	"fmt"
	"time"
)

// LocalLayout is the naive wall-clock form the clinic service uses for
// start_time, e.g. "2025-01-12T10:30:00".
const LocalLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	LocalLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Timestamp decodes both zoned and naive timestamps. Naive values are read
// as UTC wall-clock time.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// String is the wire form: the instant in UTC, without an offset.
func (t Timestamp) String() string {
	return t.UTC().Format(LocalLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", b)
	}
	parsed, err := ParseTimestamp(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
