package dto

import (
	"bytes"
	"encoding/json"
)

// Text accepts a JSON string or number and keeps its literal text.
// Payment fields arrive either way and the exact digits feed the request hash.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Literal is a Text that also remembers whether it arrived as a JSON number.
type Literal struct {
	Text   Text
	Number bool
}

func (l *Literal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if err := l.Text.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	l.Number = len(trimmed) > 0 && trimmed[0] != '"' && !bytes.Equal(trimmed, []byte("null"))
	return nil
}
