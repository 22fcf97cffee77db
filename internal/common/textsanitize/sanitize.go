// Package textsanitize removes characters that downstream JSON consumers choke on.
package textsanitize

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// String drops invalid UTF-8, control characters other than tab, LF and CR, and Unicode
// non-characters. The replacement rune is dropped too since encoding/json substitutes it for
// invalid bytes.
func String(s string) string {
	if isClean(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isClean(s string) bool {
	for _, r := range s {
		if !keep(r) {
			return false
		}
	}
	return true
}

func keep(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20 || r == 0x7f:
		return false
	case r >= 0x80 && r < 0xa0:
		return false
	case isNonCharacter(r):
		return false
	}
	return true
}

// isNonCharacter reports U+FDD0..U+FDEF and the last two code points of every plane.
func isNonCharacter(r rune) bool {
	if r >= 0xfdd0 && r <= 0xfdef {
		return true
	}
	return r&0xfffe == 0xfffe
}

// Value walks a decoded JSON value and sanitizes every key and string.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[String(k)] = Value(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = Value(t[i])
		}
		return t
	default:
		return v
	}
}

// MarshalJSON encodes v and sanitizes every key and string of the result. HTML characters are
// not escaped.
func MarshalJSON(v any) ([]byte, error) {
	raw, err := encode(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return encode(Value(generic))
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
