package extractor

import (
	"bytes"
	"encoding/json"
)

// Entry is a single extracted field value.
type Entry struct {
	Name  string
	Value any
}

// Result holds the values extracted from one post, in plugin field order.
type Result struct {
	entries []Entry
}

// NewResult builds a result from entries, keeping their order.
func NewResult(entries ...Entry) *Result {
	return &Result{entries: entries}
}

func (r *Result) add(name string, value any) {
	r.entries = append(r.entries, Entry{Name: name, Value: value})
}

// Len returns the number of fields.
func (r *Result) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Keys returns the field names in order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Name
	}
	return keys
}

// Get returns the value extracted for name.
func (r *Result) Get(name string) (any, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Map returns the result as an unordered map.
func (r *Result) Map() map[string]any {
	m := make(map[string]any, len(r.entries))
	for _, e := range r.entries {
		m[e.Name] = e.Value
	}
	return m
}

// MarshalJSON encodes the result as a JSON object with keys in field order.
// HTML characters and non-ASCII text, U+2028 and U+2029 included, are not
// escaped.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := MarshalValue(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := MarshalValue(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue encodes v as compact JSON without escaping HTML characters
// or the line and paragraph separators encoding/json always escapes.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unescapeSeparators rewrites \u2028 and \u2029 escapes back to the literal
// characters. An escape preceded by an odd run of backslashes is an escaped
// backslash followed by text and is left alone.
func unescapeSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" && (data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Copy the escape pair as is so an escaped backslash is never
		// mistaken for the start of a separator escape.
		out = append(out, data[i])
		if i+1 < len(data) {
			i++
			out = append(out, data[i])
		}
	}
	return out
}
