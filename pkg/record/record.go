// Package record defines the untyped post records consumed by postmap and
// the dotted key-path resolver used to address values inside them.
package record

import (
	"errors"
	"fmt"
	"strings"
)

// Record is a post: a nested mapping with JSON-like values
// (nil, string, numbers, bool, []any and map[string]any).
type Record map[string]any

// ErrMissingKey is matched by every *MissingKeyError.
var ErrMissingKey = errors.New("missing key")

// MissingKeyError reports the first segment of a key path that could not be resolved.
type MissingKeyError struct {
	Path    string
	Segment string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing key %q in path %q", e.Segment, e.Path)
}

// Is lets errors.Is(err, ErrMissingKey) match.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// Resolve walks the dot-separated path through rec.
//
// Absent values yield nil. With strict set, absence instead returns a
// *MissingKeyError naming the first unresolved segment. A key that is
// present with a nil value resolves to nil in both modes; a nil
// intermediate value makes the following segment missing.
func Resolve(rec Record, path string, strict bool) (any, error) {
	var current any = map[string]any(rec)
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return absent(path, segment, strict)
		}
		v, ok := m[segment]
		if !ok {
			return absent(path, segment, strict)
		}
		current = v
	}
	return current, nil
}

// Lookup is Resolve with presence reported separately, so callers can tell
// a missing key from a key holding nil.
func Lookup(rec Record, path string) (any, bool) {
	var current any = map[string]any(rec)
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		if current, ok = m[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

// String resolves path non-strictly and returns it as a string, or "" when
// the value is absent or not a string.
func String(rec Record, path string) string {
	v, _ := Resolve(rec, path, false)
	s, _ := v.(string)
	return s
}

func absent(path, segment string, strict bool) (any, error) {
	if strict {
		return nil, &MissingKeyError{Path: path, Segment: segment}
	}
	return nil, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	default:
		return nil, false
	}
}
