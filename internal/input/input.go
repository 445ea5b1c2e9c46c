// Package input reads post records from JSON documents.
package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"github.com/jmylchreest/postmap/pkg/record"
)

// ErrInputTooLarge is returned when the input exceeds the configured limit.
var ErrInputTooLarge = errors.New("input too large")

// Read parses records from r. The input is either a JSON array of objects
// or JSON Lines (one object per line; blank lines are skipped). maxBytes
// limits the input size; 0 means unlimited. Numbers are kept as
// json.Number so integers beyond float64 precision survive.
func Read(r io.Reader, maxBytes uint64) ([]record.Record, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, int64(maxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if maxBytes > 0 && uint64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: exceeds %s", ErrInputTooLarge, humanize.Bytes(maxBytes))
	}
	return Parse(data)
}

// Parse parses records from an in-memory document.
func Parse(data []byte) ([]record.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		return parseArray(trimmed)
	}
	return parseLines(trimmed)
}

func parseArray(data []byte) ([]record.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON array")
	}

	var (
		records []record.Record
		err     error
	)
	gjson.ParseBytes(data).ForEach(func(_, value gjson.Result) bool {
		var rec record.Record
		rec, err = toRecord(value)
		if err != nil {
			err = fmt.Errorf("record %d: %w", len(records), err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func parseLines(data []byte) ([]record.Record, error) {
	var records []record.Record
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("line %d: invalid JSON", i+1)
		}
		rec, err := toRecord(gjson.ParseBytes(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(value gjson.Result) (record.Record, error) {
	if !value.IsObject() {
		return nil, fmt.Errorf("expected JSON object, got %s", value.Type)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(value.Raw)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return record.Record(m), nil
}
