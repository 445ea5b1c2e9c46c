package output

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/postmap/pkg/extractor"
)

// Render turns a result into the given format.
//
// text: one "key: value" line per field in field order, no trailing newline.
// json: a compact object with keys in field order and non-ASCII kept literal.
//
// Format names are matched case-insensitively. A nil result renders as an
// empty one.
func Render(res *extractor.Result, format Format) (string, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return "", err
	}
	if res == nil {
		res = extractor.NewResult()
	}
	switch f {
	case FormatText:
		return renderText(res), nil
	case FormatJSON:
		data, err := res.MarshalJSON()
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data), nil
	default:
		return "", &UnsupportedFormatError{Format: string(format), Supported: SupportedFormats}
	}
}

func renderText(res *extractor.Result) string {
	var sb strings.Builder
	for i, e := range res.Entries() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Name)
		sb.WriteString(": ")
		sb.WriteString(FormatValue(e.Value))
	}
	return sb.String()
}

// FormatValue returns the text form of a value: strings verbatim, nil as
// "null", everything else as compact JSON.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	data, err := extractor.MarshalValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
