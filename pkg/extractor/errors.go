package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownExtractor is matched by every *UnknownExtractorError.
	ErrUnknownExtractor = errors.New("unknown extractor function")

	// ErrRequiredFieldMissing is matched by every *RequiredFieldMissingError.
	ErrRequiredFieldMissing = errors.New("required field missing")
)

// UnknownExtractorError is returned when an expression calls a function
// that is not registered. It points at a plugin/code mismatch rather than
// bad post data.
type UnknownExtractorError struct {
	Name  string
	Field string
}

func (e *UnknownExtractorError) Error() string {
	return fmt.Sprintf("unknown extractor function %q referenced by field %q", e.Name, e.Field)
}

// Is lets errors.Is(err, ErrUnknownExtractor) match.
func (e *UnknownExtractorError) Is(target error) bool {
	return target == ErrUnknownExtractor
}

// RequiredFieldMissingError is returned when a required field resolves to
// nil after every alternative and the default have been tried.
type RequiredFieldMissingError struct {
	Field string
	Cause error // *record.MissingKeyError from a strict lookup, if any
}

func (e *RequiredFieldMissingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("required field %q not found in post: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("required field %q not found in post", e.Field)
}

// Is lets errors.Is(err, ErrRequiredFieldMissing) match.
func (e *RequiredFieldMissingError) Is(target error) bool {
	return target == ErrRequiredFieldMissing
}

func (e *RequiredFieldMissingError) Unwrap() error {
	return e.Cause
}
