package extractor

import (
	"fmt"
	"slices"

	"github.com/jmylchreest/postmap/pkg/expr"
	"github.com/jmylchreest/postmap/pkg/plugin"
	"github.com/jmylchreest/postmap/pkg/record"
)

// compiledField is a plugin field with its fallback chain parsed once at load.
type compiledField struct {
	plugin.Field
	alternatives []expr.Alternative
}

// strict reports whether path lookups must fail loudly: a required field
// sourced from a single path.
func (f compiledField) strict() bool {
	return f.Required && len(f.alternatives) == 1
}

// evaluate tries each alternative in order and returns the first non-nil
// value, or the field default. cause carries a strict lookup miss so the
// caller can attach it to a required-field failure; err is fatal.
func (f compiledField) evaluate(rec record.Record, reg *Registry) (value any, cause error, err error) {
	for _, alt := range f.alternatives {
		switch a := alt.(type) {
		case expr.PathRef:
			v, lookupErr := record.Resolve(rec, a.Path, f.strict())
			if lookupErr != nil {
				cause = lookupErr
				continue
			}
			if v != nil {
				return v, nil, nil
			}

		case expr.Call:
			fn, ok := reg.Lookup(a.Name)
			if !ok {
				return nil, nil, &UnknownExtractorError{Name: a.Name, Field: f.Name}
			}
			v, callErr := fn.Extract(rec)
			if callErr != nil {
				return nil, nil, fmt.Errorf("field %q: extractor function %s failed: %w", f.Name, a.Name, callErr)
			}
			if v != nil {
				return v, nil, nil
			}
		}
	}
	return cloneValue(f.Default), cause, nil
}

// cloneValue deep-copies list and mapping values so results never share a
// field default.
func cloneValue(v any) any {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	case record.Record:
		return record.Record(cloneValue(map[string]any(v)).(map[string]any))
	default:
		return v
	}
}
