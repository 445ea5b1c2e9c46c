// Package extractor evaluates plugin fields against posts.
//
// Each field's "||" fallback chain is parsed once when the Extractor is
// built. Extraction walks the fields in declaration order, takes the first
// alternative that yields a non-nil value, falls back to the field default,
// and fails fast on the first required field left without a value.
package extractor

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/postmap/internal/logger"
	"github.com/jmylchreest/postmap/pkg/expr"
	"github.com/jmylchreest/postmap/pkg/plugin"
	"github.com/jmylchreest/postmap/pkg/record"
)

// Extractor maps posts to results according to a plugin.
type Extractor struct {
	plugin   plugin.Plugin
	fields   []compiledField
	registry *Registry
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry sets the function registry. The default is NewRegistry().
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) {
		e.registry = r
	}
}

// New compiles the plugin's extractor expressions.
func New(p plugin.Plugin, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		plugin: p,
		fields: make([]compiledField, 0, len(p.Fields)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}

	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.All() {
		if f.Name == "" {
			return nil, errors.New("plugin field has no name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate plugin field %q", f.Name)
		}
		seen[f.Name] = true

		alts, err := expr.Parse(f.Extractor)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		e.fields = append(e.fields, compiledField{Field: f, alternatives: alts})
	}

	logger.Debug("plugin compiled", "plugin", p.PluginName, "version", p.Version, "fields", len(e.fields))
	return e, nil
}

// Plugin returns the plugin the extractor was built from.
func (e *Extractor) Plugin() plugin.Plugin {
	return e.plugin
}

// Registry returns the function registry used during extraction.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Register adds or replaces an extractor function.
func (e *Extractor) Register(name string, fn Function) error {
	return e.registry.Register(name, fn)
}

// Check returns an *UnknownExtractorError for every call to a function
// that is not currently registered.
func (e *Extractor) Check() error {
	var errs []error
	for _, f := range e.fields {
		for _, alt := range f.alternatives {
			if call, ok := alt.(expr.Call); ok && !e.registry.Has(call.Name) {
				errs = append(errs, &UnknownExtractorError{Name: call.Name, Field: f.Name})
			}
		}
	}
	return errors.Join(errs...)
}

// Extract evaluates every field against rec. No partial result is returned
// on error.
func (e *Extractor) Extract(rec record.Record) (*Result, error) {
	result := &Result{entries: make([]Entry, 0, len(e.fields))}
	for _, f := range e.fields {
		value, cause, err := f.evaluate(rec, e.registry)
		if err != nil {
			return nil, err
		}
		if value == nil && f.Required {
			return nil, &RequiredFieldMissingError{Field: f.Name, Cause: cause}
		}
		result.add(f.Name, value)
	}
	return result, nil
}

// Evaluate returns the value of a single field without the required check.
func (e *Extractor) Evaluate(rec record.Record, field string) (any, error) {
	for _, f := range e.fields {
		if f.Name == field {
			value, _, err := f.evaluate(rec, e.registry)
			return value, err
		}
	}
	return nil, fmt.Errorf("plugin %s has no field %q", e.plugin.PluginName, field)
}
