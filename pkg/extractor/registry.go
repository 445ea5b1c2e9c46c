package extractor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jmylchreest/postmap/internal/logger"
	"github.com/jmylchreest/postmap/pkg/expr"
	"github.com/jmylchreest/postmap/pkg/record"
)

// Function derives a value from a whole post. Returning nil means "no
// value" and lets the next alternative of the fallback chain run.
type Function interface {
	Extract(rec record.Record) (any, error)
}

// Func adapts a plain function to the Function interface.
type Func func(rec record.Record) (any, error)

// Extract calls f(rec).
func (f Func) Extract(rec record.Record) (any, error) {
	return f(rec)
}

// Registry maps extractor function names to implementations. It is safe
// for concurrent use, though functions are expected to be registered
// before extraction starts.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry creates a registry populated with the built-in functions.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for name, fn := range builtins {
		r.functions[name] = fn
	}
	return r
}

// NewEmptyRegistry creates a registry without any built-in functions.
func NewEmptyRegistry() *Registry {
	return &Registry{functions: make(map[string]Function)}
}

// Register installs fn under name, replacing any existing registration.
func (r *Registry) Register(name string, fn Function) error {
	if !expr.IsIdentifier(name) {
		return fmt.Errorf("invalid extractor function name: %q", name)
	}
	if fn == nil {
		return fmt.Errorf("extractor function %q is nil", name)
	}

	r.mu.Lock()
	_, replaced := r.functions[name]
	r.functions[name] = fn
	r.mu.Unlock()

	if replaced {
		logger.Debug("replaced extractor function", "name", name)
	} else {
		logger.Debug("registered extractor function", "name", name)
	}
	return nil
}

// RegisterFunc is Register for a plain function.
func (r *Registry) RegisterFunc(name string, fn func(record.Record) (any, error)) error {
	if fn == nil {
		return fmt.Errorf("extractor function %q is nil", name)
	}
	return r.Register(name, Func(fn))
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}
