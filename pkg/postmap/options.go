package postmap

import (
	"runtime"

	"github.com/jmylchreest/postmap/pkg/extractor"
)

// Config holds Mapper configuration.
type Config struct {
	// Format is used by Run when no format is given.
	Format Format

	// Concurrency bounds ProcessAllParallel. Values below 1 mean GOMAXPROCS.
	Concurrency int

	// Registry supplies extractor functions. Defaults to the built-ins.
	Registry *extractor.Registry
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Format:      FormatText,
		Concurrency: runtime.GOMAXPROCS(0),
	}
}

// Option configures a Mapper.
type Option func(*Config)

// WithFormat sets the default output format.
func WithFormat(f Format) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithConcurrency sets the number of records processed in parallel.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.Concurrency = n
	}
}

// WithRegistry sets the extractor function registry.
func WithRegistry(r *extractor.Registry) Option {
	return func(c *Config) {
		c.Registry = r
	}
}
