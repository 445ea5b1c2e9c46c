// Package postmap provides the public API for mapping posts through a
// plugin into rendered text or JSON.
package postmap

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/postmap/internal/logger"
	"github.com/jmylchreest/postmap/internal/output"
	"github.com/jmylchreest/postmap/pkg/extractor"
	"github.com/jmylchreest/postmap/pkg/plugin"
	"github.com/jmylchreest/postmap/pkg/record"
)

// Format selects the rendered representation.
type Format = output.Format

const (
	FormatText = output.FormatText
	FormatJSON = output.FormatJSON
)

// Re-exported error sentinels; use errors.Is to match them.
var (
	ErrMissingKey           = record.ErrMissingKey
	ErrUnknownExtractor     = extractor.ErrUnknownExtractor
	ErrRequiredFieldMissing = extractor.ErrRequiredFieldMissing
	ErrUnsupportedFormat    = output.ErrUnsupportedFormat
)

// Version returns the module version of the postmap library, or
// "(unknown)" without build info.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown)"
}

// Mapper extracts and renders posts for one plugin.
type Mapper struct {
	extractor *extractor.Extractor
	config    Config
}

// New creates a Mapper for the plugin.
func New(p plugin.Plugin, opts ...Option) (*Mapper, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}

	var extOpts []extractor.Option
	if cfg.Registry != nil {
		extOpts = append(extOpts, extractor.WithRegistry(cfg.Registry))
	}
	ext, err := extractor.New(p, extOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plugin %s: %w", p.PluginName, err)
	}

	return &Mapper{extractor: ext, config: cfg}, nil
}

// NewFromFile loads a JSON or YAML plugin and creates a Mapper for it.
func NewFromFile(path string, opts ...Option) (*Mapper, error) {
	p, err := plugin.FromFile(path)
	if err != nil {
		return nil, err
	}
	return New(p, opts...)
}

// Plugin returns the plugin the Mapper was built from.
func (m *Mapper) Plugin() plugin.Plugin {
	return m.extractor.Plugin()
}

// Extractor returns the underlying extractor.
func (m *Mapper) Extractor() *extractor.Extractor {
	return m.extractor
}

// Register adds or replaces an extractor function. Register before
// processing starts.
func (m *Mapper) Register(name string, fn func(record.Record) (any, error)) error {
	return m.extractor.Registry().RegisterFunc(name, fn)
}

// Extract maps a single post to an ordered result.
func (m *Mapper) Extract(rec record.Record) (*extractor.Result, error) {
	return m.extractor.Extract(rec)
}

// Process extracts and renders a single post.
func (m *Mapper) Process(rec record.Record, format Format) (string, error) {
	res, err := m.extractor.Extract(rec)
	if err != nil {
		return "", err
	}
	return output.Render(res, format)
}

// ProcessAll renders every post in input order. The first failing post
// aborts the batch.
func (m *Mapper) ProcessAll(records []record.Record, format Format) ([]string, error) {
	format, err := output.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(records))
	for i, rec := range records {
		s, err := m.Process(rec, format)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, s)
	}
	logger.Debug("batch processed", "plugin", m.Plugin().PluginName, "records", len(records))
	return out, nil
}

// ProcessAllParallel is ProcessAll spread over Config.Concurrency workers.
// Output order matches input order; the first error cancels the rest.
func (m *Mapper) ProcessAllParallel(ctx context.Context, records []record.Record, format Format) ([]string, error) {
	format, err := output.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	out := make([]string, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := m.Process(rec, format)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("batch processed", "plugin", m.Plugin().PluginName, "records", len(records), "concurrency", m.config.Concurrency)
	return out, nil
}

// Run is ProcessAll using the configured default format.
func (m *Mapper) Run(records []record.Record) ([]string, error) {
	return m.ProcessAll(records, m.config.Format)
}
