package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/postmap/internal/input"
	"github.com/jmylchreest/postmap/internal/logger"
	"github.com/jmylchreest/postmap/internal/output"
	"github.com/jmylchreest/postmap/pkg/postmap"
	"github.com/jmylchreest/postmap/pkg/record"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract fields from posts using a plugin",
	Long: `Extract fields from posts and render them as text or JSON.

Posts are read as a JSON array or JSON Lines from --input (default stdin).
Each post produces one rendered result, in input order. By default the
first post missing a required field aborts the run; --skip-invalid logs
and skips such posts instead.

Examples:
  postmap extract -p plugin.json -i posts.json
  cat posts.jsonl | postmap extract -p plugin.yaml -f json
  postmap extract -p plugin.json -i posts.json -o out.jsonl -f json -c 8`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("plugin", "p", "", "path to plugin file, JSON or YAML (required)")
	flags.StringP("input", "i", "-", "posts file, JSON array or JSON Lines (- for stdin)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("format", "f", string(output.FormatText), "output format: text, json")
	flags.IntP("concurrency", "c", 1, "posts processed in parallel")
	flags.String("max-input-size", "64MB", "max input size (e.g., 512KB, 1GB, 0=unlimited)")
	flags.Bool("skip-invalid", false, "skip posts missing required fields instead of aborting")

	_ = extractCmd.MarkFlagRequired("plugin")

	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("max_input_size", flags.Lookup("max-input-size"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	start := time.Now()

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		logger.Error("invalid format", "error", err)
		return err
	}

	maxInputSize, err := parseSize(viper.GetString("max_input_size"))
	if err != nil {
		logger.Error("invalid max-input-size", "value", viper.GetString("max_input_size"), "error", err)
		return err
	}

	concurrency := viper.GetInt("concurrency")
	pluginPath, _ := cmd.Flags().GetString("plugin")
	m, err := loadMapper(pluginPath, postmap.WithFormat(format), postmap.WithConcurrency(concurrency))
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	records, err := readRecords(cmd, inputPath, maxInputSize)
	if err != nil {
		logger.Error("failed to read posts", "input", inputPath, "error", err)
		return err
	}
	logger.Debug("posts loaded", "input", inputPath, "count", len(records))

	out := cmd.OutOrStdout()
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			logger.Error("failed to create output file", "path", outputPath, "error", err)
			return err
		}
		defer f.Close()
		out = f
	}

	w, err := output.NewWriter(out, format)
	if err != nil {
		return err
	}

	skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")
	written, skipped := 0, 0
	switch {
	case skipInvalid:
		for i, rec := range records {
			res, err := m.Extract(rec)
			if errors.Is(err, postmap.ErrRequiredFieldMissing) {
				logger.Warn("skipping post", "index", i, "error", err)
				skipped++
				continue
			}
			if err != nil {
				logger.Error("extraction failed", "index", i, "error", err)
				return err
			}
			if err := w.Write(res); err != nil {
				return err
			}
			written++
		}

	default:
		var rendered []string
		if concurrency > 1 {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			rendered, err = m.ProcessAllParallel(ctx, records, format)
			cancel()
		} else {
			rendered, err = m.ProcessAll(records, format)
		}
		if err != nil {
			logger.Error("extraction failed", "error", err)
			return err
		}
		for _, s := range rendered {
			if err := w.WriteRendered(s); err != nil {
				return err
			}
		}
		written = len(rendered)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("extraction complete",
		"plugin", m.Plugin().PluginName,
		"written", humanize.Comma(int64(written)),
		"skipped", skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// loadMapper loads the plugin and fails early on calls to unregistered functions.
func loadMapper(path string, opts ...postmap.Option) (*postmap.Mapper, error) {
	logger.Debug("loading plugin", "path", path)
	m, err := postmap.NewFromFile(path, opts...)
	if err != nil {
		logger.Error("failed to load plugin", "path", path, "error", err)
		return nil, err
	}
	if err := m.Extractor().Check(); err != nil {
		logger.Error("plugin references unknown extractor functions", "path", path, "error", err)
		return nil, err
	}
	p := m.Plugin()
	logger.Debug("plugin loaded", "name", p.PluginName, "version", p.Version, "fields", len(p.Fields))
	return m, nil
}

func readRecords(cmd *cobra.Command, path string, maxBytes uint64) ([]record.Record, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return input.Read(r, maxBytes)
}

// parseSize parses a human readable byte size; empty or "0" means unlimited.
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}
