// Package logger provides structured logging for postmap.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	mu            sync.RWMutex
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Options configures the logger.
type Options struct {
	Debug  bool         // Enable debug level logging
	Quiet  bool         // Only show errors
	Level  string       // Explicit level name; overrides Debug and Quiet when set
	JSON   bool         // Output as JSON
	Output io.Writer    // Output destination (default: stderr)
	Logger *slog.Logger // Custom logger (overrides all other options)
}

// Init initializes the logger with the specified options.
func Init(opts Options) error {
	if opts.Logger != nil {
		SetLogger(opts.Logger)
		return nil
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}
	if opts.Level != "" {
		parsed, err := ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		level = parsed
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	SetLogger(slog.New(handler))
	return nil
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

// SetLogger replaces the package logger, e.g. to share an application's handler.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { Logger().Info(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { Logger().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger { return Logger().With(args...) }
