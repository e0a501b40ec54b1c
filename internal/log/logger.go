// Package log builds the slog loggers used by the command-line tools:
// level and format selection, credential redaction and an optional
// size-rotated log file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures NewLogger.
type Options struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	// Empty means info.
	Level string

	// Format is FormatText (default) or FormatJSON.
	Format string

	// Writer receives log output when File is empty. Nil means stderr.
	Writer io.Writer

	// File, when set, sends output to a rotating file instead of Writer.
	File       string
	MaxSize    int64
	MaxBackups int
}

// ParseLevel maps a level name to a slog.Level. "warning" is accepted as
// an alias of "warn".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates a redacting logger. The returned closer releases the
// log file, if any, and must be called when logging is done.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stderr
	}
	if opts.File != "" {
		maxBackups := opts.MaxBackups
		if maxBackups == 0 {
			maxBackups = DefaultMaxBackups
		}
		rf, err := NewRotatingFile(opts.File, opts.MaxSize, maxBackups)
		if err != nil {
			return nil, nil, err
		}
		w, closer = rf, rf
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		h = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, handlerOpts)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return slog.New(NewRedactingHandler(h)), closer, nil
}
