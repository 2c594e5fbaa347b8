// Package logging builds the process logger: a console handler plus optional
// log files, combined.log for every record and error.log for errors only.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/afero"
)

const (
	// CombinedLogFile receives every record at or above the configured level.
	CombinedLogFile = "combined.log"

	// ErrorLogFile receives error records only.
	ErrorLogFile = "error.log"

	FormatJSON = "json"
	FormatText = "text"
)

// Options configures Setup.
type Options struct {
	// Level is the minimum level for the console and combined.log.
	Level slog.Level

	// Format of the console handler: "json" (default) or "text". Files are always JSON.
	Format string

	// Dir holds the log files. Empty disables file logging.
	Dir string

	// FS is where log files are created. Nil uses the OS filesystem.
	FS afero.Fs

	// Console is the console destination. Nil uses os.Stderr.
	Console io.Writer
}

// ParseLevel parses "debug", "info", "warn" or "error" (case insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// New builds a logger from opts. The returned close function flushes and
// closes any log files and must be called before exit.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var consoleHandler slog.Handler
	switch opts.Format {
	case "", FormatJSON:
		consoleHandler = slog.NewJSONHandler(console, handlerOpts)
	case FormatText:
		consoleHandler = slog.NewTextHandler(console, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q, must be %q or %q", opts.Format, FormatJSON, FormatText)
	}

	if opts.Dir == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if err := fs.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
	}

	combined, err := openLogFile(fs, filepath.Join(opts.Dir, CombinedLogFile))
	if err != nil {
		return nil, nil, err
	}
	errorLog, err := openLogFile(fs, filepath.Join(opts.Dir, ErrorLogFile))
	if err != nil {
		_ = combined.Close()
		return nil, nil, err
	}

	handler := slogmulti.Fanout(
		consoleHandler,
		slog.NewJSONHandler(combined, handlerOpts),
		slog.NewJSONHandler(errorLog, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	closeFn := func() error {
		return errors.Join(combined.Close(), errorLog.Close())
	}

	return slog.New(handler), closeFn, nil
}

func openLogFile(fs afero.Fs, path string) (afero.File, error) {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
