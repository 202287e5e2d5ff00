// Package logging builds the structured logger shared by the store,
// the views and the command.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects the logger's level, output format and destination.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json, logfmt
	File   string // append to this file instead of the fallback writer
}

// New returns a logger writing to opts.File, or to fallback when no file
// is configured. The returned close func releases the file, if any.
func New(opts Options, fallback io.Writer) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, nil, err
	}

	w := fallback
	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          "todo",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return logger, closeFn, nil
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func parseFormat(s string) (log.Formatter, error) {
	switch s {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("invalid log format %q", s)
	}
}
