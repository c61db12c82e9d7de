package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects the logger's output shape. Zero values fall back to info
// level, logfmt and stderr.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

func SetupLogger(opts Options) *slog.Logger {
	var formatter log.Formatter
	switch opts.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	level := log.InfoLevel
	switch opts.Level {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handler := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "plresolve",
		Formatter:       formatter,
		Level:           level,
	})

	return slog.New(handler)
}

// Discard returns a logger that drops everything, for tests and library use
// without a configured backend.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
