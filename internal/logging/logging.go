// Package logging builds the structured loggers used across buildtarget.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum level to output.
	Level log.Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is prepended to every message.
	Prefix string
	// JSON switches to the JSON formatter.
	JSON bool
}

// DefaultOptions returns the default logger options.
func DefaultOptions() Options {
	return Options{
		Level:  log.InfoLevel,
		Output: os.Stderr,
		Prefix: "buildtarget",
	}
}

// New creates a logger with the given options.
func New(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(opts.Output, log.Options{
		Level:     opts.Level,
		Prefix:    opts.Prefix,
		Formatter: formatter,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel parses a level name. Unknown names map to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
