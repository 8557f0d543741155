// Package logger builds component loggers on top of charmbracelet/log's
// global settings.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a stderr logger with the given prefix that follows the global
// log level.
func New(prefix string) *log.Logger {
	return NewTo(os.Stderr, prefix)
}

// NewTo is New writing to w.
func NewTo(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() <= log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a logger with explicit settings.
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller, timestamp bool, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: timestamp,
		Formatter:       formatter,
	})
}
