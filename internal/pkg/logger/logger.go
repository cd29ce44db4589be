// Package logger implements ports.Logger on top of charmbracelet/log.
package logger

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/omnichat/omnichat/internal/ports"
)

// CharmLogger routes structured log lines to stderr so they never interleave
// with the chat transcript on stdout.
type CharmLogger struct {
	inner *log.Logger
}

// New creates a CharmLogger. verbose enables debug output.
func New(verbose bool) *CharmLogger {
	inner := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if verbose {
		inner.SetLevel(log.DebugLevel)
	} else {
		inner.SetLevel(log.WarnLevel)
	}
	return &CharmLogger{inner: inner}
}

func (l *CharmLogger) Debug(msg string, fields map[string]interface{}) {
	l.inner.Debug(msg, flatten(fields)...)
}

func (l *CharmLogger) Info(msg string, fields map[string]interface{}) {
	l.inner.Info(msg, flatten(fields)...)
}

func (l *CharmLogger) Warn(msg string, fields map[string]interface{}) {
	l.inner.Warn(msg, flatten(fields)...)
}

func (l *CharmLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := flatten(fields)
	if err != nil {
		args = append(args, "error", err)
	}
	l.inner.Error(msg, args...)
}

func flatten(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}
	return args
}

var _ ports.Logger = (*CharmLogger)(nil)
