// Package diagnostics provides the single structured diagnostic channel
// shared by every pipeline stage. Fatal input-IO and parse failures are
// still returned as errors; this channel carries the non-fatal warnings
// the spec requires to never abort a batch (malformed ELF files, missing
// policy, patch-nonexistent-namespace, typo hints).
package diagnostics

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Stage names used as the "stage" field on every entry.
const (
	StageExtract = "extract"
	StageDiff    = "diff"
	StageScore   = "score"
	StageShim    = "shim"
	StageLinker  = "linker"
)

// Logger is a thin wrapper around a logrus.Entry scoped to one stage.
type Logger struct {
	entry *logrus.Entry
}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: false})
	return l
}

// For returns a Logger scoped to the given stage.
func For(stage string) *Logger {
	return &Logger{entry: base.WithField("stage", stage)}
}

// With returns a copy of the logger with additional fields attached.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// Warn logs a non-fatal condition that does not abort the batch.
func (l *Logger) Warn(msg string) {
	l.entry.Warn(msg)
}

// Warnf logs a formatted non-fatal condition.
func (l *Logger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Info logs an informational message (e.g. cache statistics).
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}
