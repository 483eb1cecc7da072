// Package logger provides process-wide logging for solrsync.
// Debug and info messages are only emitted in verbose mode (--verbose);
// warnings and errors are always written. Output goes to stderr so it
// never mixes with command output.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.RWMutex
	log = newLogrus(os.Stderr)
)

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// SetLevel overrides the level derived from verbose mode.
// Unknown level names are ignored.
func SetLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(parsed)
}

// SetFormat selects "json" or "text" output.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debugf(format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debugf("=== %s ===", name)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Errorf(format, args...)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields map[string]any) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return log.WithFields(logrus.Fields(fields))
}
