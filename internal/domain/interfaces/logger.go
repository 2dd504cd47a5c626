// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing (no-op implementation)
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// BuildLogger writes pipeline log lines to a writer, stderr by default, so
// stage output stays interleaved with the tools' own stderr in the build log.
type BuildLogger struct {
	Out     io.Writer
	Verbose bool

	mu sync.Mutex
}

// NewBuildLogger creates a logger writing to stderr.
func NewBuildLogger(verbose bool) *BuildLogger {
	return &BuildLogger{Out: os.Stderr, Verbose: verbose}
}

// Debug logs debug-level messages; suppressed unless Verbose is set.
func (l *BuildLogger) Debug(msg string, fields ...Field) {
	if !l.Verbose {
		return
	}
	l.log("DEBUG", msg, fields)
}

// Info logs informational messages.
func (l *BuildLogger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields)
}

// Warn logs warning messages.
func (l *BuildLogger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields)
}

// Error logs error messages.
func (l *BuildLogger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields)
}

func (l *BuildLogger) log(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.Out, "%s: %s", level, msg)
	for _, f := range fields {
		fmt.Fprintf(l.Out, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(l.Out)
}
