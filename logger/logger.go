// Package logger provides a small prefixed, colored, leveled logger used by
// every long-running component of the application.
package logger

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger defines the leveled logging operations components depend on.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// ErrNilWriter is returned when a logger is created without an output writer.
var ErrNilWriter = errors.New("logger output writer is nil")

const colorReset = "\033[0m"

// ColorLogger writes prefixed, ANSI-colored log lines to a writer.
type ColorLogger struct {
	prefix string
	color  string
	out    io.Writer
	mu     sync.Mutex
}

// New creates a ColorLogger with the given prefix and ANSI color code.
// An empty color disables coloring.
func New(prefix, color string, out io.Writer) (*ColorLogger, error) {
	if out == nil {
		return nil, ErrNilWriter
	}
	return &ColorLogger{
		prefix: prefix,
		color:  color,
		out:    out,
	}, nil
}

// Info logs an informational message.
func (l *ColorLogger) Info(msg string) {
	l.write("INFO", msg)
}

// Warning logs a warning message.
func (l *ColorLogger) Warning(msg string) {
	l.write("WARNING", msg)
}

// Error logs an error message.
func (l *ColorLogger) Error(msg string) {
	l.write("ERROR", msg)
}

func (l *ColorLogger) write(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reset := ""
	if l.color != "" {
		reset = colorReset
	}
	fmt.Fprintf(l.out, "%s[%s] [%s] %s %s%s\n", l.color, l.prefix, level, time.Now().Format(time.RFC3339), msg, reset)
}
