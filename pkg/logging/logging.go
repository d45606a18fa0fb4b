// pkg/logging/logging.go - leveled logging for silverback components.
//
// Every significant step produces one line of the form
//
//	[2006-01-02T15:04:05Z] [LEVEL] message
//
// written to the console and, when configured, appended to a log file. The
// Logger is an explicit object owned by the caller; components receive it as
// a dependency rather than reaching for package-level state, so a component
// run leaves nothing behind when it exits.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a configuration string to a LogLevel. Unknown values
// fall back to INFO.
func ParseLevel(s string) LogLevel {
	switch s {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Options configures a Logger.
type Options struct {
	Level    LogLevel
	FilePath string    // append-only log file; empty disables file output
	Console  io.Writer // defaults to os.Stderr
}

// Logger writes timestamped, leveled log lines to console and file.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	console io.Writer
	file    *os.File
}

// New creates a Logger. The log file's parent directory is created if needed.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		level:   opts.Level,
		console: opts.Console,
	}
	if l.console == nil {
		l.console = os.Stderr
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
	}

	return l, nil
}

// Discard returns a Logger that swallows all output. Intended for tests.
func Discard() *Logger {
	return &Logger{level: LevelDebug, console: io.Discard}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, level, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, line)
	if l.file != nil {
		fmt.Fprint(l.file, line)
	}
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warning logs a message at WARN level.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}
