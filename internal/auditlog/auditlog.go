// Package auditlog writes the human readable decision log: one timestamped
// line per event, appended to a file that nothing in duowatch reads back.
package auditlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var errNoPath = errors.New("no log file path set")

const (
	defaultDir  = ".local/logs"
	defaultFile = "asus-multidisplay-extension.log"

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Logger appends to a single file. If the file cannot be written, the line
// goes to the fallback writer instead. Log never fails and never panics.
type Logger struct {
	path     string
	fallback io.Writer
	now      func() time.Time
	mu       sync.Mutex
}

type Option func(*Logger)

// WithFallback sets where lines go when the file is unavailable (default stderr).
func WithFallback(w io.Writer) Option {
	return func(l *Logger) {
		l.fallback = w
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

func New(path string, opts ...Option) *Logger {
	l := &Logger{
		path:     path,
		fallback: os.Stderr,
		now:      time.Now,
	}

	for _, o := range opts {
		o(l)
	}

	return l
}

// DefaultPath returns the log location used when none is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}

	return filepath.Join(home, defaultDir, defaultFile), nil
}

func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", l.now().UTC().Format(timeLayout), msg)
	if err := l.appendLine(line); err != nil {
		slog.Warn("audit log: writing to file failed; using fallback", "path", l.path, "error", err)
		if l.fallback != nil {
			_, _ = fmt.Fprintf(l.fallback, "duowatch: %s\n", msg)
		}
	}
}

func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

func (l *Logger) appendLine(line string) error {
	if l.path == "" {
		return errNoPath
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("checking and/or creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing to log file: %w", err)
	}

	return f.Close()
}
