// Package logger writes the nexhax debug log.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a log line.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var levelStyles = map[Level]lipgloss.Style{
	DEBUG: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	INFO:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	WARN:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	ERROR: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var (
	instance *Logger
	once     sync.Once
)

// Logger writes leveled lines to a file and, in debug mode, to stderr.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	logger  *log.Logger
	console io.Writer
	level   Level
	path    string
}

// Initialize sets up the process-wide logger. Only the first call has an
// effect.
func Initialize(debug bool) error {
	once.Do(func() {
		instance = &Logger{level: INFO}
		if debug {
			instance.level = DEBUG
			instance.console = os.Stderr
		}
		if err := instance.openFile(DefaultPath()); err != nil {
			instance.openFallback()
		}
	})
	return nil
}

// New returns a Logger writing to w. It is used by tests and by callers that
// want a private log.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(w, "", 0),
		level:  level,
	}
}

// DefaultPath is ~/.nexhax/nexhax.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nexhax.log")
	}
	return filepath.Join(home, ".nexhax", "nexhax.log")
}

func (l *Logger) openFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	l.file = f
	l.logger = log.New(f, "", 0)
	l.path = path
	return nil
}

// openFallback tries the temp dir, then stderr.
func (l *Logger) openFallback() {
	tmp := filepath.Join(os.TempDir(), "nexhax.log")
	if err := l.openFile(tmp); err == nil {
		l.Warn("using fallback log path: %s", tmp)
		return
	}
	l.file = nil
	l.logger = log.New(os.Stderr, "", 0)
	l.console = nil
	l.path = ""
}

// Get returns the process logger, initializing it on first use.
func Get() *Logger {
	_ = Initialize(false)
	return instance
}

// Path returns the file the process logger writes to, or "" for stderr.
func Path() string {
	return Get().path
}

// Close flushes and closes the log file.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil || l.logger == nil || level < l.level {
		return
	}

	_, file, line, _ := runtime.Caller(3)
	file = filepath.Base(file)

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05")

	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Printf("%s [%s] %s:%d - %s", ts, level, file, line, msg)
	if l.console != nil {
		tag := levelStyles[level].Render(fmt.Sprintf("%-5s", level))
		fmt.Fprintf(l.console, "%s %s %s\n", ts, tag, msg)
	}
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.log(level, format, args...)
}

// Debug logs at DEBUG.
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }

// Info logs at INFO.
func (l *Logger) Info(format string, args ...interface{}) { l.logf(INFO, format, args...) }

// Warn logs at WARN.
func (l *Logger) Warn(format string, args ...interface{}) { l.logf(WARN, format, args...) }

// Error logs at ERROR.
func (l *Logger) Error(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

func Debug(format string, args ...interface{}) { Get().logf(DEBUG, format, args...) }

func Info(format string, args ...interface{}) { Get().logf(INFO, format, args...) }

func Warn(format string, args ...interface{}) { Get().logf(WARN, format, args...) }

func Error(format string, args ...interface{}) { Get().logf(ERROR, format, args...) }
