// Package debuglog is a small leveled logger that writes to a file.
// The TUI owns the terminal, so nothing here ever writes to stdout or stderr.
package debuglog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string onto a level. Unknown input yields INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF", "NONE":
		return LevelOff
	default:
		return LevelInfo
	}
}

// ValidLevel reports whether s names a level ParseLogLevel understands.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "OFF", "NONE":
		return true
	}
	return false
}

var (
	mu      sync.Mutex
	level   = LevelOff
	logger  *log.Logger
	closer  io.Closer
	logPath string
)

// DefaultPath is ~/.batool/batool.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".batool", "batool.log")
}

// Setup opens (or creates) the log file and sets the active level.
// An empty path means DefaultPath. LevelOff closes any open file.
func Setup(lvl LogLevel, path string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	level = lvl
	if lvl == LevelOff {
		return nil
	}

	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	closer = f
	logPath = path
	logger = log.New(f, "batool ", log.LstdFlags|log.Lmicroseconds)
	return nil
}

// SetOutput logs to w instead of a file. Used by tests and the list command.
func SetOutput(lvl LogLevel, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	level = lvl
	if w != nil && lvl != LevelOff {
		logger = log.New(w, "batool ", 0)
	}
}

func SetLevel(lvl LogLevel) {
	mu.Lock()
	level = lvl
	mu.Unlock()
}

func GetLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// Path returns the file currently being written, if any.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	var err error
	if closer != nil {
		err = closer.Close()
	}
	closer = nil
	logger = nil
	logPath = ""
	return err
}

func enabled(lvl LogLevel) bool {
	return lvl >= level && lvl != LevelOff && logger != nil
}

func output(lvl LogLevel, suffix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(lvl) {
		return
	}
	logger.Printf("[%s] %s%s", lvl, fmt.Sprintf(format, args...), suffix)
}

func Debugf(format string, args ...any) { output(LevelDebug, "", format, args...) }
func Infof(format string, args ...any)  { output(LevelInfo, "", format, args...) }
func Warnf(format string, args ...any)  { output(LevelWarn, "", format, args...) }
func Errorf(format string, args ...any) { output(LevelError, "", format, args...) }

// FieldLogger appends key=value pairs, sorted by key, to every message.
type FieldLogger struct {
	suffix string
}

func WithFields(fields map[string]any) *FieldLogger {
	if len(fields) == 0 {
		return &FieldLogger{}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return &FieldLogger{suffix: " [" + strings.Join(parts, " ") + "]"}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	output(LevelDebug, fl.suffix, format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	output(LevelInfo, fl.suffix, format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	output(LevelWarn, fl.suffix, format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	output(LevelError, fl.suffix, format, args...)
}
