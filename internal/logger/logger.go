package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// Log is the process-wide logger. It keeps a logrus-like API over pterm printers.
var Log = &Logger{level: LevelInfo}

type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("level(%d)", int(l))
}

type Logger struct {
	mu    sync.RWMutex
	level LogLevel
}

func (l *Logger) enabled(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.level <= level
}

// Level returns the current minimum level.
func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.level
}

func (l *Logger) setLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()

	if level <= LevelDebug {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}
}

func (l *Logger) Tracef(format string, args ...interface{}) {
	if l.enabled(LevelTrace) {
		pterm.Debug.Printfln(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		pterm.Debug.Printfln(format, args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		pterm.Info.Printfln(format, args...)
	}
}

func (l *Logger) Successf(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		pterm.Success.Printfln(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(LevelWarn) {
		pterm.Warning.Printfln(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(LevelError) {
		pterm.Error.Printfln(format, args...)
	}
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
	os.Exit(1)
}

func (l *Logger) Trace(args ...interface{}) {
	if l.enabled(LevelTrace) {
		pterm.Debug.Println(args...)
	}
}

func (l *Logger) Debug(args ...interface{}) {
	if l.enabled(LevelDebug) {
		pterm.Debug.Println(args...)
	}
}

func (l *Logger) Info(args ...interface{}) {
	if l.enabled(LevelInfo) {
		pterm.Info.Println(args...)
	}
}

func (l *Logger) Warn(args ...interface{}) {
	if l.enabled(LevelWarn) {
		pterm.Warning.Println(args...)
	}
}

func (l *Logger) Error(args ...interface{}) {
	if l.enabled(LevelError) {
		pterm.Error.Println(args...)
	}
}

func (l *Logger) Fatal(args ...interface{}) {
	pterm.Error.Println(args...)
	os.Exit(1)
}

// SetLevel parses a level name (case-insensitive) and applies it to Log.
func SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}

	Log.setLevel(parsed)

	return nil
}

// ParseLevel converts a level name into a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func GetLogger() *Logger {
	return Log
}
