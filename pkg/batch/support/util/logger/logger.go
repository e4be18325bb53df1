// Package logger provides the leveled logger used by thermolog jobs and commands.
// It wraps the standard `log` package and drops messages below the configured level.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel is a type representing the logging level.
type LogLevel int

const (
	// LevelDebug is used for per-line and per-file diagnostics.
	LevelDebug LogLevel = iota
	// LevelInfo is used for job progress and the final artifact path.
	LevelInfo
	// LevelWarn is used for tolerated per-file problems such as unreadable inputs.
	LevelWarn
	// LevelError is used for failures that abort a job.
	LevelError
	// LevelFatal terminates the process after logging.
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

var (
	mu       sync.RWMutex
	logLevel = LevelInfo
	std      = log.New(os.Stderr, "", log.LstdFlags)
)

// ParseLevel converts a level name (case-insensitive) into a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// SetLogLevel sets the global log level.
// Valid values are "DEBUG", "INFO", "WARN", "ERROR", "FATAL" (case-insensitive).
// An unknown value falls back to INFO and is reported on stderr.
func SetLogLevel(level string) {
	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
	}
	mu.Lock()
	logLevel = lvl
	mu.Unlock()
}

// GetLogLevel returns the current global log level.
func GetLogLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel
}

// SetOutput redirects log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	std.SetOutput(w)
	mu.Unlock()
}

func enabled(l LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel <= l
}

func output(l LogLevel, format string, v ...interface{}) {
	if !enabled(l) {
		return
	}
	_ = std.Output(3, "["+l.String()+"] "+fmt.Sprintf(format, v...))
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	output(LevelDebug, format, v...)
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	output(LevelInfo, format, v...)
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	output(LevelWarn, format, v...)
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	output(LevelError, format, v...)
}

// Fatalf outputs a FATAL level log message and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	_ = std.Output(2, "[FATAL] "+fmt.Sprintf(format, v...))
	os.Exit(1)
}
