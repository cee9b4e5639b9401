// Package logger provides the leveled logger used throughout paddock.
// It wraps the standard `log` package and drops messages below the configured level.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// LogLevel is the verbosity of a log message. Smaller values are more verbose.
type LogLevel int32

const (
	// LevelDebug is used for per-unit diagnostics (one driver, one round).
	LevelDebug LogLevel = iota
	// LevelInfo is used for stage progress and summaries.
	LevelInfo
	// LevelWarn is used for skipped units and recoverable anomalies.
	LevelWarn
	// LevelError is used for failed stages.
	LevelError
	// LevelFatal terminates the process after logging.
	LevelFatal
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(int32(LevelInfo))
}

// ParseLevel converts a level name ("DEBUG", "INFO", "WARN", "ERROR", "FATAL") to a LogLevel.
// The second return value is false when the name is not recognised.
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG", "TRACE":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL", "SILENT":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// SetLogLevel sets the global log level by name.
// Unknown names fall back to INFO and a notice is printed.
func SetLogLevel(level string) {
	lvl, ok := ParseLevel(level)
	if !ok {
		fmt.Printf("Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
	}
	logLevel.Store(int32(lvl))
}

// CurrentLevel returns the active log level.
func CurrentLevel() LogLevel {
	return LogLevel(logLevel.Load())
}

// SetOutput redirects log output, e.g. to silence or capture it in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func enabled(l LogLevel) bool {
	return CurrentLevel() <= l
}

// Debugf logs at DEBUG level.
func Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs at INFO level.
func Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		log.Printf("[INFO] "+format, v...)
	}
}

// Warnf logs at WARN level.
func Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		log.Printf("[WARN] "+format, v...)
	}
}

// Errorf logs at ERROR level.
func Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		log.Printf("[ERROR] "+format, v...)
	}
}

// Fatalf logs the message and exits the process with status 1.
func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}
