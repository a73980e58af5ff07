// Package dblog defines the log levels shared by the driver logger and custom loggers.
package dblog

import (
	"fmt"
	"math"
	"strings"
)

// Level represents the log level for a log message. It extends slog's standard levels with custom levels.
type Level int

// Custom level constants that extend slog's standard levels
const (
	LevelTrace = Level(-8)
	LevelDebug = Level(-4)
	LevelInfo  = Level(0)
	LevelWarn  = Level(4)
	LevelError = Level(8)
	LevelFatal = Level(12)
	LevelOff   = Level(math.MaxInt)
)

// ParseLevel converts a string level to Level
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	case "OFF":
		return LevelOff, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// String returns the upper-case name of the level, or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}
