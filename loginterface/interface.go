// Package loginterface package defines the logging interface for the Go Databend driver.
// If you want to implement a custom logger, you should implement the DBLogger interface defined in this package.
package loginterface

import (
	"context"
	"io"

	"github.com/datafuselabs/databend-go/dblog"
)

// Level is the numeric log level understood by DBLogger.
type Level = dblog.Level

// ClientLogContextHook is a client-defined hook that can be used to insert log
// fields based on the Context.
type ClientLogContextHook func(context.Context) string

// LogEntry allows for logging using a snapshot of field values.
// No implementation-specific logging details should be placed into this interface.
type LogEntry interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// DBLogger Databend logger interface which abstracts away the underlying logging mechanism.
// No implementation-specific logging details should be placed into this interface.
type DBLogger interface {
	LogEntry
	WithField(key string, value interface{}) LogEntry
	WithFields(fields map[string]any) LogEntry

	SetLogLevel(level string) error
	GetLogLevel() string
	GetLogLevelInt() Level
	WithContext(ctx context.Context) LogEntry
	SetOutput(output io.Writer)
}
