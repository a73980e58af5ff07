package logger

import (
	"github.com/datafuselabs/databend-go/loginterface"
)

// Re-export types from loginterface package to avoid circular dependencies
// while maintaining a clean internal API
type (
	LogEntry             = loginterface.LogEntry
	DBLogger             = loginterface.DBLogger
	ClientLogContextHook = loginterface.ClientLogContextHook
	Level                = loginterface.Level
)

// Unwrapper is implemented by wrapping loggers.
type Unwrapper interface {
	Unwrap() interface{}
}
