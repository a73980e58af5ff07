package godatabend

import (
	"context"

	loggerinternal "github.com/datafuselabs/databend-go/internal/logger"
	"github.com/datafuselabs/databend-go/loginterface"
)

type contextKey string

// DBTransferIDKey is context key of the id of a stage transfer
const DBTransferIDKey contextKey = "LOG_TRANSFER_ID"

// DBStageKey is context key of the stage location a transfer belongs to
const DBStageKey contextKey = "LOG_STAGE"

func init() {
	SetLogKeys(DBTransferIDKey, DBStageKey)
	_ = logger.SetLogLevel("error")
}

// Re-export types from loginterface package
type (
	// ClientLogContextHook is a client-defined hook that can be used to insert log
	// fields based on the Context.
	ClientLogContextHook = loginterface.ClientLogContextHook

	// LogEntry allows for logging using a snapshot of field values.
	LogEntry = loginterface.LogEntry

	// DBLogger Databend logger interface which abstracts away the underlying logging mechanism.
	DBLogger = loginterface.DBLogger
)

// SetLogKeys sets the context keys to be written to logs when logger.WithContext is used.
func SetLogKeys(keys ...contextKey) {
	ikeys := make([]interface{}, len(keys))
	for i, k := range keys {
		ikeys[i] = k
	}
	loggerinternal.SetLogKeys(ikeys)
}

// RegisterLogContextHook registers a hook that can be used to extract fields
// from the Context and associated with log messages using the provided key.
func RegisterLogContextHook(contextKey string, ctxExtractor ClientLogContextHook) {
	loggerinternal.RegisterLogContextHook(contextKey, ctxExtractor)
}

// logger is a proxy that delegates all calls to the internal global logger
var logger DBLogger = loggerinternal.NewLoggerProxy()

// SetLogger sets a new logger of DBLogger interface for the driver.
// The provided logger is wrapped with secret masking.
func SetLogger(inLogger DBLogger) error {
	return loggerinternal.SetLogger(inLogger)
}

// GetLogger returns the driver logger.
func GetLogger() DBLogger {
	return logger
}

// CreateDefaultLogger creates and returns a new instance of DBLogger with default config.
// It does NOT modify global state.
func CreateDefaultLogger() DBLogger {
	return loggerinternal.CreateDefaultLogger()
}

func withTransferID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DBTransferIDKey, id)
}
