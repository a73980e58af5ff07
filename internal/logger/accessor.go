package logger

import (
	"errors"
	"io"
	"os"
	"sync"
)

var (
	loggerAccessorMu sync.Mutex
	// globalLogger is secretMaskingLogger -> rawLogger unless replaced
	globalLogger DBLogger
)

// GetLogger returns the global logger for use by internal packages
func GetLogger() DBLogger {
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()

	return globalLogger
}

// SetLogger sets the raw logger implementation and wraps it with secret masking.
// A logger that is already masked is unwrapped first so masking never stacks.
// The Proxy is rejected because it would delegate to itself.
func SetLogger(providedLogger DBLogger) error {
	if providedLogger == nil {
		return errors.New("logger cannot be nil")
	}
	if _, isProxy := providedLogger.(*Proxy); isProxy {
		return errors.New("cannot set Proxy as raw logger - it would create infinite recursion")
	}

	rawLogger := providedLogger
	if masked, ok := rawLogger.(*secretMaskingLogger); ok {
		rawLogger = masked.inner
	}

	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()
	globalLogger = newSecretMaskingLogger(rawLogger)
	return nil
}

func init() {
	globalLogger = newSecretMaskingLogger(newRawLogger())
}

// CreateDefaultLogger creates a new instance of the default logger wrapped with secret masking.
// It does not modify the global logger.
func CreateDefaultLogger() DBLogger {
	return newSecretMaskingLogger(newRawLogger())
}

// SetOutputWithFile redirects the default logger to output and takes ownership
// of file, closing the previously owned one. It fails for custom loggers.
func SetOutputWithFile(output io.Writer, file *os.File) error {
	var current interface{} = GetLogger()
	for {
		u, ok := current.(Unwrapper)
		if !ok {
			break
		}
		current = u.Unwrap()
	}
	raw, ok := current.(*rawLogger)
	if !ok {
		return errors.New("the current logger does not support log files")
	}
	raw.SetOutput(output)
	return raw.closeFileOnReplace(file)
}
