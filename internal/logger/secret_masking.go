package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/datafuselabs/databend-go/dblog"
)

// secretMaskingLogger wraps any logger implementation and ensures
// all log messages have secrets masked before being passed to the inner logger.
// Messages below the inner logger's level are dropped before formatting.
type secretMaskingLogger struct {
	inner DBLogger
}

var _ DBLogger = (*secretMaskingLogger)(nil)

func newSecretMaskingLogger(inner DBLogger) *secretMaskingLogger {
	return &secretMaskingLogger{inner: inner}
}

// Unwrap returns the inner logger
func (l *secretMaskingLogger) Unwrap() interface{} {
	return l.inner
}

func (l *secretMaskingLogger) enabled(level Level) bool {
	return level >= l.inner.GetLogLevelInt()
}

func maskValue(value interface{}) interface{} {
	if str, ok := value.(string); ok {
		return MaskSecrets(str)
	}
	strVal := fmt.Sprint(value)
	if masked := MaskSecrets(strVal); masked != strVal {
		return masked
	}
	return value
}

func (l *secretMaskingLogger) Tracef(format string, args ...interface{}) {
	if !l.enabled(dblog.LevelTrace) {
		return
	}
	l.inner.Tracef("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (l *secretMaskingLogger) Debugf(format string, args ...interface{}) {
	if !l.enabled(dblog.LevelDebug) {
		return
	}
	l.inner.Debugf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (l *secretMaskingLogger) Infof(format string, args ...interface{}) {
	if !l.enabled(dblog.LevelInfo) {
		return
	}
	l.inner.Infof("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (l *secretMaskingLogger) Warnf(format string, args ...interface{}) {
	if !l.enabled(dblog.LevelWarn) {
		return
	}
	l.inner.Warnf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (l *secretMaskingLogger) Errorf(format string, args ...interface{}) {
	if !l.enabled(dblog.LevelError) {
		return
	}
	l.inner.Errorf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (l *secretMaskingLogger) Trace(msg string) {
	if !l.enabled(dblog.LevelTrace) {
		return
	}
	l.inner.Trace(MaskSecrets(msg))
}

func (l *secretMaskingLogger) Debug(msg string) {
	if !l.enabled(dblog.LevelDebug) {
		return
	}
	l.inner.Debug(MaskSecrets(msg))
}

func (l *secretMaskingLogger) Info(msg string) {
	if !l.enabled(dblog.LevelInfo) {
		return
	}
	l.inner.Info(MaskSecrets(msg))
}

func (l *secretMaskingLogger) Warn(msg string) {
	if !l.enabled(dblog.LevelWarn) {
		return
	}
	l.inner.Warn(MaskSecrets(msg))
}

func (l *secretMaskingLogger) Error(msg string) {
	if !l.enabled(dblog.LevelError) {
		return
	}
	l.inner.Error(MaskSecrets(msg))
}

func (l *secretMaskingLogger) WithField(key string, value interface{}) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithField(key, maskValue(value)), parent: l}
}

func (l *secretMaskingLogger) WithFields(fields map[string]any) LogEntry {
	maskedFields := make(map[string]any, len(fields))
	for k, v := range fields {
		maskedFields[k] = maskValue(v)
	}
	return &secretMaskingEntry{inner: l.inner.WithFields(maskedFields), parent: l}
}

func (l *secretMaskingLogger) WithContext(ctx context.Context) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithContext(ctx), parent: l}
}

func (l *secretMaskingLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *secretMaskingLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *secretMaskingLogger) GetLogLevelInt() Level {
	return l.inner.GetLogLevelInt()
}

func (l *secretMaskingLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

// secretMaskingEntry wraps a log entry and masks all secrets.
type secretMaskingEntry struct {
	inner  LogEntry
	parent *secretMaskingLogger
}

var _ LogEntry = (*secretMaskingEntry)(nil)

func (e *secretMaskingEntry) Tracef(format string, args ...interface{}) {
	if !e.parent.enabled(dblog.LevelTrace) {
		return
	}
	e.inner.Tracef("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (e *secretMaskingEntry) Debugf(format string, args ...interface{}) {
	if !e.parent.enabled(dblog.LevelDebug) {
		return
	}
	e.inner.Debugf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (e *secretMaskingEntry) Infof(format string, args ...interface{}) {
	if !e.parent.enabled(dblog.LevelInfo) {
		return
	}
	e.inner.Infof("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (e *secretMaskingEntry) Warnf(format string, args ...interface{}) {
	if !e.parent.enabled(dblog.LevelWarn) {
		return
	}
	e.inner.Warnf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (e *secretMaskingEntry) Errorf(format string, args ...interface{}) {
	if !e.parent.enabled(dblog.LevelError) {
		return
	}
	e.inner.Errorf("%s", MaskSecrets(fmt.Sprintf(format, args...)))
}

func (e *secretMaskingEntry) Trace(msg string) {
	if !e.parent.enabled(dblog.LevelTrace) {
		return
	}
	e.inner.Trace(MaskSecrets(msg))
}

func (e *secretMaskingEntry) Debug(msg string) {
	if !e.parent.enabled(dblog.LevelDebug) {
		return
	}
	e.inner.Debug(MaskSecrets(msg))
}

func (e *secretMaskingEntry) Info(msg string) {
	if !e.parent.enabled(dblog.LevelInfo) {
		return
	}
	e.inner.Info(MaskSecrets(msg))
}

func (e *secretMaskingEntry) Warn(msg string) {
	if !e.parent.enabled(dblog.LevelWarn) {
		return
	}
	e.inner.Warn(MaskSecrets(msg))
}

func (e *secretMaskingEntry) Error(msg string) {
	if !e.parent.enabled(dblog.LevelError) {
		return
	}
	e.inner.Error(MaskSecrets(msg))
}
