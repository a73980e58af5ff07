package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"sync"
	"time"

	"github.com/datafuselabs/databend-go/dblog"
)

// Skip depths assume the standard chain Proxy -> secretMaskingLogger -> rawLogger
// for logger methods and secretMaskingEntry -> slogEntry for entries.
const (
	loggerSkipDepth = 3
	entrySkipDepth  = 2
)

// rawLogger implements DBLogger using slog
type rawLogger struct {
	inner   *slog.Logger
	level   dblog.Level
	enabled bool
	file    *os.File
	output  io.Writer
	mu      sync.Mutex
}

var _ DBLogger = (*rawLogger)(nil)

func newRawLogger() *rawLogger {
	level := dblog.LevelInfo
	return &rawLogger{
		inner:   slog.New(slog.NewTextHandler(os.Stderr, createOpts(level))),
		level:   level,
		enabled: true,
		output:  os.Stderr,
	}
}

func createOpts(level dblog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:     slog.Level(level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					return slog.String(slog.LevelKey, dblog.Level(l).String())
				}
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok {
					return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", path.Base(src.File), src.Line))
				}
			}
			return a
		},
	}
}

func (log *rawLogger) isEnabled() bool {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.enabled
}

// SetLogLevel sets the log level
func (log *rawLogger) SetLogLevel(level string) error {
	parsed, err := dblog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("error while setting log level. %v", err)
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	log.level = parsed
	log.enabled = parsed != dblog.LevelOff
	log.inner = slog.New(slog.NewTextHandler(log.output, createOpts(parsed)))
	return nil
}

// GetLogLevel returns the current log level
func (log *rawLogger) GetLogLevel() string {
	return log.GetLogLevelInt().String()
}

func (log *rawLogger) GetLogLevelInt() Level {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.level
}

// SetOutput sets the output writer
func (log *rawLogger) SetOutput(output io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.output = output
	log.inner = slog.New(slog.NewTextHandler(output, createOpts(log.level)))
}

// closeFileOnReplace registers a log file to be closed when the output is replaced again.
func (log *rawLogger) closeFileOnReplace(file *os.File) error {
	log.mu.Lock()
	defer log.mu.Unlock()

	if log.file != nil && log.file != file {
		if err := log.file.Close(); err != nil {
			return err
		}
	}
	log.file = file
	return nil
}

func (log *rawLogger) handler() slog.Handler {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.inner.Handler()
}

// logWithSkip logs a message at the given level, skipping 'skip' frames when determining source location.
func (log *rawLogger) logWithSkip(skip int, level dblog.Level, msg string) {
	if !log.isEnabled() {
		return
	}
	h := log.handler()
	if !h.Enabled(context.Background(), slog.Level(level)) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:]) // +2: runtime.Callers itself + logWithSkip
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	_ = h.Handle(context.Background(), r)
}

func (log *rawLogger) Tracef(format string, args ...interface{}) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelTrace, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Debugf(format string, args ...interface{}) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelDebug, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Infof(format string, args ...interface{}) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelInfo, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Warnf(format string, args ...interface{}) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelWarn, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Errorf(format string, args ...interface{}) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelError, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Trace(msg string) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelTrace, msg)
}

func (log *rawLogger) Debug(msg string) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelDebug, msg)
}

func (log *rawLogger) Info(msg string) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelInfo, msg)
}

func (log *rawLogger) Warn(msg string) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelWarn, msg)
}

func (log *rawLogger) Error(msg string) {
	log.logWithSkip(loggerSkipDepth, dblog.LevelError, msg)
}

func (log *rawLogger) WithField(key string, value interface{}) LogEntry {
	return log.entry(slog.Any(key, value))
}

func (log *rawLogger) WithFields(fields map[string]any) LogEntry {
	attrs := make([]any, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return log.entry(attrs...)
}

func (log *rawLogger) WithContext(ctx context.Context) LogEntry {
	attrs := extractContextFields(ctx)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return log.entry(args...)
}

func (log *rawLogger) entry(args ...any) LogEntry {
	log.mu.Lock()
	defer log.mu.Unlock()
	return &slogEntry{
		logger: log.inner.With(args...),
		parent: log,
	}
}

// slogEntry implements LogEntry
type slogEntry struct {
	logger *slog.Logger
	parent *rawLogger
}

var _ LogEntry = (*slogEntry)(nil)

func (e *slogEntry) logWithSkip(skip int, level dblog.Level, msg string) {
	if !e.parent.isEnabled() {
		return
	}
	h := e.logger.Handler()
	if !h.Enabled(context.Background(), slog.Level(level)) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:])
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	_ = h.Handle(context.Background(), r)
}

func (e *slogEntry) Tracef(format string, args ...interface{}) {
	e.logWithSkip(entrySkipDepth, dblog.LevelTrace, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Debugf(format string, args ...interface{}) {
	e.logWithSkip(entrySkipDepth, dblog.LevelDebug, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Infof(format string, args ...interface{}) {
	e.logWithSkip(entrySkipDepth, dblog.LevelInfo, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Warnf(format string, args ...interface{}) {
	e.logWithSkip(entrySkipDepth, dblog.LevelWarn, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Errorf(format string, args ...interface{}) {
	e.logWithSkip(entrySkipDepth, dblog.LevelError, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Trace(msg string) {
	e.logWithSkip(entrySkipDepth, dblog.LevelTrace, msg)
}

func (e *slogEntry) Debug(msg string) {
	e.logWithSkip(entrySkipDepth, dblog.LevelDebug, msg)
}

func (e *slogEntry) Info(msg string) {
	e.logWithSkip(entrySkipDepth, dblog.LevelInfo, msg)
}

func (e *slogEntry) Warn(msg string) {
	e.logWithSkip(entrySkipDepth, dblog.LevelWarn, msg)
}

func (e *slogEntry) Error(msg string) {
	e.logWithSkip(entrySkipDepth, dblog.LevelError, msg)
}
