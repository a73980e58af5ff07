package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var (
	contextConfigMu       sync.RWMutex
	logKeys               []interface{}
	clientLogContextHooks map[string]ClientLogContextHook
)

// SetLogKeys sets the context keys to be extracted from context
func SetLogKeys(keys []interface{}) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()

	logKeys = make([]interface{}, len(keys))
	copy(logKeys, keys)
}

// GetLogKeys returns a copy of the current log keys
func GetLogKeys() []interface{} {
	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	keysCopy := make([]interface{}, len(logKeys))
	copy(keysCopy, logKeys)
	return keysCopy
}

// RegisterLogContextHook registers a hook for extracting context fields
func RegisterLogContextHook(key string, hook ClientLogContextHook) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()

	if clientLogContextHooks == nil {
		clientLogContextHooks = make(map[string]ClientLogContextHook)
	}
	clientLogContextHooks[key] = hook
}

// extractContextFields extracts log fields from context using log keys and hooks
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	attrs := make([]slog.Attr, 0, len(logKeys)+len(clientLogContextHooks))
	for _, key := range logKeys {
		if val := ctx.Value(key); val != nil {
			attrs = append(attrs, slog.String(fmt.Sprint(key), MaskSecrets(fmt.Sprint(val))))
		}
	}
	for key, hook := range clientLogContextHooks {
		if val := hook(ctx); val != "" {
			attrs = append(attrs, slog.String(key, MaskSecrets(val)))
		}
	}
	return attrs
}
