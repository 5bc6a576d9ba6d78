package molparse

import (
	"sync"

	"go.uber.org/zap"
)

// The package logs parse warnings through a single global logger, defaulting
// to a no-op. The logger is swappable so callers can redirect the stream into
// their own sink; the parse loop itself stays oblivious to where warnings go.
var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()
)

// SetLogger redirects all molparse warnings to l and returns the previous
// logger so callers can restore it. Passing nil installs a no-op logger.
func SetLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	prev := logger
	logger = l
	loggerMu.Unlock()
	return prev
}

func warnLogger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
