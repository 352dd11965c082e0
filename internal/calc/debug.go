package calc

import "sync/atomic"

// debugLoggingEnabled controls whether per-node debug logging is emitted.
// Recalculation happens on every read of an invalidated node, so checking
// the slog level there is too costly; the flag is set once from config.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-node debug logging.
// Call it during initialization (e.g. from main.go after loading config).
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if per-node debug logging is enabled.
// Use it to guard debug log calls on hot paths:
//
//	if calc.IsDebugEnabled() {
//	    slog.Debug("node recalculated", "node", label, "value", v)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
