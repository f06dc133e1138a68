package tui

import (
	"sync/atomic"

	"github.com/mwantia/dualcli/log"
)

var debugLogger atomic.Pointer[log.Logger]

// InitDebugLog routes DebugLog output to logger.
func InitDebugLog(logger *log.Logger) {
	debugLogger.Store(logger.Named("tui"))
	DebugLog("=== Debug log started ===")
}

func CloseDebugLog() {
	DebugLog("=== Debug log ended ===")
	debugLogger.Store(nil)
}

// DebugLog writes a debug message when a debug logger was initialized.
func DebugLog(format string, args ...any) {
	if logger := debugLogger.Load(); logger != nil {
		logger.Debug(format, args...)
	}
}
