package logging

import (
	"sync"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
)

var (
	global   Logger
	globalMu sync.RWMutex
)

// InitGlobal replaces the process logger with one built from the global
// configuration and mirrors console output into it.
func InitGlobal() error {
	l, err := Init(FromGlobalConfig())
	if err != nil {
		return err
	}
	globalMu.Lock()
	prev := global
	global = l
	globalMu.Unlock()
	if prev != nil {
		_ = prev.Shutdown()
	}
	if _, ok := l.(*fileLogger); ok {
		colors.SetLogger(l)
	}
	return nil
}

// GetGlobal returns the process logger, or a no-op logger before InitGlobal.
func GetGlobal() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return noopLogger{}
	}
	return global
}

func Debug(msg string, args ...any) { GetGlobal().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetGlobal().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetGlobal().Warn(msg, args...) }
func Error(msg string, args ...any) { GetGlobal().Error(msg, args...) }

// ForRun returns the process logger tagged with an install run ID.
func ForRun(runID string) Logger {
	return GetGlobal().With("run_id", runID)
}

// ShutdownGlobal closes the process logger and stops mirroring console output.
func ShutdownGlobal() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	colors.SetLogger(nil)
	if global == nil {
		return nil
	}
	err := global.Shutdown()
	global = nil
	return err
}

// CurrentLogFile returns the active log file, or "" when logging is disabled.
func CurrentLogFile() string {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if fl, ok := global.(*fileLogger); ok {
		return fl.path()
	}
	return ""
}
