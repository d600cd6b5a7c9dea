// Package logging writes JSON log files for installer runs.
//
// Logging is off by default. When logging_enabled is set, each process
// writes {state_dir}/logs/cloudcurio_<time>_PID<pid>_<command>.log and old
// files beyond logging_max_files are removed. Console messages printed
// through the colors package are mirrored into the file.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
)

// Logger is the structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds args to every entry.
	With(args ...any) Logger
	// Shutdown closes the log file.
	Shutdown() error
}

// Config holds logging settings.
type Config struct {
	Enabled  bool
	Level    string
	MaxFiles int
	// Command and PID name the log file and tag every entry.
	Command string
	PID     int
}

// FromGlobalConfig reads the logging_* keys. Debug mode forces the debug level.
func FromGlobalConfig() Config {
	cfg := Config{
		Enabled:  config.GetBool("logging_enabled", false),
		Level:    config.Get("logging_level", "info"),
		MaxFiles: config.GetInt("logging_max_files", 10),
		Command:  filepath.Base(os.Args[0]),
		PID:      os.Getpid(),
	}
	if config.GetBool("debug", false) {
		cfg.Level = "debug"
	}
	return cfg
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

// sensitiveWords are key segments whose values never reach the log file.
// Runner environments can carry vault sessions and become passwords.
var sensitiveWords = map[string]bool{
	"secret": true, "password": true, "pass": true, "token": true, "key": true,
	"auth": true, "credential": true, "session": true, "vault": true,
}

// sensitiveKey reports whether a segment of key is a sensitive word:
// "vault_token" is, "run_id" and "keyboard" are not.
func sensitiveKey(key string) bool {
	segments := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, s := range segments {
		if sensitiveWords[s] {
			return true
		}
	}
	return false
}

// redact returns a copy of the key/value pairs with sensitive values masked.
func redact(pairs []any) []any {
	out := append([]any(nil), pairs...)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && sensitiveKey(key) {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }
func (noopLogger) Shutdown() error      { return nil }
