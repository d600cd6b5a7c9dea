// Package colors prints user-facing console messages.
//
// Errors, warnings and debug lines go to stderr; info, success and runner
// output go to stdout. Every message except runner output is mirrored into
// the file logger when one is set.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// ANSI colors, also used by the TUI palette.
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

// Logger receives a copy of every console message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled = envDebug()

	loggerMu sync.RWMutex
	logger   Logger

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// reporting guards against a failing stderr reporting itself forever.
	reporting atomic.Bool
)

func envDebug() bool {
	v := os.Getenv("CLOUDCURIO_DEBUG")
	return v == "true" || v == "1"
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debugEnabled
}

// SetLogger sets the logger console output is mirrored to. Nil stops mirroring.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// SetOutput redirects console output. Nil restores the process streams.
func SetOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout = out
	stderr = errOut
}

// kind describes how one message type is printed and logged.
type kind struct {
	name   string
	toErr  bool
	format string // receives the message
	mirror func(l Logger, msg string)
}

var (
	errorKind = kind{"error", true, Red + "Error:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Error(msg) }}
	warningKind = kind{"warning", true, Yellow + "Warning:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Warn(msg) }}
	infoKind = kind{"info", false, Blue + "%s" + Reset + "\n",
		func(l Logger, msg string) { l.Info(msg) }}
	successKind = kind{"success", false, Green + "✓" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Info(msg, "type", "success") }}
	debugKind = kind{"debug", true, Cyan + "Debug:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Debug(msg) }}
	plainKind = kind{name: "plain", format: "%s\n"}
)

func write(k kind, msgs []string) {
	msg := strings.Join(msgs, " ")
	if k.mirror != nil {
		loggerMu.RLock()
		l := logger
		loggerMu.RUnlock()
		if l != nil {
			k.mirror(l, msg)
		}
	}

	w := stdout
	if k.toErr {
		w = stderr
	}
	if _, err := fmt.Fprintf(w, k.format, msg); err != nil {
		report(k, err)
	}
}

// report surfaces a failed write once: as a warning, or as an error when the
// warning itself failed. A failure while reporting falls back to plain stderr.
func report(k kind, err error) {
	text := "failed to print " + k.name + " message: " + err.Error()
	if !reporting.CompareAndSwap(false, true) {
		errorFallback(text)
		return
	}
	defer reporting.Store(false)
	if k.name == warningKind.name {
		write(errorKind, []string{text})
		return
	}
	write(warningKind, []string{text})
}

// errorFallback writes msg without colors or mirroring.
func errorFallback(msg string) {
	fmt.Fprintln(stderr, msg)
}

// Error prints an error to stderr.
func Error(msgs ...string) { write(errorKind, msgs) }

// Warning prints a warning to stderr.
func Warning(msgs ...string) { write(warningKind, msgs) }

// Info prints an informational message to stdout.
func Info(msgs ...string) { write(infoKind, msgs) }

// Success prints a checkmarked message to stdout.
func Success(msgs ...string) { write(successKind, msgs) }

// Plain prints an uncolored line to stdout. Runner output goes through here.
func Plain(msgs ...string) { write(plainKind, msgs) }

// Debug prints to stderr in debug mode.
func Debug(msgs ...string) {
	if debugEnabled {
		write(debugKind, msgs)
	}
}
