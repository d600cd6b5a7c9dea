// Package errors routes user-facing messages to the CLI or the TUI.
package errors

import (
	stderrors "errors"
	"sync"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
)

// ErrorHandler receives messages meant for the user.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// Warner is implemented by errors that describe a rejected action rather than a failure,
// such as installing with nothing selected.
type Warner interface {
	Warning() bool
}

// Report sends err to h, as a warning when the error chain contains a Warner.
func Report(h ErrorHandler, err error) {
	if h == nil || err == nil {
		return
	}
	var w Warner
	if stderrors.As(err, &w) && w.Warning() {
		h.Warning(err.Error())
		return
	}
	h.Error(err.Error())
}

// Level classifies a message.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Console is the terminal a CLIHandler prints to.
type Console interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler prints messages to a Console, one at a time so that the hook
// runner and the install command never interleave lines.
type CLIHandler struct {
	console Console
	mu      sync.Mutex
}

func NewCLIHandler(console Console) *CLIHandler {
	return &CLIHandler{console: console}
}

// NewDefaultCLIHandler prints through the colors package.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(colorsConsole{})
}

func (h *CLIHandler) Error(msg string)   { h.print(LevelError, msg) }
func (h *CLIHandler) Warning(msg string) { h.print(LevelWarning, msg) }
func (h *CLIHandler) Info(msg string)    { h.print(LevelInfo, msg) }
func (h *CLIHandler) Success(msg string) { h.print(LevelSuccess, msg) }

func (h *CLIHandler) print(level Level, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch level {
	case LevelError:
		h.console.Error(msg)
	case LevelWarning:
		h.console.Warning(msg)
	case LevelSuccess:
		h.console.Success(msg)
	default:
		h.console.Info(msg)
	}
}

type colorsConsole struct{}

func (colorsConsole) Error(msgs ...string)   { colors.Error(msgs...) }
func (colorsConsole) Warning(msgs ...string) { colors.Warning(msgs...) }
func (colorsConsole) Info(msgs ...string)    { colors.Info(msgs...) }
func (colorsConsole) Success(msgs ...string) { colors.Success(msgs...) }
