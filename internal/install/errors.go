package install

import (
	"fmt"

	"github.com/cloudcurio/cloudcurio-installer/internal/runner"
)

// EmptySelectionError is returned when an install is requested with no tags.
type EmptySelectionError struct{}

func (EmptySelectionError) Error() string { return "no tools selected for installation" }

// Warning marks the error as a user mistake rather than a failure.
func (EmptySelectionError) Warning() bool { return true }

// SessionBusyError is returned when a session is already running.
type SessionBusyError struct{}

func (SessionBusyError) Error() string { return "an installation is already running" }

// Warning marks the error as a user mistake rather than a failure.
func (SessionBusyError) Warning() bool { return true }

var (
	// ErrEmptySelection is the EmptySelectionError sentinel.
	ErrEmptySelection error = EmptySelectionError{}
	// ErrSessionBusy is the SessionBusyError sentinel.
	ErrSessionBusy error = SessionBusyError{}
)

// LaunchError reports that the runner process could not be started.
type LaunchError struct {
	Command runner.Command
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Command.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
