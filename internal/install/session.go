package install

import (
	"context"
	"sync"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/runner"
)

// Status is the state of a session or of one tag within it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Observer is notified of session activity. Calls for one session are
// serialized and arrive in log order. Observers must not call Cancel.
type Observer interface {
	LogAppended(s *Session, line string)
	StatusChanged(s *Session, status Status)
}

// ExitObserver is an Observer that also wants the exit of a cancelled
// session's process. ProcessExited follows the cancelled StatusChanged once
// the exit code is known.
type ExitObserver interface {
	Observer
	ProcessExited(s *Session, code int)
}

// Session is one run of the installer. Its log is append-only and every
// accessor is safe for concurrent use.
type Session struct {
	id         string
	invocation Invocation
	grace      time.Duration
	observers  []Observer

	// notifyMu serializes observer calls so they follow log order.
	notifyMu sync.Mutex

	mu         sync.RWMutex
	log        []string
	status     Status
	exitCode   int
	exited     bool
	err        error
	startedAt  time.Time
	finishedAt time.Time
	proc       runner.Process

	done     chan struct{}
	doneOnce sync.Once
}

func newSession(id string, inv Invocation, grace time.Duration, observers []Observer) *Session {
	return &Session{
		id:         id,
		invocation: inv,
		grace:      grace,
		observers:  observers,
		status:     StatusRunning,
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}
}

// ID is the unique run identifier.
func (s *Session) ID() string { return s.id }

// Invocation returns the command this session runs.
func (s *Session) Invocation() Invocation { return s.invocation }

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// FinishedAt returns when the session reached a terminal state, or the zero time.
func (s *Session) FinishedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finishedAt
}

// Status returns the overall status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the launch error, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ExitCode returns the runner's exit status once it has exited.
func (s *Session) ExitCode() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exitCode, s.exited
}

// Log returns a copy of every line appended so far.
func (s *Session) Log() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.log...)
}

// LogSince returns the lines after the first n.
func (s *Session) LogSince(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(s.log) {
		return nil
	}
	return append([]string(nil), s.log[n:]...)
}

// LogLen returns the number of lines.
func (s *Session) LogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Outcomes maps every requested tag to its status. Tags stay pending while
// the session runs and take the overall result once it ends.
func (s *Session) Outcomes() map[string]Status {
	status := s.Status()
	outcome := StatusPending
	if status.Terminal() {
		outcome = status
	}
	out := make(map[string]Status, len(s.invocation.Tags))
	for _, tag := range s.invocation.Tags {
		out[tag] = outcome
	}
	return out
}

// Done is closed once the session is terminal and the process is gone.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is done or ctx ends, and returns the final status.
func (s *Session) Wait(ctx context.Context) (Status, error) {
	select {
	case <-s.done:
		return s.Status(), nil
	case <-ctx.Done():
		return s.Status(), ctx.Err()
	}
}

// Cancel stops a running session. The status becomes cancelled at once, no
// more lines are recorded, and the process group is terminated in the
// background. Calling Cancel on a finished session does nothing.
func (s *Session) Cancel() {
	s.notifyMu.Lock()
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		return
	}
	s.status = StatusCancelled
	s.finishedAt = time.Now()
	proc := s.proc
	s.mu.Unlock()
	s.notifyStatus(StatusCancelled)
	s.notifyMu.Unlock()

	if proc == nil {
		s.closeDone()
		return
	}
	go func() {
		_ = proc.Stop(s.grace)
	}()
}

// appendLine is the runner.LineFunc for this session.
func (s *Session) appendLine(_ runner.Stream, line string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.log = append(s.log, line)
	s.mu.Unlock()

	for _, o := range s.observers {
		o.LogAppended(s, line)
	}
}

func (s *Session) attach(proc runner.Process) {
	s.mu.Lock()
	s.proc = proc
	s.mu.Unlock()
}

// failLaunch records a launch failure as the only log line.
func (s *Session) failLaunch(err *LaunchError) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	line := err.Error()
	s.mu.Lock()
	s.err = err
	s.log = []string{line}
	s.status = StatusFailed
	s.exitCode = runner.ExitCode(err.Err)
	s.exited = true
	s.finishedAt = time.Now()
	s.mu.Unlock()

	for _, o := range s.observers {
		o.LogAppended(s, line)
	}
	s.notifyStatus(StatusFailed)
	s.closeDone()
}

// watch waits for the process, or for ctx to end which cancels the session.
func (s *Session) watch(ctx context.Context, proc runner.Process) {
	select {
	case <-proc.Done():
	case <-ctx.Done():
		s.Cancel()
		<-proc.Done()
	}
	s.finish(proc.ExitCode())
}

func (s *Session) finish(code int) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.exitCode = code
	s.exited = true
	changed := s.status == StatusRunning
	if changed {
		s.status = StatusSucceeded
		if code != 0 {
			s.status = StatusFailed
		}
	}
	s.finishedAt = time.Now()
	status := s.status
	s.mu.Unlock()

	switch {
	case changed:
		s.notifyStatus(status)
	case status == StatusCancelled:
		for _, o := range s.observers {
			if eo, ok := o.(ExitObserver); ok {
				eo.ProcessExited(s, code)
			}
		}
	}
	s.closeDone()
}

// notifyStatus must be called with notifyMu held.
func (s *Session) notifyStatus(status Status) {
	for _, o := range s.observers {
		o.StatusChanged(s, status)
	}
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}
