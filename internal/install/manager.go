package install

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
	"github.com/cloudcurio/cloudcurio-installer/internal/runner"
	"github.com/google/uuid"
)

// DefaultCancelGrace is how long a cancelled runner gets between SIGTERM and SIGKILL.
const DefaultCancelGrace = 5 * time.Second

// Manager owns the busy state: at most one session runs at a time.
type Manager struct {
	runner    runner.Runner
	grace     time.Duration
	observers []Observer
	newID     func() string

	mu      sync.Mutex
	current *Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCancelGrace sets the SIGTERM to SIGKILL delay used by Cancel.
func WithCancelGrace(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d >= 0 {
			m.grace = d
		}
	}
}

// WithObserver registers an observer for every session the manager starts.
func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// NewManager returns a Manager that launches processes with r.
func NewManager(r runner.Runner, opts ...ManagerOption) *Manager {
	m := &Manager{
		runner: r,
		grace:  DefaultCancelGrace,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromConfig builds a Manager with an ExecRunner honoring the
// workdir and cancel_grace settings.
func NewManagerFromConfig(opts ...ManagerOption) *Manager {
	r := runner.NewExecRunner(runner.WithWorkDir(config.Get("workdir", "")))
	opts = append([]ManagerOption{WithCancelGrace(config.GetDuration("cancel_grace", DefaultCancelGrace))}, opts...)
	return NewManager(r, opts...)
}

// Start launches inv and returns without waiting for it. It fails with
// ErrSessionBusy while another session is running. A launch failure is not
// an error here: the returned session is already failed and Err reports a
// *LaunchError. Cancelling ctx cancels the session.
func (m *Manager) Start(ctx context.Context, inv Invocation) (*Session, error) {
	if len(inv.Tags) == 0 {
		return nil, ErrEmptySelection
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.Status() == StatusRunning {
		return nil, ErrSessionBusy
	}

	s := newSession(m.newID(), inv, m.grace, m.observers)
	m.current = s
	s.notifyMu.Lock()
	s.notifyStatus(StatusRunning)
	s.notifyMu.Unlock()

	cmd := inv.Command()
	log := logging.ForRun(s.id)
	log.Info("install started", "command", cmd.Name, "tags", strings.Join(inv.Tags, ","))
	colors.StructuredInfo("install", "start", "started", nil, s.id, map[string]interface{}{"tags_count": len(inv.Tags)})

	proc, err := m.runner.Start(ctx, cmd, s.appendLine)
	if err != nil {
		launchErr := &LaunchError{Command: cmd, Err: err}
		log.Error("install launch failed", "error", err.Error())
		s.failLaunch(launchErr)
		return s, nil
	}
	s.attach(proc)
	go func() {
		s.watch(ctx, proc)
		code, _ := s.ExitCode()
		log.Info("install finished", "status", string(s.Status()), "exit_code", code)
	}()
	return s, nil
}

// Current returns the most recent session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Busy reports whether a session is running.
func (m *Manager) Busy() bool {
	s := m.Current()
	return s != nil && s.Status() == StatusRunning
}
