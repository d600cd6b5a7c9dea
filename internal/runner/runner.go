// Package runner launches the external installer process and streams its
// output line by line.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
)

// Stream identifies where a line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// LineFunc receives each output line without its trailing newline, in the
// order the child wrote them. The child's stdout and stderr share one pipe,
// so its lines arrive as Stdout; Stderr marks the runner's own diagnostics.
type LineFunc func(stream Stream, line string)

// Command describes a process to launch.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Runner starts processes.
type Runner interface {
	// Start launches cmd and returns once the process is running.
	// onLine may be nil.
	Start(ctx context.Context, cmd Command, onLine LineFunc) (Process, error)
}

// Process is a running command.
type Process interface {
	// PID returns the operating system process id.
	PID() int
	// Done is closed after the process exited and its output is drained.
	Done() <-chan struct{}
	// ExitCode is valid after Done is closed.
	ExitCode() int
	// Err is the wait error, nil on a clean exit.
	Err() error
	// Stop terminates the process group: SIGTERM, then SIGKILL once grace
	// expires. It returns after the process is gone. Stopping an exited
	// process is a no-op.
	Stop(grace time.Duration) error
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	workDir      string
	env          []string
	maxLineLen   int
	drainTimeout time.Duration
}

// NewExecRunner creates a new ExecRunner with the given options.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{maxLineLen: DefaultMaxLineLength, drainTimeout: DefaultDrainTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the command in its own process group.
func (r *ExecRunner) Start(ctx context.Context, command Command, onLine LineFunc) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if onLine == nil {
		onLine = func(Stream, string) {}
	}

	cmd := exec.Command(command.Name, command.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Dir = r.workDir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	// One pipe for both streams keeps the child's write order intact.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe for %s: %w", command.Name, err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	colors.StructuredDebug("runner", "start", "started", nil, command.Name, map[string]interface{}{"args_count": len(command.Args)})
	err = cmd.Start()
	pw.Close()
	if err != nil {
		pr.Close()
		colors.StructuredError("runner", "start", "failed", err, command.Name, nil)
		return nil, fmt.Errorf("start %s: %w", command.Name, err)
	}

	p := &execProcess{
		cmd:     cmd,
		name:    command.Name,
		started: time.Now(),
		done:    make(chan struct{}),
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		p.scan(pr, onLine, r.maxLineLen)
	}()

	go func() {
		waitErr := cmd.Wait()
		p.drain(pr, drained, r.drainTimeout)
		p.finish(waitErr)
	}()

	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	name    string
	started time.Time
	done    chan struct{}

	mu       sync.Mutex
	exitCode int
	err      error
}

func (p *execProcess) scan(r io.Reader, onLine LineFunc, maxLineLen int) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(4096, maxLineLen)), maxLineLen)
	for scanner.Scan() {
		onLine(Stdout, scanner.Text())
	}
	err := scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return
	}
	onLine(Stderr, fmt.Sprintf("[runner] output read error: %v", err))
	// Drain so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// drain gives the reader up to timeout after the child exited. A descendant
// that inherited the pipe keeps it open past that, so the read end is closed
// underneath the scanner.
func (p *execProcess) drain(pr *os.File, drained <-chan struct{}, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-drained:
		pr.Close()
		return
	case <-timer.C:
	}
	colors.StructuredWarn("runner", "drain", "abandoned", nil, p.name, map[string]interface{}{"timeout_seconds": timeout.Seconds()})
	pr.Close()
	<-drained
}

func (p *execProcess) finish(waitErr error) {
	code := ExitCode(waitErr)
	p.mu.Lock()
	p.exitCode = code
	p.err = waitErr
	p.mu.Unlock()

	duration := time.Since(p.started).Seconds()
	fields := map[string]interface{}{"exit_code": code, "duration_seconds": duration}
	if waitErr != nil {
		colors.StructuredWarn("runner", "wait", "failed", waitErr, p.name, fields)
	} else {
		colors.StructuredDebug("runner", "wait", "completed", nil, p.name, fields)
	}
	close(p.done)
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *execProcess) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *execProcess) Stop(grace time.Duration) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	pgid := -p.cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("terminate %s: %w", p.name, err)
	}
	if grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-p.done:
			return nil
		case <-timer.C:
		}
	}

	colors.StructuredWarn("runner", "stop", "killing", nil, p.name, map[string]interface{}{"grace_seconds": grace.Seconds()})
	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill %s: %w", p.name, err)
	}
	<-p.done
	return nil
}

// ExitCode maps a wait error to a process exit status: 0 on success, the
// child's status for *exec.ExitError, 127 when the binary could not be found,
// 126 when it could not be executed and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
		return 127
	}
	if errors.Is(err, fs.ErrPermission) {
		return 126
	}
	return 1
}
