// Package hooks runs user scripts when an installation starts and finishes.
//
// Scripts live in {hooks_dir}/pre-install and {hooks_dir}/post-install. Every
// executable file in the directory runs in name order with the run described
// in CLOUDCURIO_* environment variables. Hooks run in the background so they
// never hold up the runner or the UI; batches run one after another in the
// order the events happened.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
)

// Hook points.
const (
	PointPreInstall  = "pre-install"
	PointPostInstall = "post-install"
)

// Failure modes.
const (
	FailureWarn   = "warn"
	FailureIgnore = "ignore"
)

// DefaultTimeout bounds a single script.
const DefaultTimeout = 30 * time.Second

// Runner is an install.Observer that runs hook scripts.
type Runner struct {
	dir         string
	timeout     time.Duration
	failureMode string
	reporter    errors.ErrorHandler
	now         func() time.Time

	mu   sync.Mutex
	last chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-script timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithFailureMode sets how failing scripts are surfaced: FailureWarn reports
// them through the reporter, FailureIgnore only logs them.
func WithFailureMode(mode string) Option {
	return func(r *Runner) {
		if mode == FailureWarn || mode == FailureIgnore {
			r.failureMode = mode
		}
	}
}

// WithReporter sets where warnings go. Without one, failures are only logged.
func WithReporter(h errors.ErrorHandler) Option {
	return func(r *Runner) {
		r.reporter = h
	}
}

// NewRunner returns a Runner for scripts under dir.
func NewRunner(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:         dir,
		timeout:     DefaultTimeout,
		failureMode: FailureWarn,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRunnerFromConfig returns a Runner built from the hooks_* settings, or
// nil when hooks_enabled is off.
func NewRunnerFromConfig(opts ...Option) *Runner {
	if !config.GetBool("hooks_enabled", true) {
		return nil
	}
	base := []Option{
		WithTimeout(config.GetDuration("hooks_timeout", DefaultTimeout)),
		WithFailureMode(config.Get("hooks_failure_mode", FailureWarn)),
	}
	return NewRunner(Dir(), append(base, opts...)...)
}

// Dir returns the configured hooks directory, {config_dir}/hooks by default.
func Dir() string {
	if dir := config.Get("hooks_dir", ""); dir != "" {
		return dir
	}
	return filepath.Join(config.Get("config_dir", ""), "hooks")
}

// LogAppended is a no-op; hooks only react to status changes.
func (r *Runner) LogAppended(*install.Session, string) {}

// StatusChanged runs pre-install hooks when a session starts and
// post-install hooks when it ends. A cancelled session still waiting on its
// process gets them from ProcessExited instead.
func (r *Runner) StatusChanged(s *install.Session, status install.Status) {
	point := PointPreInstall
	if status.Terminal() {
		point = PointPostInstall
	} else if status != install.StatusRunning {
		return
	}
	if _, exited := s.ExitCode(); status == install.StatusCancelled && !exited {
		return
	}
	r.Run(point, sessionEnv(s, status))
}

// ProcessExited runs post-install hooks for a cancelled session.
func (r *Runner) ProcessExited(s *install.Session, _ int) {
	r.Run(PointPostInstall, sessionEnv(s, install.StatusCancelled))
}

// sessionEnv describes s to hook scripts.
func sessionEnv(s *install.Session, status install.Status) map[string]string {
	inv := s.Invocation()
	env := map[string]string{
		"CLOUDCURIO_RUN_ID":  s.ID(),
		"CLOUDCURIO_STATUS":  string(status),
		"CLOUDCURIO_TAGS":    strings.Join(inv.Tags, ","),
		"CLOUDCURIO_COMMAND": inv.CommandLine(),
	}
	if code, exited := s.ExitCode(); exited {
		env["CLOUDCURIO_EXIT_CODE"] = strconv.Itoa(code)
	}
	return env
}

// Run queues the scripts of point. It returns at once; use Wait to block
// until queued scripts have finished.
func (r *Runner) Run(point string, env map[string]string) {
	scripts := Scripts(filepath.Join(r.dir, point))
	if len(scripts) == 0 {
		return
	}

	full := make(map[string]string, len(env)+3)
	for k, v := range env {
		full[k] = v
	}
	full["CLOUDCURIO_HOOK_POINT"] = point
	full["HOOK_TIMESTAMP"] = r.now().Format(time.RFC3339)
	if exe, err := os.Executable(); err == nil {
		full["CLOUDCURIO_BINARY"] = exe
	}

	r.mu.Lock()
	prev := r.last
	done := make(chan struct{})
	r.last = done
	r.wg.Add(1)
	r.mu.Unlock()

	logging.Debug("hooks queued", "point", point, "scripts", len(scripts))
	go func() {
		defer r.wg.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		for _, script := range scripts {
			r.runScript(point, script, full)
		}
	}()
}

// runScript executes one script, bounded by the runner timeout.
func (r *Runner) runScript(point, script string, env map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	name := filepath.Base(script)
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)
	if len(output) > 0 {
		logging.Info("hook output", "point", point, "script", name, "output", strings.TrimSpace(string(output)))
	}

	if err == nil {
		logging.Info("hook completed", "point", point, "script", name, "duration", duration.String())
		colors.StructuredDebug("hooks", "run", "completed", nil, env["CLOUDCURIO_RUN_ID"], map[string]interface{}{"script": name})
		return
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", r.timeout)
	}
	logging.Warn("hook failed", "point", point, "script", name, "error", err.Error())
	colors.StructuredWarn("hooks", "run", "failed", err, env["CLOUDCURIO_RUN_ID"], map[string]interface{}{"script": name})
	if r.failureMode == FailureWarn && r.reporter != nil {
		r.reporter.Warning(fmt.Sprintf("%s hook %s failed: %v", point, name, err))
	}
}

// Wait blocks until every queued script has finished or ctx ends.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scripts lists the executable files in dir, sorted by name. A missing
// directory has no scripts.
func Scripts(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}
