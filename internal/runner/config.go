package runner

import "time"

// DefaultMaxLineLength bounds a single output line. Longer lines end the scan
// with a read error line.
const DefaultMaxLineLength = 1024 * 1024

// DefaultDrainTimeout bounds how long output is read after the process
// exited. Background children that keep the pipe open are cut off then.
const DefaultDrainTimeout = 2 * time.Second

// Option is a functional option for configuring an ExecRunner.
type Option func(*ExecRunner)

// WithWorkDir runs the process in dir. Empty means the current directory.
func WithWorkDir(dir string) Option {
	return func(r *ExecRunner) {
		r.workDir = dir
	}
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *ExecRunner) {
		r.env = append(r.env, env...)
	}
}

// WithMaxLineLength overrides DefaultMaxLineLength.
func WithMaxLineLength(n int) Option {
	return func(r *ExecRunner) {
		if n > 0 {
			r.maxLineLen = n
		}
	}
}

// WithDrainTimeout overrides DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) Option {
	return func(r *ExecRunner) {
		if d > 0 {
			r.drainTimeout = d
		}
	}
}
