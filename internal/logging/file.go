package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
)

const logFilePrefix = "cloudcurio_"

// fileLogger writes JSON lines through charmbracelet/log. Loggers derived
// with With share the file.
type fileLogger struct {
	out    *logFile
	clog   *clog.Logger
	fields []any
}

type logFile struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Init opens a log file for cfg, or returns a no-op logger when logging is
// disabled.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	dir, err := logDir()
	if err != nil {
		return nil, fmt.Errorf("log directory: %w", err)
	}
	if err := rotate(dir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}

	name := fmt.Sprintf("%s%s_PID%d_%s.log", logFilePrefix, time.Now().Format("20060102_150405"),
		cfg.PID, strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	})
	return &fileLogger{
		out:  &logFile{f: f, path: path},
		clog: l.With("pid", cfg.PID, "command", cfg.Command),
	}, nil
}

func (l *fileLogger) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *fileLogger) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *fileLogger) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *fileLogger) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *fileLogger) log(level clog.Level, msg string, args []any) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.f == nil {
		return
	}
	l.clog.Log(level, msg, redact(append(l.fields[:len(l.fields):len(l.fields)], args...))...)
}

func (l *fileLogger) With(args ...any) Logger {
	fields := append([]any(nil), l.fields...)
	for i := 0; i+1 < len(args); i += 2 {
		if _, ok := args[i].(string); ok {
			fields = append(fields, args[i], args[i+1])
		}
	}
	return &fileLogger{out: l.out, clog: l.clog, fields: fields}
}

func (l *fileLogger) Shutdown() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.f == nil {
		return nil
	}
	err := l.out.f.Close()
	l.out.f = nil
	return err
}

func (l *fileLogger) path() string {
	return l.out.path
}

// logDir returns {state_dir}/logs when it is writable and a directory under
// the system temp dir otherwise.
func logDir() (string, error) {
	if state := config.Get("state_dir", ""); state != "" {
		dir := filepath.Join(state, "logs")
		if os.MkdirAll(dir, 0700) == nil && writable(dir) {
			return dir, nil
		}
	}
	dir := filepath.Join(os.TempDir(), "cloudcurio", "logs")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".writable")
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

// rotate deletes the oldest cloudcurio_*.log files so that at most keep
// remain. keep <= 0 disables rotation.
func rotate(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil || len(paths) <= keep {
		return err
	}
	modified := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			modified[p] = info.ModTime()
		}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := modified[paths[i]], modified[paths[j]]
		if a.Equal(b) {
			return paths[i] < paths[j]
		}
		return a.Before(b)
	})
	for _, p := range paths[:len(paths)-keep] {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
