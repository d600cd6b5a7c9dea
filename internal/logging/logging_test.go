package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("CLOUDCURIO_CONFIG_DIR", filepath.Join(tmp, "config"))
	t.Setenv("CLOUDCURIO_STATE_DIR", filepath.Join(tmp, "state"))
	config.Load()
	return tmp
}

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestConfigFromGlobal(t *testing.T) {
	setupTest(t)
	t.Setenv("CLOUDCURIO_LOGGING_ENABLED", "true")
	t.Setenv("CLOUDCURIO_LOGGING_LEVEL", "warn")
	t.Setenv("CLOUDCURIO_LOGGING_MAX_FILES", "5")
	config.Load()

	cfg := FromGlobalConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.Equal(t, filepath.Base(os.Args[0]), cfg.Command)
	assert.Equal(t, os.Getpid(), cfg.PID)
}

func TestDebugForcesDebugLevel(t *testing.T) {
	setupTest(t)
	t.Setenv("CLOUDCURIO_DEBUG", "true")
	t.Setenv("CLOUDCURIO_LOGGING_LEVEL", "error")
	config.Load()

	assert.Equal(t, "debug", FromGlobalConfig().Level)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]clog.Level{
		"debug":   clog.DebugLevel,
		"INFO":    clog.InfoLevel,
		"warning": clog.WarnLevel,
		"warn":    clog.WarnLevel,
		"error":   clog.ErrorLevel,
		"bogus":   clog.InfoLevel,
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(input))
		})
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	setupTest(t)

	l, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, noopLogger{}, l)
	assert.NoError(t, l.Shutdown())
}

func TestInitWritesJSONWithRedaction(t *testing.T) {
	tmp := setupTest(t)

	l, err := Init(Config{Enabled: true, Level: "debug", MaxFiles: 3, Command: "install", PID: 42})
	require.NoError(t, err)
	impl := l.(*fileLogger)
	assert.True(t, strings.HasPrefix(impl.path(), filepath.Join(tmp, "state", "logs")))

	l.With("run_id", "abc").Info("install started", "tags", "docker,podman", "vault_token", "s3cr3t")
	l.Debug("detail")
	require.NoError(t, l.Shutdown())

	entries := readEntries(t, impl.path())
	require.Len(t, entries, 2)
	assert.Equal(t, "install started", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["run_id"])
	assert.Equal(t, "docker,podman", entries[0]["tags"])
	assert.Equal(t, "[REDACTED]", entries[0]["vault_token"])
	assert.EqualValues(t, 42, entries[0]["pid"])
	assert.Equal(t, "detail", entries[1]["msg"])
}

func TestLevelFiltering(t *testing.T) {
	setupTest(t)

	l, err := Init(Config{Enabled: true, Level: "error", MaxFiles: 3, Command: "tui", PID: 1})
	require.NoError(t, err)
	path := l.(*fileLogger).path()
	l.Info("dropped")
	l.Error("kept")
	require.NoError(t, l.Shutdown())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestRedactorSegments(t *testing.T) {
	assert.True(t, sensitiveKey("BW_SESSION"))
	assert.True(t, sensitiveKey("become-pass"))
	assert.True(t, sensitiveKey("api_key"))
	assert.False(t, sensitiveKey("run_id"))
	assert.False(t, sensitiveKey("keyboard"))

	pairs := []any{"password", "hunter2", "tags", "docker"}
	redacted := redact(pairs)
	assert.Equal(t, []any{"password", "[REDACTED]", "tags", "docker"}, redacted)
	assert.Equal(t, "hunter2", pairs[1])
}

func TestRotateKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%d.log", logFilePrefix, i))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, ts, ts))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0600))

	require.NoError(t, rotate(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{logFilePrefix + "3.log", logFilePrefix + "4.log", "other.log"}, names)
}

func TestGlobalLoggerLifecycle(t *testing.T) {
	setupTest(t)
	t.Setenv("CLOUDCURIO_LOGGING_ENABLED", "true")
	config.Load()

	require.NoError(t, InitGlobal())
	assert.NotEmpty(t, CurrentLogFile())
	path := CurrentLogFile()
	ForRun("3f2c9a51").Info("install started", "tags", "docker")
	require.NoError(t, ShutdownGlobal())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "3f2c9a51", entries[0]["run_id"])
	assert.Empty(t, CurrentLogFile())
	assert.IsType(t, noopLogger{}, GetGlobal())
}
