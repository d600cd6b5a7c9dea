package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStatusClient struct {
	mock.Mock
}

func (m *mockStatusClient) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]history.Entry)
	return entries, args.Error(1)
}

func (m *mockStatusClient) Get(ctx context.Context, runID string) (history.Entry, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).(history.Entry), args.Error(1)
}

func (m *mockStatusClient) Close() error {
	return m.Called().Error(0)
}

var statusTestNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func sampleEntry() history.Entry {
	started := statusTestNow.Add(-2 * time.Hour)
	return history.Entry{
		RunID:      "3f2c9a51-8d7e-4b1a-9c3e-0a1b2c3d4e5f",
		Tags:       []string{"docker", "postgresql"},
		Command:    "ansible-playbook -i inventory/hosts.ini sites.yml --tags docker,postgresql",
		Status:     "succeeded",
		ExitCode:   0,
		HasExit:    true,
		StartedAt:  started,
		FinishedAt: started.Add(95 * time.Second),
		LogLines:   1204,
		LastLine:   "PLAY RECAP",
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	PrintHistory(&buf, nil, statusTestNow)
	assert.Equal(t, "No installations recorded yet\n", buf.String())

	running := sampleEntry()
	running.RunID = "abc"
	running.Status = "running"
	running.FinishedAt = time.Time{}

	buf.Reset()
	PrintHistory(&buf, []history.Entry{sampleEntry(), running}, statusTestNow)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	first := string(lines[0])
	assert.Contains(t, first, "3f2c9a51 ")
	assert.NotContains(t, first, "8d7e")
	assert.Contains(t, first, "succeeded")
	assert.Contains(t, first, "2 hours ago")
	assert.Contains(t, first, "1m35s")
	assert.Contains(t, first, "docker,postgresql")

	second := string(lines[1])
	assert.Contains(t, second, "abc ")
	assert.Contains(t, second, "running")
	assert.Contains(t, second, " - ")
}

func TestPrintRun(t *testing.T) {
	var buf bytes.Buffer
	PrintRun(&buf, sampleEntry())
	out := buf.String()

	assert.Contains(t, out, "Run:       3f2c9a51-8d7e-4b1a-9c3e-0a1b2c3d4e5f\n")
	assert.Contains(t, out, "Exit code: 0\n")
	assert.Contains(t, out, "(1m35s)")
	assert.Contains(t, out, "Tools:     docker, postgresql\n")
	assert.Contains(t, out, "Output:    1,204 lines\n")
	assert.Contains(t, out, "Last line: PLAY RECAP\n")
}

func TestStatusCmdListsRecentRuns(t *testing.T) {
	setupConfig(t)
	out := captureWriter(t, &statusOutputWriter)
	origNow := statusNow
	statusNow = func() time.Time { return statusTestNow }
	defer func() { statusNow = origNow }()

	client := new(mockStatusClient)
	client.On("Recent", mock.Anything, 20).Return([]history.Entry{sampleEntry()}, nil)
	client.On("Close").Return(nil)

	statusCmd := NewStatusCmd(func() (statusClient, error) { return client, nil })
	statusCmd.SetArgs([]string{})
	require.NoError(t, statusCmd.Execute())

	assert.Contains(t, out.String(), "docker,postgresql")
	client.AssertExpectations(t)
}

func TestStatusCmdShowsOneRun(t *testing.T) {
	setupConfig(t)
	out := captureWriter(t, &statusOutputWriter)

	client := new(mockStatusClient)
	client.On("Get", mock.Anything, "3f2c").Return(history.Entry{}, history.ErrEntryNotFound).Once()
	client.On("Get", mock.Anything, "run-1").Return(sampleEntry(), nil).Once()
	client.On("Close").Return(nil)

	open := func() (statusClient, error) { return client, nil }

	statusCmd := NewStatusCmd(open)
	statusCmd.SilenceErrors, statusCmd.SilenceUsage = true, true
	statusCmd.SetArgs([]string{"--run", "3f2c"})
	assert.ErrorIs(t, statusCmd.Execute(), history.ErrEntryNotFound)

	statusCmd = NewStatusCmd(open)
	statusCmd.SetArgs([]string{"--run", "run-1"})
	require.NoError(t, statusCmd.Execute())
	assert.Contains(t, out.String(), "Status:    succeeded")
	client.AssertExpectations(t)
}

func TestStatusCmdHonorsLimitFlag(t *testing.T) {
	setupConfig(t)
	captureWriter(t, &statusOutputWriter)

	client := new(mockStatusClient)
	client.On("Recent", mock.Anything, 3).Return([]history.Entry(nil), nil)
	client.On("Close").Return(nil)

	statusCmd := NewStatusCmd(func() (statusClient, error) { return client, nil })
	statusCmd.SetArgs([]string{"--limit", "3"})
	require.NoError(t, statusCmd.Execute())
	client.AssertExpectations(t)
}

func TestStatusCmdHistoryDisabled(t *testing.T) {
	t.Setenv("CLOUDCURIO_HISTORY_ENABLED", "false")
	setupConfig(t)
	out := captureWriter(t, &statusOutputWriter)

	statusCmd := NewStatusCmd(func() (statusClient, error) {
		t.Fatal("history must not be opened")
		return nil, nil
	})
	statusCmd.SetArgs([]string{})
	require.NoError(t, statusCmd.Execute())
	assert.Contains(t, out.String(), "disabled")
}

func TestStatusCmdOpenError(t *testing.T) {
	setupConfig(t)
	broken := errors.New("database is locked")

	statusCmd := NewStatusCmd(func() (statusClient, error) { return nil, broken })
	statusCmd.SilenceErrors, statusCmd.SilenceUsage = true, true
	statusCmd.SetArgs([]string{})
	assert.ErrorIs(t, statusCmd.Execute(), broken)
}

func TestStatusCmdFormat(t *testing.T) {
	setupConfig(t)
	out := captureWriter(t, &statusOutputWriter)

	client := new(mockStatusClient)
	client.On("Recent", mock.Anything, 20).Return([]history.Entry{sampleEntry()}, nil)
	client.On("Close").Return(nil)
	open := func() (statusClient, error) { return client, nil }

	statusCmd := NewStatusCmd(open)
	statusCmd.SetArgs([]string{"--format", "compact"})
	require.NoError(t, statusCmd.Execute())
	assert.Equal(t, "3f2c9a51 succeeded docker,postgresql\n", out.String())

	out.Reset()
	statusCmd = NewStatusCmd(open)
	statusCmd.SetArgs([]string{"--format", "{{tag-count}} tools, {{log-lines}} lines"})
	require.NoError(t, statusCmd.Execute())
	assert.Equal(t, "2 tools, 1204 lines\n", out.String())
}

func TestStatusCmdUnknownFormat(t *testing.T) {
	setupConfig(t)

	statusCmd := NewStatusCmd(func() (statusClient, error) {
		t.Fatal("history must not be opened for a bad format")
		return nil, nil
	})
	statusCmd.SilenceErrors, statusCmd.SilenceUsage = true, true
	statusCmd.SetArgs([]string{"--format", "tabel"})
	err := statusCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestStatusCmdUnknownTemplateVariable(t *testing.T) {
	setupConfig(t)

	statusCmd := NewStatusCmd(func() (statusClient, error) {
		t.Fatal("history must not be opened for a bad template")
		return nil, nil
	})
	statusCmd.SilenceErrors, statusCmd.SilenceUsage = true, true
	statusCmd.SetArgs([]string{"--format", "{{short-id}} {{unread-count}}"})
	err := statusCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable: unread-count")
}
