package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func sampleEntry(id string, started time.Time) Entry {
	return Entry{
		RunID:     id,
		Tags:      []string{"docker", "postgresql"},
		Command:   "ansible-playbook -i inventory/hosts.ini sites.yml --tags docker,postgresql",
		Status:    "running",
		StartedAt: started,
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestRecordAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, sampleEntry("run-1", started)))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"docker", "postgresql"}, got.Tags)
	assert.Equal(t, "running", got.Status)
	assert.False(t, got.HasExit)
	assert.True(t, got.FinishedAt.IsZero())
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, time.Duration(0), got.Duration())
}

func TestRecordUpdatesExistingRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, sampleEntry("run-1", started)))

	done := sampleEntry("run-1", started)
	done.Status = "failed"
	done.ExitCode = 2
	done.HasExit = true
	done.FinishedAt = started.Add(90 * time.Second)
	done.LogLines = 12
	done.LastLine = "fatal: [localhost]: FAILED!"
	require.NoError(t, s.Record(ctx, done))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.True(t, got.HasExit)
	assert.Equal(t, 2, got.ExitCode)
	assert.Equal(t, 12, got.LogLines)
	assert.Equal(t, "fatal: [localhost]: FAILED!", got.LastLine)
	assert.Equal(t, 90*time.Second, got.Duration())

	all, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordRequiresRunID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Record(context.Background(), Entry{}))
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestGetByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, sampleEntry("3f2c9a51-aaaa", base)))
	require.NoError(t, s.Record(ctx, sampleEntry("3f2c9a51-bbbb", base.Add(time.Minute))))
	require.NoError(t, s.Record(ctx, sampleEntry("9b1deb4d-cccc", base.Add(2*time.Minute))))

	got, err := s.Get(ctx, "9b1deb4d")
	require.NoError(t, err)
	assert.Equal(t, "9b1deb4d-cccc", got.RunID)

	got, err = s.Get(ctx, "3f2c9a51-bbbb")
	require.NoError(t, err)
	assert.Equal(t, "3f2c9a51-bbbb", got.RunID)

	_, err = s.Get(ctx, "3f2c9a51")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.Get(ctx, "3f2c%")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRecentNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Sub-second offsets check that ordering is not fooled by fraction width.
	require.NoError(t, s.Record(ctx, sampleEntry("a", base.Add(100*time.Millisecond))))
	require.NoError(t, s.Record(ctx, sampleEntry("b", base.Add(120*time.Millisecond))))
	require.NoError(t, s.Record(ctx, sampleEntry("c", base.Add(time.Second))))

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].RunID)
	assert.Equal(t, "b", got[1].RunID)

	_, err = s.Recent(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Record(ctx, sampleEntry(id, base.Add(time.Duration(i)*time.Minute))))
	}

	removed, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].RunID)
	assert.Equal(t, "c", got[1].RunID)

	_, err = s.Prune(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestDefaultPathUsesStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLOUDCURIO_CONFIG_DIR", t.TempDir())
	t.Setenv("CLOUDCURIO_STATE_DIR", dir)
	config.Load()

	assert.Equal(t, filepath.Join(dir, "history.db"), DefaultPath())
}
