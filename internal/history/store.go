// Package history keeps a SQLite record of finished install sessions.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	dbFileName = "history.db"
	// Fixed width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	// ErrEntryNotFound indicates that no run has the requested id.
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrAmbiguousID indicates an ID prefix shared by several runs.
	ErrAmbiguousID = errors.New("run id prefix matches more than one run")
	// ErrInvalidLimit indicates a non-positive limit.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// Entry is one recorded install run.
type Entry struct {
	RunID      string
	Tags       []string
	Command    string
	Status     string
	ExitCode   int
	HasExit    bool
	StartedAt  time.Time
	FinishedAt time.Time
	LogLines   int
	LastLine   string
}

// Duration is FinishedAt minus StartedAt, or zero while unfinished.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store is a SQLite-backed history store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns {state_dir}/history.db.
func DefaultPath() string {
	return filepath.Join(config.Get("state_dir", ""), dbFileName)
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("history: db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), config.FileModeDir); err != nil {
		return nil, fmt.Errorf("history: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("history: create schema: %w", err)
	}
	return nil
}

// Record inserts or replaces the entry with the same RunID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.RunID) == "" {
		return fmt.Errorf("history: record: run id cannot be empty")
	}
	var exitCode sql.NullInt64
	if e.HasExit {
		exitCode = sql.NullInt64{Int64: int64(e.ExitCode), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO install_runs (run_id, tags, command, status, exit_code, started_at, finished_at, log_lines, last_line)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
    status = excluded.status,
    exit_code = excluded.exit_code,
    finished_at = excluded.finished_at,
    log_lines = excluded.log_lines,
    last_line = excluded.last_line`,
		e.RunID,
		strings.Join(e.Tags, ","),
		e.Command,
		e.Status,
		exitCode,
		formatTime(e.StartedAt),
		formatTime(e.FinishedAt),
		e.LogLines,
		e.LastLine,
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", e.RunID, err)
	}
	return nil
}

const selectColumns = `SELECT run_id, tags, command, status, exit_code, started_at, finished_at, log_lines, last_line FROM install_runs`

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("history: recent: %w", ErrInvalidLimit)
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: recent: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	return entries, nil
}

// Get returns the entry for runID, or for the one run whose ID starts with
// runID, so that the short IDs printed by status work.
func (s *Store) Get(ctx context.Context, runID string) (Entry, error) {
	if runID == "" {
		return Entry{}, fmt.Errorf("history: get: %w: empty id", ErrEntryNotFound)
	}
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE run_id = ?`, runID))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("history: get: %w", err)
	}

	pattern := likeEscaper.Replace(runID) + "%"
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE run_id LIKE ? ESCAPE '\' ORDER BY started_at DESC LIMIT 2`, pattern)
	if err != nil {
		return Entry{}, fmt.Errorf("history: get: %w", err)
	}
	defer rows.Close()

	var matches []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, fmt.Errorf("history: get: %w", err)
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("history: get: %w", err)
	}
	switch len(matches) {
	case 0:
		return Entry{}, fmt.Errorf("history: get: %w: %s", ErrEntryNotFound, runID)
	case 1:
		return matches[0], nil
	default:
		return Entry{}, fmt.Errorf("history: get: %w: %s", ErrAmbiguousID, runID)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Prune deletes all but the newest keep entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("history: prune: %w", ErrInvalidLimit)
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM install_runs WHERE run_id NOT IN (
    SELECT run_id FROM install_runs ORDER BY started_at DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (Entry, error) {
	var (
		e        Entry
		tags     string
		exitCode sql.NullInt64
		started  string
		finished string
	)
	if err := r.Scan(&e.RunID, &tags, &e.Command, &e.Status, &exitCode, &started, &finished, &e.LogLines, &e.LastLine); err != nil {
		return Entry{}, err
	}
	if tags != "" {
		e.Tags = strings.Split(tags, ",")
	}
	if exitCode.Valid {
		e.ExitCode = int(exitCode.Int64)
		e.HasExit = true
	}
	var err error
	if e.StartedAt, err = parseTime(started); err != nil {
		return Entry{}, fmt.Errorf("started_at of %s: %w", e.RunID, err)
	}
	if e.FinishedAt, err = parseTime(finished); err != nil {
		return Entry{}, fmt.Errorf("finished_at of %s: %w", e.RunID, err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
