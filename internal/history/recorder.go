package history

import (
	"context"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
)

// DefaultRetention is how many runs the recorder keeps.
const DefaultRetention = 200

const recordTimeout = 5 * time.Second

// Recorder is an install.Observer that writes every session to a Store:
// once when it starts and again when it reaches a terminal state.
type Recorder struct {
	store     *Store
	retention int
}

// NewRecorder returns a Recorder keeping at most retention runs.
func NewRecorder(store *Store, retention int) *Recorder {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Recorder{store: store, retention: retention}
}

// LogAppended is a no-op; only line counts are stored.
func (r *Recorder) LogAppended(*install.Session, string) {}

// StatusChanged records the session.
func (r *Recorder) StatusChanged(s *install.Session, status install.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	entry := EntryFromSession(s, status)
	if err := r.store.Record(ctx, entry); err != nil {
		colors.StructuredWarn("history", "record", "failed", err, entry.RunID, nil)
		logging.ForRun(entry.RunID).Warn("history record failed", "error", err.Error())
		return
	}
	if status.Terminal() {
		if _, err := r.store.Prune(ctx, r.retention); err != nil {
			logging.Warn("history prune failed", "error", err.Error())
		}
	}
}

// ProcessExited updates a cancelled run with its exit code.
func (r *Recorder) ProcessExited(s *install.Session, _ int) {
	r.StatusChanged(s, install.StatusCancelled)
}

// EntryFromSession snapshots s. status is passed explicitly because observers
// are notified while the session is mid-transition.
func EntryFromSession(s *install.Session, status install.Status) Entry {
	inv := s.Invocation()
	log := s.Log()
	e := Entry{
		RunID:      s.ID(),
		Tags:       append([]string(nil), inv.Tags...),
		Command:    inv.CommandLine(),
		Status:     string(status),
		StartedAt:  s.StartedAt(),
		FinishedAt: s.FinishedAt(),
		LogLines:   len(log),
	}
	if len(log) > 0 {
		e.LastLine = log[len(log)-1]
	}
	e.ExitCode, e.HasExit = s.ExitCode()
	return e
}
