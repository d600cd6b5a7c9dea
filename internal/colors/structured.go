package colors

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// StructuredLogLevel is the level of a structured event.
type StructuredLogLevel string

const (
	LevelDebug StructuredLogLevel = "debug"
	LevelInfo  StructuredLogLevel = "info"
	LevelWarn  StructuredLogLevel = "warn"
	LevelError StructuredLogLevel = "error"
)

// Event is one JSON line of debug output. ID names what the event is
// about: a run ID, a command or a catalog tag.
type Event struct {
	Timestamp string                 `json:"timestamp"`
	Level     StructuredLogLevel     `json:"level"`
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

var (
	eventsMu    sync.Mutex
	eventsMuted atomic.Bool
)

// DisableStructuredLogging mutes events while the TUI owns the terminal.
func DisableStructuredLogging() { eventsMuted.Store(true) }

// EnableStructuredLogging unmutes events.
func EnableStructuredLogging() { eventsMuted.Store(false) }

// StructuredLog writes an event to stderr. Events are only written in debug
// mode and while not muted.
func StructuredLog(level StructuredLogLevel, component, action, status string, err error, id string, fields map[string]interface{}) {
	if !debugEnabled || eventsMuted.Load() {
		return
	}
	ev := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: component,
		Action:    action,
		Status:    status,
		ID:        id,
		Fields:    fields,
	}
	if err != nil {
		ev.Error = err.Error()
	}

	eventsMu.Lock()
	defer eventsMu.Unlock()
	if encErr := json.NewEncoder(stderr).Encode(ev); encErr != nil {
		errorFallback("failed to write structured log: " + encErr.Error())
	}
}

func StructuredDebug(component, action, status string, err error, id string, fields map[string]interface{}) {
	StructuredLog(LevelDebug, component, action, status, err, id, fields)
}

func StructuredInfo(component, action, status string, err error, id string, fields map[string]interface{}) {
	StructuredLog(LevelInfo, component, action, status, err, id, fields)
}

func StructuredWarn(component, action, status string, err error, id string, fields map[string]interface{}) {
	StructuredLog(LevelWarn, component, action, status, err, id, fields)
}

func StructuredError(component, action, status string, err error, id string, fields map[string]interface{}) {
	StructuredLog(LevelError, component, action, status, err, id, fields)
}
