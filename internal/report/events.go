package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventReconcile      EventType = "reconcile"
	EventProjectCreated EventType = "project_created"
	EventFilesSynced    EventType = "files_synced"
	EventThumbnail      EventType = "thumbnail"
	EventTile           EventType = "tile"
	EventEdit           EventType = "edit"
	EventError          EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel maps a level name to an EventLevel, defaulting to info
func ParseLevel(name string) EventLevel {
	level := EventLevel(name)
	if _, ok := levelPriority[level]; ok {
		return level
	}
	return LevelInfo
}

// Event is a single line in the event log
type Event struct {
	Timestamp time.Time         `json:"ts"`
	RunID     string            `json:"run_id"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	ProjectID int64             `json:"project_id,omitempty"`
	Path      string            `json:"path,omitempty"`
	Target    string            `json:"target,omitempty"`
	Action    string            `json:"action,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil *EventLogger is valid
// and drops everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    uuid.NewString(),
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogProjectCreated records a project discovered on disk
func (l *EventLogger) LogProjectCreated(projectID int64, path string) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventProjectCreated,
		ProjectID: projectID,
		Path:      path,
	})
}

// LogFilesSynced records the outcome of a file reconciliation
func (l *EventLogger) LogFilesSynced(projectID int64, path string, added, removed []string) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventFilesSynced,
		ProjectID: projectID,
		Path:      path,
		Extra: map[string]string{
			"added":   strconv.Itoa(len(added)),
			"removed": strconv.Itoa(len(removed)),
		},
	})
}

// LogThumbnail records a thumbnail render attempt
func (l *EventLogger) LogThumbnail(model, target string, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventThumbnail,
		Path:     model,
		Target:   target,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogTile records a generated tile image
func (l *EventLogger) LogTile(projectID int64, target string, placeholder bool) error {
	return l.Log(&Event{
		Level:     LevelDebug,
		Event:     EventTile,
		ProjectID: projectID,
		Target:    target,
		Extra: map[string]string{
			"placeholder": strconv.FormatBool(placeholder),
		},
	})
}

// LogEdit records a user edit of catalog data
func (l *EventLogger) LogEdit(projectID int64, action, target string) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventEdit,
		ProjectID: projectID,
		Action:    action,
		Target:    target,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the identifier stamped on every event of this run
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
