package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, decoded)
	}
	return events
}

func TestNewEventLogger(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logger.Path()); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.Path())
	}

	filename := filepath.Base(logger.Path())
	if len(filename) < len("events-20060102-150405.jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}

	if logger.RunID() == "" {
		t.Error("Expected a run id")
	}
}

func TestEventLogger_StampsRunID(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogProjectCreated(1, "/models/Vase")
	logger.LogProjectCreated(2, "/models/Benchy")
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	for i, e := range events {
		if e.RunID != logger.RunID() {
			t.Errorf("Event %d: run id %q, want %q", i, e.RunID, logger.RunID())
		}
		if e.Timestamp.IsZero() {
			t.Errorf("Event %d: timestamp not set", i)
		}
	}
}

func TestEventLogger_LogFilesSynced(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	err = logger.LogFilesSynced(7, "/models/Vase", []string{"a.stl", "b.stl"}, []string{"old.stl"})
	if err != nil {
		t.Fatalf("LogFilesSynced failed: %v", err)
	}
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Event != EventFilesSynced {
		t.Errorf("Expected event type 'files_synced', got '%s'", event.Event)
	}
	if event.ProjectID != 7 {
		t.Errorf("Expected project_id 7, got %d", event.ProjectID)
	}
	if event.Extra["added"] != "2" || event.Extra["removed"] != "1" {
		t.Errorf("Unexpected counts: %v", event.Extra)
	}
}

func TestEventLogger_LogThumbnail(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	duration := 250 * time.Millisecond
	logger.LogThumbnail("/models/Vase/vase.stl", "/models/Vase/.printshelf/vase.stl.png", duration, nil)
	logger.LogThumbnail("/models/Vase/broken.stl", "/models/Vase/.printshelf/broken.stl.png", duration, errors.New("exit status 1"))
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	if events[0].Level != LevelInfo {
		t.Errorf("Expected level 'info', got '%s'", events[0].Level)
	}
	if events[0].Duration != duration.Milliseconds() {
		t.Errorf("Expected duration %d ms, got %d ms", duration.Milliseconds(), events[0].Duration)
	}
	if events[1].Level != LevelWarning {
		t.Errorf("Expected level 'warning', got '%s'", events[1].Level)
	}
	if events[1].Error != "exit status 1" {
		t.Errorf("Expected error message, got '%s'", events[1].Error)
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				if err := logger.LogEdit(int64(id), "add_tag", "pla"); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}(i)
	}

	wg.Wait()
	logger.Close()

	events := readEvents(t, logger.Path())
	expected := numGoroutines * eventsPerGoroutine
	if len(events) != expected {
		t.Errorf("Expected %d events, got %d", expected, len(events))
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventReconcile}); err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}
	if err := logger.LogProjectCreated(1, "/path"); err != nil {
		t.Errorf("NullLogger.LogProjectCreated should not return error, got: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}
	if path := logger.Path(); path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_LogLevelFiltering(t *testing.T) {
	all := []Event{
		{Level: LevelDebug, Event: EventTile},
		{Level: LevelInfo, Event: EventProjectCreated},
		{Level: LevelWarning, Event: EventThumbnail},
		{Level: LevelError, Event: EventError},
	}

	testCases := []struct {
		name          string
		minLevel      EventLevel
		expectedCount int
	}{
		{"LevelDebug logs all", LevelDebug, 4},
		{"LevelInfo skips debug", LevelInfo, 3},
		{"LevelWarning skips debug and info", LevelWarning, 2},
		{"LevelError only logs errors", LevelError, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := NewEventLogger(t.TempDir(), tc.minLevel)
			if err != nil {
				t.Fatalf("NewEventLogger failed: %v", err)
			}

			for _, e := range all {
				e := e
				if err := logger.Log(&e); err != nil {
					t.Fatalf("Log failed: %v", err)
				}
			}
			logger.Close()

			if got := len(readEvents(t, logger.Path())); got != tc.expectedCount {
				t.Errorf("Expected %d events logged, got %d", tc.expectedCount, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]EventLevel{
		"debug":   LevelDebug,
		"warning": LevelWarning,
		"error":   LevelError,
		"":        LevelInfo,
		"loud":    LevelInfo,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", input, got, want)
		}
	}
}
