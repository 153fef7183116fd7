package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/print-shelf/internal/store"
)

func TestCheckThumbnailer(t *testing.T) {
	result := checkThumbnailer("pshelf-no-such-renderer")

	// The thumbnail tool is optional: missing means a warning, never an error
	if result.error {
		t.Errorf("thumbnail tool check should not error, got: %s", result.message)
	}
	if !result.warning {
		t.Error("expected warning for missing thumbnail tool")
	}
}

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message about database creation")
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.CreateProject(context.Background(), "Vase", "/models/Vase", ""); err != nil {
		t.Fatalf("failed to insert test project: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath)

	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message with database info")
	}
}

func TestCheckDatabase_Empty(t *testing.T) {
	result := checkDatabase("")

	if !result.warning {
		t.Error("expected warning for empty database path")
	}
}

func TestCheckDatabase_NotAFile(t *testing.T) {
	result := checkDatabase(t.TempDir())

	if !result.error {
		t.Error("expected error when database path is a directory")
	}
}

func TestCheckRoot_Valid(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "Vase"), 0755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}

	result := checkRoot(dir)

	if result.error {
		t.Errorf("root check failed: %s", result.message)
	}
}

func TestCheckRoot_NonExistent(t *testing.T) {
	result := checkRoot("/nonexistent/path/that/does/not/exist")

	if !result.error {
		t.Error("expected error for non-existent directory")
	}
}

func TestCheckRoot_File(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkRoot(filePath)

	if !result.error {
		t.Error("expected error when path is a file, not a directory")
	}
}

func TestCheckConfigDirectory_Create(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "PrintShelf")

	result := checkConfigDirectory(newDir)

	if result.error {
		t.Errorf("config directory check failed: %s", result.message)
	}

	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
	if _, err := os.Stat(filepath.Join(newDir, ".pshelf_write_test")); !os.IsNotExist(err) {
		t.Error("expected write test file to be removed")
	}
}

func TestCheckConfigDirectory_File(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkConfigDirectory(filePath)

	if !result.error {
		t.Error("expected error when path is a file, not a directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := checkDiskSpace(t.TempDir(), "test")

	if result.error {
		t.Errorf("disk space check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message with disk space info")
	}
}

func TestCheckDiskSpace_NonExistent(t *testing.T) {
	result := checkDiskSpace("/nonexistent/path", "test")

	if !result.warning {
		t.Error("expected warning for non-existent path")
	}
}
