package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/thumb"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure pshelf can operate correctly.

This command checks:
- The thumbnail tool (optional, needed for model previews)
- SQLite version
- Database accessibility, integrity and schema version
- The configuration directory (writable, disk space)
- Every watched root (readable)

Use this command to troubleshoot issues before scanning.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== PrintShelf Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	// 1. Check the thumbnail tool (optional)
	results = append(results, checkThumbnailer(GetConfigString("thumbnailer", thumb.DefaultTool)))

	// 2. Check SQLite
	results = append(results, checkSQLite())

	// 3. Check configuration directory
	dir, err := configDir()
	if err != nil {
		results = append(results, checkResult{
			name:    "Config directory",
			error:   true,
			message: err.Error(),
		})
	} else {
		results = append(results, checkConfigDirectory(dir))
		results = append(results, checkDiskSpace(dir, "config"))

		// 4. Check database file
		results = append(results, checkDatabase(GetConfigString("db", filepath.Join(dir, dbFileName))))

		// 5. Check watched roots
		s, err := settings.Load(afero.NewOsFs(), dir)
		if err != nil {
			results = append(results, checkResult{
				name:    "Settings",
				error:   true,
				message: err.Error(),
			})
		} else if !s.HasPrintPaths() {
			results = append(results, checkResult{
				name:    "Watched roots",
				warning: true,
				message: "none configured (use 'pshelf roots add <dir>')",
			})
		} else {
			for _, root := range s.PrintPaths {
				results = append(results, checkRoot(root))
			}
		}
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running pshelf.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! PrintShelf is ready.")
	}

	return nil
}

// checkThumbnailer verifies the thumbnail tool is on PATH (optional)
func checkThumbnailer(tool string) checkResult {
	name := fmt.Sprintf("%s (optional)", tool)

	path, err := thumb.LookTool(tool)
	if err != nil {
		return checkResult{
			name:    name,
			warning: true,
			message: "not found (model previews are disabled)",
		}
	}

	return checkResult{
		name:    name,
		message: path,
	}
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (%s driver)", version, store.DriverName),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag)",
		}
	}

	// Check if database exists
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	// Check if it's a regular file
	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	// Try to open it
	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	ctx := context.Background()

	// Check integrity
	if err := db.CheckIntegrity(ctx); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	// Get some stats
	version, _ := db.SchemaVersion(ctx)
	projects, _ := db.CountProjects(ctx)
	files, _ := db.CountFiles(ctx)
	size := humanize.Bytes(uint64(info.Size()))

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, schema v%d, %d projects, %d files)", dbPath, size, version, projects, files),
	}
}

// checkRoot verifies a watched root is a readable directory
func checkRoot(path string) checkResult {
	name := fmt.Sprintf("Root %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot access: %v", err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    name,
			error:   true,
			message: "not a directory",
		}
	}

	// Check read permission by trying to list directory
	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot read: %v", err),
		}
	}

	return checkResult{
		name:    name,
		message: fmt.Sprintf("%d entries", len(entries)),
	}
}

// checkConfigDirectory verifies the configuration directory is writable
func checkConfigDirectory(path string) checkResult {
	const name = "Config directory"

	// Create it the way the first run would
	if err := os.MkdirAll(path, 0755); err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot create %s: %v", path, err),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}
	if !info.IsDir() {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	// Check write permission by creating a temp file
	testFile := filepath.Join(path, ".pshelf_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    name,
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)

	// Warn below 1GB
	warning := availBytes < 1<<30
	warningMsg := ""
	if warning {
		warningMsg = " (low space!)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", humanize.Bytes(availBytes), warningMsg),
	}
}
