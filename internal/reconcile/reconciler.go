// Package reconcile keeps the catalog in step with the watched directories.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// CacheDirName is the reserved directory holding generated thumbnails.
// It is never treated as project content.
const CacheDirName = ".printshelf"

// Reconciler discovers project directories and syncs their file lists
type Reconciler struct {
	store    *store.Store
	fs       afero.Fs
	logger   *report.EventLogger
	progress bool
}

// Config holds reconciler configuration
type Config struct {
	Store    *store.Store
	Fs       afero.Fs // defaults to the OS filesystem
	Logger   *report.EventLogger
	Progress bool // show a progress bar when stdout is a terminal
}

// Options tunes a single scan
type Options struct {
	// Refresh re-syncs the file lists of already cataloged projects too
	Refresh bool
}

// New creates a new Reconciler
func New(cfg *Config) *Reconciler {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Reconciler{
		store:    cfg.Store,
		fs:       fsys,
		logger:   cfg.Logger,
		progress: cfg.Progress,
	}
}

// Result summarizes a scan
type Result struct {
	RootsScanned     int
	ProjectsCreated  int
	ProjectsExisting int
	FilesAdded       int
	FilesRemoved     int
	Errors           []error
}

// Writes returns the number of rows the scan inserted or deleted
func (r *Result) Writes() int {
	return r.ProjectsCreated + r.FilesAdded + r.FilesRemoved
}

func (r *Result) merge(other *Result) {
	r.RootsScanned += other.RootsScanned
	r.ProjectsCreated += other.ProjectsCreated
	r.ProjectsExisting += other.ProjectsExisting
	r.FilesAdded += other.FilesAdded
	r.FilesRemoved += other.FilesRemoved
	r.Errors = append(r.Errors, other.Errors...)
}

// ScanRoots scans every watched root. Unreadable roots are recorded in
// Result.Errors and the remaining roots are still scanned.
func (r *Reconciler) ScanRoots(ctx context.Context, roots []string, opts Options) (*Result, error) {
	result := &Result{}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rootResult, err := r.ScanRoot(ctx, root, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			util.WarnLog("Skipping root %s: %v", root, err)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.merge(rootResult)
	}

	return result, nil
}

// ScanRoot treats every immediate subdirectory of root as a project.
// New directories become projects and get their files synced.
func (r *Reconciler) ScanRoot(ctx context.Context, root string, opts Options) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	util.InfoLog("Scanning root: %s", root)

	entries, err := afero.ReadDir(r.fs, root)
	if err != nil {
		r.logError(root, err)
		return nil, fmt.Errorf("failed to read root %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != CacheDirName {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}

	result := &Result{RootsScanned: 1}
	bar := r.newProgressBar(len(dirs))

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := r.scanProjectDir(ctx, dir, opts, result); err != nil {
			util.ErrorLog("Failed to reconcile %s: %v", dir, err)
			r.logError(dir, err)
			result.Errors = append(result.Errors, err)
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	if bar != nil {
		bar.Finish()
	}

	util.DebugLog("Root %s: %d created, %d existing, +%d/-%d files",
		root, result.ProjectsCreated, result.ProjectsExisting, result.FilesAdded, result.FilesRemoved)

	return result, nil
}

func (r *Reconciler) scanProjectDir(ctx context.Context, dir string, opts Options, result *Result) error {
	project, err := r.store.FindProjectByPath(ctx, dir)
	switch {
	case err == nil:
		result.ProjectsExisting++
		if !opts.Refresh {
			return nil
		}
	case errors.Is(err, store.ErrNotFound):
		project, err = r.store.CreateProject(ctx, filepath.Base(dir), dir, "")
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		result.ProjectsCreated++
		util.InfoLog("New project: %s", project.Name)
		r.logger.LogProjectCreated(project.ID, project.Path)
	default:
		return fmt.Errorf("failed to look up project: %w", err)
	}

	diff, err := r.SyncProject(ctx, project)
	if err != nil {
		return err
	}
	result.FilesAdded += len(diff.Added)
	result.FilesRemoved += len(diff.Removed)

	return nil
}

// SyncProject re-lists the project's directory and reconciles its files
func (r *Reconciler) SyncProject(ctx context.Context, project *store.Project) (*store.FileDiff, error) {
	files, err := r.ListFiles(project.Path)
	if err != nil {
		return nil, err
	}

	diff, err := r.store.UpdateProjectFiles(ctx, project, files)
	if err != nil {
		return nil, fmt.Errorf("failed to sync files of %s: %w", project.Name, err)
	}

	if !diff.Empty() {
		util.InfoLog("%s: %d added, %d removed", project.Name, len(diff.Added), len(diff.Removed))
		r.logger.LogFilesSynced(project.ID, project.Path, diff.Added, diff.Removed)
	}

	return diff, nil
}

// ListFiles returns every regular file under dir, sorted, skipping the
// reserved cache directory at any depth
func (r *Reconciler) ListFiles(dir string) ([]string, error) {
	var files []string

	err := afero.Walk(r.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			util.WarnLog("Error accessing path %s: %v", path, err)
			return nil
		}

		if info.IsDir() {
			if info.Name() == CacheDirName {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func (r *Reconciler) newProgressBar(total int) *progressbar.ProgressBar {
	if !r.progress || total == 0 || util.IsQuiet() || !util.IsTerminal(os.Stdout.Fd()) {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Reconciling"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("projects"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Reconciler) logError(path string, err error) {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		path = pathErr.Path
	}
	r.logger.LogError(report.EventReconcile, path, err)
}
