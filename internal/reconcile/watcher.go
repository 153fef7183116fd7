package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-reconciles projects as their directories change
type Watcher struct {
	r        *Reconciler
	roots    []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given roots. A zero debounce uses
// DefaultDebounce.
func NewWatcher(r *Reconciler, roots []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{r: r, debounce: debounce, fsw: fsw}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		w.roots = append(w.roots, abs)
		if err := w.addTree(abs); err != nil {
			util.WarnLog("Not watching %s: %v", abs, err)
		}
	}

	return w, nil
}

// addTree watches dir and every directory below it except cache directories
func (w *Watcher) addTree(dir string) error {
	return afero.Walk(w.r.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == CacheDirName {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			util.DebugLog("Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes filesystem events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]string)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			root, projectDir, ok := projectDirFor(w.roots, event.Name)
			if !ok {
				continue
			}
			util.DebugLog("Watch event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if info, err := w.r.fs.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						util.DebugLog("Failed to watch %s: %v", event.Name, err)
					}
				}
			}

			pending[projectDir] = root
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("Watcher error: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]string)
		}
	}
}

// flush reconciles every project touched since the last flush. Directories
// that are not cataloged yet trigger a scan of their root.
func (w *Watcher) flush(ctx context.Context, pending map[string]string) {
	rescanned := make(map[string]bool)

	for projectDir, root := range pending {
		project, err := w.r.store.FindProjectByPath(ctx, projectDir)
		if errors.Is(err, store.ErrNotFound) {
			if rescanned[root] {
				continue
			}
			rescanned[root] = true
			if _, err := w.r.ScanRoot(ctx, root, Options{}); err != nil {
				util.WarnLog("Failed to scan %s: %v", root, err)
			}
			continue
		}
		if err != nil {
			util.WarnLog("Failed to look up %s: %v", projectDir, err)
			continue
		}

		if _, err := w.r.fs.Stat(projectDir); err != nil {
			// Directory gone; the project is kept until removed by hand
			util.DebugLog("Project directory %s is gone", projectDir)
			continue
		}

		if _, err := w.r.SyncProject(ctx, project); err != nil {
			util.WarnLog("Failed to sync %s: %v", project.Name, err)
		}
	}
}

// projectDirFor maps a changed path to the watched root containing it and
// the project directory it belongs to. Paths inside cache directories and
// the roots themselves are ignored.
func projectDirFor(roots []string, path string) (root, projectDir string, ok bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}

		parts := strings.Split(rel, string(filepath.Separator))
		for _, part := range parts {
			if part == CacheDirName {
				return "", "", false
			}
		}

		return root, filepath.Join(root, parts[0]), true
	}

	return "", "", false
}
