// Package thumb resolves representative images for projects, rendering
// model files through an external tool and caching the result next to them.
package thumb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/print-shelf/internal/filetype"
	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// CacheDirName is the per-directory folder holding generated images
const CacheDirName = ".printshelf"

var (
	// ErrNoImage is returned when a project has nothing that can be shown
	ErrNoImage = errors.New("no displayable image")
	// ErrNoRenderer is returned when no thumbnail tool is available
	ErrNoRenderer = fmt.Errorf("thumbnail tool %w", util.ErrNotFound)
	// ErrNoOutput is returned when the tool succeeded but wrote nothing
	ErrNoOutput = errors.New("thumbnail tool produced no output")
)

// Resolver maps project files to displayable image paths
type Resolver struct {
	fs     afero.Fs
	runner Runner
	logger *report.EventLogger
	group  singleflight.Group
}

// Config holds resolver configuration
type Config struct {
	Fs     afero.Fs // defaults to the OS filesystem
	Runner Runner   // nil when no thumbnail tool was found
	Logger *report.EventLogger
}

// New creates a new Resolver
func New(cfg *Config) *Resolver {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Resolver{
		fs:     fsys,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
}

// Available reports whether model files can be rendered
func (r *Resolver) Available() bool {
	return r.runner != nil
}

// CachePath returns where the thumbnail of modelPath is stored
func CachePath(modelPath string) string {
	dir, base := filepath.Split(modelPath)
	return filepath.Join(dir, CacheDirName, base+".png")
}

func (r *Resolver) exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}

// Thumbnail returns the cached image of modelPath, rendering it first when
// missing. Existing thumbnails are never regenerated.
func (r *Resolver) Thumbnail(ctx context.Context, modelPath string) (string, error) {
	target := CachePath(modelPath)
	if r.exists(target) {
		return target, nil
	}

	if r.runner == nil {
		return "", ErrNoRenderer
	}

	_, err, _ := r.group.Do(target, func() (interface{}, error) {
		if r.exists(target) {
			return nil, nil
		}
		return nil, r.render(ctx, modelPath, target)
	})
	if err != nil {
		return "", err
	}

	return target, nil
}

func (r *Resolver) render(ctx context.Context, modelPath, target string) error {
	if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	util.DebugLog("Rendering thumbnail for %s", modelPath)
	start := time.Now()

	err := r.runner.Render(ctx, modelPath, target)
	if err == nil && !r.exists(target) {
		err = fmt.Errorf("%w: %s", ErrNoOutput, target)
	}

	r.logger.LogThumbnail(modelPath, target, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(modelPath), err)
	}
	return nil
}

// ImagePath returns something displayable for path: images are returned as
// is, models are rendered, anything else yields "". Render failures are
// logged and degrade to "".
func (r *Resolver) ImagePath(ctx context.Context, path string) string {
	switch {
	case filetype.IsImage(path):
		return path
	case filetype.IsModel(path):
		image, err := r.Thumbnail(ctx, path)
		if err != nil {
			if !errors.Is(err, ErrNoRenderer) {
				util.WarnLog("No thumbnail for %s: %v", path, err)
			}
			return ""
		}
		return image
	default:
		return ""
	}
}

// DefaultImageFile picks the file that represents a project: the one marked
// default, otherwise the first displayable file in path order
func DefaultImageFile(files []*store.ProjectFile) *store.ProjectFile {
	for _, f := range files {
		if f.IsDefault {
			return f
		}
	}
	for _, f := range files {
		if filetype.IsDisplayable(f.Path) {
			return f
		}
	}
	return nil
}

// ProjectImage returns the image representing p, or ""
func (r *Resolver) ProjectImage(ctx context.Context, p *store.Project) string {
	f := DefaultImageFile(p.Files)
	if f == nil {
		return ""
	}
	return r.ImagePath(ctx, f.Path)
}
