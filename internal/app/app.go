// Package app is the presentation-independent application core: a small
// state machine over the browsing, project and settings screens.
//
// States change only through Dispatch. The shared settings are read-only to
// every state; the settings screen edits a draft that replaces them on save.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/print-shelf/internal/filetype"
	"github.com/franz/print-shelf/internal/reconcile"
	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/thumb"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidIntent is returned for intents the current state can't handle
	ErrInvalidIntent = errors.New("intent not valid in current state")
	// ErrUnknownFile is returned when a file ID isn't part of the shown project
	ErrUnknownFile = errors.New("file does not belong to project")
)

// Opener hands a path to the operating system's default handler
type Opener interface {
	Open(path string) error
}

// App drives the catalog on behalf of a user interface
type App struct {
	store      *store.Store
	reconciler *reconcile.Reconciler
	resolver   *thumb.Resolver
	fs         afero.Fs
	opener     Opener
	logger     *report.EventLogger
	configDir  string

	settings *settings.Settings
	state    State
	lastScan *reconcile.Result

	warnedNoRenderer bool
}

// Config wires the App's collaborators
type Config struct {
	Store      *store.Store
	Reconciler *reconcile.Reconciler
	Resolver   *thumb.Resolver
	Fs         afero.Fs
	Opener     Opener
	Logger     *report.EventLogger
	ConfigDir  string
	Settings   *settings.Settings
}

// New creates the App in the browsing state
func New(ctx context.Context, cfg *Config) (*App, error) {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	s := cfg.Settings
	if s == nil {
		s = &settings.Settings{Theme: settings.DefaultTheme}
	}

	a := &App{
		store:      cfg.Store,
		reconciler: cfg.Reconciler,
		resolver:   cfg.Resolver,
		fs:         fsys,
		opener:     cfg.Opener,
		logger:     cfg.Logger,
		configDir:  cfg.ConfigDir,
		settings:   s,
	}

	if err := a.toBrowsing(ctx, "", nil); err != nil {
		return nil, err
	}
	return a, nil
}

// State returns the current state
func (a *App) State() State {
	return a.state
}

// Settings returns the active settings. Callers must not modify them.
func (a *App) Settings() *settings.Settings {
	return a.settings
}

// LastScan returns the result of the most recent scan, if any
func (a *App) LastScan() *reconcile.Result {
	return a.lastScan
}

// Dispatch applies an intent to the current state. On error the state is
// left as it was.
func (a *App) Dispatch(ctx context.Context, intent Intent) error {
	switch st := a.state.(type) {
	case *BrowsingState:
		return a.dispatchBrowsing(ctx, st, intent)
	case *ProjectState:
		return a.dispatchProject(ctx, st, intent)
	case *SettingsState:
		return a.dispatchSettings(ctx, st, intent)
	default:
		return fmt.Errorf("unknown state %T", a.state)
	}
}

func invalid(st State, intent Intent) error {
	return fmt.Errorf("%w: %T in %s", ErrInvalidIntent, intent, st.Name())
}

func (a *App) dispatchBrowsing(ctx context.Context, st *BrowsingState, intent Intent) error {
	switch in := intent.(type) {
	case ToBrowsing:
		return a.toBrowsing(ctx, st.NameFilter, st.TagFilter)
	case ToSettings:
		a.toSettings()
		return nil
	case ScanRoots:
		return a.scan(ctx, st, in.Refresh)
	case FilterChanged:
		return a.toBrowsing(ctx, in.Name, st.TagFilter)
	case TagFilterChanged:
		return a.toBrowsing(ctx, st.NameFilter, in.Tags)
	case SelectProject:
		return a.selectProject(ctx, in.ID)
	default:
		return invalid(st, intent)
	}
}

func (a *App) dispatchSettings(ctx context.Context, st *SettingsState, intent Intent) error {
	switch in := intent.(type) {
	case SetTheme:
		return st.Draft.SetTheme(in.Name)
	case AddRoot:
		path := strings.TrimSpace(in.Path)
		if path == "" {
			return fmt.Errorf("%w: empty root path", util.ErrInvalidConfig)
		}
		st.Draft.AddPrintPath(path)
		return nil
	case RemoveRoot:
		st.Draft.RemovePrintPath(in.Path)
		return nil
	case SettingsSave:
		if err := st.Draft.Save(a.fs, a.configDir); err != nil {
			return err
		}
		a.settings = st.Draft
		util.InfoLog("Settings saved")
		return a.toBrowsing(ctx, "", nil)
	case SettingsCancel, ToBrowsing:
		return a.toBrowsing(ctx, "", nil)
	default:
		return invalid(st, intent)
	}
}

func (a *App) dispatchProject(ctx context.Context, st *ProjectState, intent Intent) error {
	p := st.Project

	switch in := intent.(type) {
	case ToBrowsing:
		return a.toBrowsing(ctx, "", nil)
	case ToSettings:
		a.toSettings()
		return nil
	case OpenPath:
		return a.open(in.Path)

	case AddTag:
		updated, err := a.store.AddTagToProject(ctx, p, in.Text)
		if err != nil {
			return err
		}
		a.logger.LogEdit(p.ID, "add_tag", in.Text)
		return a.showProject(ctx, updated)

	case RemoveTag:
		tag, err := a.store.GetTag(ctx, in.TagID)
		if err != nil {
			return err
		}
		updated, err := a.store.RemoveTagFromProject(ctx, p, tag)
		if err != nil {
			return err
		}
		a.logger.LogEdit(p.ID, "remove_tag", tag.Text)
		return a.showProject(ctx, updated)

	case AddSource:
		if strings.TrimSpace(in.URL) == "" {
			return errors.New("source URL is empty")
		}
		updated, err := a.store.AddSource(ctx, p, in.Name, in.URL)
		if err != nil {
			return err
		}
		a.logger.LogEdit(p.ID, "add_source", in.URL)
		return a.showProject(ctx, updated)

	case SetDefaultFile:
		f := findFile(p, in.FileID)
		if f == nil {
			return ErrUnknownFile
		}
		target := *f
		target.IsDefault = true
		if _, err := a.store.UpdateProjectFile(ctx, &target); err != nil {
			return err
		}
		a.logger.LogEdit(p.ID, "set_default", f.Path)
		return a.reloadProject(ctx, p.ID)

	case SaveFileNotes:
		f := findFile(p, in.FileID)
		if f == nil {
			return ErrUnknownFile
		}
		if filetype.IsText(f.Path) {
			if err := afero.WriteFile(a.fs, f.Path, []byte(in.Notes), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Path, err)
			}
		} else {
			target := *f
			target.Notes = in.Notes
			if _, err := a.store.UpdateProjectFile(ctx, &target); err != nil {
				return err
			}
		}
		a.logger.LogEdit(p.ID, "file_notes", f.Path)
		return a.reloadProject(ctx, p.ID)

	case UpdateProject:
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return errors.New("project name is empty")
		}
		target := *p
		target.Name = name
		target.Notes = in.Notes
		if path := strings.TrimSpace(in.Path); path != "" {
			target.Path = filepath.Clean(path)
		}
		updated, err := a.store.UpdateProject(ctx, &target)
		if err != nil {
			return err
		}
		a.logger.LogEdit(p.ID, "update_project", name)
		return a.showProject(ctx, updated)

	default:
		return invalid(st, intent)
	}
}

func (a *App) toBrowsing(ctx context.Context, name string, tags []string) error {
	filter := store.ProjectFilter{Tags: tags}
	if name != "" {
		filter.Name = &name
	}

	projects, err := a.store.GetFilteredProjects(ctx, filter)
	if err != nil {
		return err
	}
	util.DebugLog("There are %d projects", len(projects))

	a.state = &BrowsingState{
		NameFilter: name,
		TagFilter:  tags,
		Projects:   projects,
		NeedsRoots: !a.settings.HasPrintPaths(),
	}
	return nil
}

func (a *App) toSettings() {
	a.state = &SettingsState{Draft: a.settings.Clone()}
}

func (a *App) scan(ctx context.Context, st *BrowsingState, refresh bool) error {
	if !a.settings.HasPrintPaths() {
		return fmt.Errorf("%w: no print paths configured", util.ErrInvalidConfig)
	}

	result, err := a.reconciler.ScanRoots(ctx, a.settings.PrintPaths, reconcile.Options{Refresh: refresh})
	if err != nil {
		return err
	}
	a.lastScan = result

	return a.toBrowsing(ctx, st.NameFilter, st.TagFilter)
}

// selectProject syncs the project's files with disk before showing it
func (a *App) selectProject(ctx context.Context, id int64) error {
	p, err := a.store.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if _, err := a.reconciler.SyncProject(ctx, p); err != nil {
		util.WarnLog("Could not sync %s: %v", p.Name, err)
	}

	return a.reloadProject(ctx, id)
}

func (a *App) reloadProject(ctx context.Context, id int64) error {
	p, err := a.store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	return a.showProject(ctx, p)
}

func (a *App) showProject(ctx context.Context, p *store.Project) error {
	st := &ProjectState{
		Project:  p,
		Contents: make(map[int64]string),
	}

	for _, f := range p.Files {
		if !filetype.IsText(f.Path) {
			continue
		}
		data, err := afero.ReadFile(a.fs, f.Path)
		if err != nil {
			util.DebugLog("Cannot read %s: %v", f.Path, err)
			continue
		}
		st.Contents[f.ID] = string(data)
	}

	if a.resolver != nil {
		if !a.resolver.Available() && !a.warnedNoRenderer {
			util.WarnLog("No thumbnail tool found; model previews are disabled")
			a.warnedNoRenderer = true
		}
		st.Image = a.resolver.ProjectImage(ctx, p)
	}

	a.state = st
	return nil
}

func (a *App) open(path string) error {
	if a.opener == nil {
		return errors.New("no opener configured")
	}
	if err := a.opener.Open(path); err != nil {
		util.ErrorLog("An error occurred when opening '%s': %v", path, err)
		return err
	}
	util.InfoLog("Opened '%s' successfully.", path)
	return nil
}

func findFile(p *store.Project, id int64) *store.ProjectFile {
	for _, f := range p.Files {
		if f.ID == id {
			return f
		}
	}
	return nil
}
