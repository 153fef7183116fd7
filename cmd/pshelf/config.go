package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/reconcile"
	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/thumb"
	"github.com/franz/print-shelf/internal/util"
	"github.com/pkg/browser"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const dbFileName = "PrintShelf.db"

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (PSHELF_*)
// 3. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// configDir returns the directory holding the database, settings and event logs
func configDir() (string, error) {
	if dir := viper.GetString("config-dir"); dir != "" {
		return dir, nil
	}
	return settings.ConfigDir()
}

// session bundles the collaborators most commands need
type session struct {
	fs         afero.Fs
	dir        string
	dbPath     string
	db         *store.Store
	settings   *settings.Settings
	logger     *report.EventLogger
	reconciler *reconcile.Reconciler
	resolver   *thumb.Resolver
}

// openSession loads settings and opens the catalog and the event log
func openSession() (*session, error) {
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}

	fsys := afero.NewOsFs()
	s, err := settings.Load(fsys, dir)
	if err != nil {
		return nil, err
	}

	dbPath := GetConfigString("db", filepath.Join(dir, dbFileName))
	util.DebugLog("Opening database: %s", dbPath)
	db, err := store.OpenWithOptions(dbPath, &store.OpenOptions{NetworkOptimized: viper.GetBool("db-network")})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger, err := report.NewEventLogger(filepath.Join(dir, "events"), report.ParseLevel(viper.GetString("event-level")))
	if err != nil {
		util.WarnLog("Event log disabled: %v", err)
		logger = report.NullLogger()
	}

	sess := &session{
		fs:       fsys,
		dir:      dir,
		dbPath:   dbPath,
		db:       db,
		settings: s,
		logger:   logger,
	}
	sess.reconciler = reconcile.New(&reconcile.Config{
		Store:    db,
		Fs:       fsys,
		Logger:   logger,
		Progress: !util.IsQuiet(),
	})
	sess.resolver = thumb.New(&thumb.Config{
		Fs:     fsys,
		Runner: findRunner(),
		Logger: logger,
	})
	return sess, nil
}

func (s *session) Close() error {
	s.logger.Close()
	return s.db.Close()
}

// app builds the application core over the session
func (s *session) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, &app.Config{
		Store:      s.db,
		Reconciler: s.reconciler,
		Resolver:   s.resolver,
		Fs:         s.fs,
		Opener:     browserOpener{},
		Logger:     s.logger,
		ConfigDir:  s.dir,
		Settings:   s.settings,
	})
}

// projectApp builds the application core and shows the given project
func (s *session) projectApp(ctx context.Context, id int64) (*app.App, error) {
	a, err := s.app(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Dispatch(ctx, app.SelectProject{ID: id}); err != nil {
		return nil, err
	}
	return a, nil
}

// findRunner returns the configured thumbnail tool, or nil when it isn't installed
func findRunner() thumb.Runner {
	tool := GetConfigString("thumbnailer", thumb.DefaultTool)
	path, err := thumb.LookTool(tool)
	if err != nil {
		util.DebugLog("Thumbnail tool unavailable: %v", err)
		return nil
	}
	return thumb.NewExecRunner(path)
}

// browserOpener opens paths with the operating system's default handler
type browserOpener struct{}

func (browserOpener) Open(path string) error {
	return browser.OpenFile(path)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
