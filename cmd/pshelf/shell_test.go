package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/reconcile"
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/thumb"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopOpener struct{ opened []string }

func (o *nopOpener) Open(path string) error {
	o.opened = append(o.opened, path)
	return nil
}

func TestParseCommand(t *testing.T) {
	project := &app.ProjectState{Project: &store.Project{
		ID:    3,
		Name:  "Vase",
		Path:  "/models/Vase",
		Notes: "spiral mode",
		Files: []*store.ProjectFile{{ID: 7, Path: "/models/Vase/vase.stl"}},
	}}
	browsing := &app.BrowsingState{}

	tests := []struct {
		state app.State
		line  string
		want  app.Intent
	}{
		{browsing, "scan", app.ScanRoots{}},
		{browsing, "scan refresh", app.ScanRoots{Refresh: true}},
		{browsing, "filter vase", app.FilterChanged{Name: "vase"}},
		{browsing, "filter", app.FilterChanged{}},
		{browsing, "tags pla printed", app.TagFilterChanged{Tags: []string{"pla", "printed"}}},
		{browsing, "select 3", app.SelectProject{ID: 3}},
		{browsing, "settings", app.ToSettings{}},
		{project, "back", app.ToBrowsing{}},
		{project, "tag needs supports", app.AddTag{Text: "needs supports"}},
		{project, "untag 2", app.RemoveTag{TagID: 2}},
		{project, "source Printables https://example.com/vase", app.AddSource{Name: "Printables", URL: "https://example.com/vase"}},
		{project, "default 7", app.SetDefaultFile{FileID: 7}},
		{project, "filenote 7 print at 0.2mm", app.SaveFileNotes{FileID: 7, Notes: "print at 0.2mm"}},
		{project, "rename Tall Vase", app.UpdateProject{Name: "Tall Vase", Notes: "spiral mode"}},
		{project, "notes vase mode", app.UpdateProject{Name: "Vase", Notes: "vase mode"}},
		{project, "open", app.OpenPath{Path: "/models/Vase"}},
		{project, "open 7", app.OpenPath{Path: "/models/Vase/vase.stl"}},
		{&app.SettingsState{}, "theme Tokyo Night", app.SetTheme{Name: "Tokyo Night"}},
		{&app.SettingsState{}, "addroot /prints", app.AddRoot{Path: "/prints"}},
		{&app.SettingsState{}, "rmroot /prints", app.RemoveRoot{Path: "/prints"}},
		{&app.SettingsState{}, "save", app.SettingsSave{}},
		{&app.SettingsState{}, "cancel", app.SettingsCancel{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.state, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	browsing := &app.BrowsingState{}

	for _, line := range []string{"select", "select x", "select 1 2", "tag", "source url-only", "frobnicate"} {
		_, err := parseCommand(browsing, line)
		assert.Error(t, err, line)
	}

	_, err := parseCommand(browsing, "rename Vase")
	assert.ErrorIs(t, err, app.ErrInvalidIntent)

	_, err = parseCommand(&app.ProjectState{Project: &store.Project{}}, "open 99")
	assert.ErrorIs(t, err, app.ErrUnknownFile)

	_, err = parseCommand(browsing, "quit")
	assert.ErrorIs(t, err, errQuit)
}

func newShellApp(t *testing.T) (*app.App, *store.Store, afero.Fs, *nopOpener) {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fsys := afero.NewMemMapFs()
	for _, p := range []string{"/models/Vase/vase.stl", "/models/Vase/notes.txt", "/models/Benchy/benchy.3mf"} {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0644))
	}

	opener := &nopOpener{}
	a, err := app.New(ctx, &app.Config{
		Store:      db,
		Reconciler: reconcile.New(&reconcile.Config{Store: db, Fs: fsys}),
		Resolver:   thumb.New(&thumb.Config{Fs: fsys}),
		Fs:         fsys,
		Opener:     opener,
		ConfigDir:  "/config/PrintShelf",
		Settings:   &settings.Settings{Theme: settings.DefaultTheme, PrintPaths: []string{"/models"}},
	})
	require.NoError(t, err)
	return a, db, fsys, opener
}

func TestShellLoop(t *testing.T) {
	ctx := context.Background()
	a, db, fsys, opener := newShellApp(t)

	require.NoError(t, a.Dispatch(ctx, app.ScanRoots{}))
	vase, err := db.FindProjectByPath(ctx, "/models/Vase")
	require.NoError(t, err)

	script := strings.Join([]string{
		"filter vase",
		fmt.Sprintf("select %d", vase.ID),
		"tag printed",
		"open",
		"bogus",
		"back",
		"tags printed",
		"quit",
		"scan",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, shellLoop(ctx, a, fsys, strings.NewReader(script), &out))

	output := out.String()
	assert.Contains(t, output, "Vase")
	assert.Contains(t, output, "vase.stl")
	assert.Contains(t, output, `unknown command "bogus"`)
	assert.Equal(t, []string{"/models/Vase"}, opener.opened)

	// quit stops before the trailing scan
	st, ok := a.State().(*app.BrowsingState)
	require.True(t, ok)
	require.Len(t, st.Projects, 1)
	assert.Equal(t, "Vase", st.Projects[0].Name)
	assert.True(t, st.Projects[0].HasTag("printed"))
}

func TestShellLoopEOF(t *testing.T) {
	a, _, fsys, _ := newShellApp(t)

	var out bytes.Buffer
	require.NoError(t, shellLoop(context.Background(), a, fsys, strings.NewReader("settings\ntheme Dracula\n"), &out))

	assert.Contains(t, out.String(), "Theme: Dracula")
	assert.Equal(t, "settings", a.State().Name())
}
