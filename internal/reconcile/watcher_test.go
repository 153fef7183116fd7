package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franz/print-shelf/internal/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectDirFor(t *testing.T) {
	roots := []string{"/models", "/prints"}

	tests := []struct {
		name       string
		path       string
		wantRoot   string
		wantDir    string
		wantIgnore bool
	}{
		{"new project dir", "/models/Vase", "/models", "/models/Vase", false},
		{"file in project", "/models/Vase/vase.stl", "/models", "/models/Vase", false},
		{"nested file", "/prints/Benchy/parts/hull.stl", "/prints", "/prints/Benchy", false},
		{"cache file", "/models/Vase/.printshelf/vase.stl.png", "", "", true},
		{"nested cache dir", "/models/Vase/sub/.printshelf", "", "", true},
		{"root itself", "/models", "", "", true},
		{"outside roots", "/tmp/other.stl", "", "", true},
		{"sibling prefix", "/models2/Vase", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, dir, ok := projectDirFor(roots, tt.path)
			if tt.wantIgnore {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantRoot, root)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestWatcherPicksUpChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Vase"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Vase", "vase.stl"), []byte("solid"), 0644))

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(&Config{Store: db, Fs: afero.NewOsFs()})
	_, err = r.ScanRoot(ctx, root, Options{})
	require.NoError(t, err)

	w, err := NewWatcher(r, []string{root}, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "Vase", "notes.txt"), []byte("0.2mm"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Benchy"), 0755))

	require.Eventually(t, func() bool {
		vase, err := db.FindProjectByPath(context.Background(), filepath.Join(root, "Vase"))
		if err != nil || len(vase.Files) != 2 {
			return false
		}
		_, err = db.FindProjectByPath(context.Background(), filepath.Join(root, "Benchy"))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
