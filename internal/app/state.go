package app

import (
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/store"
)

// State is one screen of the application. Each state owns its data.
type State interface {
	Name() string
}

// BrowsingState lists projects matching the current filter
type BrowsingState struct {
	NameFilter string
	TagFilter  []string
	Projects   []*store.Project
	// NeedsRoots is set while no watched roots are configured
	NeedsRoots bool
}

func (*BrowsingState) Name() string { return "browsing" }

// ProjectState shows a single project
type ProjectState struct {
	Project *store.Project
	// Image is the representative image path, "" when there is none
	Image string
	// Contents holds the on-disk text of text-like files, keyed by file ID
	Contents map[int64]string
}

func (*ProjectState) Name() string { return "project" }

// SettingsState edits a draft copy of the settings
type SettingsState struct {
	Draft *settings.Settings
}

func (*SettingsState) Name() string { return "settings" }
