package app

// Intent is a user action dispatched to the App
type Intent interface {
	intent()
}

// Navigation
type (
	ToBrowsing struct{}
	ToSettings struct{}
)

// Browsing
type (
	ScanRoots        struct{ Refresh bool }
	SelectProject    struct{ ID int64 }
	FilterChanged    struct{ Name string }
	TagFilterChanged struct{ Tags []string }
)

// Settings
type (
	SetTheme       struct{ Name string }
	AddRoot        struct{ Path string }
	RemoveRoot     struct{ Path string }
	SettingsSave   struct{}
	SettingsCancel struct{}
)

// Project detail
type (
	AddTag         struct{ Text string }
	RemoveTag      struct{ TagID int64 }
	AddSource      struct{ Name, URL string }
	SetDefaultFile struct{ FileID int64 }
	OpenPath       struct{ Path string }
)

// UpdateProject edits a project's name and notes. A non-empty Path moves
// the project to another directory.
type UpdateProject struct {
	Name  string
	Notes string
	Path  string
}

// SaveFileNotes stores notes of a file. For text files the notes are the
// file's content and are written to disk.
type SaveFileNotes struct {
	FileID int64
	Notes  string
}

func (ToBrowsing) intent() {}
func (ToSettings) intent() {}
func (ScanRoots) intent() {}
func (SelectProject) intent() {}
func (FilterChanged) intent() {}
func (TagFilterChanged) intent() {}
func (SetTheme) intent() {}
func (AddRoot) intent() {}
func (RemoveRoot) intent() {}
func (SettingsSave) intent() {}
func (SettingsCancel) intent() {}
func (AddTag) intent() {}
func (RemoveTag) intent() {}
func (AddSource) intent() {}
func (SetDefaultFile) intent() {}
func (SaveFileNotes) intent() {}
func (UpdateProject) intent() {}
func (OpenPath) intent() {}
