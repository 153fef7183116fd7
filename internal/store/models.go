package store

import "errors"

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePath is returned when a project path is already cataloged
	ErrDuplicatePath = errors.New("project path already exists")
	// ErrDuplicateTag is returned when a tag text is inserted twice
	ErrDuplicateTag = errors.New("tag already exists")
	// ErrInvalidTag is returned for blank tag text
	ErrInvalidTag = errors.New("tag text is empty")
)

// Project is a cataloged directory tree representing one fabrication job.
// Files, Tags and Sources are loaded with it.
type Project struct {
	ID      int64
	Name    string
	Path    string
	Notes   string
	Files   []*ProjectFile
	Tags    []*Tag
	Sources []*Source
}

// HasTag reports whether the project carries a tag with the given text
func (p *Project) HasTag(text string) bool {
	for _, t := range p.Tags {
		if t.Text == text {
			return true
		}
	}
	return false
}

// ProjectFile is a tracked file inside a project's directory
type ProjectFile struct {
	ID        int64
	Path      string
	Notes     string
	ProjectID int64
	IsDefault bool
}

// Tag is a globally unique label
type Tag struct {
	ID   int64
	Text string
}

// TagCount is a tag with the number of projects carrying it
type TagCount struct {
	Tag      Tag
	Projects int
}

// Source is a named external URL attached to a project
type Source struct {
	ID        int64
	Name      string
	URL       string
	ProjectID int64
}

// FileDiff is the result of reconciling a project's known files against disk
type FileDiff struct {
	Added   []string
	Removed []string
}

// Empty reports whether the diff performed no writes
func (d *FileDiff) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0)
}
