package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/franz/print-shelf/internal/store"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Catalog is the portable dump of every project
type Catalog struct {
	ExportedAt time.Time      `yaml:"exported_at" json:"exported_at"`
	Projects   []CatalogEntry `yaml:"projects" json:"projects"`
}

// CatalogEntry is one exported project
type CatalogEntry struct {
	Name    string          `yaml:"name" json:"name"`
	Path    string          `yaml:"path" json:"path"`
	Notes   string          `yaml:"notes,omitempty" json:"notes,omitempty"`
	Tags    []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Sources []CatalogSource `yaml:"sources,omitempty" json:"sources,omitempty"`
	Files   []CatalogFile   `yaml:"files" json:"files"`
}

// CatalogSource is an exported source link
type CatalogSource struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// CatalogFile is an exported project file
type CatalogFile struct {
	Path    string `yaml:"path" json:"path"`
	Notes   string `yaml:"notes,omitempty" json:"notes,omitempty"`
	Default bool   `yaml:"default,omitempty" json:"default,omitempty"`
}

// BuildCatalog loads every project into a Catalog
func BuildCatalog(ctx context.Context, db *store.Store) (*Catalog, error) {
	projects, err := db.GetFilteredProjects(ctx, store.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	catalog := &Catalog{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Projects:   make([]CatalogEntry, 0, len(projects)),
	}

	for _, p := range projects {
		entry := CatalogEntry{
			Name:  p.Name,
			Path:  p.Path,
			Notes: p.Notes,
			Files: make([]CatalogFile, 0, len(p.Files)),
		}
		for _, t := range p.Tags {
			entry.Tags = append(entry.Tags, t.Text)
		}
		for _, s := range p.Sources {
			entry.Sources = append(entry.Sources, CatalogSource{Name: s.Name, URL: s.URL})
		}
		for _, f := range p.Files {
			entry.Files = append(entry.Files, CatalogFile{Path: f.Path, Notes: f.Notes, Default: f.IsDefault})
		}
		catalog.Projects = append(catalog.Projects, entry)
	}

	return catalog, nil
}

// WriteCatalog encodes the catalog to w in the given format
func WriteCatalog(w io.Writer, catalog *Catalog, format string) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(catalog); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
