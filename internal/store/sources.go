package store

import (
	"context"
	"fmt"
)

// AddSource attaches a named URL to the project and returns the reloaded aggregate
func (s *Store) AddSource(ctx context.Context, p *Project, name, url string) (*Project, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO project_sources (project_id, name, url) VALUES (?, ?, ?)",
		p.ID, name, url); err != nil {
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}
	return s.GetProject(ctx, p.ID)
}

func (s *Store) projectSources(ctx context.Context, projectID int64) ([]*Source, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, url, project_id FROM project_sources WHERE project_id = ? ORDER BY id",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project sources: %w", err)
	}
	defer rows.Close()

	sources := make([]*Source, 0)
	for rows.Next() {
		src := &Source{}
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.ProjectID); err != nil {
			return nil, fmt.Errorf("failed to scan project source: %w", err)
		}
		sources = append(sources, src)
	}

	return sources, rows.Err()
}
