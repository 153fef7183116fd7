package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateProject inserts a project and returns the freshly loaded aggregate
func (s *Store) CreateProject(ctx context.Context, name, path, notes string) (*Project, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (name, path, notes) VALUES (?, ?, ?)",
		name, path, notes)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get project ID: %w", err)
	}

	return s.GetProject(ctx, id)
}

// GetProject loads a project with its files, tags and sources
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, path, notes FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Path, &p.Notes)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.hydrate(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetFilteredProjects returns the projects matching f ordered by name.
// Children are fetched per project.
func (s *Store) GetFilteredProjects(ctx context.Context, f ProjectFilter) ([]*Project, error) {
	query, args := f.buildQuery()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Path, &p.Notes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	// Close before hydrating: the single connection is still held by rows.
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close project rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	for _, p := range projects {
		if err := s.hydrate(ctx, p); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// FindProjectByPath returns the project cataloged at path
func (s *Store) FindProjectByPath(ctx context.Context, path string) (*Project, error) {
	projects, err := s.GetFilteredProjects(ctx, PathEquals(path))
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("project at %s: %w", path, ErrNotFound)
	}
	return projects[0], nil
}

// UpdateProject persists name, notes and path and returns the reloaded aggregate
func (s *Store) UpdateProject(ctx context.Context, p *Project) (*Project, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, notes = ?, path = ? WHERE id = ?",
		p.Name, p.Notes, p.Path, p.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, p.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("project %d: %w", p.ID, ErrNotFound)
	}

	return s.GetProject(ctx, p.ID)
}

// CountProjects returns the number of cataloged projects
func (s *Store) CountProjects(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// hydrate loads a project's child collections
func (s *Store) hydrate(ctx context.Context, p *Project) error {
	var err error
	if p.Files, err = s.projectFiles(ctx, p.ID); err != nil {
		return err
	}
	if p.Tags, err = s.projectTags(ctx, p.ID); err != nil {
		return err
	}
	if p.Sources, err = s.projectSources(ctx, p.ID); err != nil {
		return err
	}
	return nil
}
