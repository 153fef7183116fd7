package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

const fileColumns = "id, path, notes, project_id, isdefault"

func scanFile(row interface{ Scan(...any) error }) (*ProjectFile, error) {
	f := &ProjectFile{}
	if err := row.Scan(&f.ID, &f.Path, &f.Notes, &f.ProjectID, &f.IsDefault); err != nil {
		return nil, err
	}
	return f, nil
}

// projectFiles returns a project's files ordered by path
func (s *Store) projectFiles(ctx context.Context, projectID int64) ([]*ProjectFile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM project_files WHERE project_id = ? ORDER BY path",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project files: %w", err)
	}
	defer rows.Close()

	files := make([]*ProjectFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// GetProjectFile retrieves a file by its ID
func (s *Store) GetProjectFile(ctx context.Context, id int64) (*ProjectFile, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM project_files WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project file %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project file: %w", err)
	}
	return f, nil
}

// ListAllFiles retrieves every tracked file ordered by path
func (s *Store) ListAllFiles(ctx context.Context) ([]*ProjectFile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM project_files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*ProjectFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// CountFiles returns the number of tracked files
func (s *Store) CountFiles(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM project_files").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// UpdateProjectFiles reconciles the project's known files with livePaths.
// Paths on disk but unknown are inserted, known paths no longer on disk are
// deleted, both in one transaction. An empty diff writes nothing.
func (s *Store) UpdateProjectFiles(ctx context.Context, p *Project, livePaths []string) (*FileDiff, error) {
	diff := &FileDiff{}

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		known, err := knownPaths(ctx, tx, p.ID)
		if err != nil {
			return err
		}

		live := make(map[string]bool, len(livePaths))
		for _, path := range livePaths {
			if live[path] {
				continue
			}
			live[path] = true
			if !known[path] {
				diff.Added = append(diff.Added, path)
			}
		}
		for path := range known {
			if !live[path] {
				diff.Removed = append(diff.Removed, path)
			}
		}
		sort.Strings(diff.Added)
		sort.Strings(diff.Removed)

		if diff.Empty() {
			return nil
		}

		insert, err := tx.PrepareContext(ctx, "INSERT INTO project_files (project_id, path) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare file insert: %w", err)
		}
		defer insert.Close()

		for _, path := range diff.Added {
			if _, err := insert.ExecContext(ctx, p.ID, path); err != nil {
				return fmt.Errorf("failed to insert file %s: %w", path, err)
			}
		}

		remove, err := tx.PrepareContext(ctx, "DELETE FROM project_files WHERE project_id = ? AND path = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare file delete: %w", err)
		}
		defer remove.Close()

		for _, path := range diff.Removed {
			if _, err := remove.ExecContext(ctx, p.ID, path); err != nil {
				return fmt.Errorf("failed to delete file %s: %w", path, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return diff, nil
}

func knownPaths(ctx context.Context, tx *sql.Tx, projectID int64) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT path FROM project_files WHERE project_id = ?", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query known files: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan known file: %w", err)
		}
		known[path] = true
	}

	return known, rows.Err()
}

// UpdateProjectFile persists path, notes and the default flag.
// Setting the default clears it on every other file of the project in the
// same transaction.
func (s *Store) UpdateProjectFile(ctx context.Context, f *ProjectFile) (*ProjectFile, error) {
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		if f.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE project_files SET isdefault = 0
				 WHERE project_id = (SELECT project_id FROM project_files WHERE id = ?) AND id != ?`,
				f.ID, f.ID); err != nil {
				return fmt.Errorf("failed to clear default file: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE project_files SET path = ?, notes = ?, isdefault = ? WHERE id = ?",
			f.Path, f.Notes, f.IsDefault, f.ID)
		if err != nil {
			return fmt.Errorf("failed to update project file: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("project file %d: %w", f.ID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProjectFile(ctx, f.ID)
}
