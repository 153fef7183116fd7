package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// GetOrCreateTag returns the tag with exactly this text, inserting it if absent
func (s *Store) GetOrCreateTag(ctx context.Context, text string) (*Tag, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidTag
	}

	var tag *Tag
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		tag, err = getOrCreateTag(ctx, tx, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func getOrCreateTag(ctx context.Context, tx *sql.Tx, text string) (*Tag, error) {
	tag := &Tag{}
	err := tx.QueryRowContext(ctx, "SELECT id, tag FROM tags WHERE tag = ?", text).Scan(&tag.ID, &tag.Text)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}

	result, err := tx.ExecContext(ctx, "INSERT INTO tags (tag) VALUES (?)", text)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, text)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag ID: %w", err)
	}

	return &Tag{ID: id, Text: text}, nil
}

// GetTag retrieves a tag by its ID
func (s *Store) GetTag(ctx context.Context, id int64) (*Tag, error) {
	tag := &Tag{}
	err := s.db.QueryRowContext(ctx, "SELECT id, tag FROM tags WHERE id = ?", id).Scan(&tag.ID, &tag.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

// AddTagToProject attaches text to the project, creating the tag on first use.
// Attaching a tag the project already has is a no-op.
func (s *Store) AddTagToProject(ctx context.Context, p *Project, text string) (*Project, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidTag
	}

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		tag, err := getOrCreateTag(ctx, tx, text)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO projects_tags (project_id, tag_id) VALUES (?, ?)",
			p.ID, tag.ID); err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, p.ID)
}

// RemoveTagFromProject detaches the tag. The tag row itself is kept.
func (s *Store) RemoveTagFromProject(ctx context.Context, p *Project, tag *Tag) (*Project, error) {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM projects_tags WHERE project_id = ? AND tag_id = ?",
		p.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("failed to detach tag: %w", err)
	}
	return s.GetProject(ctx, p.ID)
}

// ListAllTags returns every tag ordered by text
func (s *Store) ListAllTags(ctx context.Context) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, tag FROM tags ORDER BY tag")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag := &Tag{}
		if err := rows.Scan(&tag.ID, &tag.Text); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// TagUsage returns every tag with the number of projects carrying it
func (s *Store) TagUsage(ctx context.Context) ([]TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.tag, COUNT(pt.project_id)
		FROM tags t LEFT JOIN projects_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag usage: %w", err)
	}
	defer rows.Close()

	var usage []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag.ID, &tc.Tag.Text, &tc.Projects); err != nil {
			return nil, fmt.Errorf("failed to scan tag usage: %w", err)
		}
		usage = append(usage, tc)
	}

	return usage, rows.Err()
}

// projectTags returns a project's tags ordered by text
func (s *Store) projectTags(ctx context.Context, projectID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.tag FROM tags t
		JOIN projects_tags pt ON pt.tag_id = t.id
		WHERE pt.project_id = ?
		ORDER BY t.tag`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		tag := &Tag{}
		if err := rows.Scan(&tag.ID, &tag.Text); err != nil {
			return nil, fmt.Errorf("failed to scan project tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
