package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateTag inserts a tag. Name uniqueness is enforced by the schema; callers
// that tolerate collisions should look the name up first.
func (s *Store) CreateTag(ctx context.Context, name string) (*Tag, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &Tag{ID: id, Name: name}, nil
}

// GetTag fetches a tag by identifier, returning nil when absent.
func (s *Store) GetTag(ctx context.Context, id string) (*Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// FindTagByName returns the tag carrying the exact name, or nil.
func (s *Store) FindTagByName(ctx context.Context, name string) (*Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by name: %w", err)
	}
	return tag, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag by identifier.
func (s *Store) DeleteTag(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*Tag, error) {
	var id, name string
	if err := scanner.Scan(&id, &name); err != nil {
		return nil, err
	}
	return &Tag{ID: id, Name: name}, nil
}
