package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// GetTags lists every registered tag name.
func (r *Repository) GetTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Read.QueryContext(ctx, "SELECT name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("repository: listing tags: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// CreateTag registers an unused tag name, rejecting duplicates
//.
func (r *Repository) CreateTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Validationf("tag name must not be empty")
	}
	return r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags WHERE name = ?", name).Scan(&n); err != nil {
			return nil, fmt.Errorf("repository: checking tag existence: %w", err)
		}
		if n > 0 {
			return nil, types.Conflictf("tag %q already exists", name)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name); err != nil {
			return nil, fmt.Errorf("repository: creating tag: %w", err)
		}
		return nil, nil
	})
}

// DeleteTag removes a tag and, through the item_tags cascade, its
// membership on every item that carried it.
func (r *Repository) DeleteTag(ctx context.Context, name string) error {
	return r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE name = ?", name)
		if err != nil {
			return nil, fmt.Errorf("repository: deleting tag %s: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, types.Validationf("tag %q does not exist", name)
		}
		return nil, nil
	})
}

// SearchTags returns tag names containing pattern.
func (r *Repository) SearchTags(ctx context.Context, pattern string) ([]string, error) {
	rows, err := r.db.Read.QueryContext(ctx, "SELECT name FROM tags WHERE name LIKE ? ORDER BY name", "%"+pattern+"%")
	if err != nil {
		return nil, fmt.Errorf("repository: searching tags: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
