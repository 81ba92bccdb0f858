package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// List returns list-view projections for itemType matching filter.
// content, status_id, and relation arrays are never selected, keeping
// the list-view contract at the query level rather than by
// post-filtering a full item.
func (r *Repository) List(ctx context.Context, itemType string, filter types.ListFilter) ([]types.ListView, error) {
	var where []string
	var args []any
	where = append(where, "i.type = ?")
	args = append(args, itemType)

	switch {
	case len(filter.Statuses) > 0:
		placeholders := make([]string, len(filter.Statuses))
		for i, name := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, name)
		}
		where = append(where, fmt.Sprintf("s.name IN (%s)", strings.Join(placeholders, ",")))
	case !filter.IncludeClosedStatuses:
		where = append(where, "s.is_closable = 0")
	}

	dateExpr := "i.start_date"
	if itemType == types.TypeSessions {
		dateExpr = "substr(i.id, 1, 10)"
	} else if itemType == types.TypeDailies {
		dateExpr = "i.id"
	}
	if filter.StartDate != "" {
		where = append(where, fmt.Sprintf("%s >= ?", dateExpr))
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where = append(where, fmt.Sprintf("%s <= ?", dateExpr))
		args = append(args, filter.EndDate)
	}

	for _, tag := range filter.Tags {
		where = append(where, `EXISTS (
			SELECT 1 FROM item_tags it JOIN tags t ON t.id = it.tag_id
			WHERE it.item_type = i.type AND it.item_id = i.id AND t.name = ?)`)
		args = append(args, tag)
	}

	query := fmt.Sprintf(`
		SELECT i.type, i.id, i.title, i.description, s.name, i.priority, i.updated_at
		FROM items i JOIN statuses s ON s.id = i.status_id
		WHERE %s
		ORDER BY i.numeric_id, i.id`, strings.Join(where, " AND "))

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: listing %s: %w", itemType, err)
	}
	defer rows.Close()

	var out []types.ListView
	for rows.Next() {
		var v types.ListView
		var priority string
		if err := rows.Scan(&v.Type, &v.ID, &v.Title, &v.Description, &v.Status, &priority, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: scanning list row: %w", err)
		}
		v.Priority = types.Priority(priority)
		tags, err := hydrateTags(ctx, r.db.Read, v.Type, v.ID)
		if err != nil {
			return nil, err
		}
		v.Tags = tags

		if itemType == types.TypeSessions && len(v.ID) >= 10 {
			v.Date = v.ID[:10]
		} else if itemType == types.TypeDailies {
			v.Date = v.ID
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
