package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Get loads a full item view, including content and hydrated
// tags/relations.
func (r *Repository) Get(ctx context.Context, itemType, id string) (types.Item, error) {
	return getItem(ctx, r.db.Read, itemType, id)
}

func getItem(ctx context.Context, q queryer, itemType, id string) (types.Item, error) {
	var item types.Item
	var baseType, priority string
	err := q.QueryRowContext(ctx, `
		SELECT i.type, i.id, i.numeric_id, i.base_type, i.title, i.description, i.content,
			i.status_id, s.name, i.priority, i.category, i.version, i.start_date, i.end_date,
			i.created_at, i.updated_at
		FROM items i JOIN statuses s ON s.id = i.status_id
		WHERE i.type = ? AND i.id = ?`, itemType, id).Scan(
		&item.Type, &item.ID, &item.NumericID, &baseType, &item.Title, &item.Description, &item.Content,
		&item.StatusID, &item.StatusName, &priority, &item.Category, &item.Version, &item.StartDate, &item.EndDate,
		&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return types.Item{}, types.NotFoundItem(itemType, id)
	}
	if err != nil {
		return types.Item{}, fmt.Errorf("repository: loading item %s-%s: %w", itemType, id, err)
	}
	item.BaseType = types.BaseType(baseType)
	item.Priority = types.Priority(priority)

	tags, err := hydrateTags(ctx, q, itemType, id)
	if err != nil {
		return types.Item{}, err
	}
	item.Tags = tags

	related, err := hydrateRelated(ctx, q, itemType, id)
	if err != nil {
		return types.Item{}, err
	}
	item.Related = related

	return item, nil
}

// GetListView loads a single item projected to its list-view shape,
// used by the search service so search results carry the same field
// set as get_items.
func (r *Repository) GetListView(ctx context.Context, itemType, id string) (types.ListView, error) {
	var v types.ListView
	var priority string
	err := r.db.Read.QueryRowContext(ctx, `
		SELECT i.type, i.id, i.title, i.description, s.name, i.priority, i.updated_at
		FROM items i JOIN statuses s ON s.id = i.status_id
		WHERE i.type = ? AND i.id = ?`, itemType, id).Scan(
		&v.Type, &v.ID, &v.Title, &v.Description, &v.Status, &priority, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return types.ListView{}, types.NotFoundItem(itemType, id)
	}
	if err != nil {
		return types.ListView{}, fmt.Errorf("repository: loading list view %s-%s: %w", itemType, id, err)
	}
	v.Priority = types.Priority(priority)
	tags, err := hydrateTags(ctx, r.db.Read, itemType, id)
	if err != nil {
		return types.ListView{}, err
	}
	v.Tags = tags
	if itemType == types.TypeSessions && len(v.ID) >= 10 {
		v.Date = v.ID[:10]
	} else if itemType == types.TypeDailies {
		v.Date = v.ID
	}
	return v, nil
}

// exists reports whether (itemType, id) currently has a row, without
// surfacing a NotFoundError.
func exists(ctx context.Context, q queryer, itemType, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE type = ? AND id = ?", itemType, id).Scan(&n); err != nil {
		return false, fmt.Errorf("repository: checking existence of %s-%s: %w", itemType, id, err)
	}
	return n > 0, nil
}
