package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// SearchByTag returns every item carrying tag, grouped by base type
// then by type, as full items, the backward-compatible surface
// distinct from the list-view contract used elsewhere.
func (r *Repository) SearchByTag(ctx context.Context, tag string, filterTypes []string) (types.TagGroup, error) {
	query := `
		SELECT DISTINCT i.type, i.id FROM items i
		JOIN item_tags it ON it.item_type = i.type AND it.item_id = i.id
		JOIN tags t ON t.id = it.tag_id
		WHERE t.name = ?`
	args := []any{tag}
	if len(filterTypes) > 0 {
		placeholders := make([]string, len(filterTypes))
		for i, t := range filterTypes {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND i.type IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY i.type, i.numeric_id, i.id"

	rows, err := r.db.Read.QueryContext(ctx, query, args...)
	if err != nil {
		return types.TagGroup{}, fmt.Errorf("repository: searching tag %s: %w", tag, err)
	}
	type key struct{ itemType, id string }
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.itemType, &k.id); err != nil {
			rows.Close()
			return types.TagGroup{}, err
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.TagGroup{}, err
	}

	group := types.TagGroup{Tasks: map[string][]types.Item{}, Documents: map[string][]types.Item{}}
	for _, k := range keys {
		item, err := getItem(ctx, r.db.Read, k.itemType, k.id)
		if err != nil {
			return types.TagGroup{}, err
		}
		switch item.BaseType {
		case types.BaseTypeTasks:
			group.Tasks[item.Type] = append(group.Tasks[item.Type], item)
		case types.BaseTypeDocuments:
			group.Documents[item.Type] = append(group.Documents[item.Type], item)
		}
	}
	return group, nil
}
