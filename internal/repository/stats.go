package repository

import (
	"context"
	"fmt"
)

// Stats is the aggregate count view behind the `stats` CLI command:
// items grouped by type, and by status within each type.
type Stats struct {
	ByType       map[string]int
	ByTypeStatus map[string]map[string]int
}

// Stats counts every item grouped by type and by status-within-type.
// Read-only; no new invariants beyond what List already enforces.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	rows, err := r.db.Read.QueryContext(ctx, `
		SELECT i.type, s.name, COUNT(*)
		FROM items i JOIN statuses s ON s.id = i.status_id
		GROUP BY i.type, s.name`)
	if err != nil {
		return Stats{}, fmt.Errorf("repository: counting items: %w", err)
	}
	defer rows.Close()

	out := Stats{ByType: map[string]int{}, ByTypeStatus: map[string]map[string]int{}}
	for rows.Next() {
		var typ, status string
		var count int
		if err := rows.Scan(&typ, &status, &count); err != nil {
			return Stats{}, fmt.Errorf("repository: scanning stats row: %w", err)
		}
		out.ByType[typ] += count
		if out.ByTypeStatus[typ] == nil {
			out.ByTypeStatus[typ] = map[string]int{}
		}
		out.ByTypeStatus[typ][status] = count
	}
	return out, rows.Err()
}
