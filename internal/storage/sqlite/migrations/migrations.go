// Package migrations holds individual, idempotent schema patches
// applied after the baseline schema: one exported MigrateXxx(ctx, db)
// func per migration, run in the order the sqlite package lists them.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateSystemStateExtraColumn adds the column that preserves
// unrecognized front-matter keys round-tripped through the singleton
// current-state document, so they survive untouched.
func MigrateSystemStateExtraColumn(ctx context.Context, db *sql.DB) error {
	if hasColumn(ctx, db, "system_state", "extra") {
		return nil
	}
	_, err := db.ExecContext(ctx, `ALTER TABLE system_state ADD COLUMN extra TEXT NOT NULL DEFAULT '{}'`)
	if err != nil {
		return fmt.Errorf("adding system_state.extra: %w", err)
	}
	return nil
}

// MigrateRelationPositionBackfill adds an ordering column to
// item_relations so related-item arrays can round-trip in the same
// insertion order they were written in, the same ordering guarantee
// tags get, extended to relations for markdown round-trip fidelity.
func MigrateRelationPositionBackfill(ctx context.Context, db *sql.DB) error {
	if hasColumn(ctx, db, "item_relations", "position") {
		return nil
	}
	if _, err := db.ExecContext(ctx, `ALTER TABLE item_relations ADD COLUMN position INTEGER NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("adding item_relations.position: %w", err)
	}
	rows, err := db.QueryContext(ctx, `SELECT rowid, source_type, source_id FROM item_relations ORDER BY source_type, source_id, rowid`)
	if err != nil {
		return fmt.Errorf("scanning existing relations: %w", err)
	}
	defer rows.Close()

	type rel struct {
		rowid               int64
		sourceType, sourceID string
	}
	var all []rel
	for rows.Next() {
		var r rel
		if err := rows.Scan(&r.rowid, &r.sourceType, &r.sourceID); err != nil {
			return fmt.Errorf("scanning relation row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	counters := map[string]int{}
	stmt, err := db.PrepareContext(ctx, `UPDATE item_relations SET position = ? WHERE rowid = ?`)
	if err != nil {
		return fmt.Errorf("preparing position backfill: %w", err)
	}
	defer stmt.Close()
	for _, r := range all {
		key := r.sourceType + ":" + r.sourceID
		pos := counters[key]
		if _, err := stmt.ExecContext(ctx, pos, r.rowid); err != nil {
			return fmt.Errorf("backfilling position for %s: %w", key, err)
		}
		counters[key] = pos + 1
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}
