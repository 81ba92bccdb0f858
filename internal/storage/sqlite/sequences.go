package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// NextID allocates the next id for typ inside tx, using a sequences
// table that allocates monotonic numbers per type: read-then-increment
// inside the same write transaction that inserts the row, never
// derived from COUNT(*) or MAX(id).
func NextID(ctx context.Context, tx *sql.Tx, typ string) (int64, error) {
	var current int64
	err := tx.QueryRowContext(ctx, "SELECT current_value FROM sequences WHERE type = ?", typ).Scan(&current)
	if err == sql.ErrNoRows {
		if _, insertErr := tx.ExecContext(ctx, "INSERT INTO sequences (type, current_value) VALUES (?, 0)", typ); insertErr != nil {
			return 0, fmt.Errorf("sqlite: initializing sequence for %s: %w", typ, insertErr)
		}
		current = 0
	} else if err != nil {
		return 0, fmt.Errorf("sqlite: reading sequence for %s: %w", typ, err)
	}

	next := current + 1
	if _, err := tx.ExecContext(ctx, "UPDATE sequences SET current_value = ? WHERE type = ?", next, typ); err != nil {
		return 0, fmt.Errorf("sqlite: advancing sequence for %s: %w", typ, err)
	}
	return next, nil
}

// SetSequenceFloor raises the sequence for typ to at least value,
// never lowering it. Used by the Rebuild Engine to
// restore the max-id high-water mark observed on disk.
func SetSequenceFloor(ctx context.Context, tx *sql.Tx, typ string, value int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sequences (type, current_value) VALUES (?, ?)
		ON CONFLICT(type) DO UPDATE SET current_value = MAX(current_value, excluded.current_value)
	`, typ, value)
	if err != nil {
		return fmt.Errorf("sqlite: setting sequence floor for %s: %w", typ, err)
	}
	return nil
}

// CurrentSequence reports the current allocator value for typ, used by
// stats/testing.
func CurrentSequence(ctx context.Context, db *sql.DB, typ string) (int64, error) {
	var current int64
	err := db.QueryRowContext(ctx, "SELECT current_value FROM sequences WHERE type = ?", typ).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading sequence for %s: %w", typ, err)
	}
	return current, nil
}
