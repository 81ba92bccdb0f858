package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite/migrations"
)

// migration follows an ordered-list pattern: each entry is idempotent
// and safe to re-run, tracked by name in the schema_migrations table.
type migration struct {
	Name string
	Func func(context.Context, *sql.DB) error
}

var migrationsList = []migration{
	{"extra_column_on_system_state", migrations.MigrateSystemStateExtraColumn},
	{"item_relations_position_backfill", migrations.MigrateRelationPositionBackfill},
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("sqlite: creating schema_migrations: %w", err)
	}

	for _, m := range migrationsList {
		var applied int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = ?", m.Name).Scan(&applied); err != nil {
			return fmt.Errorf("sqlite: checking migration %s: %w", m.Name, err)
		}
		if applied > 0 {
			continue
		}
		if err := m.Func(ctx, db); err != nil {
			return fmt.Errorf("sqlite: migration %s: %w", m.Name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", m.Name); err != nil {
			return fmt.Errorf("sqlite: recording migration %s: %w", m.Name, err)
		}
	}
	return nil
}
