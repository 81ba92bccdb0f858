package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "shirokuma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenSeedsDefaultStatusesOnce(t *testing.T) {
	db := openTestDB(t)
	var count int
	require.NoError(t, db.Write.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM statuses").Scan(&count))
	assert.Equal(t, 12, count)
}

func TestOpenSeedsDefaultTypesAndSequences(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var typeCount int
	require.NoError(t, db.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM types").Scan(&typeCount))
	assert.Equal(t, 6, typeCount)

	var reserved int
	require.NoError(t, db.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM types WHERE reserved = 1").Scan(&reserved))
	assert.Equal(t, 2, reserved)

	var seqCount int
	require.NoError(t, db.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM sequences").Scan(&seqCount))
	assert.Equal(t, 6, seqCount)
}

func TestRunMigrationsIsIdempotentAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shirokuma.db")
	ctx := context.Background()

	db1, err := Open(ctx, path)
	require.NoError(t, err)
	db1.Close()

	db2, err := Open(ctx, path)
	require.NoError(t, err)
	defer db2.Close()

	var applied int
	require.NoError(t, db2.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, len(migrationsList), applied)
}

func TestFTSTriggersKeepIndexInSyncOnInsertAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Write.ExecContext(ctx, `
		INSERT INTO items (type, id, numeric_id, base_type, title, description, content, status_id, created_at, updated_at)
		VALUES ('issues', '1', 1, 'tasks', 'searchable title', '', '', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var ftsCount int
	require.NoError(t, db.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH 'searchable'").Scan(&ftsCount))
	assert.Equal(t, 1, ftsCount)

	_, err = db.Write.ExecContext(ctx, "DELETE FROM items WHERE type = 'issues' AND id = '1'")
	require.NoError(t, err)

	require.NoError(t, db.Write.QueryRowContext(ctx, "SELECT COUNT(*) FROM items_fts WHERE items_fts MATCH 'searchable'").Scan(&ftsCount))
	assert.Equal(t, 0, ftsCount)
}

func TestNextIDIsMonotonicPerType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.Write.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	first, err := NextID(ctx, tx, "issues")
	require.NoError(t, err)
	second, err := NextID(ctx, tx, "issues")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}

func TestSetSequenceFloorNeverLowersValue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.Write.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, SetSequenceFloor(ctx, tx, "issues", 50))
	require.NoError(t, SetSequenceFloor(ctx, tx, "issues", 10))
	require.NoError(t, tx.Commit())

	current, err := CurrentSequence(ctx, db.Write, "issues")
	require.NoError(t, err)
	assert.Equal(t, int64(50), current)
}

func TestPathReturnsOpenedFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shirokuma.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
}
