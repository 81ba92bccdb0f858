package rebuild

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTestEngine(t *testing.T) (*Engine, *repository.Repository, *sqlite.DB) {
	t.Helper()
	root := t.TempDir()
	db, err := sqlite.Open(context.Background(), filepath.Join(root, "shirokuma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lock, err := storage.NewWriteLock("")
	require.NoError(t, err)

	reg := registry.New(db.Write)
	proj := markdown.New(root)
	repo := repository.New(db, reg, proj, lock, nil)
	engine := New(db, reg, root, lock, nil)
	return engine, repo, db
}

func TestRunRepopulatesFromMarkdownTree(t *testing.T) {
	engine, repo, db := newTestEngine(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "rebuild me", Tags: []string{"x"}})
	require.NoError(t, err)

	_, err = db.Write.ExecContext(ctx, "DELETE FROM items WHERE type = 'issues' AND id = ?", item.ID)
	require.NoError(t, err)

	report, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CountsByType["issues"])

	restored, err := repo.Get(ctx, "issues", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "rebuild me", restored.Title)
	assert.Equal(t, []string{"x"}, restored.Tags)
}

func TestRunNeverResurrectsItemWithoutAFile(t *testing.T) {
	engine, repo, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "stays"})
	require.NoError(t, err)

	item2, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "will be deleted"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "issues", item2.ID))

	report, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CountsByType["issues"])

	_, err = repo.Get(ctx, "issues", item2.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestRunRestoresSequenceHighWaterMark(t *testing.T) {
	engine, repo, db := newTestEngine(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "high water mark"})
	require.NoError(t, err)

	_, err = engine.Run(ctx)
	require.NoError(t, err)

	current, err := sqlite.CurrentSequence(ctx, db.Write, "issues")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, current, item.NumericID)
}
