package search

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

func newTestService(t *testing.T) (*Service, *repository.Repository) {
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
	return New(db, repo), repo
}

func TestSearchRequiresNonEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Search(context.Background(), "   ", nil, 0, 0)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestSearchFindsCreatedItemByTitleToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "rebuild the rebuild engine"})
	require.NoError(t, err)

	results, err := svc.Search(ctx, "rebuild engine", nil, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, item.ID, results[0].Item.ID)
}

func TestSearchHonorsTypeFilter(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "overlap token"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateInput{Type: "plans", Title: "overlap token"})
	require.NoError(t, err)

	results, err := svc.Search(ctx, "overlap", []string{"plans"}, 10, 0)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "plans", r.Item.Type)
	}
}

func TestSuggestMatchesTitlePrefix(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "prefixed title example"})
	require.NoError(t, err)

	suggestions, err := svc.Suggest(ctx, "prefixed", 10)
	require.NoError(t, err)
	assert.Contains(t, suggestions, "prefixed title example")
}

func TestSearchByTagGroupsByBaseType(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "tagged issue", Tags: []string{"shared"}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateInput{Type: "docs", Title: "tagged doc", Content: "body", Tags: []string{"shared"}})
	require.NoError(t, err)

	group, err := svc.SearchByTag(ctx, "shared", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, group.Tasks["issues"])
	assert.NotEmpty(t, group.Documents["docs"])
}
