package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	root := t.TempDir()
	db, err := sqlite.Open(context.Background(), filepath.Join(root, "shirokuma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lock, err := storage.NewWriteLock("")
	require.NoError(t, err)

	reg := registry.New(db.Write)
	proj := markdown.New(root)
	return New(db, reg, proj, lock, nil)
}

func TestCreateAssignsSequentialID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "first issue"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "second issue"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, types.DefaultStatusName, first.StatusName)
	assert.Equal(t, types.DefaultPriority, first.Priority)
}

func TestCreateRequiresContentForDocuments(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), CreateInput{Type: "docs", Title: "no body"})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestGetRoundTripsTagsAndRelations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "base"})
	require.NoError(t, err)

	item, err := repo.Create(ctx, CreateInput{
		Type: "issues", Title: "dependent",
		Tags:    []string{"alpha", "beta"},
		Related: []string{FormatRelatedToken(base.Type, base.ID)},
	})
	require.NoError(t, err)

	fetched, err := repo.Get(ctx, item.Type, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, fetched.Tags)
	assert.Equal(t, []string{FormatRelatedToken(base.Type, base.ID)}, fetched.Related)
}

func TestGetUnknownItemReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "issues", "999")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestUpdatePreservesOmittedFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "original", Description: "desc"})
	require.NoError(t, err)

	newTitle := "renamed"
	updated, warning, err := repo.Update(ctx, item.Type, item.ID, UpdatePatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "desc", updated.Description)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "temporary"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, item.Type, item.ID))
	_, err = repo.Get(ctx, item.Type, item.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestChangeTypeMigratesInboundReferences(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	target, err := repo.Create(ctx, CreateInput{Type: "issues", Title: "target"})
	require.NoError(t, err)
	source, err := repo.Create(ctx, CreateInput{
		Type: "issues", Title: "source",
		Related: []string{FormatRelatedToken(target.Type, target.ID)},
	})
	require.NoError(t, err)

	result, err := repo.ChangeType(ctx, target.Type, target.ID, "plans")
	require.NoError(t, err)
	assert.Equal(t, 1, result.MigratedReferences)

	refreshed, err := repo.Get(ctx, source.Type, source.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{FormatRelatedToken("plans", result.NewID)}, refreshed.Related)
}

func TestTagLimitRejectsExcess(t *testing.T) {
	repo := newTestRepo(t)
	tags := make([]string, types.TagLimit+1)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag-%d", i)
	}
	_, err := repo.Create(context.Background(), CreateInput{Type: "issues", Title: "too many tags", Tags: tags})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
}
