package currentstate

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
	return New(db, proj, lock, nil, nil), repo
}

func TestGetBeforeAnyWriteReturnsDefault(t *testing.T) {
	svc, _ := newTestService(t)
	state, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCurrentState(), state)
}

func TestUpdateThenGetRoundTrips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	written, err := svc.Update(ctx, "working on the rebuild engine", []string{"focus"}, nil, "", "agent")
	require.NoError(t, err)
	assert.Equal(t, "working on the rebuild engine", written.Content)

	fetched, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "working on the rebuild engine", fetched.Content)
	assert.Equal(t, []string{"focus"}, fetched.Tags)
}

func TestUpdateRejectsMissingRelatedReference(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "content", nil, []string{"issues-999"}, "", "")
	assert.True(t, types.IsKind(err, types.KindReference))
}

func TestUpdateAcceptsExistingRelatedReference(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	item, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "linked"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "content", nil, []string{repository.FormatRelatedToken(item.Type, item.ID)}, "", "")
	require.NoError(t, err)
}
