package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "shirokuma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db.Write)
}

func TestDefaultTypesAndStatusesAreSeeded(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	defs, err := reg.ListTypes(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(defs), len(types.DefaultTypes))

	statuses, err := reg.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, len(types.DefaultStatuses))
}

func TestCreateTypeRejectsReservedName(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.CreateType(context.Background(), types.TypeSessions, types.BaseTypeTasks, "")
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestCreateTypeRejectsBadSlug(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.CreateType(context.Background(), "Not Slug", types.BaseTypeTasks, "")
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestCreateTypeThenDuplicateIsConflict(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, reg.CreateType(ctx, "widgets", types.BaseTypeTasks, "widgets"))
	err := reg.CreateType(ctx, "widgets", types.BaseTypeTasks, "again")
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestUpdateTypeRejectsReservedType(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.UpdateType(context.Background(), types.TypeDailies, "new description")
	assert.True(t, types.IsKind(err, types.KindReference))
}

func TestDeleteTypeRejectsReservedType(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.DeleteType(context.Background(), types.TypeSessions)
	assert.True(t, types.IsKind(err, types.KindReference))
}

func TestDeleteUnknownTypeIsNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.DeleteType(context.Background(), "ghosts")
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestResolveStatusDefaultsToOpen(t *testing.T) {
	reg := newTestRegistry(t)
	s, err := reg.ResolveStatus(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultStatusName, s.Name)
}

func TestResolveStatusUnknownNameIsValidation(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.ResolveStatus(context.Background(), "not-a-status")
	assert.True(t, types.IsKind(err, types.KindValidation))
}
