package toolsurface

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/currentstate"
	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/search"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
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
	srch := search.New(db, repo)
	cs := currentstate.New(db, proj, lock, nil, nil)

	return Build(Services{Repo: repo, Reg: reg, Srch: srch, CS: cs})
}

func TestBuildRegistersEveryToolExceptStatusMutators(t *testing.T) {
	d := newTestDispatcher(t)
	names := make(map[string]bool)
	for _, tool := range d.List() {
		names[tool.Name] = true
	}

	for _, excluded := range []string{"create_status", "update_status", "delete_status"} {
		assert.False(t, names[excluded])
	}
	for _, expected := range []string{"create_item", "get_item_detail", "search_items", "get_current_state", "update_current_state"} {
		assert.True(t, names[expected], expected)
	}
}

func TestCreateItemToolRoundTripsThroughGetItemDetail(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	created, err := d.Call(ctx, "create_item", map[string]any{"type": "issues", "title": "via mcp"})
	require.NoError(t, err)
	item, ok := created.(types.Item)
	require.True(t, ok)

	fetched, err := d.Call(ctx, "get_item_detail", map[string]any{"type": "issues", "id": item.ID})
	require.NoError(t, err)
	assert.Equal(t, "via mcp", fetched.(types.Item).Title)
}

func TestUpdateCurrentStateToolThenGetCurrentState(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	_, err := d.Call(ctx, "update_current_state", map[string]any{"content": "new focus"})
	require.NoError(t, err)

	state, err := d.Call(ctx, "get_current_state", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "new focus", state.(types.CurrentState).Content)
}
