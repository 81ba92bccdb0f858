package exportimport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/currentstate"
	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTestService(t *testing.T) (*Service, *repository.Repository, string) {
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
	cs := currentstate.New(db, proj, lock, nil, nil)
	return New(db, reg, repo, cs, lock, nil), repo, root
}

func TestExportWritesOneFilePerItemAndManifest(t *testing.T) {
	svc, repo, root := newTestService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateInput{Type: "issues", Title: "exported issue"})
	require.NoError(t, err)

	exportRoot := filepath.Join(root, "export")
	report, err := svc.Export(ctx, exportRoot, true, true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CountsByType["issues"])
	assert.FileExists(t, filepath.Join(exportRoot, "manifest.json"))
	assert.FileExists(t, filepath.Join(exportRoot, ".system", "current_state", "latest.md"))
	require.Len(t, report.Files, 2)
}

func TestImportFromJSONDumpCreatesItems(t *testing.T) {
	svc, repo, root := newTestService(t)
	ctx := context.Background()

	dump := []map[string]any{
		{"id": "1", "type": "issues", "title": "imported issue", "status": "Open", "priority": "medium"},
	}
	raw, err := json.Marshal(dump)
	require.NoError(t, err)

	path := filepath.Join(root, "dump.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	report, err := svc.Import(ctx, path, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, report.Warnings)

	views, err := repo.List(ctx, "issues", types.ListFilter{IncludeClosedStatuses: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "imported issue", views[0].Title)
}
