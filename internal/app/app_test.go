package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		DataRoot:     root,
		Profile:      "test",
		DatabasePath: filepath.Join(root, ".system", "index.db"),
	}
}

func TestOpenWiresEveryComponent(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), false)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Registry)
	assert.NotNil(t, a.Repository)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.CurrentState)
	assert.NotNil(t, a.Rebuild)
	assert.NotNil(t, a.ExportImport)
	assert.NotNil(t, a.Tools)
}

func TestOpenThenCloseIsClean(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), false)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestToolsDispatcherIsUsableAfterOpen(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), false)
	require.NoError(t, err)
	defer a.Close()

	tools := a.Tools.List()
	assert.NotEmpty(t, tools)
}
