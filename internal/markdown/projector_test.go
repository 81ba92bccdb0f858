package markdown

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func TestStageThenCommitWritesTargetAndRemovesTemp(t *testing.T) {
	root := t.TempDir()
	p := New(root)

	item := types.Item{
		ID: "1", Type: "issues", BaseType: types.BaseTypeTasks, Title: "staged item",
		StatusName: "Open", Priority: types.PriorityMedium,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	staged, err := p.StageItem(item)
	require.NoError(t, err)
	assert.FileExists(t, staged.Temp)
	assert.NoFileExists(t, staged.Target)

	require.NoError(t, Commit(staged))
	assert.NoFileExists(t, staged.Temp)
	assert.FileExists(t, staged.Target)

	file, err := p.ReadItem(types.BaseTypeTasks, "issues", "1")
	require.NoError(t, err)
	assert.Equal(t, "staged item", file.FrontMatter.Title)
}

func TestDiscardRemovesTempWithoutTouchingTarget(t *testing.T) {
	root := t.TempDir()
	p := New(root)

	item := types.Item{
		ID: "2", Type: "issues", BaseType: types.BaseTypeTasks, Title: "discarded item",
		StatusName: "Open", Priority: types.PriorityMedium,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	staged, err := p.StageItem(item)
	require.NoError(t, err)
	Discard(staged)

	assert.NoFileExists(t, staged.Temp)
	assert.NoFileExists(t, staged.Target)
}

func TestUnlinkToleratesAlreadyAbsentFile(t *testing.T) {
	root := t.TempDir()
	p := New(root)
	err := p.Unlink(types.BaseTypeTasks, "issues", "999")
	assert.NoError(t, err)
}

func TestStageCurrentStateWritesHistoryAndLatest(t *testing.T) {
	root := t.TempDir()
	p := New(root)

	state := types.CurrentState{Content: "current focus", UpdatedAt: time.Now()}
	staged, err := p.StageCurrentState(state, 3)
	require.NoError(t, err)
	require.Len(t, staged, 2)
	require.NoError(t, Commit(staged...))

	assert.FileExists(t, CurrentStatePath(root, 3))
	assert.FileExists(t, CurrentStateLatestPath(root))
}

func TestItemPathSessionsGroupsByDay(t *testing.T) {
	path := ItemPath("/root-data", types.BaseTypeTasks, types.TypeSessions, "2026-08-01T10-00-00")
	assert.Equal(t, filepath.Join("/root-data", "sessions", "2026-08-01", "2026-08-01T10-00-00.md"), path)
}

func TestItemPathDefaultUsesBaseTypeAndType(t *testing.T) {
	path := ItemPath("/root-data", types.BaseTypeDocuments, "docs", "42")
	assert.Equal(t, filepath.Join("/root-data", "documents", "docs", "docs-42.md"), path)
}

func TestSanitizeTitleStripsZeroWidthChars(t *testing.T) {
	dirty := "hello​world"
	assert.Equal(t, "helloworld", SanitizeTitle(dirty))
}

func TestFileToItemRoundTripsThroughRenderAndParse(t *testing.T) {
	item := types.Item{
		ID: "7", Type: "issues", BaseType: types.BaseTypeTasks, Title: "round trip",
		StatusName: "Open", Priority: types.PriorityHigh, Tags: []string{"a", "b"},
		CreatedAt: time.Now().Truncate(time.Second), UpdatedAt: time.Now().Truncate(time.Second),
	}
	rendered, err := RenderItem(item)
	require.NoError(t, err)

	file, err := Parse(rendered)
	require.NoError(t, err)

	roundTripped, err := FileToItem(file, types.BaseTypeTasks)
	require.NoError(t, err)
	assert.Equal(t, item.Title, roundTripped.Title)
	assert.Equal(t, item.Tags, roundTripped.Tags)
	assert.Equal(t, item.CreatedAt.UTC(), roundTripped.CreatedAt.UTC())
}

func TestFileToItemRejectsMissingIDOrType(t *testing.T) {
	_, err := FileToItem(File{}, types.BaseTypeTasks)
	assert.Error(t, err)
}
