package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func TestRenderListViewEmptyShowsPlaceholder(t *testing.T) {
	out := RenderListView(nil)
	assert.Contains(t, out, "No items found.")
}

func TestRenderSearchResultsEmptyShowsPlaceholder(t *testing.T) {
	out := RenderSearchResults(nil)
	assert.Contains(t, out, "No matches.")
}

func TestRenderListViewIncludesRowData(t *testing.T) {
	views := []types.ListView{
		{ID: "1", Title: "first item", Status: "Open", Priority: types.PriorityHigh, Tags: []string{"a", "b"}},
	}
	out := RenderListView(views)
	assert.Contains(t, out, "first item")
	assert.Contains(t, out, "Open")
}

func TestTruncateShortensLongStringsWithEllipsis(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hell…", truncate("hello world", 5))
}
