package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	borderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderListView renders a slice of list-view rows as a bordered
// table: ID, title, status, priority, tags, updated. Used by `shirokuma list`
// in text format.
func RenderListView(views []types.ListView) string {
	if len(views) == 0 {
		return mutedStyle.Render("No items found.")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Width(Width()).
		Headers("ID", "TITLE", "STATUS", "PRIORITY", "TAGS", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, v := range views {
		t.Row(v.ID, truncate(v.Title, 40), v.Status, priorityBadge(v.Priority), strings.Join(v.Tags, ","), humanize.Time(v.UpdatedAt))
	}
	return t.Render()
}

// RenderSearchResults renders bm25-ranked search hits alongside their
// relevance score.
func RenderSearchResults(results []types.SearchResult) string {
	if len(results) == 0 {
		return mutedStyle.Render("No matches.")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Width(Width()).
		Headers("ID", "TITLE", "STATUS", "RELEVANCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range results {
		t.Row(r.Item.ID, truncate(r.Item.Title, 40), r.Item.Status, fmt.Sprintf("%.3f", r.Relevance))
	}
	return t.Render()
}

func priorityBadge(p types.Priority) string {
	style := lipgloss.NewStyle()
	switch p {
	case types.PriorityCritical, types.PriorityHigh:
		style = style.Foreground(ColorWarn).Bold(true)
	case types.PriorityLow, types.PriorityMinimal:
		style = style.Foreground(ColorMuted)
	default:
		style = style.Foreground(ColorAccent)
	}
	return style.Render(string(p))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
