package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// RenderItemDetail renders a full item as glamour-formatted markdown,
// falling back to plain text when glamour can't size itself to a
// non-TTY writer.
func RenderItemDetail(item types.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)
	fmt.Fprintf(&b, "**%s-%s** · %s · %s\n\n", item.Type, item.ID, item.StatusName, item.Priority)
	if item.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", item.Description)
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(item.Tags, ", "))
	}
	if len(item.Related) > 0 {
		fmt.Fprintf(&b, "Related: %s\n\n", strings.Join(item.Related, ", "))
	}
	if item.Content != "" {
		b.WriteString(item.Content)
		b.WriteString("\n")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(Width()),
	)
	if err != nil {
		return b.String()
	}
	rendered, err := renderer.Render(b.String())
	if err != nil {
		return b.String()
	}
	return rendered
}
