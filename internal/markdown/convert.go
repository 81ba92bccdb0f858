package markdown

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

const timeLayout = time.RFC3339

func itemToFile(item types.Item) File {
	return File{
		FrontMatter: FrontMatter{
			ID:          item.ID,
			Type:        item.Type,
			Title:       item.Title,
			Description: item.Description,
			Status:      item.StatusName,
			Priority:    string(item.Priority),
			Category:    item.Category,
			Version:     item.Version,
			StartDate:   item.StartDate,
			EndDate:     item.EndDate,
			Tags:        item.Tags,
			Related:     item.Related,
			CreatedAt:   item.CreatedAt.UTC().Format(timeLayout),
			UpdatedAt:   item.UpdatedAt.UTC().Format(timeLayout),
		},
		Body: item.Content,
	}
}

// FileToItem reconstructs an Item from a parsed File. baseType must be
// supplied by the caller (looked up from the type registry), since
// front matter itself doesn't redundantly store it. Unrecognized
// front-matter keys (FrontMatter.Extra) are not carried onto the Item.
func FileToItem(f File, baseType types.BaseType) (types.Item, error) {
	fm := f.FrontMatter
	if fm.ID == "" || fm.Type == "" {
		return types.Item{}, fmt.Errorf("markdown: front matter missing id/type")
	}

	item := types.Item{
		ID:          fm.ID,
		Type:        fm.Type,
		BaseType:    baseType,
		Title:       fm.Title,
		Description: fm.Description,
		Content:     f.Body,
		StatusName:  fm.Status,
		Priority:    types.Priority(fm.Priority),
		Category:    fm.Category,
		Version:     fm.Version,
		StartDate:   fm.StartDate,
		EndDate:     fm.EndDate,
		Tags:        fm.Tags,
		Related:     fm.Related,
	}

	if !types.IsReservedType(fm.Type) {
		n, err := strconv.ParseInt(fm.ID, 10, 64)
		if err != nil {
			return types.Item{}, fmt.Errorf("markdown: non-numeric id %q for type %q: %w", fm.ID, fm.Type, err)
		}
		item.NumericID = n
	}

	created, err := time.Parse(timeLayout, fm.CreatedAt)
	if err != nil {
		return types.Item{}, fmt.Errorf("markdown: parsing created_at %q: %w", fm.CreatedAt, err)
	}
	item.CreatedAt = created

	updated, err := time.Parse(timeLayout, fm.UpdatedAt)
	if err != nil {
		return types.Item{}, fmt.Errorf("markdown: parsing updated_at %q: %w", fm.UpdatedAt, err)
	}
	item.UpdatedAt = updated

	return item, nil
}

// RenderCurrentState renders a current-state snapshot to bytes without
// staging it, used by Export to write the latest snapshot into the
// export tree.
func RenderCurrentState(state types.CurrentState) ([]byte, error) {
	return Render(currentStateToFile(state))
}

// RenderItem renders an item to bytes without staging it, used by
// Export for the slugged, flat-named export layout.
func RenderItem(item types.Item) ([]byte, error) {
	return Render(itemToFile(item))
}

func currentStateToFile(state types.CurrentState) File {
	fm := FrontMatter{
		ID:        "current_state",
		Type:      "current_state",
		Title:     state.Metadata.Title,
		Priority:  string(state.Metadata.Priority),
		Tags:      state.Tags,
		Related:   state.Related,
		UpdatedAt: state.UpdatedAt.UTC().Format(timeLayout),
	}
	extra := map[string]string{}
	for k, v := range state.Metadata.Extra {
		extra[k] = v
	}
	if state.Metadata.UpdatedBy != "" {
		extra["updated_by"] = state.Metadata.UpdatedBy
	}
	if state.Metadata.Context != "" {
		extra["context"] = state.Metadata.Context
	}
	fm.Extra = extra
	return File{FrontMatter: fm, Body: state.Content}
}

// FileToCurrentState is the inverse of currentStateToFile, used when
// recovering the singleton's history during reconciliation.
func FileToCurrentState(f File) types.CurrentState {
	fm := f.FrontMatter
	state := types.CurrentState{
		Content: f.Body,
		Tags:    fm.Tags,
		Related: fm.Related,
		Metadata: types.CurrentStateMetadata{
			Title:    fm.Title,
			Type:     "current_state",
			Priority: types.Priority(fm.Priority),
			Tags:     fm.Tags,
			Related:  fm.Related,
		},
	}
	extra := map[string]string{}
	for k, v := range fm.Extra {
		switch k {
		case "updated_by":
			state.Metadata.UpdatedBy = v
		case "context":
			state.Metadata.Context = v
		default:
			extra[k] = v
		}
	}
	state.Metadata.Extra = extra
	if t, err := time.Parse(timeLayout, fm.UpdatedAt); err == nil {
		state.UpdatedAt = t
		state.Metadata.UpdatedAt = &t
	}
	return state
}

// SanitizeTitle strips zero-width characters from a title before it is
// ever handed to the projector or the repository. Only titles are
// filtered this way; body content passes through untouched.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '​', '‌', '‍', '﻿':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
