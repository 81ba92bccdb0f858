package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Update applies patch to an existing item, preserving any field the
// caller omitted, and re-stages the Markdown file. The
// returned warning is non-empty when the item moved to a closable
// status without an end_date (Open Question (c): permissive, but
// flagged).
func (r *Repository) Update(ctx context.Context, itemType, id string, patch UpdatePatch) (types.Item, string, error) {
	var result types.Item
	var warning string
	// The status is resolved before the write transaction opens: the
	// registry shares the single-connection writer pool, so querying it
	// while the transaction holds that connection would block.
	var newStatus *types.Status
	if patch.Status != nil {
		status, err := r.reg.ResolveStatus(ctx, *patch.Status)
		if err != nil {
			return types.Item{}, "", err
		}
		newStatus = &status
	}
	err := r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		current, err := getItem(ctx, tx, itemType, id)
		if err != nil {
			return nil, err
		}

		if patch.Title != nil {
			title, err := validateTitle(*patch.Title)
			if err != nil {
				return nil, err
			}
			current.Title = markdown.SanitizeTitle(title)
		}
		if patch.Description != nil {
			if err := validateDescription(*patch.Description); err != nil {
				return nil, err
			}
			current.Description = *patch.Description
		}
		if patch.Content != nil {
			contentRequired := current.BaseType == types.BaseTypeDocuments || itemType == types.TypeDailies
			if err := validateContent(*patch.Content, contentRequired); err != nil {
				return nil, err
			}
			current.Content = *patch.Content
		}
		if patch.Category != nil {
			if err := validateShortField("category", *patch.Category); err != nil {
				return nil, err
			}
			current.Category = *patch.Category
		}
		if patch.Version != nil {
			if err := validateShortField("version", *patch.Version); err != nil {
				return nil, err
			}
			current.Version = *patch.Version
		}
		if patch.StartDate != nil {
			current.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			current.EndDate = *patch.EndDate
		}
		if patch.Priority != nil {
			priority := types.NormalizePriority(*patch.Priority)
			if !priority.Valid() {
				return nil, types.Validationf("unknown priority %q", *patch.Priority)
			}
			current.Priority = priority
		}
		if newStatus != nil {
			status := *newStatus
			if status.IsClosable && current.EndDate == "" {
				warning = fmt.Sprintf("item moved to closable status %q without an end_date", status.Name)
				r.log.WarnContext(ctx, "moving item to a closable status without an end_date",
					"type", itemType, "id", id, "status", status.Name)
			}
			current.StatusID = status.ID
			current.StatusName = status.Name
		}
		if patch.Tags != nil {
			tags, err := normalizeTags(*patch.Tags)
			if err != nil {
				return nil, err
			}
			current.Tags = tags
			if err := writeTags(ctx, tx, itemType, id, tags); err != nil {
				return nil, err
			}
		}
		if patch.Related != nil {
			related, err := normalizeRelated(*patch.Related)
			if err != nil {
				return nil, err
			}
			current.Related = related
			if err := writeRelations(ctx, tx, itemType, id, related); err != nil {
				return nil, err
			}
		}

		current.UpdatedAt = time.Now().UTC()

		if _, err := tx.ExecContext(ctx, `
			UPDATE items SET title = ?, description = ?, content = ?, status_id = ?, priority = ?,
				category = ?, version = ?, start_date = ?, end_date = ?, updated_at = ?
			WHERE type = ? AND id = ?`,
			current.Title, current.Description, current.Content, current.StatusID, string(current.Priority),
			current.Category, current.Version, current.StartDate, current.EndDate, current.UpdatedAt,
			itemType, id); err != nil {
			return nil, fmt.Errorf("repository: updating item %s-%s: %w", itemType, id, err)
		}

		staged, err := r.proj.StageItem(current)
		if err != nil {
			return nil, types.Wrap(types.KindIntegrity, err, "staging markdown for %s-%s", itemType, id)
		}
		result = current
		return []markdown.Staged{staged}, nil
	})
	if err != nil {
		return types.Item{}, "", err
	}
	return result, warning, nil
}
