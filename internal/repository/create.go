package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Create validates in, allocates an id under the appropriate policy,
// persists the row plus its tags and outbound relations, projects the
// Markdown file, and returns the full item.
func (r *Repository) Create(ctx context.Context, in CreateInput) (types.Item, error) {
	typeDef, err := r.reg.GetType(ctx, in.Type)
	if err != nil {
		return types.Item{}, err
	}

	title, err := validateTitle(in.Title)
	if err != nil {
		return types.Item{}, err
	}
	if err := validateDescription(in.Description); err != nil {
		return types.Item{}, err
	}
	contentRequired := typeDef.BaseType == types.BaseTypeDocuments || in.Type == types.TypeDailies
	if err := validateContent(in.Content, contentRequired); err != nil {
		return types.Item{}, err
	}
	if err := validateShortField("category", in.Category); err != nil {
		return types.Item{}, err
	}
	if in.Type == types.TypeSessions && in.Category != "" {
		return types.Item{}, types.Validationf("category is not accepted on sessions")
	}
	if err := validateShortField("version", in.Version); err != nil {
		return types.Item{}, err
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return types.Item{}, err
	}
	related, err := normalizeRelated(in.Related)
	if err != nil {
		return types.Item{}, err
	}

	priority := types.NormalizePriority(in.Priority)
	if !priority.Valid() {
		return types.Item{}, types.Validationf("unknown priority %q", in.Priority)
	}

	status, err := r.reg.ResolveStatus(ctx, in.Status)
	if err != nil {
		return types.Item{}, err
	}

	now := time.Now().UTC()
	item := types.Item{
		Type:        in.Type,
		BaseType:    typeDef.BaseType,
		Title:       markdown.SanitizeTitle(title),
		Description: in.Description,
		Content:     in.Content,
		StatusID:    status.ID,
		StatusName:  status.Name,
		Priority:    priority,
		Category:    in.Category,
		Version:     in.Version,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Tags:        tags,
		Related:     related,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var staged markdown.Staged
	err = r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		id, numericID, err := allocateID(ctx, tx, in.Type, in)
		if err != nil {
			return nil, err
		}
		item.ID = id
		item.NumericID = numericID

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (type, id, numeric_id, base_type, title, description, content,
				status_id, priority, category, version, start_date, end_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.Type, item.ID, item.NumericID, string(item.BaseType), item.Title, item.Description, item.Content,
			item.StatusID, string(item.Priority), item.Category, item.Version, item.StartDate, item.EndDate,
			item.CreatedAt, item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: inserting item: %w", err)
		}

		if err := writeTags(ctx, tx, item.Type, item.ID, item.Tags); err != nil {
			return nil, err
		}
		if err := writeRelations(ctx, tx, item.Type, item.ID, item.Related); err != nil {
			return nil, err
		}

		s, err := r.proj.StageItem(item)
		if err != nil {
			return nil, types.Wrap(types.KindIntegrity, err, "staging markdown for %s-%s", item.Type, item.ID)
		}
		staged = s
		return []markdown.Staged{s}, nil
	})
	if err != nil {
		return types.Item{}, err
	}
	return item, nil
}

// writeTags auto-registers any tag name not already present, then
// links each to the item preserving caller-supplied order.
func writeTags(ctx context.Context, tx *sql.Tx, itemType, id string, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_type = ? AND item_id = ?", itemType, id); err != nil {
		return fmt.Errorf("repository: clearing tags: %w", err)
	}
	for i, name := range tags {
		tagID, err := ensureTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_tags (item_type, item_id, tag_id, position) VALUES (?, ?, ?, ?)`,
			itemType, id, tagID, i); err != nil {
			return fmt.Errorf("repository: linking tag %s: %w", name, err)
		}
	}
	return nil
}

func ensureTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("repository: registering tag %s: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("repository: resolving tag %s: %w", name, err)
	}
	return id, nil
}

// writeRelations replaces an item's outbound edges. Targets are never
// checked for existence: orphaned references are tolerated and
// observable by design.
func writeRelations(ctx context.Context, tx *sql.Tx, itemType, id string, related []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_relations WHERE source_type = ? AND source_id = ?", itemType, id); err != nil {
		return fmt.Errorf("repository: clearing relations: %w", err)
	}
	for i, token := range related {
		targetType, targetID, err := ParseRelatedToken(token)
		if err != nil {
			return err
		}
		if targetType == itemType && targetID == id {
			return types.Validationf("item cannot relate to itself")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_relations (source_type, source_id, target_type, target_id, position)
			VALUES (?, ?, ?, ?, ?)`, itemType, id, targetType, targetID, i); err != nil {
			return fmt.Errorf("repository: linking relation %s: %w", token, err)
		}
	}
	return nil
}
