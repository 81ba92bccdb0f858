package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// ChangeType migrates an item to a new type within the same base
// type, rewriting every inbound related reference across the store to
// the new "<type>-<id>" token.
func (r *Repository) ChangeType(ctx context.Context, fromType, fromID, toType string) (ChangeTypeResult, error) {
	if types.IsReservedType(fromType) || types.IsReservedType(toType) {
		return ChangeTypeResult{}, types.Referencef("cannot change type of a reserved type")
	}

	fromDef, err := r.reg.GetType(ctx, fromType)
	if err != nil {
		return ChangeTypeResult{}, err
	}
	toDef, err := r.reg.GetType(ctx, toType)
	if err != nil {
		return ChangeTypeResult{}, err
	}
	if fromDef.BaseType != toDef.BaseType {
		return ChangeTypeResult{}, types.Referencef("cannot change %q to %q: different base types", fromType, toType)
	}

	var result ChangeTypeResult
	var staged []markdown.Staged
	var oldBaseType types.BaseType

	err = r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		item, err := getItem(ctx, tx, fromType, fromID)
		if err != nil {
			return nil, err
		}
		oldBaseType = item.BaseType

		newNumeric, err := sqlite.NextID(ctx, tx, toType)
		if err != nil {
			return nil, err
		}
		newID := fmt.Sprintf("%d", newNumeric)
		now := time.Now().UTC()

		migrated := item
		migrated.Type = toType
		migrated.ID = newID
		migrated.NumericID = newNumeric
		migrated.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (type, id, numeric_id, base_type, title, description, content,
				status_id, priority, category, version, start_date, end_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			migrated.Type, migrated.ID, migrated.NumericID, string(migrated.BaseType), migrated.Title,
			migrated.Description, migrated.Content, migrated.StatusID, string(migrated.Priority),
			migrated.Category, migrated.Version, migrated.StartDate, migrated.EndDate,
			migrated.CreatedAt, migrated.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: inserting migrated item: %w", err)
		}
		if err := writeTags(ctx, tx, toType, newID, migrated.Tags); err != nil {
			return nil, err
		}
		if err := writeRelations(ctx, tx, toType, newID, migrated.Related); err != nil {
			return nil, err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT DISTINCT source_type, source_id FROM item_relations
			WHERE target_type = ? AND target_id = ?`, fromType, fromID)
		if err != nil {
			return nil, fmt.Errorf("repository: finding inbound references: %w", err)
		}
		type sourceKey struct{ itemType, id string }
		var sources []sourceKey
		for rows.Next() {
			var k sourceKey
			if err := rows.Scan(&k.itemType, &k.id); err != nil {
				rows.Close()
				return nil, err
			}
			sources = append(sources, k)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE item_relations SET target_type = ?, target_id = ?
			WHERE target_type = ? AND target_id = ?`, toType, newID, fromType, fromID); err != nil {
			return nil, fmt.Errorf("repository: rewriting inbound references: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE type = ? AND id = ?", fromType, fromID); err != nil {
			return nil, fmt.Errorf("repository: deleting migrated-from item: %w", err)
		}

		newFile, err := r.proj.StageItem(migrated)
		if err != nil {
			return nil, types.Wrap(types.KindIntegrity, err, "staging migrated item %s-%s", toType, newID)
		}
		staged = append(staged, newFile)

		for _, src := range sources {
			if src.itemType == fromType && src.id == fromID {
				continue
			}
			srcItem, err := getItem(ctx, tx, src.itemType, src.id)
			if err != nil {
				return nil, err
			}
			s, err := r.proj.StageItem(srcItem)
			if err != nil {
				return nil, types.Wrap(types.KindIntegrity, err, "re-staging referrer %s-%s", src.itemType, src.id)
			}
			staged = append(staged, s)
		}

		result = ChangeTypeResult{NewID: newID, MigratedReferences: len(sources)}
		return staged, nil
	})
	if err != nil {
		return ChangeTypeResult{}, err
	}

	if err := r.proj.Unlink(oldBaseType, fromType, fromID); err != nil {
		r.log.WarnContext(ctx, "markdown unlink of migrated-from item failed", "type", fromType, "id", fromID, "error", err)
	}
	return result, nil
}
