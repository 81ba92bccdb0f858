package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Delete removes an item and its join rows. Inbound references from
// other items are left dangling on purpose; the sequence counter is
// never decremented. The Markdown file is unlinked only after
// the DB transaction commits, so a crash mid-delete leaves the file as
// the recoverable side: unlinking an already-absent file is a
// recovered condition, not a fatal one.
func (r *Repository) Delete(ctx context.Context, itemType, id string) error {
	var baseType types.BaseType
	err := r.withWrite(ctx, func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error) {
		ok, err := exists(ctx, tx, itemType, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, types.NotFoundItem(itemType, id)
		}
		item, err := getItem(ctx, tx, itemType, id)
		if err != nil {
			return nil, err
		}
		baseType = item.BaseType

		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE type = ? AND id = ?", itemType, id); err != nil {
			return nil, fmt.Errorf("repository: deleting item %s-%s: %w", itemType, id, err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	if err := r.proj.Unlink(baseType, itemType, id); err != nil {
		r.log.WarnContext(ctx, "markdown unlink failed", "type", itemType, "id", id, "error", err)
	}
	return nil
}
