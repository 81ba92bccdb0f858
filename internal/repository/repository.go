// Package repository implements the Item Repository:
// CRUD over the single homogeneous item shape, tag and relation
// bookkeeping, sequence allocation, and the dual-write into the
// Markdown tree. Every mutating method is one DB transaction guarded
// by the write lock from the storage package; the staged Markdown
// file is only renamed into place after that transaction commits.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Repository is the sole write path into both the index database and
// the Markdown mirror.
type Repository struct {
	db   *sqlite.DB
	reg  *registry.Registry
	proj *markdown.Projector
	lock *storage.WriteLock
	log  *slog.Logger
}

func New(db *sqlite.DB, reg *registry.Registry, proj *markdown.Projector, lock *storage.WriteLock, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, reg: reg, proj: proj, lock: lock, log: logger}
}

// withWrite acquires the write lock, runs fn inside a DB transaction,
// and on success rename-commits any Staged markdown writes fn
// produced; on failure the transaction is rolled back and staged
// files are discarded.
func (r *Repository) withWrite(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) ([]markdown.Staged, error)) error {
	if err := r.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("repository: acquiring write lock: %w", err)
	}
	defer r.lock.Release()

	tx, err := r.db.Write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: beginning transaction: %w", err)
	}

	staged, err := fn(ctx, tx)
	if err != nil {
		tx.Rollback()
		markdown.Discard(staged...)
		return err
	}

	if err := tx.Commit(); err != nil {
		markdown.Discard(staged...)
		return fmt.Errorf("repository: committing transaction: %w", err)
	}
	if err := markdown.Commit(staged...); err != nil {
		// The DB has already committed; a failed rename here is an
		// integrity error the caller should surface loudly rather than
		// silently diverge the two stores.
		return types.Wrap(types.KindIntegrity, err, "markdown commit failed after DB commit")
	}
	return nil
}

// hydrateTags returns an item's tags in insertion order.
func hydrateTags(ctx context.Context, q queryer, itemType, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.name FROM item_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.item_type = ? AND it.item_id = ?
		ORDER BY it.position`, itemType, id)
	if err != nil {
		return nil, fmt.Errorf("repository: loading tags: %w", err)
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// hydrateRelated returns an item's outbound relation tokens
// ("<type>-<id>") in insertion order, regardless of whether the
// target still exists.
func hydrateRelated(ctx context.Context, q queryer, itemType, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT target_type, target_id FROM item_relations
		WHERE source_type = ? AND source_id = ?
		ORDER BY position`, itemType, id)
	if err != nil {
		return nil, fmt.Errorf("repository: loading relations: %w", err)
	}
	defer rows.Close()
	var related []string
	for rows.Next() {
		var targetType, targetID string
		if err := rows.Scan(&targetType, &targetID); err != nil {
			return nil, err
		}
		related = append(related, FormatRelatedToken(targetType, targetID))
	}
	return related, rows.Err()
}

// queryer is satisfied by both *sql.DB and *sql.Tx, so hydration
// helpers work identically inside a write transaction and against the
// read pool.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
