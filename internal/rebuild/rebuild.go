// Package rebuild reconstructs the index database from the Markdown
// tree, preserving ids, timestamps, and per-type sequence high-water
// marks, and never resurrecting an item whose file is absent.
package rebuild

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Report summarizes one rebuild run.
type Report struct {
	CountsByType map[string]int
	Warnings     []string
}

type Engine struct {
	db   *sqlite.DB
	reg  *registry.Registry
	root string
	lock *storage.WriteLock
	log  *slog.Logger
}

func New(db *sqlite.DB, reg *registry.Registry, root string, lock *storage.WriteLock, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{db: db, reg: reg, root: root, lock: lock, log: logger}
}

// Run truncates every mutable table except statuses and the type
// registry and repopulates them from the Markdown tree rooted at the engine's root. It holds
// the write lock for its full duration.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	if err := e.lock.Acquire(ctx); err != nil {
		return Report{}, fmt.Errorf("rebuild: acquiring write lock: %w", err)
	}
	defer e.lock.Release()

	report := Report{CountsByType: map[string]int{}}

	typeDefs, err := e.reg.ListTypes(ctx)
	if err != nil {
		return Report{}, err
	}
	baseTypeOf := map[string]types.BaseType{}
	for _, td := range typeDefs {
		baseTypeOf[td.Name] = td.BaseType
	}

	// Scanning and parsing the Markdown tree is pure disk I/O with no
	// shared mutable state until the insert phase, so every type's
	// directory is walked concurrently. The write transaction is opened
	// only after the scan: scanType reads through the registry, which
	// shares the single-connection writer pool, and every insert happens
	// afterward, back on the calling goroutine, serialized through tx.
	scans := make([]typeScan, len(typeDefs))
	g, gctx := errgroup.WithContext(ctx)
	for i, td := range typeDefs {
		i, td := i, td
		g.Go(func() error {
			dir := markdown.TypeDir(e.root, td.BaseType, td.Name)
			scanned, err := e.scanType(gctx, dir, td.Name, baseTypeOf)
			if err != nil {
				return err
			}
			scans[i] = scanned
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	tx, err := e.db.Write.BeginTx(ctx, nil)
	if err != nil {
		return Report{}, fmt.Errorf("rebuild: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := TruncateMutableTables(ctx, tx); err != nil {
		return Report{}, err
	}

	maxNumeric := map[string]int64{}
	for _, scanned := range scans {
		report.Warnings = append(report.Warnings, scanned.warnings...)
		count := 0
		for _, item := range scanned.items {
			if err := InsertPreservingID(ctx, tx, item); err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s-%s: %v", item.Type, item.ID, err))
				continue
			}
			count++
			if n, err := strconv.ParseInt(item.ID, 10, 64); err == nil && n > maxNumeric[scanned.typeName] {
				maxNumeric[scanned.typeName] = n
			}
		}
		if count > 0 {
			report.CountsByType[scanned.typeName] = count
		}
	}

	for typ, max := range maxNumeric {
		if types.IsReservedType(typ) {
			continue
		}
		if err := sqlite.SetSequenceFloor(ctx, tx, typ, max); err != nil {
			return Report{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Report{}, fmt.Errorf("rebuild: committing transaction: %w", err)
	}
	return report, nil
}

// typeScan is one type directory's scan result: every item parsed off
// disk, ready for sequential insertion against the write transaction.
type typeScan struct {
	typeName string
	items    []types.Item
	warnings []string
}

// scanType visits every Markdown file under dir and parses the item it
// describes, resolving its status against the registry. A file that
// fails to parse is logged as a warning and skipped, not fatal. It
// touches no *sql.Tx, so callers may run one scanType per type
// directory concurrently.
func (e *Engine) scanType(ctx context.Context, dir, typeName string, baseTypeOf map[string]types.BaseType) (typeScan, error) {
	scanned := typeScan{typeName: typeName}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return scanned, nil
		}
		return scanned, fmt.Errorf("rebuild: statting %s: %w", dir, err)
	}
	if !info.IsDir() {
		return scanned, nil
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") || strings.Contains(path, ".staging-") {
			return nil
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: %v", path, readErr))
			return nil
		}
		file, parseErr := markdown.Parse(raw)
		if parseErr != nil {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: %v", path, parseErr))
			return nil
		}

		resolvedType := file.FrontMatter.Type
		if resolvedType == "" {
			resolvedType = typeName
		}
		resolvedBase, known := baseTypeOf[resolvedType]
		if !known {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: unregistered type %q, skipped", path, resolvedType))
			return nil
		}

		item, convErr := markdown.FileToItem(file, resolvedBase)
		if convErr != nil {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: %v", path, convErr))
			return nil
		}
		item.Type = resolvedType

		status, err := e.reg.ResolveStatus(ctx, item.StatusName)
		if err != nil {
			scanned.warnings = append(scanned.warnings, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		item.StatusID = status.ID

		scanned.items = append(scanned.items, item)
		return nil
	})
	if walkErr != nil {
		return scanned, fmt.Errorf("rebuild: walking %s: %w", dir, walkErr)
	}
	return scanned, nil
}

// InsertPreservingID inserts item with its original id, timestamps,
// tags, and relations already populated. Shared by the rebuild walk
// and by Import when preserveIds is requested.
func InsertPreservingID(ctx context.Context, tx *sql.Tx, item types.Item) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO items (type, id, numeric_id, base_type, title, description, content,
			status_id, priority, category, version, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Type, item.ID, item.NumericID, string(item.BaseType), item.Title, item.Description, item.Content,
		item.StatusID, string(item.Priority), item.Category, item.Version, item.StartDate, item.EndDate,
		item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("inserting item row: %w", err)
	}

	for i, name := range item.Tags {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("registering tag %s: %w", name, err)
		}
		var tagID int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&tagID); err != nil {
			return fmt.Errorf("resolving tag %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_tags (item_type, item_id, tag_id, position) VALUES (?, ?, ?, ?)`,
			item.Type, item.ID, tagID, i); err != nil {
			return fmt.Errorf("linking tag %s: %w", name, err)
		}
	}

	for i, token := range item.Related {
		idx := strings.IndexByte(token, '-')
		if idx <= 0 {
			continue
		}
		targetType, targetID := token[:idx], token[idx+1:]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_relations (source_type, source_id, target_type, target_id, position)
			VALUES (?, ?, ?, ?, ?)`, item.Type, item.ID, targetType, targetID, i); err != nil {
			return fmt.Errorf("linking relation %s: %w", token, err)
		}
	}
	return nil
}

// TruncateMutableTables clears every table a full rebuild or a
// --clear import repopulates, leaving statuses and types untouched.
func TruncateMutableTables(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		"DELETE FROM items",
		"DELETE FROM tags",
		"DELETE FROM sequences",
		"DELETE FROM items_fts",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("rebuild: %s: %w", stmt, err)
		}
	}
	return nil
}
