// Package registry implements the type and status registry: dynamic
// types bound to one of two base-type rails, plus the fixed, closed
// status table. No public operation may create,
// update, or delete a status; only types are mutable, and even then
// only subject to the reserved-name and empty-items rules.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry reads and writes the type/status tables.
type Registry struct {
	db *sql.DB
}

func New(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// ListTypes returns every registered type, including the reserved ones.
func (r *Registry) ListTypes(ctx context.Context) ([]types.TypeDef, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, base_type, description FROM types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("registry: listing types: %w", err)
	}
	defer rows.Close()

	var out []types.TypeDef
	for rows.Next() {
		var t types.TypeDef
		var base string
		if err := rows.Scan(&t.Name, &base, &t.Description); err != nil {
			return nil, fmt.Errorf("registry: scanning type: %w", err)
		}
		t.BaseType = types.BaseType(base)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetType looks up a single type definition, including reserved types.
func (r *Registry) GetType(ctx context.Context, name string) (*types.TypeDef, error) {
	var t types.TypeDef
	var base string
	err := r.db.QueryRowContext(ctx, "SELECT name, base_type, description FROM types WHERE name = ?", name).
		Scan(&t.Name, &base, &t.Description)
	if err == sql.ErrNoRows {
		return nil, types.NotFoundTypef(name)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: getting type %s: %w", name, err)
	}
	t.BaseType = types.BaseType(base)
	return &t, nil
}

// CreateType registers a new type bound to baseType.
func (r *Registry) CreateType(ctx context.Context, name string, baseType types.BaseType, description string) error {
	if !slugPattern.MatchString(name) {
		return types.Validationf("type name %q must match [a-z][a-z0-9_]*", name)
	}
	if types.IsReservedType(name) {
		return types.Conflictf("type name %q is reserved", name)
	}
	if !baseType.Valid() {
		return types.Validationf("base_type must be %q or %q", types.BaseTypeTasks, types.BaseTypeDocuments)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("registry: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM types WHERE name = ?", name).Scan(&exists); err != nil {
		return fmt.Errorf("registry: checking type existence: %w", err)
	}
	if exists > 0 {
		return types.Conflictf("type %q already exists", name)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO types (name, base_type, description, reserved) VALUES (?, ?, ?, 0)", name, string(baseType), description); err != nil {
		return fmt.Errorf("registry: inserting type: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sequences (type, current_value) VALUES (?, 0)", name); err != nil {
		return fmt.Errorf("registry: seeding sequence: %w", err)
	}
	return tx.Commit()
}

// UpdateType changes a type's description. The name is immutable
//").
func (r *Registry) UpdateType(ctx context.Context, name, description string) error {
	t, err := r.GetType(ctx, name)
	if err != nil {
		return err
	}
	if types.IsReservedType(t.Name) {
		return types.Referencef("cannot modify reserved type %q", name)
	}
	res, err := r.db.ExecContext(ctx, "UPDATE types SET description = ? WHERE name = ?", description, name)
	if err != nil {
		return fmt.Errorf("registry: updating type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundTypef(name)
	}
	return nil
}

// DeleteType removes a type definition. Allowed only if no items of
// that type exist; reserved types can never be deleted.
func (r *Registry) DeleteType(ctx context.Context, name string) error {
	if types.IsReservedType(name) {
		return types.Referencef("cannot delete reserved type %q", name)
	}
	t, err := r.GetType(ctx, name)
	if err != nil {
		return err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE type = ?", t.Name).Scan(&count); err != nil {
		return fmt.Errorf("registry: counting items of type %s: %w", name, err)
	}
	if count > 0 {
		return types.Conflictf("cannot delete type %q: %d items still exist", name, count)
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM types WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("registry: deleting type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundTypef(name)
	}
	_, _ = r.db.ExecContext(ctx, "DELETE FROM sequences WHERE type = ?", name)
	return nil
}

// ListStatuses returns every status row, sorted by sort_order.
func (r *Registry) ListStatuses(ctx context.Context) ([]types.Status, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, is_closable, sort_order FROM statuses ORDER BY sort_order")
	if err != nil {
		return nil, fmt.Errorf("registry: listing statuses: %w", err)
	}
	defer rows.Close()

	var out []types.Status
	for rows.Next() {
		var s types.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.IsClosable, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("registry: scanning status: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResolveStatus looks up a status by name, defaulting to "Open" when
// name is empty.
func (r *Registry) ResolveStatus(ctx context.Context, name string) (types.Status, error) {
	if name == "" {
		name = types.DefaultStatusName
	}
	var s types.Status
	err := r.db.QueryRowContext(ctx, "SELECT id, name, is_closable, sort_order FROM statuses WHERE name = ?", name).
		Scan(&s.ID, &s.Name, &s.IsClosable, &s.SortOrder)
	if err == sql.ErrNoRows {
		return types.Status{}, types.Validationf("unknown status %q", name)
	}
	if err != nil {
		return types.Status{}, fmt.Errorf("registry: resolving status %s: %w", name, err)
	}
	return s, nil
}

// StatusByID is used when hydrating items for detail/list views.
func (r *Registry) StatusByID(ctx context.Context, id int64) (types.Status, error) {
	var s types.Status
	err := r.db.QueryRowContext(ctx, "SELECT id, name, is_closable, sort_order FROM statuses WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.IsClosable, &s.SortOrder)
	if err != nil {
		return types.Status{}, fmt.Errorf("registry: status id %d: %w", id, err)
	}
	return s, nil
}

// ClosableStatusIDs returns the id set of every is_closable status, for
// default-filtering get_items results.
func (r *Registry) ClosableStatusIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM statuses WHERE is_closable = 1")
	if err != nil {
		return nil, fmt.Errorf("registry: listing closable statuses: %w", err)
	}
	defer rows.Close()
	out := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
