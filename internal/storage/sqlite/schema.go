package sqlite

import "context"
import "database/sql"
import "fmt"

// schema is the baseline DDL for every mutable table plus the closed
// status/type registries and the FTS5 index: CREATE TABLE IF NOT
// EXISTS blocks, one index per access pattern.
const schema = `
-- Type registry: dynamic types bound to one of two base-type rails,
-- plus the two reserved special types pre-registered below.
CREATE TABLE IF NOT EXISTS types (
    name        TEXT PRIMARY KEY,
    base_type   TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    reserved    INTEGER NOT NULL DEFAULT 0
);

-- Status table: fixed at init, never mutated via any tool.
CREATE TABLE IF NOT EXISTS statuses (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    is_closable INTEGER NOT NULL DEFAULT 0,
    sort_order  INTEGER NOT NULL DEFAULT 0
);

-- Per-type monotonic id allocator. sessions/dailies
-- keep a sentinel row at 0 since their ids derive from the clock/date.
CREATE TABLE IF NOT EXISTS sequences (
    type          TEXT PRIMARY KEY,
    current_value INTEGER NOT NULL DEFAULT 0
);

-- The single homogeneous item. id is stored as text so
-- sessions/dailies can carry their timestamp/date ids uniformly;
-- numeric_id mirrors the integer form for normal types (0 otherwise).
CREATE TABLE IF NOT EXISTS items (
    type         TEXT NOT NULL,
    id           TEXT NOT NULL,
    numeric_id   INTEGER NOT NULL DEFAULT 0,
    base_type    TEXT NOT NULL,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL DEFAULT '',
    status_id    INTEGER NOT NULL,
    priority     TEXT NOT NULL DEFAULT 'MEDIUM',
    category     TEXT NOT NULL DEFAULT '',
    version      TEXT NOT NULL DEFAULT '',
    start_date   TEXT NOT NULL DEFAULT '',
    end_date     TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL,
    PRIMARY KEY (type, id),
    FOREIGN KEY (status_id) REFERENCES statuses(id)
);

CREATE INDEX IF NOT EXISTS idx_items_type_numeric ON items(type, numeric_id);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status_id);
CREATE INDEX IF NOT EXISTS idx_items_updated_at ON items(updated_at);

-- Tags.
CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS item_tags (
    item_type  TEXT NOT NULL,
    item_id    TEXT NOT NULL,
    tag_id     INTEGER NOT NULL,
    position   INTEGER NOT NULL,
    PRIMARY KEY (item_type, item_id, tag_id),
    FOREIGN KEY (item_type, item_id) REFERENCES items(type, id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag_id);

-- Directed relation edges. Target may dangle: no foreign key on the
-- target side by design, the source side is enforced because only a
-- live item can originate an edge.
CREATE TABLE IF NOT EXISTS item_relations (
    source_type TEXT NOT NULL,
    source_id   TEXT NOT NULL,
    target_type TEXT NOT NULL,
    target_id   TEXT NOT NULL,
    PRIMARY KEY (source_type, source_id, target_type, target_id),
    FOREIGN KEY (source_type, source_id) REFERENCES items(type, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_item_relations_target ON item_relations(target_type, target_id);

-- Current-state singleton. At most one row, keyed by the constant
-- id=1 and absent until the first write; history kept as an append-only log file by the
-- markdown projector, never as queryable rows here.
CREATE TABLE IF NOT EXISTS system_state (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    content    TEXT NOT NULL DEFAULT '',
    tags       TEXT NOT NULL DEFAULT '[]',
    related    TEXT NOT NULL DEFAULT '[]',
    updated_by TEXT NOT NULL DEFAULT '',
    context    TEXT NOT NULL DEFAULT '',
    updated_at DATETIME
);

-- Full-text index over title + description + content.
-- A standalone FTS5 table (not external-content) whose unindexed
-- item_key column holds the (type,id) composite key as "type:id",
-- kept synchronized by triggers on items.
CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
    item_key UNINDEXED,
    title,
    description,
    content,
    tokenize = 'porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS items_ai AFTER INSERT ON items BEGIN
    INSERT INTO items_fts(item_key, title, description, content)
    VALUES (new.type || ':' || new.id, new.title, new.description, new.content);
END;

CREATE TRIGGER IF NOT EXISTS items_ad AFTER DELETE ON items BEGIN
    DELETE FROM items_fts WHERE item_key = old.type || ':' || old.id;
END;

CREATE TRIGGER IF NOT EXISTS items_au AFTER UPDATE ON items BEGIN
    DELETE FROM items_fts WHERE item_key = old.type || ':' || old.id;
    INSERT INTO items_fts(item_key, title, description, content)
    VALUES (new.type || ':' || new.id, new.title, new.description, new.content);
END;
`

func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: applying schema: %w", err)
	}
	if err := seedStatuses(ctx, db); err != nil {
		return err
	}
	if err := seedTypes(ctx, db); err != nil {
		return err
	}
	return nil
}

func seedStatuses(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM statuses").Scan(&count); err != nil {
		return fmt.Errorf("sqlite: counting statuses: %w", err)
	}
	if count > 0 {
		return nil
	}
	stmt, err := db.PrepareContext(ctx, "INSERT INTO statuses (name, is_closable, sort_order) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite: preparing status seed: %w", err)
	}
	defer stmt.Close()
	for _, name := range []struct {
		name      string
		closable  bool
		sortOrder int
	}{
		{"Open", false, 0},
		{"Specification", false, 1},
		{"Waiting", false, 2},
		{"Ready", false, 3},
		{"In Progress", false, 4},
		{"Review", false, 5},
		{"Testing", false, 6},
		{"Pending", false, 7},
		{"Completed", true, 8},
		{"Closed", true, 9},
		{"Canceled", true, 10},
		{"Rejected", true, 11},
	} {
		if _, err := stmt.ExecContext(ctx, name.name, name.closable, name.sortOrder); err != nil {
			return fmt.Errorf("sqlite: seeding status %s: %w", name.name, err)
		}
	}
	return nil
}

func seedTypes(ctx context.Context, db *sql.DB) error {
	defaults := []struct {
		name, baseType, desc string
		reserved             bool
	}{
		{"issues", "tasks", "Tracked work items", false},
		{"plans", "tasks", "Planning documents with a lifecycle", false},
		{"docs", "documents", "Reference documentation", false},
		{"knowledge", "documents", "Durable knowledge notes", false},
		{"sessions", "tasks", "Work session logs", true},
		{"dailies", "documents", "Daily notes", true},
	}
	stmt, err := db.PrepareContext(ctx, "INSERT OR IGNORE INTO types (name, base_type, description, reserved) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite: preparing type seed: %w", err)
	}
	defer stmt.Close()
	for _, d := range defaults {
		if _, err := stmt.ExecContext(ctx, d.name, d.baseType, d.desc, d.reserved); err != nil {
			return fmt.Errorf("sqlite: seeding type %s: %w", d.name, err)
		}
	}
	for _, t := range []string{"issues", "plans", "docs", "knowledge"} {
		if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO sequences (type, current_value) VALUES (?, 0)", t); err != nil {
			return fmt.Errorf("sqlite: seeding sequence %s: %w", t, err)
		}
	}
	for _, t := range []string{"sessions", "dailies"} {
		if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO sequences (type, current_value) VALUES (?, 0)", t); err != nil {
			return fmt.Errorf("sqlite: seeding sequence sentinel %s: %w", t, err)
		}
	}
	return nil
}
