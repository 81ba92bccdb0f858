// Package currentstate implements the Current-State Service (component
// F): a single latest-wins document with referential validation of
// its related array, distinct from ordinary items in that an invalid
// write is rejected outright rather than silently tolerated.
package currentstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/distill"
	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

type Service struct {
	db      *sqlite.DB
	proj    *markdown.Projector
	lock    *storage.WriteLock
	distill *distill.Summarizer // optional; nil disables context summarization
	log     *slog.Logger

	historyN int // monotonically increasing history slot counter
}

func New(db *sqlite.DB, proj *markdown.Projector, lock *storage.WriteLock, summarizer *distill.Summarizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, proj: proj, lock: lock, distill: summarizer, log: logger}
}

// Get returns the singleton, or the documented default skeleton if it
// has never been written.
func (s *Service) Get(ctx context.Context) (types.CurrentState, error) {
	var content, tagsJSON, relatedJSON, updatedBy, ctxText, extraJSON string
	var updatedAt sql.NullTime
	err := s.db.Read.QueryRowContext(ctx, `
		SELECT content, tags, related, updated_by, context, extra, updated_at
		FROM system_state WHERE id = 1`).Scan(&content, &tagsJSON, &relatedJSON, &updatedBy, &ctxText, &extraJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return types.DefaultCurrentState(), nil
	}
	if err != nil {
		return types.CurrentState{}, fmt.Errorf("currentstate: loading state: %w", err)
	}

	state := types.DefaultCurrentState()
	state.Content = content
	state.Tags = decodeStrings(tagsJSON)
	state.Related = decodeStrings(relatedJSON)
	state.Metadata.Tags = state.Tags
	state.Metadata.Related = state.Related
	state.Metadata.UpdatedBy = updatedBy
	state.Metadata.Context = ctxText
	var extra map[string]string
	if err := json.Unmarshal([]byte(extraJSON), &extra); err == nil {
		state.Metadata.Extra = extra
	}
	if updatedAt.Valid {
		state.UpdatedAt = updatedAt.Time
		state.Metadata.UpdatedAt = &updatedAt.Time
	}
	return state, nil
}

// Update validates every related reference against the live item set
// before touching anything; on any missing reference it returns a
// ReferenceError naming the bad ids and leaves the prior state
// completely unchanged.
func (s *Service) Update(ctx context.Context, content string, tags, related []string, metadataContext, updatedBy string) (types.CurrentState, error) {
	if len(related) > 0 {
		missing, err := s.findMissing(ctx, related)
		if err != nil {
			return types.CurrentState{}, err
		}
		if len(missing) > 0 {
			valid := subtract(related, missing)
			return types.CurrentState{}, types.Referencef(
				"related references do not exist: %s (valid subset: %s)",
				strings.Join(missing, ", "), strings.Join(valid, ", "))
		}
	}

	if metadataContext == "" && s.distill != nil {
		if summarized, err := s.distill.Summarize(ctx, content); err == nil && summarized != "" {
			metadataContext = summarized
		} else if err != nil {
			s.log.WarnContext(ctx, "context summarization skipped", "error", err)
		}
	}

	now := time.Now().UTC()
	state := types.CurrentState{
		Content: content,
		Tags:    tags,
		Related: related,
		Metadata: types.CurrentStateMetadata{
			Title:     "Current State",
			Type:      "current_state",
			Priority:  types.PriorityHigh,
			Tags:      tags,
			Related:   related,
			UpdatedAt: &now,
			UpdatedBy: updatedBy,
			Context:   metadataContext,
			Extra:     map[string]string{},
		},
		UpdatedAt: now,
	}

	if err := s.lock.Acquire(ctx); err != nil {
		return types.CurrentState{}, fmt.Errorf("currentstate: acquiring write lock: %w", err)
	}
	defer s.lock.Release()

	tx, err := s.db.Write.BeginTx(ctx, nil)
	if err != nil {
		return types.CurrentState{}, fmt.Errorf("currentstate: beginning transaction: %w", err)
	}

	tagsJSON, _ := json.Marshal(nonNil(tags))
	relatedJSON, _ := json.Marshal(nonNil(related))
	extraJSON, _ := json.Marshal(state.Metadata.Extra)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO system_state (id, content, tags, related, updated_by, context, extra, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content, tags = excluded.tags, related = excluded.related,
			updated_by = excluded.updated_by, context = excluded.context, extra = excluded.extra,
			updated_at = excluded.updated_at`,
		content, string(tagsJSON), string(relatedJSON), updatedBy, metadataContext, string(extraJSON), now); err != nil {
		tx.Rollback()
		return types.CurrentState{}, fmt.Errorf("currentstate: writing state: %w", err)
	}

	s.historyN++
	staged, err := s.proj.StageCurrentState(state, s.historyN)
	if err != nil {
		tx.Rollback()
		return types.CurrentState{}, types.Wrap(types.KindIntegrity, err, "staging current-state markdown")
	}

	if err := tx.Commit(); err != nil {
		markdown.Discard(staged...)
		return types.CurrentState{}, fmt.Errorf("currentstate: committing transaction: %w", err)
	}
	if err := markdown.Commit(staged...); err != nil {
		return types.CurrentState{}, types.Wrap(types.KindIntegrity, err, "committing current-state markdown")
	}

	return state, nil
}

func (s *Service) findMissing(ctx context.Context, related []string) ([]string, error) {
	var missing []string
	for _, token := range related {
		idx := strings.IndexByte(token, '-')
		if idx <= 0 {
			missing = append(missing, token)
			continue
		}
		itemType, id := token[:idx], token[idx+1:]
		var n int
		if err := s.db.Read.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE type = ? AND id = ?", itemType, id).Scan(&n); err != nil {
			return nil, fmt.Errorf("currentstate: checking reference %s: %w", token, err)
		}
		if n == 0 {
			missing = append(missing, token)
		}
	}
	return missing, nil
}

func subtract(all, remove []string) []string {
	excluded := map[string]bool{}
	for _, r := range remove {
		excluded[r] = true
	}
	var out []string
	for _, a := range all {
		if !excluded[a] {
			out = append(out, a)
		}
	}
	return out
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
