// Package search implements the Search Service:
// full-text AND search over the FTS5 shadow table, prefix suggestions
// over titles and tags, and the tag-grouped cross-type lookup.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	db   *sqlite.DB
	repo *repository.Repository
}

func New(db *sqlite.DB, repo *repository.Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Search runs an AND full-text query: every
// whitespace-separated token must match title+description+content.
// Relevance is bm25's native ranking (zero or negative, lower is
// better) re-exposed as -bm25/(1-bm25), a value in [0,1) where
// higher numbers read as "more relevant" (Open Question (d)).
func (s *Service) Search(ctx context.Context, query string, typeFilter []string, limit, offset int) ([]types.SearchResult, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, types.Validationf("query must not be empty")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	match := matchExpression(tokens)
	rows, err := s.db.Read.QueryContext(ctx, `
		SELECT item_key, bm25(items_fts) AS rank FROM items_fts
		WHERE items_fts MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?`, match, limit*4, 0) // over-fetch, then apply type filter below
	if err != nil {
		return nil, fmt.Errorf("search: querying fts: %w", err)
	}
	defer rows.Close()

	allow := map[string]bool{}
	for _, t := range typeFilter {
		allow[t] = true
	}

	var results []types.SearchResult
	for rows.Next() {
		var itemKey string
		var rank float64
		if err := rows.Scan(&itemKey, &rank); err != nil {
			return nil, fmt.Errorf("search: scanning fts row: %w", err)
		}
		itemType, id, ok := splitItemKey(itemKey)
		if !ok {
			continue
		}
		if len(allow) > 0 && !allow[itemType] {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		view, err := s.repo.GetListView(ctx, itemType, id)
		if err != nil {
			if types.IsKind(err, types.KindNotFound) {
				continue // stale FTS row racing a delete; skip rather than fail the whole search
			}
			return nil, err
		}
		results = append(results, types.SearchResult{Item: view, Relevance: -rank / (1 - rank)})
		if len(results) >= limit {
			break
		}
	}
	return results, rows.Err()
}

// matchExpression builds a conjunction of quoted tokens so FTS5 never
// falls back to its default OR-of-terms behavior.
func matchExpression(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " AND ")
}

func splitItemKey(key string) (itemType, id string, ok bool) {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// Suggest returns up to limit prefix matches over titles and tags,
// exact-prefix hits first, then by frequency.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 20 {
		limit = 20
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, types.Validationf("query must not be empty")
	}

	counts := map[string]int{}

	titleRows, err := s.db.Read.QueryContext(ctx, "SELECT title FROM items WHERE title LIKE ? ESCAPE '\\'", likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("search: suggesting from titles: %w", err)
	}
	for titleRows.Next() {
		var title string
		if err := titleRows.Scan(&title); err != nil {
			titleRows.Close()
			return nil, err
		}
		counts[title]++
	}
	titleRows.Close()
	if err := titleRows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.db.Read.QueryContext(ctx, "SELECT name FROM tags WHERE name LIKE ? ESCAPE '\\'", likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("search: suggesting from tags: %w", err)
	}
	for tagRows.Next() {
		var name string
		if err := tagRows.Scan(&name); err != nil {
			tagRows.Close()
			return nil, err
		}
		counts[name]++
	}
	tagRows.Close()
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	type candidate struct {
		value       string
		exactPrefix bool
		count       int
	}
	lowerPrefix := strings.ToLower(prefix)
	var candidates []candidate
	for v, c := range counts {
		candidates = append(candidates, candidate{
			value:       v,
			exactPrefix: strings.HasPrefix(strings.ToLower(v), lowerPrefix),
			count:       c,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].exactPrefix != candidates[j].exactPrefix {
			return candidates[i].exactPrefix
		}
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].value < candidates[j].value
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.value
	}
	return out, nil
}

func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}

// SearchByTag delegates to the repository's grouped, full-item lookup
//.
func (s *Service) SearchByTag(ctx context.Context, tag string, typeFilter []string) (types.TagGroup, error) {
	return s.repo.SearchByTag(ctx, tag, typeFilter)
}
