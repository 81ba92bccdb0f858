// Package exportimport implements Export/Import: a pure
// projection of the live store to a directory tree, and
// the reverse load from a JSON or Markdown dump. Pass ordering on
// import mirrors the Rebuild Engine: items first, then tags and
// relations re-registered from what each item carries.
package exportimport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shirokuma-dev/shirokuma/internal/currentstate"
	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/rebuild"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

type Service struct {
	db   *sqlite.DB
	reg  *registry.Registry
	repo *repository.Repository
	cs   *currentstate.Service
	lock *storage.WriteLock
	log  *slog.Logger
}

func New(db *sqlite.DB, reg *registry.Registry, repo *repository.Repository, cs *currentstate.Service, lock *storage.WriteLock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, reg: reg, repo: repo, cs: cs, lock: lock, log: logger}
}

// ExportReport summarizes one export run.
type ExportReport struct {
	CountsByType map[string]int
	Files        []string
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

// Export projects every item and, if writeManifest is set, a manifest
// of what was written, into exportRoot. It is pure projection: no DB
// mutation.
func (s *Service) Export(ctx context.Context, exportRoot string, includeCurrentState, writeManifest bool) (ExportReport, error) {
	report := ExportReport{CountsByType: map[string]int{}}

	typeDefs, err := s.reg.ListTypes(ctx)
	if err != nil {
		return ExportReport{}, err
	}

	for _, td := range typeDefs {
		views, err := s.repo.List(ctx, td.Name, types.ListFilter{IncludeClosedStatuses: true})
		if err != nil {
			return ExportReport{}, err
		}
		dir := filepath.Join(exportRoot, td.Name)
		for _, v := range views {
			item, err := s.repo.Get(ctx, td.Name, v.ID)
			if err != nil {
				return ExportReport{}, err
			}
			rendered, err := markdown.RenderItem(item)
			if err != nil {
				return ExportReport{}, types.Wrap(types.KindIntegrity, err, "rendering %s-%s", td.Name, v.ID)
			}
			target := filepath.Join(dir, fmt.Sprintf("%s-%s.md", v.ID, slugify(v.Title)))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return ExportReport{}, fmt.Errorf("exportimport: creating %s: %w", dir, err)
			}
			if err := os.WriteFile(target, rendered, 0o644); err != nil {
				return ExportReport{}, fmt.Errorf("exportimport: writing %s: %w", target, err)
			}
			report.Files = append(report.Files, target)
		}
		if len(views) > 0 {
			report.CountsByType[td.Name] = len(views)
		}
	}

	if includeCurrentState {
		state, err := s.cs.Get(ctx)
		if err != nil {
			return ExportReport{}, err
		}
		rendered, err := markdown.RenderCurrentState(state)
		if err != nil {
			return ExportReport{}, types.Wrap(types.KindIntegrity, err, "rendering current state")
		}
		statePath := filepath.Join(exportRoot, ".system", "current_state", "latest.md")
		if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
			return ExportReport{}, fmt.Errorf("exportimport: creating current-state dir: %w", err)
		}
		if err := os.WriteFile(statePath, rendered, 0o644); err != nil {
			return ExportReport{}, fmt.Errorf("exportimport: writing current state: %w", err)
		}
		report.Files = append(report.Files, statePath)
	}

	if writeManifest {
		manifest, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return ExportReport{}, fmt.Errorf("exportimport: encoding manifest: %w", err)
		}
		manifestPath := filepath.Join(exportRoot, "manifest.json")
		if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
			return ExportReport{}, fmt.Errorf("exportimport: writing manifest: %w", err)
		}
	}

	return report, nil
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Imported int
	Warnings []string
}

// importDTO is the JSON-dump shape: a flattened view of types.Item
// suitable for round-tripping through encoding/json without exposing
// internal field names like NumericID.
type importDTO struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Category    string   `json:"category"`
	Version     string   `json:"version"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Tags        []string `json:"tags"`
	Related     []string `json:"related"`
}

// Import loads items from a JSON array dump or a directory of
// Markdown files at path. When clear is set, every mutable table is
// truncated first (mirroring Rebuild step 1). When preserveIds is
// set, items are inserted with their original ids and timestamps
// rather than going through the normal sequence allocator.
func (s *Service) Import(ctx context.Context, path string, clear, preserveIds bool) (ImportReport, error) {
	items, warnings, err := s.readDump(ctx, path)
	if err != nil {
		return ImportReport{}, err
	}
	report := ImportReport{Warnings: warnings}

	if !preserveIds {
		// Fresh ids go through the normal Repository path so sequence
		// allocation, validation, and markdown projection all happen the
		// same way a live create_item call would produce them.
		if clear {
			if err := s.clearStore(ctx); err != nil {
				return ImportReport{}, err
			}
		}
		for _, item := range items {
			_, err := s.repo.Create(ctx, CreateInputFromItem(item))
			if err != nil {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s-%s: %v", item.Type, item.ID, err))
				continue
			}
			report.Imported++
		}
		return report, nil
	}

	// Statuses are resolved before the write transaction opens: the
	// registry shares the single-connection writer pool, so querying it
	// while the transaction holds that connection would block.
	var resolved []types.Item
	for _, item := range items {
		status, err := s.reg.ResolveStatus(ctx, item.StatusName)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s-%s: %v", item.Type, item.ID, err))
			continue
		}
		item.StatusID = status.ID
		resolved = append(resolved, item)
	}

	if err := s.lock.Acquire(ctx); err != nil {
		return ImportReport{}, fmt.Errorf("exportimport: acquiring write lock: %w", err)
	}
	defer s.lock.Release()

	tx, err := s.db.Write.BeginTx(ctx, nil)
	if err != nil {
		return ImportReport{}, fmt.Errorf("exportimport: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		if err := rebuild.TruncateMutableTables(ctx, tx); err != nil {
			return ImportReport{}, err
		}
	}

	for _, item := range resolved {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = item.CreatedAt
		}
		if err := rebuild.InsertPreservingID(ctx, tx, item); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s-%s: %v", item.Type, item.ID, err))
			continue
		}
		report.Imported++
	}

	if err := tx.Commit(); err != nil {
		return ImportReport{}, fmt.Errorf("exportimport: committing transaction: %w", err)
	}
	return report, nil
}

// clearStore truncates the mutable tables outside of the
// Repository's own write path, used only by the non-preserveIds import
// branch where each item afterwards goes through repo.Create.
func (s *Service) clearStore(ctx context.Context) error {
	if err := s.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("exportimport: acquiring write lock: %w", err)
	}
	defer s.lock.Release()
	tx, err := s.db.Write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("exportimport: beginning clear transaction: %w", err)
	}
	defer tx.Rollback()
	if err := rebuild.TruncateMutableTables(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateInputFromItem adapts a parsed dump item into the shape
// Repository.Create expects, dropping the original id/timestamps so a
// fresh sequence allocation takes over.
func CreateInputFromItem(item types.Item) repository.CreateInput {
	return repository.CreateInput{
		Type: item.Type, Title: item.Title, Description: item.Description, Content: item.Content,
		Status: item.StatusName, Priority: string(item.Priority), Category: item.Category, Version: item.Version,
		StartDate: item.StartDate, EndDate: item.EndDate, Tags: item.Tags, Related: item.Related,
	}
}

func (s *Service) readDump(ctx context.Context, path string) ([]types.Item, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("exportimport: reading %s: %w", path, err)
	}

	if !info.IsDir() && strings.HasSuffix(path, ".json") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("exportimport: reading %s: %w", path, err)
		}
		var dtos []importDTO
		if err := json.Unmarshal(raw, &dtos); err != nil {
			return nil, nil, types.Validationf("invalid JSON dump: %v", err)
		}
		items := make([]types.Item, len(dtos))
		for i, d := range dtos {
			items[i] = types.Item{
				ID: d.ID, Type: d.Type, Title: d.Title, Description: d.Description, Content: d.Content,
				StatusName: d.Status, Priority: types.NormalizePriority(d.Priority), Category: d.Category,
				Version: d.Version, StartDate: d.StartDate, EndDate: d.EndDate, Tags: d.Tags, Related: d.Related,
			}
		}
		return items, nil, nil
	}

	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	var items []types.Item
	var warnings []string
	err = filepath.Walk(dir, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil || fi.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", p, err))
			return nil
		}
		file, err := markdown.Parse(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", p, err))
			return nil
		}
		baseType := types.BaseTypeDocuments
		if file.FrontMatter.Type != "" {
			if td, err := s.reg.GetType(ctx, file.FrontMatter.Type); err == nil {
				baseType = td.BaseType
			}
		}
		item, err := markdown.FileToItem(file, baseType)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", p, err))
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("exportimport: walking %s: %w", dir, err)
	}
	return items, warnings, nil
}
