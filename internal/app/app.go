// Package app wires every component into one process: storage driver,
// write lock, markdown projector, registry, repository, search,
// current-state, rebuild, export/import, and the tool surface. Every
// CLI command and the MCP server share this single construction path
// so they observe the same write-lock and database handles.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shirokuma-dev/shirokuma/internal/config"
	"github.com/shirokuma-dev/shirokuma/internal/currentstate"
	"github.com/shirokuma-dev/shirokuma/internal/distill"
	"github.com/shirokuma-dev/shirokuma/internal/exportimport"
	"github.com/shirokuma-dev/shirokuma/internal/logging"
	"github.com/shirokuma-dev/shirokuma/internal/markdown"
	"github.com/shirokuma-dev/shirokuma/internal/rebuild"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/search"
	"github.com/shirokuma-dev/shirokuma/internal/storage"
	"github.com/shirokuma-dev/shirokuma/internal/storage/sqlite"
	"github.com/shirokuma-dev/shirokuma/internal/toolsurface"
)

// App bundles every wired component for one process lifetime.
type App struct {
	Config      *config.Config
	Log         *slog.Logger
	DB          *sqlite.DB
	Lock        *storage.WriteLock
	Registry    *registry.Registry
	Repository  *repository.Repository
	Search      *search.Service
	CurrentState *currentstate.Service
	Rebuild     *rebuild.Engine
	ExportImport *exportimport.Service
	Tools       *toolsurface.Dispatcher
}

// Open constructs every component against cfg. Callers must call
// Close when done, typically via defer.
func Open(ctx context.Context, cfg *config.Config, debug bool) (*App, error) {
	logger := logging.New(logging.Options{FilePath: cfg.LogFile, Debug: debug})

	lock, err := storage.NewWriteLock(cfg.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("app: acquiring data root lock: %w", err)
	}

	db, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		lock.Close()
		return nil, fmt.Errorf("app: opening database: %w", err)
	}

	reg := registry.New(db.Write)
	proj := markdown.New(cfg.DataRoot)
	repo := repository.New(db, reg, proj, lock, logger)
	srch := search.New(db, repo)
	summarizer := distill.FromEnv()
	cs := currentstate.New(db, proj, lock, summarizer, logger)
	rb := rebuild.New(db, reg, cfg.DataRoot, lock, logger)
	ei := exportimport.New(db, reg, repo, cs, lock, logger)

	tools := toolsurface.Build(toolsurface.Services{Repo: repo, Reg: reg, Srch: srch, CS: cs})

	return &App{
		Config: cfg, Log: logger, DB: db, Lock: lock,
		Registry: reg, Repository: repo, Search: srch, CurrentState: cs,
		Rebuild: rb, ExportImport: ei, Tools: tools,
	}, nil
}

// Close releases the database and the cross-process advisory lock.
func (a *App) Close() error {
	dbErr := a.DB.Close()
	lockErr := a.Lock.Close()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}
