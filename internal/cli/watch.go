package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

// watchMarkdownTree watches a.Config.DataRoot for out-of-band edits to
// Markdown files (a user hand-editing a file outside the CLI/MCP
// surface) and triggers a debounced rebuild whenever changes settle.
// It blocks until ctx is canceled.
func watchMarkdownTree(ctx context.Context, a *app.App) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cli: starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, a.Config.DataRoot); err != nil {
		return fmt.Errorf("cli: watching %s: %w", a.Config.DataRoot, err)
	}
	a.Log.Info("watching markdown tree for changes", "root", a.Config.DataRoot)

	var timer *time.Timer
	trigger := make(chan struct{}, 1)
	debounce := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(500*time.Millisecond, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".md") || strings.Contains(event.Name, ".staging-") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Log.Warn("watch error", "error", watchErr)
		case <-trigger:
			report, err := a.Rebuild.Run(ctx)
			if err != nil {
				a.Log.Warn("rebuild after watched change failed", "error", err)
				continue
			}
			a.Log.Info("rebuilt after markdown change", "types_touched", len(report.CountsByType))
		}
	}
}

// addWatchDirs registers every directory under root with watcher.
// fsnotify watches are non-recursive, so each directory in the tree
// needs its own Add call.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
