// Package cli implements the shirokuma command-line surface: grouped
// subcommands mirroring the MCP tool surface (create, get, list,
// update, delete, search, tags, stats, state, serve, export, import,
// rebuild, config), laid out as one importable package so
// cmd/shirokuma stays a thin entrypoint.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/config"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitInvalidArg = 2
	ExitNotFound   = 3
	ExitValidation = 5
	ExitInternal   = 6
)

var (
	format string // "text" or "json"
	debug  bool
)

// Execute builds the root command tree and runs it, returning the
// process exit code the caller should pass to os.Exit.
func Execute() int {
	root := &cobra.Command{
		Use:           "shirokuma",
		Short:         "A personal knowledge base for solo developers and their AI collaborators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&format, "format", "text", `output format: "text" or "json"`)
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "items", Title: "Item commands:"},
		&cobra.Group{ID: "search", Title: "Search commands:"},
		&cobra.Group{ID: "meta", Title: "Registry commands:"},
		&cobra.Group{ID: "ops", Title: "Operational commands:"},
	)

	root.AddCommand(
		newCreateCmd(), newGetCmd(), newListCmd(), newUpdateCmd(), newDeleteCmd(), newChangeTypeCmd(),
		newSearchCmd(), newSuggestCmd(),
		newTagsCmd(), newTypesCmd(), newStatusesCmd(), newStatsCmd(), newStateCmd(),
		newServeCmd(), newExportCmd(), newImportCmd(), newRebuildCmd(), newConfigCmd(),
	)

	if err := root.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// withApp loads configuration and opens every wired component for the
// duration of fn, closing it afterward regardless of outcome.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, cfg, debug)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// exitCodeFor maps the error taxonomy onto process exit codes,
// printing the message to stderr along the way.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, "Error:", err.Error())

	se, ok := err.(*types.Error)
	if !ok {
		return ExitInternal
	}
	switch se.Kind {
	case types.KindNotFound:
		return ExitNotFound
	case types.KindValidation, types.KindConflict, types.KindReference, types.KindToolNotFound:
		return ExitValidation
	case types.KindIntegrity:
		return ExitInternal
	default:
		return ExitInternal
	}
}
