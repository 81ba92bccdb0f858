package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

func newExportCmd() *cobra.Command {
	var includeCurrentState, writeManifest bool

	cmd := &cobra.Command{
		Use:     "export [path]",
		GroupID: "ops",
		Short:   "Export every item as a Markdown file, plus an optional manifest and current-state snapshot",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				root := a.Config.ExportRoot
				if len(args) == 1 {
					root = args[0]
				}
				report, err := a.ExportImport.Export(ctx, root, includeCurrentState, writeManifest)
				if err != nil {
					return err
				}
				return emit(report, func() {
					fmt.Printf("Exported %d file(s) to %s\n", len(report.Files), root)
					for typ, count := range report.CountsByType {
						fmt.Printf("  %-12s %d\n", typ, count)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&includeCurrentState, "include-current-state", true, "include the current-state document")
	cmd.Flags().BoolVar(&writeManifest, "manifest", true, "write a manifest alongside the dump")
	return cmd
}
