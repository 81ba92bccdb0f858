package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

func newRebuildCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:     "rebuild",
		GroupID: "ops",
		Short:   "Rebuild the database from the markdown mirror",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Rebuild.Run(ctx)
				if err != nil {
					return err
				}
				if reportErr := emit(report, func() {
					for typ, count := range report.CountsByType {
						fmt.Printf("%-12s %d\n", typ, count)
					}
					for _, w := range report.Warnings {
						fmt.Println("Warning:", w)
					}
				}); reportErr != nil {
					return reportErr
				}
				if !watch {
					return nil
				}
				return watchMarkdownTree(ctx, a)
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "after rebuilding, keep watching the markdown tree and re-rebuild on change")
	return cmd
}
