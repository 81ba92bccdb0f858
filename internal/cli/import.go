package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

func newImportCmd() *cobra.Command {
	var clear, preserveIds bool

	cmd := &cobra.Command{
		Use:     "import <path>",
		GroupID: "ops",
		Short:   "Import items from a JSON dump or a directory of Markdown files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.ExportImport.Import(ctx, args[0], clear, preserveIds)
				if err != nil {
					return err
				}
				return emit(report, func() {
					fmt.Printf("Imported %d item(s)\n", report.Imported)
					for _, w := range report.Warnings {
						fmt.Println("Warning:", w)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "wipe the store before importing")
	cmd.Flags().BoolVar(&preserveIds, "preserve-ids", false, "keep the dump's numeric ids instead of reassigning")
	return cmd
}
