package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var typeFilter string
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "search <query>",
		GroupID: "search",
		Short:   "Full-text search across items",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				results, err := a.Search.Search(ctx, args[0], splitCSV(typeFilter), limit, offset)
				if err != nil {
					return err
				}
				return emit(results, func() { fmt.Println(ui.RenderSearchResults(results)) })
			})
		},
	}
	cmd.Flags().StringVar(&typeFilter, "type", "", "comma-separated type names to restrict to")
	cmd.Flags().IntVar(&limit, "limit", 20, "max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "suggest <prefix>",
		GroupID: "search",
		Short:   "Suggest tag/title completions for a prefix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				suggestions, err := a.Search.Suggest(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return emit(suggestions, func() {
					for _, s := range suggestions {
						fmt.Println(s)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "max suggestions")
	return cmd
}
