package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

func newStateCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "state",
		GroupID: "meta",
		Short:   "Read and replace the current-state singleton",
	}
	root.AddCommand(newStateGetCmd(), newStateUpdateCmd())
	return root
}

func newStateGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current state document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				cs, err := a.CurrentState.Get(ctx)
				if err != nil {
					return err
				}
				return emit(cs, func() {
					fmt.Println(cs.Content)
				})
			})
		},
	}
}

func newStateUpdateCmd() *cobra.Command {
	var content, tags, related, metadataContext, updatedBy string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the current state document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				cs, err := a.CurrentState.Update(ctx, content, splitCSV(tags), splitCSV(related), metadataContext, updatedBy)
				if err != nil {
					return err
				}
				return emit(cs, func() { fmt.Println(cs.Content) })
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "full replacement content")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&related, "related", "", `comma-separated "type-id" tokens`)
	cmd.Flags().StringVar(&metadataContext, "context", "", "free-form context note")
	cmd.Flags().StringVar(&updatedBy, "updated-by", "", "attribution for this update")
	return cmd
}
