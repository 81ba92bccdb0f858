package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func printGroup(label string, byType map[string][]types.Item) {
	if len(byType) == 0 {
		return
	}
	fmt.Println(label + ":")
	for typ, items := range byType {
		fmt.Printf("  %s:\n", typ)
		for _, item := range items {
			fmt.Printf("    %s-%s  %s\n", item.Type, item.ID, item.Title)
		}
	}
}

func newTagsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "tags",
		GroupID: "meta",
		Short:   "Inspect and manage the tag vocabulary",
	}
	root.AddCommand(newTagsListCmd(), newTagsCreateCmd(), newTagsDeleteCmd(), newTagsSearchCmd(), newTagsByCmd())
	return root
}

func newTagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				tags, err := a.Repository.GetTags(ctx)
				if err != nil {
					return err
				}
				return emit(tags, func() {
					for _, t := range tags {
						fmt.Println(t)
					}
				})
			})
		},
	}
}

func newTagsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag with no items attached yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Repository.CreateTag(ctx, args[0]); err != nil {
					return err
				}
				return emit(map[string]any{"created": args[0]}, func() { fmt.Println("Created tag", args[0]) })
			})
		},
	}
}

func newTagsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag and remove it from every item that carries it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Repository.DeleteTag(ctx, args[0]); err != nil {
					return err
				}
				return emit(map[string]any{"deleted": args[0]}, func() { fmt.Println("Deleted tag", args[0]) })
			})
		},
	}
}

func newTagsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search tag names by substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				tags, err := a.Repository.SearchTags(ctx, args[0])
				if err != nil {
					return err
				}
				return emit(tags, func() {
					for _, t := range tags {
						fmt.Println(t)
					}
				})
			})
		},
	}
}

func newTagsByCmd() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "by <tag>",
		Short: "Group every item carrying a tag by base type and type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				group, err := a.Search.SearchByTag(ctx, args[0], splitCSV(typeFilter))
				if err != nil {
					return err
				}
				return emit(group, func() {
					printGroup("tasks", group.Tasks)
					printGroup("documents", group.Documents)
				})
			})
		},
	}
	cmd.Flags().StringVar(&typeFilter, "type", "", "comma-separated type names to restrict to")
	return cmd
}
