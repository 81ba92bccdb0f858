package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func newTypesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "types",
		GroupID: "meta",
		Short:   "Inspect and manage the type registry",
	}
	root.AddCommand(newTypesListCmd(), newTypesCreateCmd(), newTypesUpdateCmd(), newTypesDeleteCmd())
	return root
}

func newTypesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				defs, err := a.Registry.ListTypes(ctx)
				if err != nil {
					return err
				}
				return emit(defs, func() {
					for _, d := range defs {
						fmt.Printf("%-12s %-10s %s\n", d.Name, d.BaseType, d.Description)
					}
				})
			})
		},
	}
}

func newTypesCreateCmd() *cobra.Command {
	var baseType, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a new type bound to a base type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Registry.CreateType(ctx, args[0], types.BaseType(baseType), description); err != nil {
					return err
				}
				return emit(map[string]any{"created": args[0]}, func() { fmt.Println("Created type", args[0]) })
			})
		},
	}
	cmd.Flags().StringVar(&baseType, "base-type", "", `"tasks" or "documents" (required)`)
	cmd.Flags().StringVar(&description, "description", "", "human-readable description")
	_ = cmd.MarkFlagRequired("base-type")
	return cmd
}

func newTypesUpdateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a type's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Registry.UpdateType(ctx, args[0], description); err != nil {
					return err
				}
				return emit(map[string]any{"updated": args[0]}, func() { fmt.Println("Updated type", args[0]) })
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newTypesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a type that has no items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Registry.DeleteType(ctx, args[0]); err != nil {
					return err
				}
				return emit(map[string]any{"deleted": args[0]}, func() { fmt.Println("Deleted type", args[0]) })
			})
		},
	}
}

func newStatusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "statuses",
		GroupID: "meta",
		Short:   "List the fixed status set",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				statuses, err := a.Registry.ListStatuses(ctx)
				if err != nil {
					return err
				}
				return emit(statuses, func() {
					for _, s := range statuses {
						closable := ""
						if s.IsClosable {
							closable = " (closable)"
						}
						fmt.Printf("%-15s%s\n", s.Name, closable)
					}
				})
			})
		},
	}
}
