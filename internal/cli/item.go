package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/types"
	"github.com/shirokuma-dev/shirokuma/internal/ui"
)

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newCreateCmd() *cobra.Command {
	var title, description, content, status, priority, category, version, startDate, endDate, tags, related, date, datetime string
	var interactive bool

	cmd := &cobra.Command{
		Use:     "create <type>",
		GroupID: "items",
		Short:   "Create a new item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive || title == "" {
				if err := runCreateForm(&title, &description, &content, &priority, &tags); err != nil {
					return err
				}
			}
			in := repository.CreateInput{
				Type: args[0], Title: title, Description: description, Content: content,
				Status: status, Priority: priority, Category: category, Version: version,
				StartDate: resolveDate(startDate), EndDate: resolveDate(endDate), Tags: splitCSV(tags), Related: splitCSV(related),
				Date: resolveDate(date), Datetime: datetime,
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				item, err := a.Repository.Create(ctx, in)
				if err != nil {
					return err
				}
				return emit(item, func() { fmt.Println(ui.RenderItemDetail(item)) })
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "item title (required unless --interactive)")
	cmd.Flags().StringVar(&description, "description", "", "short one-line summary")
	cmd.Flags().StringVar(&content, "content", "", "body content")
	cmd.Flags().StringVar(&status, "status", "", "initial status name")
	cmd.Flags().StringVar(&priority, "priority", "", "CRITICAL|HIGH|MEDIUM|LOW|MINIMAL")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&version, "version", "", "version")
	cmd.Flags().StringVar(&startDate, "start-date", "", "YYYY-MM-DD or a natural phrase like \"yesterday\"")
	cmd.Flags().StringVar(&endDate, "end-date", "", "YYYY-MM-DD or a natural phrase like \"next friday\"")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tag names")
	cmd.Flags().StringVar(&related, "related", "", `comma-separated "type-id" tokens`)
	cmd.Flags().StringVar(&date, "date", "", "dailies only: YYYY-MM-DD or a natural phrase")
	cmd.Flags().StringVar(&datetime, "datetime", "", "sessions only: RFC3339 override")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt for fields with a form")
	return cmd
}

func runCreateForm(title, description, content, priority, tags *string) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(title).Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("title must not be empty")
			}
			return nil
		}),
		huh.NewInput().Title("Description").Value(description),
		huh.NewText().Title("Content").Value(content),
		huh.NewSelect[string]().Title("Priority").
			Options(huh.NewOptions("CRITICAL", "HIGH", "MEDIUM", "LOW", "MINIMAL")...).
			Value(priority),
		huh.NewInput().Title("Tags (comma-separated)").Value(tags),
	)).Run()
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <type> <id>",
		GroupID: "items",
		Short:   "Show an item's full detail",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				item, err := a.Repository.Get(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return emit(item, func() { fmt.Println(ui.RenderItemDetail(item)) })
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var statuses, tags, startDate, endDate string
	var includeClosed bool
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "list <type>",
		GroupID: "items",
		Short:   "List items of a type",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				filter := types.ListFilter{
					Statuses: splitCSV(statuses), IncludeClosedStatuses: includeClosed,
					StartDate: resolveDate(startDate), EndDate: resolveDate(endDate), Tags: splitCSV(tags),
					Limit: limit, Offset: offset,
				}
				views, err := a.Repository.List(ctx, args[0], filter)
				if err != nil {
					return err
				}
				return emit(views, func() { fmt.Println(ui.RenderListView(views)) })
			})
		},
	}
	cmd.Flags().StringVar(&statuses, "status", "", "comma-separated status names")
	cmd.Flags().BoolVar(&includeClosed, "include-closed", false, "include closable statuses")
	cmd.Flags().StringVar(&startDate, "start-date", "", "YYYY-MM-DD")
	cmd.Flags().StringVar(&endDate, "end-date", "", "YYYY-MM-DD")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tag names")
	cmd.Flags().IntVar(&limit, "limit", 0, "max rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var title, description, content, status, priority, category, version, startDate, endDate, tags, related string

	cmd := &cobra.Command{
		Use:     "update <type> <id>",
		GroupID: "items",
		Short:   "Apply a partial update to an item",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := repository.UpdatePatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				patch.Priority = &priority
			}
			if cmd.Flags().Changed("category") {
				patch.Category = &category
			}
			if cmd.Flags().Changed("version") {
				patch.Version = &version
			}
			if cmd.Flags().Changed("start-date") {
				patch.StartDate = &startDate
			}
			if cmd.Flags().Changed("end-date") {
				patch.EndDate = &endDate
			}
			if cmd.Flags().Changed("tags") {
				v := splitCSV(tags)
				patch.Tags = &v
			}
			if cmd.Flags().Changed("related") {
				v := splitCSV(related)
				patch.Related = &v
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				item, warning, err := a.Repository.Update(ctx, args[0], args[1], patch)
				if err != nil {
					return err
				}
				if warning != "" {
					fmt.Fprintln(os.Stderr, "Warning:", warning)
				}
				return emit(item, func() { fmt.Println(ui.RenderItemDetail(item)) })
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "")
	cmd.Flags().StringVar(&description, "description", "", "")
	cmd.Flags().StringVar(&content, "content", "", "")
	cmd.Flags().StringVar(&status, "status", "", "")
	cmd.Flags().StringVar(&priority, "priority", "", "")
	cmd.Flags().StringVar(&category, "category", "", "")
	cmd.Flags().StringVar(&version, "version", "", "")
	cmd.Flags().StringVar(&startDate, "start-date", "", "")
	cmd.Flags().StringVar(&endDate, "end-date", "", "")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated, replaces the full set")
	cmd.Flags().StringVar(&related, "related", "", "comma-separated, replaces the full set")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <type> <id>",
		GroupID: "items",
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Repository.Delete(ctx, args[0], args[1]); err != nil {
					return err
				}
				return emit(map[string]any{"deleted": true}, func() { fmt.Printf("Deleted %s-%s\n", args[0], args[1]) })
			})
		},
	}
}

func newChangeTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "change-type <type> <id> <new-type>",
		GroupID: "items",
		Short:   "Migrate an item to another type within the same base type",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Repository.ChangeType(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return emit(result, func() {
					fmt.Printf("Moved to %s-%s, migrated %d reference(s)\n", args[2], result.NewID, result.MigratedReferences)
				})
			})
		},
	}
}
