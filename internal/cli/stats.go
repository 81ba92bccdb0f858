package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/app"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		GroupID: "meta",
		Short:   "Show item counts grouped by type and status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				stats, err := a.Repository.Stats(ctx)
				if err != nil {
					return err
				}
				return emit(stats, func() {
					types := make([]string, 0, len(stats.ByType))
					for t := range stats.ByType {
						types = append(types, t)
					}
					sort.Strings(types)
					for _, t := range types {
						fmt.Printf("%-12s %d\n", t, stats.ByType[t])
						byStatus := stats.ByTypeStatus[t]
						statuses := make([]string, 0, len(byStatus))
						for s := range byStatus {
							statuses = append(statuses, s)
						}
						sort.Strings(statuses)
						for _, s := range statuses {
							fmt.Printf("  %-15s %d\n", s, byStatus[s])
						}
					}
				})
			})
		},
	}
}
