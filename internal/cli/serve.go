package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shirokuma-dev/shirokuma/internal/app"
	"github.com/shirokuma-dev/shirokuma/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "ops",
		Short:   "Run the MCP server over stdio",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				srv := mcpserver.New(a.Tools, a.Log)
				if !watch {
					return srv.Serve(ctx, os.Stdin, os.Stdout)
				}

				gctx, cancel := context.WithCancel(ctx)
				defer cancel()
				g, gctx := errgroup.WithContext(gctx)
				g.Go(func() error {
					defer cancel()
					return srv.Serve(gctx, os.Stdin, os.Stdout)
				})
				g.Go(func() error { return watchMarkdownTree(gctx, a) })
				return g.Wait()
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "watch the markdown tree for out-of-band edits and rebuild on change")
	return cmd
}
