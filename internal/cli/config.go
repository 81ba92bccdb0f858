package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shirokuma-dev/shirokuma/internal/config"
)

func newConfigCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "config",
		GroupID: "ops",
		Short:   "Read and write shirokuma's configuration",
	}
	root.AddCommand(newConfigGetCmd(), newConfigSetCmd(), newConfigListCmd())
	return root
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(config.Get(args[0]), func() { fmt.Println(config.Get(args[0])) })
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			return emit(map[string]string{args[0]: args[1]}, func() { fmt.Printf("%s = %s\n", args[0], args[1]) })
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every configuration key and its current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := config.All()
			return emit(all, func() {
				for k, v := range all {
					fmt.Printf("%-16s %v\n", k, v)
				}
			})
		},
	}
}
