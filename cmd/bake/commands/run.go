package commands

import (
	"github.com/spf13/cobra"
	"github.com/trinio-labs/bake/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the specified recipes",
		Long: `Run recipes and their dependencies, restoring cached results where
possible. Targets are recipe keys ("cookbook:recipe"), whole cookbooks
("cookbook:") or bare recipe names matched across all cookbooks.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			root, _ := cmd.Flags().GetString("root")
			force, _ := cmd.Flags().GetBool("force")
			jobs, _ := cmd.Flags().GetInt("jobs")
			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Root:  root,
				Force: force,
				Jobs:  jobs,
			})
		},
	}
	cmd.Flags().StringP("root", "C", "", "Project root directory (defaults to the current directory)")
	cmd.Flags().BoolP("force", "f", false, "Bypass the cache and run every recipe")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum recipes running in parallel (defaults to the project configuration)")
	return cmd
}
