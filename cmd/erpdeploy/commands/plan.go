package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/erpdeploy/cmd/erpdeploy/handlers"
)

// Plan returns the command that reports what apply would change.
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which steps apply would run",
		Long: `Evaluate every step against the target host without changing it.

Steps already in place are reported as skipped, the rest as planned.
The target is still contacted, so plan needs the same access as apply.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), handlers.ApplyOptions{
				ConfigPath: configPath,
				Flags:      cmd.Flags(),
			})
		},
	}

	addConfigFlags(cmd, &configPath)

	return cmd
}
