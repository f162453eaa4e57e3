package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/erpdeploy/cmd/erpdeploy/handlers"
)

// Apply returns the command for converging a host to the configured deployment.
//
// Flags:
//
//	--config, -c: Path to configuration file (default erpdeploy.yaml if present)
//	--dry-run: Evaluate every step without changing the host
//	--tui: Show a live progress view when stdout is a terminal
//
// Every configuration key listed in config.FlagBindings can also be set
// with a flag; see addConfigFlags.
func Apply() *cobra.Command {
	var (
		configPath string
		dryRun     bool
		useTUI     bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the host to run the configured deployment",
		Long: `Provision the target host to run Odoo with Postgres behind nginx.

The sequence installs packages, writes the service config and compose
descriptor, starts the stack, opens the firewall, configures nginx and
issues a certificate. Steps whose result is already in place are skipped,
so apply can be run again at any time.

Configuration is merged from built-in defaults, the config file,
ERPDEPLOY_* environment variables and flags, in increasing precedence.

A failed certificate or firewall step is reported with the command that
fixes it and does not fail the run. Any other failure stops the run at
that step and exits non-zero.`,
		Example: `  # Local host, passwords from the environment
  export ERPDEPLOY_MASTER_PASSWORD=... ERPDEPLOY_DATABASE_PASSWORD=...
  erpdeploy apply --domain erp.example.com --email ops@example.com

  # Remote host over SSH
  erpdeploy apply -c erpdeploy.yaml --host 203.0.113.10 -i ~/.ssh/id_ed25519`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), handlers.ApplyOptions{
				ConfigPath: configPath,
				Flags:      cmd.Flags(),
				DryRun:     dryRun,
				TUI:        useTUI,
			})
		},
	}

	addConfigFlags(cmd, &configPath)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate every step without changing the host")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live progress view when stdout is a terminal")

	return cmd
}
