package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/erpdeploy/cmd/erpdeploy/handlers"
	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/config/wizard"
)

// Init returns the command for creating a deployment configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "erpdeploy.yaml")
//	--advanced, -a: Show advanced configuration options
//	--full, -f: Output full YAML with all options (default: minimal output)
//	--non-interactive: Build the file from flags instead of prompting
func Init() *cobra.Command {
	var (
		opts    handlers.InitOptions
		answers wizard.WizardResult
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a deployment configuration",
		Long: `Create a deployment configuration file.

The wizard asks for:

  - The public domain and certificate contact address
  - The Odoo version and worker count
  - Whether to issue a certificate and enable the firewall
  - The target host (this machine or a server reached over SSH)

Passwords are never written to the file; apply reads them from
ERPDEPLOY_MASTER_PASSWORD and ERPDEPLOY_DATABASE_PASSWORD.

Use --non-interactive to build the file from flags, e.g. in scripts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers.Remote = answers.Host != ""
			opts.Answers = answers
			return handlers.Init(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.OutputPath, "output", "o", config.DefaultConfigFile, "Output file path")
	f.BoolVarP(&opts.Advanced, "advanced", "a", false, "Show advanced configuration options")
	f.BoolVarP(&opts.Full, "full", "f", false, "Output full YAML with all options")
	f.BoolVar(&opts.Force, "force", false, "Overwrite an existing file without asking")
	f.BoolVar(&opts.NonInteractive, "non-interactive", false, "Build the file from flags instead of prompting")

	f.StringVar(&answers.Domain, "domain", "", "Public domain (with --non-interactive)")
	f.StringVar(&answers.Email, "email", "", "Certificate contact address (with --non-interactive)")
	f.StringVar(&answers.AppVersion, "app-version", wizard.DefaultAppVersion(), "Odoo version (with --non-interactive)")
	f.IntVar(&answers.Workers, "workers", 0, "Odoo worker processes, 0 for threaded mode (with --non-interactive)")
	f.BoolVar(&answers.TLS, "tls", true, "Issue a certificate (with --non-interactive)")
	f.BoolVar(&answers.Staging, "staging", false, "Use the staging CA (with --non-interactive)")
	f.BoolVar(&answers.Firewall, "firewall", true, "Enable the firewall (with --non-interactive)")
	f.StringVar(&answers.Host, "host", "", "Remote target host (with --non-interactive)")
	f.IntVar(&answers.Port, "port", config.DefaultSSHPort, "SSH port (with --non-interactive)")
	f.StringVar(&answers.User, "user", config.DefaultSSHUser, "SSH user (with --non-interactive)")
	f.StringVarP(&answers.KeyFile, "identity", "i", "", "SSH private key (with --non-interactive)")
	f.BoolVar(&answers.Sudo, "sudo", false, "Run remote commands through sudo -n (with --non-interactive)")

	return cmd
}
