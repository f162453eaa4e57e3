package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/erpdeploy/cmd/erpdeploy/handlers"
)

// Render returns the command that prints the generated files.
func Render() *cobra.Command {
	var (
		configPath string
		outputDir  string
		withTLS    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the files apply would write",
		Long: `Render the Odoo service config, the compose descriptor and the nginx
site for the configuration, without contacting any host.

The output contains the configured passwords in plaintext.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), handlers.RenderOptions{
				ConfigPath: configPath,
				Flags:      cmd.Flags(),
				OutputDir:  outputDir,
				TLS:        withTLS,
			})
		},
	}

	addConfigFlags(cmd, &configPath)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write the files to this directory instead of stdout")
	cmd.Flags().BoolVar(&withTLS, "with-tls", false, "Render the HTTPS nginx site used once a certificate exists")

	return cmd
}
