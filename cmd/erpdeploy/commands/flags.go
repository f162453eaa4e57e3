package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/erpdeploy/internal/config"
)

// addConfigFlags registers --config and the flags listed in
// config.FlagBindings. Flags only override other sources when set.
func addConfigFlags(cmd *cobra.Command, configPath *string) {
	f := cmd.Flags()
	f.StringVarP(configPath, "config", "c", "", "Path to configuration file (default "+config.DefaultConfigFile+" if present)")

	f.String("domain", "", "Public domain served by nginx and covered by the certificate")
	f.String("email", "", "Contact address for the certificate authority")
	f.String("master-password", "", "Odoo database manager password (prefer ERPDEPLOY_MASTER_PASSWORD)")
	f.String("root", config.DefaultRoot, "Deployment directory on the target")
	f.String("app-version", config.DefaultAppVersion, "Odoo image version")
	f.String("db-user", config.DefaultDBUser, "Postgres user")
	f.String("db-password", "", "Postgres password (prefer ERPDEPLOY_DATABASE_PASSWORD)")
	f.Bool("firewall", true, "Configure and enable ufw")
	f.Bool("tls", true, "Issue a Let's Encrypt certificate and serve HTTPS")
	f.Bool("staging", false, "Use the Let's Encrypt staging environment")

	f.String("host", "", "Remote target reached over SSH (default: this machine)")
	f.Int("port", config.DefaultSSHPort, "SSH port of the remote target")
	f.String("user", config.DefaultSSHUser, "SSH user of the remote target")
	f.StringP("identity", "i", "", "SSH private key for the remote target")
	f.Bool("sudo", false, "Run remote commands through sudo -n")

	f.String("log-format", config.DefaultLogFormat, "Log format: text or json")
	f.BoolP("verbose", "v", false, "Log step starts and progress")
	f.String("report-json", "", "Write the run report as JSON to this file")
	f.String("metrics-file", "", "Write run metrics in Prometheus text format to this path on the target")
}
