package config

import "time"

// File names inside the deployment root.
const (
	ServiceConfigFile   = "odoo.conf"
	StackDescriptorFile = "docker-compose.yml"
)

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "erpdeploy.yaml"

// EnvPrefix prefixes every environment override, e.g. ERPDEPLOY_DATABASE_PASSWORD.
const EnvPrefix = "ERPDEPLOY"

// Defaults applied before the config file, environment and flags.
const (
	DefaultRoot            = "/opt/odoo"
	DefaultAppImage        = "odoo"
	DefaultAppVersion      = "17.0"
	DefaultAppPort         = 8069
	DefaultLongpollingPort = 8072
	DefaultDBImage         = "postgres"
	DefaultDBVersion       = "16"
	DefaultDBUser          = "odoo"
	DefaultDBName          = "postgres"
	DefaultNetwork         = "odoo-net"
	DefaultWebVolume       = "odoo-web-data"
	DefaultDBVolume        = "odoo-db-data"
	DefaultSite            = "odoo"
	DefaultSitesAvailable  = "/etc/nginx/sites-available"
	DefaultSitesEnabled    = "/etc/nginx/sites-enabled"
	DefaultSSHPort         = 22
	DefaultSSHUser         = "root"
	DefaultLogFormat       = "text"
	DefaultRenewBefore     = 30 * 24 * time.Hour
)

// Firewall rule names as known to ufw application profiles.
const (
	RuleSSH = "OpenSSH"
	RuleWeb = "Nginx Full"
)

// DefaultPackages is the OS package set the host needs.
func DefaultPackages() []string {
	return []string{
		"docker.io",
		"docker-compose-v2",
		"nginx",
		"certbot",
		"python3-certbot-nginx",
		"ufw",
		"curl",
	}
}

// DefaultFirewallRules keeps SSH reachable before opening the web ports.
func DefaultFirewallRules() []string {
	return []string{RuleSSH, RuleWeb}
}
