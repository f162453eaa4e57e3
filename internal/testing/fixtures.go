package testing

import (
	"github.com/imamik/erpdeploy/internal/config"
)

// ScenarioConfig is the reference deployment: a.example.com, contact
// x@example.com, master password p, database user odoo with password q,
// and the built-in defaults for everything else.
func ScenarioConfig() *config.Config {
	return &config.Config{
		Domain:         "a.example.com",
		Email:          "x@example.com",
		MasterPassword: "p",
		Root:           config.DefaultRoot,
		App: config.AppConfig{
			Image:           config.DefaultAppImage,
			Version:         config.DefaultAppVersion,
			Port:            config.DefaultAppPort,
			LongpollingPort: config.DefaultLongpollingPort,
			ListDB:          true,
		},
		Database: config.DatabaseConfig{
			Image:    config.DefaultDBImage,
			Version:  config.DefaultDBVersion,
			User:     "odoo",
			Password: "q",
			Name:     config.DefaultDBName,
		},
		Network:  config.DefaultNetwork,
		Volumes:  config.VolumesConfig{Web: config.DefaultWebVolume, DB: config.DefaultDBVolume},
		Packages: config.DefaultPackages(),
		Proxy: config.ProxyConfig{
			Site:           config.DefaultSite,
			SitesAvailable: config.DefaultSitesAvailable,
			SitesEnabled:   config.DefaultSitesEnabled,
		},
		Firewall: config.FirewallConfig{Enabled: true, Rules: config.DefaultFirewallRules()},
		TLS:      config.TLSConfig{Enabled: true, RenewBefore: config.DefaultRenewBefore},
		Target:   config.TargetConfig{Port: config.DefaultSSHPort, User: config.DefaultSSHUser},
		Log:      config.LogConfig{Format: config.DefaultLogFormat},
	}
}
