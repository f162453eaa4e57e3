package wizard

import (
	"strings"

	"github.com/imamik/erpdeploy/internal/config"
)

// BuildConfig creates a Config struct from the wizard result, filling
// everything not asked for with the built-in defaults.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Domain: strings.TrimSpace(result.Domain),
		Email:  strings.TrimSpace(result.Email),
		Root:   config.DefaultRoot,
		App: config.AppConfig{
			Image:           config.DefaultAppImage,
			Version:         result.AppVersion,
			Port:            config.DefaultAppPort,
			LongpollingPort: config.DefaultLongpollingPort,
			Workers:         result.Workers,
			ListDB:          true,
		},
		Database: config.DatabaseConfig{
			Image:   config.DefaultDBImage,
			Version: config.DefaultDBVersion,
			User:    config.DefaultDBUser,
			Name:    config.DefaultDBName,
		},
		Network:  config.DefaultNetwork,
		Volumes:  config.VolumesConfig{Web: config.DefaultWebVolume, DB: config.DefaultDBVolume},
		Packages: config.DefaultPackages(),
		Proxy: config.ProxyConfig{
			Site:           config.DefaultSite,
			SitesAvailable: config.DefaultSitesAvailable,
			SitesEnabled:   config.DefaultSitesEnabled,
		},
		Firewall: config.FirewallConfig{
			Enabled: result.Firewall,
			Rules:   config.DefaultFirewallRules(),
		},
		TLS: config.TLSConfig{
			Enabled:     result.TLS,
			Staging:     result.Staging,
			RenewBefore: config.DefaultRenewBefore,
		},
		Log: config.LogConfig{Format: config.DefaultLogFormat},
	}

	if cfg.App.Version == "" {
		cfg.App.Version = config.DefaultAppVersion
	}

	if result.Remote {
		cfg.Target = config.TargetConfig{
			Host:    strings.TrimSpace(result.Host),
			Port:    result.Port,
			User:    result.User,
			KeyFile: strings.TrimSpace(result.KeyFile),
			Sudo:    result.Sudo,
		}
		if cfg.Target.Port == 0 {
			cfg.Target.Port = config.DefaultSSHPort
		}
		if cfg.Target.User == "" {
			cfg.Target.User = config.DefaultSSHUser
		}
	}

	return cfg
}
